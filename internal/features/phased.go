package features

import (
	"github.com/nnuepipe/marlinpipe/internal/batch"
	"github.com/nnuepipe/marlinpipe/internal/chess"
)

// addPhasedStmBoard384 projects a 384-wide, own/enemy (not stm/nstm
// per-perspective) Board index space onto two lanes keyed by color ==
// side to move, each piece written twice: once at its plain index
// weighted by the game-phase fraction, once at index+384 weighted by
// (1 - phase). This lets a phased net blend an early-game and
// late-game embedding table from one shared feature projection
// (spec.md §4.B: "Phased*: same space, split across two lanes weighted
// by game-phase fraction and (1 - phase)").
func addPhasedStmBoard384(b *chess.Board, w batch.Writer) {
	stm := b.SideToMove()
	phase := b.Phase()

	for occ := b.Occupied(); occ != 0; {
		var sq chess.Square
		sq, occ = occ.NextSquare()
		p := b.PieceOn(sq)

		lane := 0
		if p.Color() == stm {
			lane = 1
		}

		idx := phasedStmIndex(p.Color(), p.Figure(), sq)
		w.AddFeature(lane, idx, phase)
		w.AddFeature(lane, idx+384, 1-phase)
	}
}

// phasedStmIndex flips a black piece's square along the rank axis (so
// both colors share one board-from-their-own-side layout), then folds
// piece type and square into piece*64 + sq, a 6*64 = 384-wide space.
func phasedStmIndex(c chess.Color, f chess.Figure, sq chess.Square) int32 {
	if c == chess.Black {
		sq = sq.FlipRank()
	}
	return int32(figureCode(f))*64 + int32(sq)
}
