package features

import (
	"github.com/nnuepipe/marlinpipe/internal/batch"
	"github.com/nnuepipe/marlinpipe/internal/chess"
)

// addHmStmBoard192 projects HmStmBoard192 features: a board folded
// left-right onto its half-file axis (file and 7-file share a lane slot),
// with each piece routed to one of four lanes keyed by (file >= e-file,
// color == side to move). The rank is flipped for black pieces so that
// "rank" always means "rank as seen by that piece's own color" before
// folding into the index — without this flip the scheme can't tell a
// white pawn's advance from a black pawn's. Within a lane the index is
// half_file*48 + rank*6 + piece_type, a 4*8*6 = 192-wide space (spec.md
// §4.B).
func addHmStmBoard192(b *chess.Board, w batch.Writer) {
	stm := b.SideToMove()

	for occ := b.Occupied(); occ != 0; {
		var sq chess.Square
		sq, occ = occ.NextSquare()
		p := b.PieceOn(sq)

		file := sq.File()
		halfFile := file
		if file > 3 {
			halfFile = 7 - file
		}
		rank := sq.Rank()
		if p.Color() == chess.Black {
			rank = 7 - rank
		}
		idx := int32(halfFile)*48 + int32(rank)*6 + int32(figureCode(p.Figure()))

		lane := 0
		if file >= 4 {
			lane += 2
		}
		if p.Color() == stm {
			lane++
		}
		w.AddFeature(lane, idx, 1.0)
	}
}
