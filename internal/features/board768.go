package features

import (
	"github.com/nnuepipe/marlinpipe/internal/batch"
	"github.com/nnuepipe/marlinpipe/internal/chess"
)

// board768Indices calls emit(lane, index) for every active Board768
// feature on b: perspective_color*384 + piece*64 + sq, per perspective
// (spec.md §4.B's worked starting-position example). Used by
// addBoard768.
func board768Indices(b *chess.Board, emit func(lane int, index int32)) {
	stm := b.SideToMove()
	perspectives := [2]chess.Color{stm, stm.Opposite()}

	for lane, perspective := range perspectives {
		for occ := b.Occupied(); occ != 0; {
			var sq chess.Square
			sq, occ = occ.NextSquare()
			p := b.PieceOn(sq)
			sq2, colorBit := project(perspective, sq, p.Color())
			idx := int32(colorBit)*384 + int32(figureCode(p.Figure()))*64 + int32(sq2)
			emit(lane, idx)
		}
	}
}

func addBoard768(b *chess.Board, w batch.Writer, value float32) {
	board768Indices(b, func(lane int, index int32) {
		w.AddFeature(lane, index, value)
	})
}
