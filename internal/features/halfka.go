package features

import (
	"github.com/nnuepipe/marlinpipe/internal/batch"
	"github.com/nnuepipe/marlinpipe/internal/chess"
)

// addHalfKa projects HalfKa features: king_sq*768 + piece_color*384 +
// piece*64 + sq, king included on the piece axis (spec.md §4.B, feature
// space 64*768 = 49152).
func addHalfKa(b *chess.Board, w batch.Writer) {
	stm := b.SideToMove()
	perspectives := [2]chess.Color{stm, stm.Opposite()}

	for lane, perspective := range perspectives {
		ownKing := b.King(perspective)
		kingSq, _ := project(perspective, ownKing, perspective)

		for occ := b.Occupied(); occ != 0; {
			var sq chess.Square
			sq, occ = occ.NextSquare()
			p := b.PieceOn(sq)
			sq2, colorBit := project(perspective, sq, p.Color())
			idx := int32(kingSq)*768 + int32(colorBit)*384 + int32(figureCode(p.Figure()))*64 + int32(sq2)
			w.AddFeature(lane, idx, 1.0)
		}
	}
}
