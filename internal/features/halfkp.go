package features

import (
	"github.com/nnuepipe/marlinpipe/internal/batch"
	"github.com/nnuepipe/marlinpipe/internal/chess"
)

// addHalfKp projects HalfKp features: king_sq*640 + piece_color*320 +
// piece_type*64 + sq, with both kings excluded from the piece_type axis
// (spec.md §4.B, feature space 64*640 = 40960).
func addHalfKp(b *chess.Board, w batch.Writer) {
	stm := b.SideToMove()
	perspectives := [2]chess.Color{stm, stm.Opposite()}

	for lane, perspective := range perspectives {
		ownKing := b.King(perspective)
		kingSq, _ := project(perspective, ownKing, perspective)

		for occ := b.Occupied(); occ != 0; {
			var sq chess.Square
			sq, occ = occ.NextSquare()
			p := b.PieceOn(sq)
			if p.Figure() == chess.King {
				continue
			}
			sq2, colorBit := project(perspective, sq, p.Color())
			idx := int32(kingSq)*640 + int32(colorBit)*320 + int32(figureCode(p.Figure()))*64 + int32(sq2)
			w.AddFeature(lane, idx, 1.0)
		}
	}
}
