package features

import (
	"github.com/nnuepipe/marlinpipe/internal/batch"
	"github.com/nnuepipe/marlinpipe/internal/chess"
)

// ice4FeatureSpace is 4 king buckets * 768 (Board768's own space).
const ice4FeatureSpace = 4 * 768

// ice4KingBucket is a minimal king-bucketing extension point: the king's
// own file quadrant (a-d vs e-h) combined with its side of the board's
// middle ranks selects one of four buckets. This is the smallest bucket
// count a king-relative set can use and still separate castled from
// uncastled kings; a denser bucket table is a pipeline-version bump, not
// a pipeline-behavior change, so it is left out of the core sets above.
func ice4KingBucket(sq chess.Square) int {
	bucket := 0
	if sq.File() >= 4 {
		bucket += 2
	}
	if sq.Rank() >= 4 {
		bucket++
	}
	return bucket
}

// addIce4 projects king-bucketed Board768-space features, phase-split
// across lanes 0-1 (weighted by phase) and 2-3 (weighted by 1-phase).
func addIce4(b *chess.Board, w batch.Writer) {
	phase := b.Phase()
	stm := b.SideToMove()
	perspectives := [2]chess.Color{stm, stm.Opposite()}

	for lane, perspective := range perspectives {
		kingSq, _ := project(perspective, b.King(perspective), perspective)
		kingBucket := ice4KingBucket(kingSq)

		for occ := b.Occupied(); occ != 0; {
			var sq chess.Square
			sq, occ = occ.NextSquare()
			p := b.PieceOn(sq)
			sq2, colorBit := project(perspective, sq, p.Color())
			idx := int32(kingBucket)*768 + int32(colorBit)*384 + int32(figureCode(p.Figure()))*64 + int32(sq2)
			w.AddFeature(lane, idx, phase)
			w.AddFeature(lane+2, idx, 1-phase)
		}
	}
}
