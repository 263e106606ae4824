// Package features projects a decoded chess.Board into the sparse
// per-perspective feature indices spec.md §4.B describes, writing them
// through a batch.Writer. Following the teacher's preference for a tagged
// variant dispatched once per outer loop (spec.md §9, mirrored from
// internal/bucket's Scheme and, further back, the teacher's FormatType
// enum in internal/container) rather than an interface called per board,
// Set is a small closed enum rather than a polymorphic projector type.
package features

import (
	"github.com/nnuepipe/marlinpipe/internal/batch"
	"github.com/nnuepipe/marlinpipe/internal/chess"
)

// Set identifies one of the closed set of input feature schemes.
type Set int

const (
	Board768 Set = iota
	HalfKp
	HalfKa
	HmStmBoard192
	PhasedStmBoard384
	Ice4

	setArraySize = int(iota)
)

// Valid reports whether s names one of the closed set of feature sets.
func (s Set) Valid() bool { return s >= 0 && int(s) < setArraySize }

// MaxFeatures returns the per-entry, per-lane upper bound on active
// features a board can produce under s (spec.md §8.5).
func (s Set) MaxFeatures() int {
	switch s {
	case Board768, HalfKa, PhasedStmBoard384:
		return 32
	case HalfKp:
		return 30 // 32 occupied squares minus the two excluded kings.
	case HmStmBoard192:
		return 16 // one color's pieces can concentrate in a single lane.
	case Ice4:
		return 32
	default:
		return 0
	}
}

// IndicesPerFeature returns the lane layout s writes through (spec.md
// §4.B / internal/batch). Board768, HalfKp and HalfKa keep a fixed
// MAX_FEATURES-wide dense slot per row, following bullet-style NNUE
// dataloaders that pad unused slots with -1 rather than recording a row
// index per feature. HmStmBoard192 and the phase-split sets divide
// activity unevenly across lanes (a piece contributes to exactly one of
// several lanes), so a sparse (row, feature) pair layout avoids paying
// for a MaxFeatures-wide pad in every lane of every row.
func (s Set) IndicesPerFeature() batch.IndicesPerFeature {
	switch s {
	case HmStmBoard192, PhasedStmBoard384, Ice4:
		return batch.Sparse
	default:
		return batch.Dense
	}
}

// TensorsPerBoard returns the number of independent output tensor lanes
// s produces.
func (s Set) TensorsPerBoard() int {
	switch s {
	case HmStmBoard192, Ice4:
		return 4
	default:
		return 2 // lane 0 = stm perspective, lane 1 = nstm perspective.
	}
}

// FeatureSpace returns the per-lane feature-id cardinality s uses
// (indices written through AddFeature always lie in [0, FeatureSpace())).
func (s Set) FeatureSpace() int {
	switch s {
	case Board768:
		return 768
	case PhasedStmBoard384:
		return 768 // 384-wide index space, doubled for the phase/(1-phase) copies.
	case HalfKp:
		return 40960
	case HalfKa:
		return 49152
	case HmStmBoard192:
		return 192
	case Ice4:
		return ice4FeatureSpace
	default:
		return 0
	}
}

// AddFeatures projects b's active features for set s, writing them
// through w. w is typically a batch.EntryWriter returned by a still-open
// Batch.MakeEntry call.
func (s Set) AddFeatures(b *chess.Board, w batch.Writer) {
	switch s {
	case Board768:
		addBoard768(b, w, 1.0)
	case HalfKp:
		addHalfKp(b, w)
	case HalfKa:
		addHalfKa(b, w)
	case HmStmBoard192:
		addHmStmBoard192(b, w)
	case PhasedStmBoard384:
		addPhasedStmBoard384(b, w)
	case Ice4:
		addIce4(b, w)
	}
}

// figureCode maps a figure to its zero-based code within a feature
// set's piece-type axis (Pawn=0 .. King=5).
func figureCode(f chess.Figure) int { return int(f) - 1 }

// project computes the perspective-relative square and own/enemy color
// bit for one piece, viewed from perspective (spec.md §4.B: "for the
// black perspective, piece colors are swapped and square indices are
// flipped along the rank axis"). colorBit is 0 when the piece belongs to
// perspective, 1 when it belongs to the other side.
func project(perspective chess.Color, sq chess.Square, c chess.Color) (chess.Square, int) {
	if perspective == chess.Black {
		sq = sq.FlipRank()
		c = c.Opposite()
	}
	return sq, int(c)
}
