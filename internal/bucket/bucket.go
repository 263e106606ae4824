// Package bucket implements the three deterministic board-to-bucket
// schemes of spec.md §4.C. Each scheme is a pure function of a decoded
// board; there is no per-board state, so — following the teacher's
// preference for tagged variants dispatched once per outer loop rather
// than per-element virtual calls (spec.md §9, mirrored from the
// teacher's FormatType enum in internal/container) — Scheme is a small
// closed enum, not an interface.
package bucket

import "github.com/nnuepipe/marlinpipe/internal/chess"

// Scheme identifies one of the closed set of bucketing schemes.
type Scheme int

const (
	NoBucketing Scheme = iota
	ModifiedMaterial
	PieceCount

	schemeArraySize = int(iota)
)

// Count returns K, the number of distinct buckets the scheme produces.
func (s Scheme) Count() int {
	switch s {
	case NoBucketing:
		return 1
	case ModifiedMaterial:
		return 16
	case PieceCount:
		return 8
	default:
		return 0
	}
}

// Valid reports whether s names one of the closed set of schemes.
func (s Scheme) Valid() bool { return s >= 0 && int(s) < schemeArraySize }

// Bucket computes board's bucket id under the scheme, in [0, s.Count()).
func (s Scheme) Bucket(b *chess.Board) int32 {
	switch s {
	case ModifiedMaterial:
		return modifiedMaterialBucket(b)
	case PieceCount:
		return pieceCountBucket(b)
	default:
		return 0
	}
}

// materialValue is the per-figure weight spec.md §4.C's ModifiedMaterial
// scheme uses: pawns=1, knights/bishops=3, rooks=5, queens=8 (kings excluded).
var materialValue = [chess.FigureArraySize]int{
	chess.NoFigure: 0,
	chess.Pawn:     1,
	chess.Knight:   3,
	chess.Bishop:   3,
	chess.Rook:     5,
	chess.Queen:    8,
	chess.King:     0,
}

func modifiedMaterialBucket(b *chess.Board) int32 {
	material := 0
	for sq := chess.Square(0); sq < 64; sq++ {
		p := b.PieceOn(sq)
		if p == chess.NoPiece {
			continue
		}
		material += materialValue[p.Figure()]
	}
	bucket := material * 16 / 76
	if bucket > 15 {
		bucket = 15
	}
	if bucket < 0 {
		bucket = 0
	}
	return int32(bucket)
}

func pieceCountBucket(b *chess.Board) int32 {
	occupied := b.Occupied().Count()
	bucket := (occupied - 1) / 4
	if bucket > 7 {
		bucket = 7
	}
	if bucket < 0 {
		bucket = 0
	}
	return int32(bucket)
}
