package bucket

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nnuepipe/marlinpipe/internal/chess"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestNoBucketingAlwaysZero(t *testing.T) {
	b, err := chess.ParseFEN(startFEN)
	require.NoError(t, err)
	require.EqualValues(t, 0, NoBucketing.Bucket(b))
	require.Equal(t, 1, NoBucketing.Count())
}

func TestPieceCountStartingPosition(t *testing.T) {
	b, err := chess.ParseFEN(startFEN)
	require.NoError(t, err)
	// occupied_count = 32, bucket = min(7, 31/4) = 7 (spec.md §8 scenario).
	require.EqualValues(t, 7, PieceCount.Bucket(b))
	require.Equal(t, 8, PieceCount.Count())
}

func TestModifiedMaterialRange(t *testing.T) {
	b, err := chess.ParseFEN(startFEN)
	require.NoError(t, err)
	got := ModifiedMaterial.Bucket(b)
	require.GreaterOrEqual(t, got, int32(0))
	require.Less(t, got, int32(16))
	require.Equal(t, 16, ModifiedMaterial.Count())
}

func TestModifiedMaterialKingsOnlyIsBucketZero(t *testing.T) {
	b, err := chess.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	require.EqualValues(t, 0, ModifiedMaterial.Bucket(b))
}

func TestSchemeValid(t *testing.T) {
	require.True(t, NoBucketing.Valid())
	require.True(t, ModifiedMaterial.Valid())
	require.True(t, PieceCount.Valid())
	require.False(t, Scheme(99).Valid())
}
