package ffi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nnuepipe/marlinpipe/internal/bucket"
	"github.com/nnuepipe/marlinpipe/internal/chess"
	"github.com/nnuepipe/marlinpipe/internal/features"
	"github.com/nnuepipe/marlinpipe/internal/packed"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func writeDataset(t *testing.T, n int) string {
	t.Helper()
	b, err := chess.ParseFEN(startFEN)
	require.NoError(t, err)
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	var buf []byte
	for i := 0; i < n; i++ {
		rec := packed.Pack(b, int16(10+i), 2, 0)
		buf = append(buf, rec[:]...)
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestReaderLifecycle(t *testing.T) {
	path := writeDataset(t, 5)
	h, err := NewReader(path, 4, features.Board768, bucket.NoBucketing)
	require.NoError(t, err)
	require.EqualValues(t, 5, DatasetSize(h))

	total := 0
	for {
		bh, ok, err := ReadBatch(h)
		require.NoError(t, err)
		if !ok {
			break
		}
		total += int(BatchLen(bh))
		require.NotNil(t, BatchCPPtr(bh))
		require.EqualValues(t, BatchCapacity(bh), 4)
	}
	require.Equal(t, 5, total)
	require.NoError(t, DropReader(h))
}

func TestInvalidTagsReturnZero(t *testing.T) {
	require.EqualValues(t, 0, InputFeatureSetMaxFeatures(features.Set(99)))
	require.EqualValues(t, 0, InputFeatureSetIndicesPerFeature(features.Set(99)))
	require.EqualValues(t, 0, BucketingSchemeGetBucketCount(bucket.Scheme(99)))
}

func TestFeatureSetAndBucketSchemeAccessors(t *testing.T) {
	require.EqualValues(t, 32, InputFeatureSetMaxFeatures(features.Board768))
	require.EqualValues(t, 1, InputFeatureSetIndicesPerFeature(features.Board768))
	require.EqualValues(t, 8, BucketingSchemeGetBucketCount(bucket.PieceCount))
}
