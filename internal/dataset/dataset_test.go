package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nnuepipe/marlinpipe/internal/chess"
	"github.com/nnuepipe/marlinpipe/internal/packed"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func writeRecords(t *testing.T, path string, evals []int16) {
	t.Helper()
	b, err := chess.ParseFEN(startFEN)
	require.NoError(t, err)
	var buf []byte
	for _, e := range evals {
		rec := packed.Pack(b, e, 1, 0)
		buf = append(buf, rec[:]...)
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func readEvals(t *testing.T, path string) []int16 {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Zero(t, len(raw)%packed.Size)
	var out []int16
	for i := 0; i < len(raw); i += packed.Size {
		ab, err := packed.Unpack(raw[i : i+packed.Size])
		require.NoError(t, err)
		out = append(out, ab.Eval)
	}
	return out
}

func TestInterleaveRequiresAtLeastTwoInputs(t *testing.T) {
	dir := t.TempDir()
	err := Interleave([]string{filepath.Join(dir, "a.bin")}, filepath.Join(dir, "out.bin"), nil)
	require.ErrorIs(t, err, ErrTooFewInputs)
}

func TestInterleavePreservesEveryRecord(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	out := filepath.Join(dir, "out.bin")

	writeRecords(t, a, []int16{1, 2, 3})
	writeRecords(t, b, []int16{100})

	require.NoError(t, Interleave([]string{a, b}, out, nil))

	got := readEvals(t, out)
	require.Len(t, got, 4)
	require.ElementsMatch(t, []int16{1, 2, 3, 100}, got)

	count100 := 0
	for _, e := range got {
		if e == 100 {
			count100++
		}
	}
	require.Equal(t, 1, count100)
}

func TestShufflePreservesEveryRecord(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bin")
	out := filepath.Join(dir, "out.bin")

	evals := make([]int16, 50)
	for i := range evals {
		evals[i] = int16(i)
	}
	writeRecords(t, in, evals)

	cfg := DefaultShuffleConfig(in, out)
	cfg.BlockSize = 8
	cfg.GroupSize = 3
	require.NoError(t, Shuffle(cfg))

	got := readEvals(t, out)
	require.ElementsMatch(t, evals, got)
}

func TestShuffleEmptyInputProducesEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "empty.bin")
	out := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(in, nil, 0o644))

	cfg := DefaultShuffleConfig(in, out)
	require.NoError(t, Shuffle(cfg))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Empty(t, raw)
}
