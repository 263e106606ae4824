// Package dataset implements the two out-of-core dataset utilities of
// spec.md §4.H: interleave (probability-proportional-to-remaining merge
// of N packed files) and shuffle (block-shuffle plus multi-level
// group-interleave) for files too large to hold in memory.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/nnuepipe/marlinpipe/internal/packed"
)

// Progress is called periodically during Interleave/Shuffle with the
// number of records written so far and the total expected.
type Progress func(written, total uint64)

const progressInterval = 4096

// Interleave merges the packed-board files named by paths into output,
// drawing one record at a time from a file chosen with probability
// proportional to that file's remaining record count (spec.md §4.H).
func Interleave(paths []string, output string, progress Progress) error {
	if len(paths) < 2 {
		return ErrTooFewInputs
	}
	return interleaveFiles(paths, output, progress)
}

func interleaveFiles(paths []string, output string, progress Progress) error {
	readers := make([]*bufio.Reader, len(paths))
	files := make([]*os.File, len(paths))
	remaining := make([]uint64, len(paths))
	var total uint64

	for i, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll(files)
			return fmt.Errorf("dataset: open %q: %w", p, err)
		}
		fi, err := f.Stat()
		if err != nil {
			closeAll(files)
			return fmt.Errorf("dataset: stat %q: %w", p, err)
		}
		files[i] = f
		readers[i] = bufio.NewReader(f)
		remaining[i] = uint64(fi.Size()) / packed.Size
		total += remaining[i]
	}
	defer closeAll(files)

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("dataset: create %q: %w", output, err)
	}
	w := bufio.NewWriter(out)

	var rec [packed.Size]byte
	var written, left uint64
	for _, r := range remaining {
		left += r
	}

	for left > 0 {
		idx := weightedPick(remaining, left)
		if _, err := io.ReadFull(readers[idx], rec[:]); err != nil {
			w.Flush()
			out.Close()
			return fmt.Errorf("dataset: read from %q: %w", paths[idx], err)
		}
		if _, err := w.Write(rec[:]); err != nil {
			out.Close()
			return fmt.Errorf("dataset: write %q: %w", output, err)
		}
		remaining[idx]--
		left--
		written++
		if progress != nil && written%progressInterval == 0 {
			progress(written, total)
		}
	}

	if err := w.Flush(); err != nil {
		out.Close()
		return err
	}
	if progress != nil {
		progress(written, total)
	}
	return out.Close()
}

// weightedPick draws an index in [0, len(remaining)) with probability
// proportional to remaining[i], given their precomputed sum left.
func weightedPick(remaining []uint64, left uint64) int {
	r := uint64(rand.Int63n(int64(left)))
	var cum uint64
	for i, n := range remaining {
		cum += n
		if r < cum {
			return i
		}
	}
	return len(remaining) - 1 // unreachable unless left mis-tracked
}

func closeAll(files []*os.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}
