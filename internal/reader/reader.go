// Package reader implements the background producer / parallel-decode
// batch reader of spec.md §4.E: one goroutine reads and decodes packed
// records into batches, two bounded channels hand filled and recycled
// batch generations back and forth with the consumer.
package reader

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nnuepipe/marlinpipe/internal/batch"
	"github.com/nnuepipe/marlinpipe/internal/bucket"
	"github.com/nnuepipe/marlinpipe/internal/chess"
	"github.com/nnuepipe/marlinpipe/internal/features"
	"github.com/nnuepipe/marlinpipe/internal/packed"
	"github.com/nnuepipe/marlinpipe/internal/pool"
)

// maxEvalCP is the |cp| > 3000 filter of spec.md §4.E.
const maxEvalCP = 3000

// Config configures a Reader. There is no package-level default: callers
// build one with DefaultConfig and adjust fields as needed, the way the
// teacher's webp decoder threads an explicit options struct through
// rather than relying on global state.
type Config struct {
	Path            string
	Capacity        int // batch_size: entries per batch
	FeatureSet      features.Set
	BucketScheme    bucket.Scheme
	BufferedBatches int // batches per generation; 64 in the reference
	Workers         int // decode goroutines per generation; GOMAXPROCS if <= 0

	// Progress receives periodic operator-visible notices (truncated
	// trailing record byte counts, and the like) the way the teacher's
	// cmd/gwebp reports encode/decode status to os.Stderr — a pure codec
	// library has nothing to log, but a long-running background reader
	// does. Defaults to io.Discard.
	Progress io.Writer
}

// DefaultConfig returns a Config with BufferedBatches and Workers set to
// their reference defaults.
func DefaultConfig(path string, capacity int, set features.Set, scheme bucket.Scheme) Config {
	return Config{
		Path:            path,
		Capacity:        capacity,
		FeatureSet:      set,
		BucketScheme:    scheme,
		BufferedBatches: 64,
		Progress:        io.Discard,
	}
}

// Reader streams a packed-board dataset file into feature-projected
// batches. Create with New; call ReadBatch until it returns a nil batch
// (stream exhausted); call Close when done.
type Reader struct {
	cfg         Config
	f           *os.File
	datasetSize uint64

	full  chan []*batch.Batch
	reuse chan []*batch.Batch

	cancel context.CancelFunc

	current []*batch.Batch
	idx     int
}

// New opens path and starts the background producer.
func New(cfg Config) (*Reader, error) {
	if cfg.BufferedBatches <= 0 {
		cfg.BufferedBatches = 64
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}

	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Reader{
		cfg:         cfg,
		f:           f,
		datasetSize: uint64(fi.Size()) / packed.Size,
		full:        make(chan []*batch.Batch, 2),
		reuse:       make(chan []*batch.Batch, 2),
		cancel:      cancel,
	}

	maxFeatures := cfg.FeatureSet.MaxFeatures()
	indicesPerFeature := cfg.FeatureSet.IndicesPerFeature()
	tensorsPerBoard := cfg.FeatureSet.TensorsPerBoard()
	for g := 0; g < 2; g++ {
		gen := make([]*batch.Batch, cfg.BufferedBatches)
		for i := range gen {
			gen[i] = batch.New(cfg.Capacity, maxFeatures, indicesPerFeature, tensorsPerBoard)
		}
		r.reuse <- gen
	}

	go r.run(ctx)
	return r, nil
}

// DatasetSize returns the number of packed records in the file, computed
// from the file length divided by the packed record size (spec.md §4.F).
func (r *Reader) DatasetSize() uint64 { return r.datasetSize }

// Close cancels the producer and releases the underlying file. In-flight
// decode work for the current chunk is allowed to finish; no further
// generation is read (spec.md §4.E's cancellation semantics).
func (r *Reader) Close() error {
	r.cancel()
	for range r.full {
		// Drain so the producer's blocked send (if any) can complete and
		// its goroutine can observe ctx.Done and exit.
	}
	return r.f.Close()
}

// ReadBatch returns the next filled batch, or (nil, nil) once the file
// is exhausted. The batch returned is only valid until the next call to
// ReadBatch, at which point its memory may be recycled back to the
// producer for a future generation.
func (r *Reader) ReadBatch() (*batch.Batch, error) {
	if r.current != nil && r.idx == len(r.current) {
		// The last batch of this generation was handed out by the previous
		// call and is no longer in use: recycle the generation now.
		gen := r.current
		r.current = nil
		r.reuse <- gen
	}
	if r.current != nil {
		b := r.current[r.idx]
		r.idx++
		return b, nil
	}

	gen, ok := <-r.full
	if !ok {
		return nil, nil
	}
	if len(gen) == 0 {
		// Trailing partial record truncated to nothing: hand the
		// generation straight back so the producer isn't starved.
		r.reuse <- gen
		return r.ReadBatch()
	}
	r.current = gen
	r.idx = 0
	return r.ReadBatch()
}

func (r *Reader) run(ctx context.Context) {
	defer close(r.full)

	for {
		var gen []*batch.Batch
		select {
		case gen = <-r.reuse:
		case <-ctx.Done():
			return
		}
		// A generation recycled after a short (EOF-bounded) round may
		// have been trimmed to fewer than BufferedBatches batches;
		// restore full length before reuse (capacity is unchanged by
		// slicing, so the trimmed batches are still there).
		gen = gen[:cap(gen)]
		for _, b := range gen {
			b.Clear()
		}

		maxBytes := r.cfg.BufferedBatches * r.cfg.Capacity * packed.Size
		buf := pool.Get(maxBytes)

		n := readFull(r.f, buf)
		if n == 0 {
			pool.Put(buf)
			return
		}
		if trailing := n % packed.Size; trailing != 0 {
			fmt.Fprintf(r.cfg.Progress, "reader: truncating %d trailing bytes (partial record)\n", trailing)
			n -= trailing
		}
		records := n / packed.Size

		numChunks := (records + r.cfg.Capacity - 1) / r.cfg.Capacity
		if numChunks > len(gen) {
			numChunks = len(gen)
		}
		used := gen[:numChunks]

		decodeChunks(ctx, r.cfg, buf, records, used)
		pool.Put(buf)

		select {
		case r.full <- used:
		case <-ctx.Done():
			return
		}
	}
}

// decodeChunks fans the generation's batches out over an errgroup, one
// task per chunk of Capacity records (spec.md §4.E's "parallel-for over
// batch-sized chunks"), with at most cfg.Workers tasks running at once.
func decodeChunks(ctx context.Context, cfg Config, buf []byte, records int, gen []*batch.Batch) {
	g, _ := errgroup.WithContext(ctx)
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i, b := range gen {
		i, b := i, b
		start := i * cfg.Capacity
		end := start + cfg.Capacity
		if end > records {
			end = records
		}
		g.Go(func() error {
			decodeChunk(cfg, buf, start, end, b)
			return nil
		})
	}
	_ = g.Wait()
}

func decodeChunk(cfg Config, buf []byte, start, end int, b *batch.Batch) {
	for rec := start; rec < end; rec++ {
		raw := buf[rec*packed.Size : (rec+1)*packed.Size]
		ab, err := packed.Unpack(raw)
		if err != nil {
			continue
		}

		cp := float32(ab.Eval)
		wdlCode := ab.WDL
		if ab.Board.SideToMove() == chess.Black {
			cp = -cp
			wdlCode = 2 - wdlCode
		}
		if cp > maxEvalCP || cp < -maxEvalCP {
			continue
		}
		wdl := float32(wdlCode) / 2

		bucketID := cfg.BucketScheme.Bucket(ab.Board)
		w := b.MakeEntry(cp, wdl, bucketID)
		cfg.FeatureSet.AddFeatures(ab.Board, w)
	}
}

// readFull reads until buf is full, f hits EOF, or a read returns 0
// bytes with no error (which os.File never does, but a general io.Reader
// might).
func readFull(f *os.File, buf []byte) int {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil || n == 0 {
			break
		}
	}
	return total
}
