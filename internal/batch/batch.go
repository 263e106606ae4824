// Package batch implements the fixed-capacity columnar Batch container of
// spec.md §3/§4.D: one or more sparse tensor lanes plus parallel cp/wdl
// targets and a per-entry bucket id. Batches are meant to be pool-recycled
// (internal/reader cycles them through "full"/"reuse" channels) rather
// than allocated per read, so New is the only allocation point and Clear
// resets state without releasing memory.
package batch

// IndicesPerFeature selects how a lane records which features are active
// for a row: Sparse emits (row, feature) pairs of arbitrary count per row
// (COO layout); Dense emits a fixed MAX_FEATURES-wide slot per row with
// unused slots padded to -1 (spec.md §4.B's writer contract).
type IndicesPerFeature int

const (
	Sparse IndicesPerFeature = 2
	Dense  IndicesPerFeature = 1
)

// lane holds one tensor lane's feature-index and feature-value columns.
type lane struct {
	// Dense layout: featureIDs has capacity*maxFeatures slots, row r's
	// slots are [r*maxFeatures, (r+1)*maxFeatures), pre-filled with -1.
	// Sparse layout: featureIDs/rowIndices/values grow by append, one
	// entry per AddFeature call.
	featureIDs []int32
	rowIndices []int32 // sparse only
	values     []float32
	fillInRow  int // dense only: slots used so far in the open row
}

// Batch is a fixed-capacity, pre-allocated holder for one generation's
// worth of decoded, feature-projected training examples.
type Batch struct {
	capacity          int
	maxFeatures       int
	indicesPerFeature IndicesPerFeature
	entries           int

	lanes []lane

	cp        []float32
	wdl       []float32
	bucketIDs []int32
}

// New allocates a Batch with room for capacity entries, up to maxFeatures
// active features per entry per lane, tensorsPerBoard independent lanes,
// and the given index layout.
func New(capacity, maxFeatures int, indicesPerFeature IndicesPerFeature, tensorsPerBoard int) *Batch {
	b := &Batch{
		capacity:          capacity,
		maxFeatures:       maxFeatures,
		indicesPerFeature: indicesPerFeature,
		lanes:             make([]lane, tensorsPerBoard),
		cp:                make([]float32, capacity),
		wdl:               make([]float32, capacity),
		bucketIDs:         make([]int32, capacity),
	}
	for i := range b.lanes {
		b.allocLane(&b.lanes[i])
	}
	return b
}

func (b *Batch) allocLane(l *lane) {
	if b.indicesPerFeature == Dense {
		n := b.capacity * b.maxFeatures
		l.featureIDs = make([]int32, n)
		l.values = make([]float32, n)
		fillNegOne(l.featureIDs)
	} else {
		n := b.capacity * b.maxFeatures
		l.featureIDs = make([]int32, 0, n)
		l.rowIndices = make([]int32, 0, n)
		l.values = make([]float32, 0, n)
	}
}

func fillNegOne(s []int32) {
	for i := range s {
		s[i] = -1
	}
}

// Clear resets entries and every lane's feature_count to zero. Memory
// stays allocated (spec.md §3).
func (b *Batch) Clear() {
	b.entries = 0
	for i := range b.lanes {
		l := &b.lanes[i]
		l.fillInRow = 0
		if b.indicesPerFeature == Dense {
			fillNegOne(l.featureIDs)
			for j := range l.values {
				l.values[j] = 0
			}
		} else {
			l.featureIDs = l.featureIDs[:0]
			l.rowIndices = l.rowIndices[:0]
			l.values = l.values[:0]
		}
	}
}

// Capacity returns the batch's fixed entry capacity.
func (b *Batch) Capacity() int { return b.capacity }

// Entries returns how many rows have been filled so far.
func (b *Batch) Entries() int { return b.entries }

// MaxFeatures returns the per-entry, per-lane feature bound.
func (b *Batch) MaxFeatures() int { return b.maxFeatures }

// IndicesPerFeature returns the lane index layout (Sparse or Dense).
func (b *Batch) IndicesPerFeature() IndicesPerFeature { return b.indicesPerFeature }

// TensorsPerBoard returns the number of independent tensor lanes.
func (b *Batch) TensorsPerBoard() int { return len(b.lanes) }

// CP returns the cp target column, valid for [0, Entries()).
func (b *Batch) CP() []float32 { return b.cp[:b.entries] }

// WDL returns the wdl target column, valid for [0, Entries()).
func (b *Batch) WDL() []float32 { return b.wdl[:b.entries] }

// BucketIDs returns the bucket id column, valid for [0, Entries()).
func (b *Batch) BucketIDs() []int32 { return b.bucketIDs[:b.entries] }

// LaneFeatureIDs returns lane i's feature-id column. In Dense mode this is
// always capacity*maxFeatures long (padded with -1); in Sparse mode it is
// exactly FeatureCount(i) long.
func (b *Batch) LaneFeatureIDs(i int) []int32 { return b.lanes[i].featureIDs }

// LaneRowIndices returns lane i's row-index column (Sparse mode only; nil
// in Dense mode, since a row is implied by position).
func (b *Batch) LaneRowIndices(i int) []int32 { return b.lanes[i].rowIndices }

// LaneValues returns lane i's feature-value column, parallel to
// LaneFeatureIDs(i).
func (b *Batch) LaneValues(i int) []float32 { return b.lanes[i].values }

// LaneFeatureCount returns lane i's feature_count: the number of (row,
// feature) pairs actually written in Sparse mode, or entries*maxFeatures
// (every row's full padded width) in Dense mode.
func (b *Batch) LaneFeatureCount(i int) int {
	if b.indicesPerFeature == Dense {
		return b.entries * b.maxFeatures
	}
	return len(b.lanes[i].featureIDs)
}

// Writer is the contract feature-set projectors (internal/features) use
// to append active features for the entry currently open on a Batch
// (spec.md §4.B).
type Writer interface {
	AddFeature(lane int, featureID int32, value float32)
}

// EntryWriter is returned by MakeEntry; it appends features for exactly
// the row it was created for.
type EntryWriter struct {
	b   *Batch
	row int
}

// Row returns the entry's row index within the batch.
func (w *EntryWriter) Row() int { return w.row }

// AddFeature appends one (feature, value) pair to lane for this entry's
// row. In Dense mode it panics if more than MaxFeatures() features are
// added for one row-lane — a feature-set bug, not a data problem, since
// spec.md §8.5 requires every feature set to stay within its own
// MAX_FEATURES bound.
func (w *EntryWriter) AddFeature(laneIdx int, featureID int32, value float32) {
	l := &w.b.lanes[laneIdx]
	if w.b.indicesPerFeature == Dense {
		if l.fillInRow >= w.b.maxFeatures {
			panic("batch: feature set exceeded MaxFeatures for one entry")
		}
		slot := w.row*w.b.maxFeatures + l.fillInRow
		l.featureIDs[slot] = featureID
		l.values[slot] = value
		l.fillInRow++
		return
	}
	l.featureIDs = append(l.featureIDs, featureID)
	l.rowIndices = append(l.rowIndices, int32(w.row))
	l.values = append(l.values, value)
}

// MakeEntry reserves the next row for cp/wdl/bucket targets and returns a
// Writer tied to that row. entries is incremented before MakeEntry
// returns, so feature writes through the returned Writer record the
// correct (now-observable) row, per spec.md §4.D's invariant.
func (b *Batch) MakeEntry(cp, wdl float32, bucketID int32) *EntryWriter {
	row := b.entries
	b.entries++
	b.cp[row] = cp
	b.wdl[row] = wdl
	b.bucketIDs[row] = bucketID
	for i := range b.lanes {
		b.lanes[i].fillInRow = 0
	}
	return &EntryWriter{b: b, row: row}
}
