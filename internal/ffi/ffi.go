// Package ffi is the Go-side implementation behind the C ABI surface of
// spec.md §4.F. It mints runtime/cgo.Handle values for readers and
// batches — opaque, non-pointer tokens safe to hand across the cgo
// boundary — the way the teacher's testc packages cross the cgo
// boundary in the opposite direction (importing C rather than exporting
// to it; see cmd/libmarlinpipe, which does the actual `import "C"` and
// `//export` wiring around these functions).
package ffi

import (
	"runtime/cgo"
	"unsafe"

	"github.com/nnuepipe/marlinpipe/internal/batch"
	"github.com/nnuepipe/marlinpipe/internal/bucket"
	"github.com/nnuepipe/marlinpipe/internal/features"
	"github.com/nnuepipe/marlinpipe/internal/reader"
)

// ReaderHandle and BatchHandle are the opaque tokens exposed across the
// ABI as `*reader`/`*batch` (illustrative C types per spec.md §4.F).
type ReaderHandle = cgo.Handle
type BatchHandle = cgo.Handle

// readerState pairs a Reader with the handle of the batch it most
// recently returned, so that handle can be retired on the next
// ReadBatch call — matching the lifetime contract "batch pointers... are
// valid until the next read_batch call or batch_reader_drop" (spec.md
// §4.F) rather than leaking one handle per call.
type readerState struct {
	r        *reader.Reader
	lastBatch BatchHandle
	hasLast  bool
}

// NewReader opens path and returns a handle usable with the rest of
// this package's functions. An invalid feature set or bucket scheme tag
// is a caller error, not a null-returning FFI case (spec.md §7 reserves
// null-on-invalid-tag for the three standalone get_* functions below).
func NewReader(path string, batchSize int, set features.Set, scheme bucket.Scheme) (ReaderHandle, error) {
	r, err := reader.New(reader.DefaultConfig(path, batchSize, set, scheme))
	if err != nil {
		return 0, err
	}
	return cgo.NewHandle(&readerState{r: r}), nil
}

// DatasetSize returns the handle's underlying record count.
func DatasetSize(h ReaderHandle) uint64 {
	return h.Value().(*readerState).r.DatasetSize()
}

// DropReader closes the reader and deletes h and its last-issued batch
// handle, if any.
func DropReader(h ReaderHandle) error {
	st := h.Value().(*readerState)
	if st.hasLast {
		st.lastBatch.Delete()
	}
	err := st.r.Close()
	h.Delete()
	return err
}

// ReadBatch returns the next batch's handle, or ok == false once the
// stream is exhausted (spec.md §4.F's `read_batch` returning null).
func ReadBatch(h ReaderHandle) (bh BatchHandle, ok bool, err error) {
	st := h.Value().(*readerState)
	if st.hasLast {
		st.lastBatch.Delete()
		st.hasLast = false
	}
	b, err := st.r.ReadBatch()
	if err != nil {
		return 0, false, err
	}
	if b == nil {
		return 0, false, nil
	}
	bh = cgo.NewHandle(b)
	st.lastBatch = bh
	st.hasLast = true
	return bh, true, nil
}

func batchOf(h BatchHandle) *batch.Batch { return h.Value().(*batch.Batch) }

// BatchCapacity returns the batch's fixed entry capacity.
func BatchCapacity(h BatchHandle) uint32 { return uint32(batchOf(h).Capacity()) }

// BatchLen returns the batch's filled entry count.
func BatchLen(h BatchHandle) uint32 { return uint32(batchOf(h).Entries()) }

// BatchTotalFeatures returns the stm lane's feature_count (spec.md
// §4.F's batch_get_total_features; the nstm lane always matches it for
// the dual-lane, dense-padded feature sets this surface targets).
func BatchTotalFeatures(h BatchHandle) uint32 { return uint32(batchOf(h).LaneFeatureCount(0)) }

// BatchIndicesPerFeature returns 1 (dense) or 2 (sparse COO).
func BatchIndicesPerFeature(h BatchHandle) uint32 { return uint32(batchOf(h).IndicesPerFeature()) }

// BatchSTMFeatureBuffer returns a pointer to lane 0's feature-id column.
func BatchSTMFeatureBuffer(h BatchHandle) unsafe.Pointer {
	return int32Ptr(batchOf(h).LaneFeatureIDs(0))
}

// BatchNSTMFeatureBuffer returns a pointer to lane 1's feature-id column.
func BatchNSTMFeatureBuffer(h BatchHandle) unsafe.Pointer {
	return int32Ptr(batchOf(h).LaneFeatureIDs(1))
}

// BatchValuesBuffer returns a pointer to lane 0's feature-value column.
func BatchValuesBuffer(h BatchHandle) unsafe.Pointer {
	return float32Ptr(batchOf(h).LaneValues(0))
}

// BatchCPPtr returns a pointer to the cp target column.
func BatchCPPtr(h BatchHandle) unsafe.Pointer { return float32Ptr(batchOf(h).CP()) }

// BatchWDLPtr returns a pointer to the wdl target column.
func BatchWDLPtr(h BatchHandle) unsafe.Pointer { return float32Ptr(batchOf(h).WDL()) }

// BatchBucketPtr returns a pointer to the bucket-id column.
func BatchBucketPtr(h BatchHandle) unsafe.Pointer { return int32Ptr(batchOf(h).BucketIDs()) }

// InputFeatureSetMaxFeatures returns 0 for an invalid set tag rather
// than aborting the process (spec.md §7).
func InputFeatureSetMaxFeatures(set features.Set) uint32 {
	if !set.Valid() {
		return 0
	}
	return uint32(set.MaxFeatures())
}

// InputFeatureSetIndicesPerFeature returns 0 for an invalid set tag.
func InputFeatureSetIndicesPerFeature(set features.Set) uint32 {
	if !set.Valid() {
		return 0
	}
	return uint32(set.IndicesPerFeature())
}

// BucketingSchemeGetBucketCount returns 0 for an invalid scheme tag.
func BucketingSchemeGetBucketCount(scheme bucket.Scheme) uint32 {
	if !scheme.Valid() {
		return 0
	}
	return uint32(scheme.Count())
}

func int32Ptr(s []int32) unsafe.Pointer {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Pointer(&s[0])
}

func float32Ptr(s []float32) unsafe.Pointer {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Pointer(&s[0])
}
