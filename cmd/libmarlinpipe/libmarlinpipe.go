// Command libmarlinpipe builds the C-ABI shared library named by spec.md
// §4.F. It is a thin //export wrapper around internal/ffi: every exported
// function here marshals C arguments into Go values, calls the package,
// and marshals the result back, matching the teacher's testc packages'
// cgo boundary conventions but on the opposite side of the wire — those
// import C, this one is imported by it.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/nnuepipe/marlinpipe/internal/bucket"
	"github.com/nnuepipe/marlinpipe/internal/features"
	"github.com/nnuepipe/marlinpipe/internal/ffi"
)

func main() {} // unused; required by `go build -buildmode=c-shared`

//export batch_reader_new
func batch_reader_new(path *C.char, batchSize C.uint32_t, featureSet C.uint32_t, bucketScheme C.uint32_t) C.uintptr_t {
	h, err := ffi.NewReader(C.GoString(path), int(batchSize), features.Set(featureSet), bucket.Scheme(bucketScheme))
	if err != nil {
		return 0
	}
	return C.uintptr_t(h)
}

//export batch_reader_dataset_size
func batch_reader_dataset_size(h C.uintptr_t) C.uint64_t {
	return C.uint64_t(ffi.DatasetSize(ffi.ReaderHandle(h)))
}

//export batch_reader_drop
func batch_reader_drop(h C.uintptr_t) {
	ffi.DropReader(ffi.ReaderHandle(h))
}

//export read_batch
func read_batch(h C.uintptr_t) C.uintptr_t {
	bh, ok, err := ffi.ReadBatch(ffi.ReaderHandle(h))
	if err != nil || !ok {
		return 0
	}
	return C.uintptr_t(bh)
}

//export batch_get_capacity
func batch_get_capacity(h C.uintptr_t) C.uint32_t {
	return C.uint32_t(ffi.BatchCapacity(ffi.BatchHandle(h)))
}

//export batch_get_len
func batch_get_len(h C.uintptr_t) C.uint32_t {
	return C.uint32_t(ffi.BatchLen(ffi.BatchHandle(h)))
}

//export batch_get_total_features
func batch_get_total_features(h C.uintptr_t) C.uint32_t {
	return C.uint32_t(ffi.BatchTotalFeatures(ffi.BatchHandle(h)))
}

//export batch_get_indices_per_feature
func batch_get_indices_per_feature(h C.uintptr_t) C.uint32_t {
	return C.uint32_t(ffi.BatchIndicesPerFeature(ffi.BatchHandle(h)))
}

//export batch_get_stm_feature_buffer_ptr
func batch_get_stm_feature_buffer_ptr(h C.uintptr_t) unsafe.Pointer {
	return ffi.BatchSTMFeatureBuffer(ffi.BatchHandle(h))
}

//export batch_get_nstm_feature_buffer_ptr
func batch_get_nstm_feature_buffer_ptr(h C.uintptr_t) unsafe.Pointer {
	return ffi.BatchNSTMFeatureBuffer(ffi.BatchHandle(h))
}

//export batch_get_values_ptr
func batch_get_values_ptr(h C.uintptr_t) unsafe.Pointer {
	return ffi.BatchValuesBuffer(ffi.BatchHandle(h))
}

//export batch_get_cp_ptr
func batch_get_cp_ptr(h C.uintptr_t) unsafe.Pointer {
	return ffi.BatchCPPtr(ffi.BatchHandle(h))
}

//export batch_get_wdl_ptr
func batch_get_wdl_ptr(h C.uintptr_t) unsafe.Pointer {
	return ffi.BatchWDLPtr(ffi.BatchHandle(h))
}

//export batch_get_bucket_ptr
func batch_get_bucket_ptr(h C.uintptr_t) unsafe.Pointer {
	return ffi.BatchBucketPtr(ffi.BatchHandle(h))
}

//export input_feature_set_get_max_features
func input_feature_set_get_max_features(set C.uint32_t) C.uint32_t {
	return C.uint32_t(ffi.InputFeatureSetMaxFeatures(features.Set(set)))
}

//export input_feature_set_get_indices_per_feature
func input_feature_set_get_indices_per_feature(set C.uint32_t) C.uint32_t {
	return C.uint32_t(ffi.InputFeatureSetIndicesPerFeature(features.Set(set)))
}

//export bucketing_scheme_get_bucket_count
func bucketing_scheme_get_bucket_count(scheme C.uint32_t) C.uint32_t {
	return C.uint32_t(ffi.BucketingSchemeGetBucketCount(bucket.Scheme(scheme)))
}
