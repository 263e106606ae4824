package quantize

import "errors"

// Errors returned by ParseParams and Convert.
var (
	ErrRaggedTensor     = errors.New("quantize: ragged 2-D tensor")
	ErrNonNumericElement = errors.New("quantize: non-numeric tensor element")
	ErrEmptyTensor      = errors.New("quantize: empty tensor")
)
