package dataset

import "errors"

// ErrTooFewInputs is returned by Interleave when fewer than two input
// files are given (spec.md §6's CLI surface: "≥2 inputs required").
var ErrTooFewInputs = errors.New("dataset: interleave requires at least 2 input files")
