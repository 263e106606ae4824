package packed

import "errors"

// Errors returned by Unpack when a record violates a structural invariant
// (spec.md §4.A's failure semantics: the caller drops the record and
// continues, it never aborts the stream).
var (
	ErrShortRecord  = errors.New("packed: record shorter than 32 bytes")
	ErrUnknownColor = errors.New("packed: nibble names an unknown color")
	ErrUnknownPiece = errors.New("packed: nibble names an unknown piece code")
	ErrZeroFullmove = errors.New("packed: fullmove_number is zero")
)
