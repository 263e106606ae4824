package chess

import "errors"

// Errors returned by Builder.Build and ParseFEN.
var (
	ErrUnbuildable  = errors.New("chess: unbuildable position")
	ErrMalformedFEN = errors.New("chess: malformed FEN")
	ErrInvalidPiece = errors.New("chess: invalid piece letter")
	ErrInvalidColor = errors.New("chess: invalid side-to-move letter")
)
