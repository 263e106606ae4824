package chess

// Board is a static chess position: piece placement, side to move,
// castling rights (by rook file, §3), en-passant target file, halfmove
// clock and fullmove number. It exposes exactly the read surface spec.md
// §9 names for the chess move-gen collaborator and nothing else — no
// move generation, no legality checking.
type Board struct {
	pieces [64]Piece // NoPiece where empty
	occ    Bitboard
	byColor [ColorArraySize]Bitboard

	stm Color

	castle  [ColorArraySize]CastleRights
	epFile  int8 // -1 if none
	epSq    Square

	halfmoveClock   uint8
	fullmoveNumber  uint16
}

// Occupied returns the bitboard of all occupied squares.
func (b *Board) Occupied() Bitboard { return b.occ }

// ByColor returns the bitboard of squares occupied by c.
func (b *Board) ByColor(c Color) Bitboard { return b.byColor[c] }

// PieceOn returns the piece on sq, or NoPiece.
func (b *Board) PieceOn(sq Square) Piece { return b.pieces[sq] }

// ColorOn returns the color of the piece on sq. Only valid if PieceOn(sq)
// != NoPiece.
func (b *Board) ColorOn(sq Square) Color { return b.pieces[sq].Color() }

// King returns the square of c's king, or NoSquare if c has none.
func (b *Board) King(c Color) Square {
	for bb := b.byColor[c]; bb != 0; {
		var sq Square
		sq, bb = bb.NextSquare()
		if b.pieces[sq].Figure() == King {
			return sq
		}
	}
	return NoSquare
}

// CastleRights returns c's remaining castling rights.
func (b *Board) CastleRights(c Color) CastleRights { return b.castle[c] }

// SideToMove returns the color to move.
func (b *Board) SideToMove() Color { return b.stm }

// EnPassant returns the en-passant target square, or NoSquare if none.
func (b *Board) EnPassant() Square { return b.epSq }

// EnPassantFile returns the en-passant target file, or -1 if none.
func (b *Board) EnPassantFile() int8 { return b.epFile }

// HalfmoveClock returns the 50-move counter.
func (b *Board) HalfmoveClock() uint8 { return b.halfmoveClock }

// FullmoveNumber returns the move number (non-zero).
func (b *Board) FullmoveNumber() uint16 { return b.fullmoveNumber }

// Phase returns the game-phase fraction in [0, 1] used by phase-split
// feature sets: (knights + bishops + 2*rooks + 4*queens) / 24, per
// spec.md §4.B.
func (b *Board) Phase() float32 {
	var weighted int
	for sq := Square(0); sq < 64; sq++ {
		p := b.pieces[sq]
		if p == NoPiece {
			continue
		}
		switch p.Figure() {
		case Knight, Bishop:
			weighted += 1
		case Rook:
			weighted += 2
		case Queen:
			weighted += 4
		}
	}
	phase := float32(weighted) / 24.0
	if phase > 1 {
		phase = 1
	}
	return phase
}

// Equal reports whether two boards describe the identical position,
// including castling rights, en-passant, clocks and side to move. Used by
// the packed-board round-trip property test (spec.md §8.1).
func (b *Board) Equal(o *Board) bool {
	if b.stm != o.stm || b.epFile != o.epFile || b.halfmoveClock != o.halfmoveClock || b.fullmoveNumber != o.fullmoveNumber {
		return false
	}
	if b.castle != o.castle {
		return false
	}
	return b.pieces == o.pieces
}

// Builder incrementally constructs a Board, mirroring how PackedBoard's
// unpack operation (§4.A) re-establishes a position one occupied square at
// a time while it also discovers castling rights from unmoved-rook
// sentinels.
type Builder struct {
	b Board
}

// NewBuilder returns an empty builder with no pieces, no castling rights,
// white to move, no en-passant, and fullmove number 1.
func NewBuilder() *Builder {
	bld := &Builder{}
	bld.b.epFile = -1
	bld.b.epSq = NoSquare
	bld.b.castle[White] = NoCastleRights
	bld.b.castle[Black] = NoCastleRights
	bld.b.fullmoveNumber = 1
	for i := range bld.b.pieces {
		bld.b.pieces[i] = NoPiece
	}
	return bld
}

// SetPiece places p on sq. sq must not already be occupied.
func (bld *Builder) SetPiece(sq Square, p Piece) *Builder {
	bld.b.pieces[sq] = p
	bld.b.occ |= 1 << uint(sq)
	bld.b.byColor[p.Color()] |= 1 << uint(sq)
	return bld
}

// SetSideToMove sets the side to move.
func (bld *Builder) SetSideToMove(c Color) *Builder {
	bld.b.stm = c
	return bld
}

// SetCastleRights sets c's castling rights.
func (bld *Builder) SetCastleRights(c Color, rights CastleRights) *Builder {
	bld.b.castle[c] = rights
	return bld
}

// SetEnPassantFile sets the en-passant target file (-1 for none); the
// target square is derived from the side to move at Build time (spec.md
// describes only the file, §3's stm_ep_square).
func (bld *Builder) SetEnPassantFile(file int8) *Builder {
	bld.b.epFile = file
	return bld
}

// SetHalfmoveClock sets the 50-move counter.
func (bld *Builder) SetHalfmoveClock(n uint8) *Builder {
	bld.b.halfmoveClock = n
	return bld
}

// SetFullmoveNumber sets the move number. Must be non-zero at Build time.
func (bld *Builder) SetFullmoveNumber(n uint16) *Builder {
	bld.b.fullmoveNumber = n
	return bld
}

// Build validates and returns the constructed board. It rejects a
// fullmove number of zero (spec.md §4.A: "zero fullmove_number" is a
// structural-invariant violation) and a position in which either side's
// king is entirely absent (an unbuildable position).
func (bld *Builder) Build() (*Board, error) {
	if bld.b.fullmoveNumber == 0 {
		return nil, ErrUnbuildable
	}
	if bld.b.King(White) == NoSquare || bld.b.King(Black) == NoSquare {
		return nil, ErrUnbuildable
	}
	if bld.b.epFile >= 0 {
		epRank := 5 // rank index (0-based) of the en-passant target square for white-to-move captures (rank 6 algebraic)
		if bld.b.stm == Black {
			epRank = 2 // rank 3 algebraic, black to move
		}
		bld.b.epSq = NewSquare(int(bld.b.epFile), epRank)
	}
	out := bld.b
	return &out, nil
}
