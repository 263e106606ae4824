// Package packed implements the 32-byte "marlinformat" packed-board codec
// (spec.md §3, §4.A): a bit-exact, little-endian encoding of one chess
// position plus its training annotations (eval, WDL, a free extra byte).
//
// The layout is fixed-width and flat, unlike the teacher's chunked RIFF
// container (internal/container), so there is no incremental parser here
// — pack and unpack each process exactly Size bytes in one pass.
package packed

import (
	"encoding/binary"
	"fmt"

	"github.com/nnuepipe/marlinpipe/internal/bitio"
	"github.com/nnuepipe/marlinpipe/internal/chess"
)

// Size is the fixed length, in bytes, of one packed record.
const Size = 32

// AnnotatedBoard is the transient decoded form produced by Unpack and
// consumed by feature projection. It is never persisted (spec.md §3).
type AnnotatedBoard struct {
	Board *chess.Board
	Eval  int16 // signed centipawns, white's perspective
	WDL   uint8 // 0 = black win, 1 = draw, 2 = white win
	Extra uint8
}

// pieceCode maps a chess.Figure (Pawn=1..King=6) to its packed nibble code
// (0..5); 6 is reserved for the unmoved-rook sentinel.
func pieceCode(f chess.Figure) uint8 { return uint8(f) - 1 }

func figureFromCode(code uint8) (chess.Figure, bool) {
	if code > 5 {
		return 0, false
	}
	return chess.Figure(code + 1), true
}

const unmovedRookCode = 6

// backRank is the 0-indexed rank a color's rooks start on: rank 0 for
// white, rank 7 for black.
func backRank(c chess.Color) int {
	if c == chess.Black {
		return 7
	}
	return 0
}

// Pack encodes a board plus its training annotations into Size bytes.
// It iterates occupied squares LSB-first (a1 first) exactly as Unpack
// expects to read them back, and promotes a rook's nibble to the
// unmoved-rook sentinel only when the rook sits on its color's back
// rank and its file matches the king-relative castling-rights file for
// that side (short if the rook is east of the king, long if west),
// exactly as the reference packer disambiguates the two (spec.md §4.A,
// §9).
func Pack(b *chess.Board, eval int16, wdl uint8, extra uint8) [Size]byte {
	var raw [Size]byte

	occ := b.Occupied()
	binary.LittleEndian.PutUint64(raw[0:8], uint64(occ))

	nw := bitio.NewNibbleWriter(raw[8:24])
	for bb := occ; bb != 0; {
		var sq chess.Square
		sq, bb = bb.NextSquare()
		p := b.PieceOn(sq)
		color := p.Color()
		fig := p.Figure()

		if fig == chess.Rook && sq.Rank() == backRank(color) {
			rights := b.CastleRights(color)
			file := int8(sq.File())
			var castlingFile int8 = -1
			if king := b.King(color); king < sq {
				castlingFile = rights.ShortFile
			} else {
				castlingFile = rights.LongFile
			}
			if castlingFile == file {
				nw.WriteNibble(uint8(color)<<3 | unmovedRookCode)
				continue
			}
		}
		nw.WriteNibble(uint8(color)<<3 | pieceCode(fig))
	}
	nw.Flush()

	var stmBit uint8
	if b.SideToMove() == chess.Black {
		stmBit = 0x80
	}
	epSq := uint8(64)
	if ep := b.EnPassant(); ep != chess.NoSquare {
		epSq = uint8(ep)
	}
	raw[24] = stmBit | (epSq & 0x7f)
	raw[25] = b.HalfmoveClock()
	binary.LittleEndian.PutUint16(raw[26:28], b.FullmoveNumber())
	binary.LittleEndian.PutUint16(raw[28:30], uint16(eval))
	raw[30] = wdl
	raw[31] = extra

	return raw
}

// Unpack decodes a Size-byte record. It rejects records that violate a
// structural invariant — unknown color code, unknown piece code, zero
// fullmove_number, or an unbuildable position — returning (nil, err) so
// the caller can skip and continue (spec.md §4.A, §7).
func Unpack(raw []byte) (*AnnotatedBoard, error) {
	if len(raw) < Size {
		return nil, ErrShortRecord
	}

	occ := chess.Bitboard(binary.LittleEndian.Uint64(raw[0:8]))
	bld := chess.NewBuilder()

	var seenKing [chess.ColorArraySize]bool
	var shortFile, longFile [chess.ColorArraySize]int8
	shortFile[chess.White], longFile[chess.White] = -1, -1
	shortFile[chess.Black], longFile[chess.Black] = -1, -1

	nr := bitio.NewNibbleReader(raw[8:24])
	for bb := occ; bb != 0; {
		var sq chess.Square
		sq, bb = bb.NextSquare()
		nib := nr.ReadNibble()

		colorBits := nib >> 3
		if colorBits > 1 {
			return nil, fmt.Errorf("%w: %d", ErrUnknownColor, colorBits)
		}
		color := chess.Color(colorBits)
		code := nib & 0x7

		if code == unmovedRookCode {
			file := int8(sq.File())
			if !seenKing[color] {
				longFile[color] = file
			} else {
				shortFile[color] = file
			}
			bld.SetPiece(sq, chess.NewPiece(color, chess.Rook))
			continue
		}

		fig, ok := figureFromCode(code)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownPiece, code)
		}
		if fig == chess.King {
			seenKing[color] = true
		}
		bld.SetPiece(sq, chess.NewPiece(color, fig))
	}

	bld.SetCastleRights(chess.White, chess.CastleRights{ShortFile: shortFile[chess.White], LongFile: longFile[chess.White]})
	bld.SetCastleRights(chess.Black, chess.CastleRights{ShortFile: shortFile[chess.Black], LongFile: longFile[chess.Black]})

	stmByte := raw[24]
	stm := chess.White
	if stmByte&0x80 != 0 {
		stm = chess.Black
	}
	bld.SetSideToMove(stm)

	epSq := stmByte & 0x7f
	if epSq == 64 {
		bld.SetEnPassantFile(-1)
	} else {
		bld.SetEnPassantFile(int8(epSq % 8))
	}

	bld.SetHalfmoveClock(raw[25])
	fullmove := binary.LittleEndian.Uint16(raw[26:28])
	if fullmove == 0 {
		return nil, ErrZeroFullmove
	}
	bld.SetFullmoveNumber(fullmove)

	board, err := bld.Build()
	if err != nil {
		return nil, err
	}

	eval := int16(binary.LittleEndian.Uint16(raw[28:30]))
	wdl := raw[30]
	extra := raw[31]

	return &AnnotatedBoard{Board: board, Eval: eval, WDL: wdl, Extra: extra}, nil
}
