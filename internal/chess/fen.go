package chess

import (
	"fmt"
	"strconv"
	"strings"
)

var figureFromLetter = map[byte]Figure{
	'p': Pawn, 'n': Knight, 'b': Bishop, 'r': Rook, 'q': Queen, 'k': King,
}

// ParseFEN parses Forsyth-Edwards Notation into a Board, grounded on the
// original Boychesser implementation's fen_parse crate: it accepts both
// classical castling letters (KQkq) and Chess-960 file-letter notation
// (e.g. "AHah"), since spec.md §3 requires castling rights to be
// file-addressed for Chess-960 support.
func ParseFEN(fen string) (*Board, error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 fields, got %d", ErrMalformedFEN, len(fields))
	}

	bld := NewBuilder()

	if err := parsePlacement(bld, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		bld.SetSideToMove(White)
	case "b":
		bld.SetSideToMove(Black)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, fields[1])
	}

	whiteRights, blackRights, err := parseCastling(bld, fields[2])
	if err != nil {
		return nil, err
	}
	bld.SetCastleRights(White, whiteRights)
	bld.SetCastleRights(Black, blackRights)

	epFile := int8(-1)
	if fields[3] != "-" {
		if len(fields[3]) < 1 || fields[3][0] < 'a' || fields[3][0] > 'h' {
			return nil, fmt.Errorf("%w: bad en-passant field %q", ErrMalformedFEN, fields[3])
		}
		epFile = int8(fields[3][0] - 'a')
	}
	bld.SetEnPassantFile(epFile)

	halfmove := uint8(0)
	if len(fields) >= 5 {
		n, err := strconv.Atoi(fields[4])
		if err == nil && n >= 0 && n < 256 {
			halfmove = uint8(n)
		}
	}
	bld.SetHalfmoveClock(halfmove)

	fullmove := uint16(1)
	if len(fields) >= 6 {
		n, err := strconv.Atoi(fields[5])
		if err == nil && n > 0 && n < 1<<16 {
			fullmove = uint16(n)
		}
	}
	bld.SetFullmoveNumber(fullmove)

	return bld.Build()
}

func parsePlacement(bld *Builder, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: expected 8 ranks, got %d", ErrMalformedFEN, len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i // FEN lists rank 8 first
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= 8 {
				return fmt.Errorf("%w: rank %d overflows", ErrMalformedFEN, rank+1)
			}
			lower := byte(ch)
			color := White
			if ch >= 'a' && ch <= 'z' {
				color = Black
			} else {
				lower = lower + 32
			}
			fig, ok := figureFromLetter[lower]
			if !ok {
				return fmt.Errorf("%w: %q", ErrInvalidPiece, string(ch))
			}
			bld.SetPiece(NewSquare(file, rank), NewPiece(color, fig))
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d files", ErrMalformedFEN, rank+1, file)
		}
	}
	return nil
}

// parseCastling derives each side's rook files from the castling field.
// For classical K/Q letters it locates the outermost rook on that side's
// back rank relative to the king, matching how an unmoved-rook nibble is
// resolved on unpack (§9: "file of its square fills the long-side right
// if no king has yet been seen ... else the short-side right").
func parseCastling(bld *Builder, field string) (white, black CastleRights, err error) {
	white, black = NoCastleRights, NoCastleRights
	if field == "-" {
		return white, black, nil
	}
	for _, ch := range field {
		switch {
		case ch == 'K':
			f, e := outermostRookFile(bld, White, true)
			if e != nil {
				return white, black, e
			}
			white.ShortFile = f
		case ch == 'Q':
			f, e := outermostRookFile(bld, White, false)
			if e != nil {
				return white, black, e
			}
			white.LongFile = f
		case ch == 'k':
			f, e := outermostRookFile(bld, Black, true)
			if e != nil {
				return white, black, e
			}
			black.ShortFile = f
		case ch == 'q':
			f, e := outermostRookFile(bld, Black, false)
			if e != nil {
				return white, black, e
			}
			black.LongFile = f
		case ch >= 'A' && ch <= 'H':
			white = assignByFile(white, bld, White, int8(ch-'A'))
		case ch >= 'a' && ch <= 'h':
			black = assignByFile(black, bld, Black, int8(ch-'a'))
		default:
			return white, black, fmt.Errorf("%w: bad castling letter %q", ErrMalformedFEN, string(ch))
		}
	}
	return white, black, nil
}

// outermostRookFile finds, on c's back rank, the rook furthest in the
// kingside (short=true) or queenside (short=false) direction relative to
// the king.
func outermostRookFile(bld *Builder, c Color, short bool) (int8, error) {
	rank := 0
	if c == Black {
		rank = 7
	}
	kingFile := -1
	for file := 0; file < 8; file++ {
		p := bld.b.pieces[NewSquare(file, rank)]
		if p != NoPiece && p.Color() == c && p.Figure() == King {
			kingFile = file
		}
	}
	if kingFile < 0 {
		return 0, fmt.Errorf("%w: no king for castling rights", ErrUnbuildable)
	}
	best := -1
	for file := 0; file < 8; file++ {
		p := bld.b.pieces[NewSquare(file, rank)]
		if p == NoPiece || p.Color() != c || p.Figure() != Rook {
			continue
		}
		if short && file > kingFile {
			if best < 0 || file > best {
				best = file
			}
		}
		if !short && file < kingFile {
			if best < 0 || file < best {
				best = file
			}
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("%w: no rook for castling rights", ErrUnbuildable)
	}
	return int8(best), nil
}

func assignByFile(rights CastleRights, bld *Builder, c Color, file int8) CastleRights {
	rank := 0
	if c == Black {
		rank = 7
	}
	kingFile := -1
	for f := 0; f < 8; f++ {
		p := bld.b.pieces[NewSquare(f, rank)]
		if p != NoPiece && p.Color() == c && p.Figure() == King {
			kingFile = f
		}
	}
	if int(file) > kingFile {
		rights.ShortFile = file
	} else {
		rights.LongFile = file
	}
	return rights
}
