// Package legacytext converts the legacy line-oriented text dataset format
// into packed-board records (spec.md §6): one position per line, written as
//
//	<FEN> | <cp> | <wdl>
//
// with cp signed float centipawns and wdl a float in [0,1], both white's
// perspective — the same convention packed.AnnotatedBoard uses internally.
package legacytext

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nnuepipe/marlinpipe/internal/chess"
	"github.com/nnuepipe/marlinpipe/internal/packed"
)

// ParseLine decodes one "<FEN> | <cp> | <wdl>" line into a board and its
// packed annotations. cp is truncated toward zero if fractional and
// saturated to the int16 range if out of bounds; wdl is quantized to the
// packed 0/1/2 code via <0.25 → 0, <0.75 → 1, else 2.
func ParseLine(line string) (*chess.Board, int16, uint8, error) {
	fields := strings.Split(line, "|")
	if len(fields) != 3 {
		return nil, 0, 0, fmt.Errorf("legacytext: want 3 fields separated by '|', got %d", len(fields))
	}

	fen := strings.TrimSpace(fields[0])
	b, err := chess.ParseFEN(fen)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("legacytext: %w", err)
	}

	cpF, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("legacytext: parsing cp: %w", err)
	}
	wdlF, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("legacytext: parsing wdl: %w", err)
	}

	return b, saturateCP(cpF), quantizeWDL(wdlF), nil
}

func saturateCP(cp float64) int16 {
	cp = math.Trunc(cp)
	switch {
	case cp > math.MaxInt16:
		return math.MaxInt16
	case cp < math.MinInt16:
		return math.MinInt16
	default:
		return int16(cp)
	}
}

func quantizeWDL(wdl float64) uint8 {
	switch {
	case wdl < 0.25:
		return 0
	case wdl < 0.75:
		return 1
	default:
		return 2
	}
}

// Convert reads legacy-text lines from r and writes packed 32-byte records
// to w, one per non-blank line. It returns the number of records written.
// A line that fails to parse is a hard error: unlike packed.Unpack's
// skip-and-continue policy, the text format has no framing to resynchronize
// on, so one bad line aborts the whole conversion.
func Convert(r io.Reader, w io.Writer) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		b, cp, wdl, err := ParseLine(line)
		if err != nil {
			return n, fmt.Errorf("legacytext: line %d: %w", lineNo, err)
		}
		rec := packed.Pack(b, cp, wdl, 0)
		if _, err := w.Write(rec[:]); err != nil {
			return n, err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, err
	}
	return n, nil
}
