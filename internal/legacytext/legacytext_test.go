package legacytext

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nnuepipe/marlinpipe/internal/packed"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestParseLineTruncatesFractionalCP(t *testing.T) {
	_, cp, _, err := ParseLine(startFEN + " | 12.9 | 1.0")
	require.NoError(t, err)
	require.EqualValues(t, 12, cp)
}

func TestParseLineSaturatesOutOfRangeCP(t *testing.T) {
	_, cp, _, err := ParseLine(startFEN + " | 999999 | 0.5")
	require.NoError(t, err)
	require.EqualValues(t, 32767, cp)

	_, cp, _, err = ParseLine(startFEN + " | -999999 | 0.5")
	require.NoError(t, err)
	require.EqualValues(t, -32768, cp)
}

func TestParseLineQuantizesWDL(t *testing.T) {
	cases := []struct {
		wdl  string
		want uint8
	}{
		{"0", 0},
		{"0.24", 0},
		{"0.25", 1},
		{"0.5", 1},
		{"0.74", 1},
		{"0.75", 2},
		{"1", 2},
	}
	for _, c := range cases {
		_, _, wdl, err := ParseLine(startFEN + " | 0 | " + c.wdl)
		require.NoError(t, err)
		require.Equalf(t, c.want, wdl, "wdl=%s", c.wdl)
	}
}

func TestParseLineRejectsMalformedRow(t *testing.T) {
	_, _, _, err := ParseLine(startFEN + " | 0")
	require.Error(t, err)
}

func TestConvertWritesOnePackedRecordPerLine(t *testing.T) {
	input := strings.Join([]string{
		startFEN + " | 0 | 1.0",
		"",
		startFEN + " | -50.5 | 0.1",
	}, "\n")

	var out bytes.Buffer
	n, err := Convert(strings.NewReader(input), &out)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, out.Bytes(), 2*packed.Size)

	ab, err := packed.Unpack(out.Bytes()[packed.Size:])
	require.NoError(t, err)
	require.EqualValues(t, -50, ab.Eval)
	require.EqualValues(t, 0, ab.WDL)
}

func TestConvertStopsAtFirstMalformedLine(t *testing.T) {
	input := startFEN + " | 0 | 1.0\nnot a record\n"
	var out bytes.Buffer
	n, err := Convert(strings.NewReader(input), &out)
	require.Error(t, err)
	require.Equal(t, 1, n)
}
