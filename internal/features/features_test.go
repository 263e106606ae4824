package features

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nnuepipe/marlinpipe/internal/chess"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// recorder is a minimal batch.Writer that just remembers every call, so
// tests can inspect indices without going through a real Batch.
type recorder struct {
	lane  []int
	index []int32
	value []float32
}

func (r *recorder) AddFeature(lane int, featureID int32, value float32) {
	r.lane = append(r.lane, lane)
	r.index = append(r.index, featureID)
	r.value = append(r.value, value)
}

func (r *recorder) laneCount(lane int) int {
	n := 0
	for _, l := range r.lane {
		if l == lane {
			n++
		}
	}
	return n
}

func mustParse(t *testing.T, fen string) *chess.Board {
	t.Helper()
	b, err := chess.ParseFEN(fen)
	require.NoError(t, err)
	return b
}

func TestBoard768StartingPositionWorkedExample(t *testing.T) {
	b := mustParse(t, startFEN)
	r := &recorder{}
	Board768.AddFeatures(b, r)

	require.Equal(t, 32, r.laneCount(0))
	require.Equal(t, 32, r.laneCount(1))

	// The a1 white rook (square 0, figure Rook code 3): stm (white)
	// lane gets 0*384 + 3*64 + 0; nstm (black) lane gets
	// 1*384 + 3*64 + (0 XOR 56).
	a1 := chess.NewSquare(0, 0)
	wantSTM := int32(0*384 + 3*64 + int(a1))
	wantNSTM := int32(1*384 + 3*64 + int(a1.FlipRank()))
	require.Contains(t, indicesForLane(r, 0), wantSTM)
	require.Contains(t, indicesForLane(r, 1), wantNSTM)
}

func indicesForLane(r *recorder, lane int) []int32 {
	var out []int32
	for i, l := range r.lane {
		if l == lane {
			out = append(out, r.index[i])
		}
	}
	return out
}

func valuesForLane(r *recorder, lane int) []float32 {
	var out []float32
	for i, l := range r.lane {
		if l == lane {
			out = append(out, r.value[i])
		}
	}
	return out
}

func TestBoard768PerspectiveSymmetry(t *testing.T) {
	// A position with black to move should produce the same feature
	// multiset as the mirror-image white-to-move position, just with
	// stm/nstm lanes swapped (spec.md §8.4).
	white := mustParse(t, startFEN)
	black := mustParse(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")

	rw, rb := &recorder{}, &recorder{}
	Board768.AddFeatures(white, rw)
	Board768.AddFeatures(black, rb)

	require.ElementsMatch(t, indicesForLane(rw, 0), indicesForLane(rb, 1))
	require.ElementsMatch(t, indicesForLane(rw, 1), indicesForLane(rb, 0))
}

func TestBoard768Deterministic(t *testing.T) {
	b := mustParse(t, startFEN)
	r1, r2 := &recorder{}, &recorder{}
	Board768.AddFeatures(b, r1)
	Board768.AddFeatures(b, r2)
	require.Equal(t, r1.index, r2.index)
	require.Equal(t, r1.lane, r2.lane)
}

func TestHalfKpExcludesKings(t *testing.T) {
	b := mustParse(t, startFEN)
	r := &recorder{}
	HalfKp.AddFeatures(b, r)
	// 32 occupied squares minus 2 kings = 30 per lane.
	require.Equal(t, 30, r.laneCount(0))
	require.Equal(t, 30, r.laneCount(1))
	for _, idx := range r.index {
		require.GreaterOrEqual(t, idx, int32(0))
		require.Less(t, idx, int32(HalfKp.FeatureSpace()))
	}
}

func TestHalfKaIncludesKings(t *testing.T) {
	b := mustParse(t, startFEN)
	r := &recorder{}
	HalfKa.AddFeatures(b, r)
	require.Equal(t, 32, r.laneCount(0))
	require.Equal(t, 32, r.laneCount(1))
	for _, idx := range r.index {
		require.GreaterOrEqual(t, idx, int32(0))
		require.Less(t, idx, int32(HalfKa.FeatureSpace()))
	}
}

func TestHmStmBoard192FourLanesBounded(t *testing.T) {
	b := mustParse(t, startFEN)
	r := &recorder{}
	HmStmBoard192.AddFeatures(b, r)

	total := 0
	for lane := 0; lane < 4; lane++ {
		n := r.laneCount(lane)
		total += n
		require.LessOrEqual(t, n, HmStmBoard192.MaxFeatures())
	}
	require.Equal(t, 32, total)
	for _, idx := range r.index {
		require.GreaterOrEqual(t, idx, int32(0))
		require.Less(t, idx, int32(HmStmBoard192.FeatureSpace()))
	}
}

func TestHmStmBoard192AppliesColorRankFlip(t *testing.T) {
	// A white pawn on e2 and a black pawn on e7 sit on each color's own
	// "2nd rank" once rank is flipped by color, so they must land on the
	// same index (in different lanes, keyed by color/stm).
	b := mustParse(t, "4k3/4p3/8/8/8/8/4P3/4K3 w - - 0 1")
	r := &recorder{}
	HmStmBoard192.AddFeatures(b, r)

	const wantIdx = int32(3*48 + 1*6 + 0) // halfFile=3, rank=1, pawn=0

	require.Contains(t, indicesForLane(r, 3), wantIdx, "white pawn (stm, e-file) should land on rank-1 index")
	require.Contains(t, indicesForLane(r, 2), wantIdx, "black pawn (non-stm, e-file) should land on the same index once its rank is flipped")
}

func TestPhasedStmBoard384WritesPhaseAndComplementCopies(t *testing.T) {
	b := mustParse(t, startFEN)
	r := &recorder{}
	PhasedStmBoard384.AddFeatures(b, r)

	// 16 pieces per side, each written twice (phase copy, 1-phase copy
	// at index+384) into its color's own/enemy lane.
	require.Equal(t, 32, r.laneCount(0))
	require.Equal(t, 32, r.laneCount(1))
	for _, idx := range r.index {
		require.GreaterOrEqual(t, idx, int32(0))
		require.Less(t, idx, int32(PhasedStmBoard384.FeatureSpace()))
	}

	// Every index below 384 has a matching index+384 counterpart, and
	// vice versa: each physical feature is split across exactly two
	// weighted copies within the same lane.
	for lane := 0; lane < 2; lane++ {
		indices := indicesForLane(r, lane)
		seen := make(map[int32]bool, len(indices))
		for _, idx := range indices {
			seen[idx] = true
		}
		for _, idx := range indices {
			if idx < 384 {
				require.True(t, seen[idx+384], "missing 1-phase copy of %d", idx)
			} else {
				require.True(t, seen[idx-384], "missing phase copy of %d", idx)
			}
		}
	}

	// Starting position phase is near 1 (full material); copies below
	// 384 should carry weight close to phase, copies at +384 close to
	// 1-phase.
	phase := b.Phase()
	for i, idx := range r.index {
		if idx < 384 {
			require.InDelta(t, phase, r.value[i], 1e-6)
		} else {
			require.InDelta(t, 1-phase, r.value[i], 1e-6)
		}
	}
}

func TestIce4StaysWithinFeatureSpace(t *testing.T) {
	b := mustParse(t, startFEN)
	r := &recorder{}
	Ice4.AddFeatures(b, r)
	for _, idx := range r.index {
		require.GreaterOrEqual(t, idx, int32(0))
		require.Less(t, idx, int32(Ice4.FeatureSpace()))
	}
}

func TestMaxFeaturesBoundsHold(t *testing.T) {
	b := mustParse(t, startFEN)
	for s := Set(0); s.Valid(); s++ {
		r := &recorder{}
		s.AddFeatures(b, r)
		for lane := 0; lane < s.TensorsPerBoard(); lane++ {
			require.LessOrEqualf(t, r.laneCount(lane), s.MaxFeatures(), "set %d lane %d", s, lane)
		}
	}
}

func TestSetValid(t *testing.T) {
	require.True(t, Board768.Valid())
	require.True(t, Ice4.Valid())
	require.False(t, Set(99).Valid())
}
