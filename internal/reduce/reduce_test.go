package reduce

import (
	"math"
	"testing"

	"github.com/born-ml/ndindex/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"sum", "SUM", " min ", "max"} {
		m, err := ParseMode(s)
		require.NoError(t, err, s)
		assert.NoError(t, m.Validate())
	}

	_, err := ParseMode("mean")
	assert.ErrorIs(t, err, tensor.ErrUnsupportedReduction)
	assert.Contains(t, err.Error(), `"mean"`)

	err = Mode(7).Validate()
	assert.ErrorIs(t, err, tensor.ErrUnsupportedReduction)
	assert.Contains(t, err.Error(), `"Mode(7)"`)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"sentinel", Sentinel},
		{"touched-mask", TouchedMask},
		{"MASK", TouchedMask},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.NotContains(t, got.String(), "Strategy(")
	}
	assert.Equal(t, "Strategy(5)", Strategy(5).String())

	_, err := ParseStrategy("lazy")
	assert.Error(t, err)
}

func TestCombine(t *testing.T) {
	assert.Equal(t, float32(7), Combine[float32](3, 4, Sum))
	assert.Equal(t, int64(3), Combine[int64](3, 4, Min))
	assert.Equal(t, int32(4), Combine[int32](3, 4, Max))
	assert.True(t, math.IsNaN(Combine(1.0, math.NaN(), Max)), "NaN should propagate")
}

func TestSeed(t *testing.T) {
	s32, masked := Seed[float32](Min, Sentinel)
	assert.False(t, masked)
	assert.Equal(t, float32(1e12), s32)

	s64, masked := Seed[int64](Max, Sentinel)
	assert.False(t, masked)
	assert.Equal(t, int64(-1e12), s64)

	_, masked = Seed[int32](Min, Sentinel)
	assert.True(t, masked, "int32 cannot hold the sentinel")

	_, masked = Seed[float64](Max, TouchedMask)
	assert.True(t, masked)

	zero, masked := Seed[float64](Sum, TouchedMask)
	assert.False(t, masked)
	assert.Zero(t, zero)
}

func TestAccumulator(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		offsets []int
		updates []float32
		size    int
		want    []float32
	}{
		{name: "sum collisions", mode: Sum, offsets: []int{0, 1, 0}, updates: []float32{3, 4, 5}, size: 3, want: []float32{8, 4, 0}},
		{name: "max untouched is zero", mode: Max, offsets: []int{0, 1}, updates: []float32{3, 4}, size: 3, want: []float32{3, 4, 0}},
		{name: "min collisions", mode: Min, offsets: []int{2, 2, 0}, updates: []float32{5, -1, 9}, size: 4, want: []float32{9, 0, -1, 0}},
		{name: "max negative values", mode: Max, offsets: []int{1, 1}, updates: []float32{-7, -3}, size: 2, want: []float32{0, -3}},
		{name: "empty updates", mode: Min, offsets: nil, updates: nil, size: 3, want: []float32{0, 0, 0}},
	}

	for _, strategy := range []Strategy{Sentinel, TouchedMask} {
		for _, tt := range tests {
			t.Run(strategy.String()+"/"+tt.name, func(t *testing.T) {
				acc, err := NewAccumulator[float32](tt.mode, strategy, tt.size)
				require.NoError(t, err)
				acc.AddAll(tt.offsets, tt.updates)
				assert.Equal(t, tt.want, acc.Finish())
			})
		}
	}
}

func TestAccumulator_SentinelValueReadsAsZero(t *testing.T) {
	// An update equal to the sentinel cannot be told apart from "untouched".
	acc, err := NewAccumulator[float64](Min, Sentinel, 2)
	require.NoError(t, err)
	acc.AddAll([]int{0, 1}, []float64{MinSentinel, 2})
	assert.Equal(t, []float64{0, 2}, acc.Finish())

	// The mask strategy keeps it.
	acc, err = NewAccumulator[float64](Min, TouchedMask, 2)
	require.NoError(t, err)
	acc.AddAll([]int{0, 1}, []float64{MinSentinel, 2})
	assert.Equal(t, []float64{MinSentinel, 2}, acc.Finish())
}

func TestAccumulator_Int32(t *testing.T) {
	acc, err := NewAccumulator[int32](Max, Sentinel, 3)
	require.NoError(t, err)
	acc.AddAll([]int{0, 0, 2}, []int32{math.MinInt32, -5, 7})
	assert.Equal(t, []int32{-5, 0, 7}, acc.Finish())
}

func TestAccumulator_Invalid(t *testing.T) {
	_, err := NewAccumulator[float32](Mode(9), Sentinel, 3)
	assert.ErrorIs(t, err, tensor.ErrUnsupportedReduction)

	_, err = NewAccumulator[float32](Sum, Sentinel, -1)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestEmulate_MatchesAccumulator(t *testing.T) {
	offsets := []int{3, 0, 3, 5, 0, 3}
	updates := []float64{1.5, -2, 4, 1e12, -8, -0.5}

	for _, strategy := range []Strategy{Sentinel, TouchedMask} {
		for _, mode := range []Mode{Sum, Min, Max} {
			t.Run(strategy.String()+"/"+mode.String(), func(t *testing.T) {
				acc, err := NewAccumulator[float64](mode, strategy, 7)
				require.NoError(t, err)
				acc.AddAll(offsets, updates)
				want := acc.Finish()

				got := make([]float64, 7)
				require.NoError(t, Emulate(got, offsets, updates, mode, strategy))
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestEmulate_LengthMismatch(t *testing.T) {
	err := Emulate(make([]int64, 2), []int{0}, []int64{1, 2}, Max, Sentinel)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}
