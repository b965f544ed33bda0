//go:build windows

package webgpu

import (
	"testing"

	"github.com/born-ml/ndindex/internal/backend/cpu"
	"github.com/born-ml/ndindex/internal/engine/enginetest"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := New()
	if err != nil {
		t.Logf("WebGPU not available: %v", err)
		t.Skip("WebGPU not available on this system")
	}
	t.Cleanup(backend.Release)
	return backend
}

func TestIsAvailable(t *testing.T) {
	t.Logf("WebGPU available: %v", IsAvailable())
}

func TestConformance(t *testing.T) {
	enginetest.Run(t, newBackend(t))
}

func TestScatter_MatchesCPU(t *testing.T) {
	backend := newBackend(t)
	ref := cpu.New()

	const rows = 5000
	ids := make([]int64, rows)
	vals := make([]float32, rows)
	for i := range ids {
		ids[i] = int64((i * 7919) % 613)
		vals[i] = float32((i*31)%97) - 48.5
	}
	indices, err := tensor.FromSlice(ids, tensor.Shape{rows}, tensor.DefaultDevice)
	require.NoError(t, err)
	updates, err := tensor.FromSlice(vals, tensor.Shape{rows}, tensor.DefaultDevice)
	require.NoError(t, err)

	for _, mode := range []reduce.Mode{reduce.Sum, reduce.Min, reduce.Max} {
		t.Run(mode.String(), func(t *testing.T) {
			want, err := ref.ScatterFlat(indices, updates, 700, mode)
			require.NoError(t, err)
			got, err := backend.ScatterFlat(indices, updates, 700, mode)
			require.NoError(t, err)
			assert.Equal(t, want.AsFloat32(), got.AsFloat32())
		})
	}
}

func TestGroupByDestination(t *testing.T) {
	order, starts := groupByDestination([]int{2, 0, 2, 1, 2}, 4)
	assert.Equal(t, []int{0, 1, 2, 5, 5}, starts)
	assert.Equal(t, []int{1, 3, 0, 2, 4}, order)
}
