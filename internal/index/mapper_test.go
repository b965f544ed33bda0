package index

import (
	"errors"
	"testing"

	"github.com/born-ml/ndindex/internal/parallel"
	"github.com/born-ml/ndindex/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexTensor(t *testing.T, data []int64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, shape, tensor.DefaultDevice)
	require.NoError(t, err)
	return raw
}

func TestComputeOffsets(t *testing.T) {
	tests := []struct {
		name    string
		indices []int64
		shape   tensor.Shape
		target  tensor.Shape
		want    []int
	}{
		{
			name:    "full rank 2D",
			indices: []int64{0, 1, 1, 0},
			shape:   tensor.Shape{2, 2},
			target:  tensor.Shape{2, 2},
			want:    []int{1, 2},
		},
		{
			name:    "flat",
			indices: []int64{0, 1, 0},
			shape:   tensor.Shape{3, 1},
			target:  tensor.Shape{3},
			want:    []int{0, 1, 0},
		},
		{
			name:    "row prefix spans trailing dim",
			indices: []int64{2, 0},
			shape:   tensor.Shape{2, 1},
			target:  tensor.Shape{3, 4},
			want:    []int{8, 9, 10, 11, 0, 1, 2, 3},
		},
		{
			name:    "3D prefix of two dims",
			indices: []int64{1, 2},
			shape:   tensor.Shape{1, 2},
			target:  tensor.Shape{2, 3, 2},
			want:    []int{10, 11},
		},
		{
			name:    "batched indices",
			indices: []int64{0, 0, 1, 1, 2, 2, 0, 2},
			shape:   tensor.Shape{2, 2, 2},
			target:  tensor.Shape{3, 3},
			want:    []int{0, 4, 8, 2},
		},
		{
			name:    "zero index dims addresses everything",
			indices: []int64{},
			shape:   tensor.Shape{1, 0},
			target:  tensor.Shape{2, 2},
			want:    []int{0, 1, 2, 3},
		},
		{
			name:    "no rows",
			indices: []int64{},
			shape:   tensor.Shape{0, 1},
			target:  tensor.Shape{5},
			want:    []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeOffsets(indexTensor(t, tt.indices, tt.shape), tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeOffsets_Int32(t *testing.T) {
	idx, err := tensor.FromSlice([]int32{1, 1}, tensor.Shape{1, 2}, tensor.DefaultDevice)
	require.NoError(t, err)

	got, err := ComputeOffsets(idx, tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{4}, got)
}

func TestComputeOffsets_DimensionMismatch(t *testing.T) {
	_, err := ComputeOffsets(indexTensor(t, []int64{0, 0, 0}, tensor.Shape{1, 3}), tensor.Shape{2, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrIndexDimensionMismatch))

	var dimErr *tensor.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 3, dimErr.NumIndexDims)
}

func TestComputeOffsets_OutOfBounds(t *testing.T) {
	tests := []struct {
		name    string
		indices []int64
		wantIdx int64
		wantDim int
	}{
		{name: "too large", indices: []int64{0, 0, 0, 3}, wantIdx: 3, wantDim: 1},
		{name: "negative", indices: []int64{-1, 0}, wantIdx: -1, wantDim: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := tensor.Shape{len(tt.indices) / 2, 2}
			_, err := ComputeOffsets(indexTensor(t, tt.indices, shape), tensor.Shape{2, 3})
			require.Error(t, err)
			assert.ErrorIs(t, err, tensor.ErrIndexOutOfBounds)

			var idxErr *tensor.IndexError
			require.True(t, errors.As(err, &idxErr))
			assert.Equal(t, tt.wantIdx, idxErr.Index)
			assert.Equal(t, tt.wantDim, idxErr.Dim)
		})
	}
}

func TestComputeOffsets_FloatIndices(t *testing.T) {
	idx, err := tensor.FromSlice([]float32{0}, tensor.Shape{1, 1}, tensor.DefaultDevice)
	require.NoError(t, err)

	_, err = ComputeOffsets(idx, tensor.Shape{2})
	assert.ErrorIs(t, err, tensor.ErrUnsupportedDType)
}

func TestLayout(t *testing.T) {
	layout, err := NewLayout(tensor.Shape{4, 5, 1}, tensor.Shape{7, 3, 2})
	require.NoError(t, err)

	assert.Equal(t, 1, layout.NumIndexDims)
	assert.Equal(t, tensor.Shape{4, 5}, layout.Batch)
	assert.Equal(t, tensor.Shape{3, 2}, layout.Slice)
	assert.Equal(t, 6, layout.SliceSize)
	assert.Equal(t, 20, layout.NumRows())
	assert.Equal(t, 120, layout.NumOffsets())
	assert.Equal(t, tensor.Shape{4, 5, 3, 2}, layout.ResultShape())

	_, err = NewLayout(tensor.Shape{}, tensor.Shape{2})
	assert.ErrorIs(t, err, tensor.ErrIndexDimensionMismatch)
}

func TestMapper_ParallelMatchesSequential(t *testing.T) {
	const rows = 5000
	data := make([]int64, rows*2)
	for i := 0; i < rows; i++ {
		data[2*i] = int64(i % 50)
		data[2*i+1] = int64((i * 7) % 40)
	}
	idx := indexTensor(t, data, tensor.Shape{rows, 2})
	target := tensor.Shape{50, 40, 3}

	want, err := ComputeOffsets(idx, target)
	require.NoError(t, err)

	m := Mapper{Parallel: parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 64}}
	_, got, err := m.Map(idx, target)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
