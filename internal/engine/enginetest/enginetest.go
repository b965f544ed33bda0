// Package enginetest is a conformance suite every engine.Engine runs from its
// own tests, so all engines are held to identical observable results.
package enginetest

import (
	"errors"
	"testing"

	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run executes the conformance suite against e. Inputs are created on
// e.Device().
func Run(t *testing.T, e engine.Engine) {
	t.Helper()
	s := &suite{e: e, dev: e.Device()}

	t.Run("Capabilities", s.testCapabilities)
	t.Run("GatherFlat", s.testGatherFlat)
	t.Run("GatherFlatIdentity", s.testGatherFlatIdentity)
	t.Run("GatherND", s.testGatherND)
	t.Run("GatherNDSlices", s.testGatherNDSlices)
	t.Run("GatherErrors", s.testGatherErrors)
	t.Run("ScatterFlatScenarios", s.testScatterFlatScenarios)
	t.Run("ScatterND", s.testScatterND)
	t.Run("ScatterEmptyUpdates", s.testScatterEmptyUpdates)
	t.Run("ScatterUntouchedReadsZero", s.testScatterUntouched)
	t.Run("ScatterDTypes", s.testScatterDTypes)
	t.Run("ScatterThenGatherSum", s.testScatterThenGather)
	t.Run("ScatterErrors", s.testScatterErrors)
	t.Run("OneHot", s.testOneHot)
	t.Run("OneHotOutOfRange", s.testOneHotOutOfRange)
	t.Run("Place", s.testPlace)
}

type suite struct {
	e   engine.Engine
	dev tensor.Device
}

func fromSlice[T tensor.DType](t *testing.T, s *suite, data []T, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromSlice(data, shape, s.dev)
	require.NoError(t, err)
	return r
}

func (s *suite) testCapabilities(t *testing.T) {
	caps := s.e.Capabilities()
	assert.True(t, caps.Native(reduce.Sum), "every engine scatters Sum natively")
	assert.True(t, caps.Hosts(s.e.Device()), "default device must be hosted")
	assert.NotEmpty(t, s.e.Name())
}

func (s *suite) testGatherFlat(t *testing.T) {
	source := fromSlice(t, s, []float32{10, 11, 20, 21, 30, 31}, tensor.Shape{3, 2})
	indices := fromSlice(t, s, []int64{2, 0, 2, 1}, tensor.Shape{2, 2})

	out, err := s.e.GatherFlat(source, indices)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
	assert.Equal(t, []float32{30, 31, 10, 11, 30, 31, 20, 21}, out.AsFloat32())
	assert.Equal(t, s.dev, out.Device())
}

func (s *suite) testGatherFlatIdentity(t *testing.T) {
	for _, dt := range []tensor.DataType{tensor.Float32, tensor.Float64, tensor.Int32, tensor.Int64} {
		t.Run(dt.String(), func(t *testing.T) {
			source, err := tensor.Arange(12, dt, s.dev)
			require.NoError(t, err)
			source, err = source.Reshape(tensor.Shape{4, 3})
			require.NoError(t, err)
			indices, err := tensor.Arange(4, tensor.Int64, s.dev)
			require.NoError(t, err)

			out, err := s.e.GatherFlat(source, indices)
			require.NoError(t, err)
			assert.Equal(t, source.Shape(), out.Shape())
			assert.Equal(t, source.DType(), out.DType())
			assert.Equal(t, source.Data(), out.Data())
		})
	}
}

func (s *suite) testGatherND(t *testing.T) {
	source := fromSlice(t, s, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	indices := fromSlice(t, s, []int64{0, 1, 1, 0}, tensor.Shape{2, 2})

	out, err := s.e.GatherND(source, indices)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2}, out.Shape())
	assert.Equal(t, []float32{2, 3}, out.AsFloat32())
}

func (s *suite) testGatherNDSlices(t *testing.T) {
	source, err := tensor.Arange(24, tensor.Int64, s.dev)
	require.NoError(t, err)
	source, err = source.Reshape(tensor.Shape{2, 3, 4})
	require.NoError(t, err)

	// Index the first two dimensions; the last spans implicitly.
	indices := fromSlice(t, s, []int32{1, 2, 0, 0}, tensor.Shape{2, 2})
	out, err := s.e.GatherND(source, indices)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 4}, out.Shape())
	assert.Equal(t, []int64{20, 21, 22, 23, 0, 1, 2, 3}, out.AsInt64())
}

func (s *suite) testGatherErrors(t *testing.T) {
	source := fromSlice(t, s, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	_, err := s.e.GatherFlat(source, fromSlice(t, s, []int64{0, 2}, tensor.Shape{2}))
	assertIndexError(t, err, 2)

	_, err = s.e.GatherFlat(source, fromSlice(t, s, []int64{-1}, tensor.Shape{1}))
	assertIndexError(t, err, -1)

	_, err = s.e.GatherND(source, fromSlice(t, s, []int64{0, 0, 0}, tensor.Shape{1, 3}))
	assert.ErrorIs(t, err, tensor.ErrIndexDimensionMismatch)

	_, err = s.e.GatherND(source, fromSlice(t, s, []float32{0, 0}, tensor.Shape{1, 2}))
	assert.ErrorIs(t, err, tensor.ErrUnsupportedDType)
}

func assertIndexError(t *testing.T, err error, value int64) {
	t.Helper()
	require.ErrorIs(t, err, tensor.ErrIndexOutOfBounds)
	var ie *tensor.IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, value, ie.Index)
}

func (s *suite) testScatterFlatScenarios(t *testing.T) {
	tests := []struct {
		name    string
		indices []int64
		updates []float32
		mode    reduce.Mode
		want    []float32
	}{
		{"sum", []int64{0, 1, 0}, []float32{3, 4, 5}, reduce.Sum, []float32{8, 4, 0}},
		{"max", []int64{0, 1}, []float32{3, 4}, reduce.Max, []float32{3, 4, 0}},
		{"min", []int64{2, 2, 0}, []float32{5, -1, 9}, reduce.Min, []float32{9, 0, -1}},
		{"max negative", []int64{1, 1}, []float32{-7, -3}, reduce.Max, []float32{0, -3, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indices := fromSlice(t, s, tt.indices, tensor.Shape{len(tt.indices)})
			updates := fromSlice(t, s, tt.updates, tensor.Shape{len(tt.updates)})

			out, err := s.e.ScatterFlat(indices, updates, 3, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{3}, out.Shape())
			assert.Equal(t, tt.want, out.AsFloat32())
		})
	}
}

func (s *suite) testScatterND(t *testing.T) {
	// Two rows scattered into a [3, 2] destination, one of them twice.
	indices := fromSlice(t, s, []int64{2, 0, 2}, tensor.Shape{3, 1})
	updates := fromSlice(t, s, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})

	out, err := s.e.ScatterND(indices, updates, tensor.Shape{3, 2}, reduce.Sum)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float64{3, 4, 0, 0, 6, 8}, out.AsFloat64())

	out, err = s.e.ScatterND(indices, updates, tensor.Shape{3, 2}, reduce.Max)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 0, 0, 5, 6}, out.AsFloat64())

	// Full coordinates.
	points := fromSlice(t, s, []int64{0, 1, 1, 0}, tensor.Shape{2, 2})
	values := fromSlice(t, s, []float32{7, 9}, tensor.Shape{2})
	out, err = s.e.ScatterND(points, values, tensor.Shape{2, 2}, reduce.Min)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 7, 9, 0}, out.AsFloat32())
}

func (s *suite) testScatterEmptyUpdates(t *testing.T) {
	indices := fromSlice(t, s, []int64{}, tensor.Shape{0, 1})
	updates := fromSlice(t, s, []float32{}, tensor.Shape{0, 2})

	for _, mode := range []reduce.Mode{reduce.Sum, reduce.Min, reduce.Max} {
		t.Run(mode.String(), func(t *testing.T) {
			out, err := s.e.ScatterND(indices, updates, tensor.Shape{3, 2}, mode)
			require.NoError(t, err)
			assert.Equal(t, make([]float32, 6), out.AsFloat32())
		})
	}
}

func (s *suite) testScatterUntouched(t *testing.T) {
	indices := fromSlice(t, s, []int64{4, 1}, tensor.Shape{2})
	updates := fromSlice(t, s, []float32{-2, 6}, tensor.Shape{2})

	for _, mode := range []reduce.Mode{reduce.Min, reduce.Max} {
		t.Run(mode.String(), func(t *testing.T) {
			out, err := s.e.ScatterFlat(indices, updates, 6, mode)
			require.NoError(t, err)
			assert.Equal(t, []float32{0, 6, 0, 0, -2, 0}, out.AsFloat32())
		})
	}
}

func (s *suite) testScatterDTypes(t *testing.T) {
	indices := fromSlice(t, s, []int32{0, 1, 0}, tensor.Shape{3})

	out, err := s.e.ScatterFlat(indices, fromSlice(t, s, []int32{3, 4, 5}, tensor.Shape{3}), 3, reduce.Sum)
	require.NoError(t, err)
	assert.Equal(t, tensor.Int32, out.DType())
	assert.Equal(t, []int32{8, 4, 0}, out.AsInt32())

	out, err = s.e.ScatterFlat(indices, fromSlice(t, s, []int32{-3, 4, -5}, tensor.Shape{3}), 3, reduce.Max)
	require.NoError(t, err)
	assert.Equal(t, []int32{-3, 4, 0}, out.AsInt32())

	out, err = s.e.ScatterFlat(indices, fromSlice(t, s, []int64{3, 4, 5}, tensor.Shape{3}), 3, reduce.Min)
	require.NoError(t, err)
	assert.Equal(t, tensor.Int64, out.DType())
	assert.Equal(t, []int64{3, 4, 0}, out.AsInt64())
}

func (s *suite) testScatterThenGather(t *testing.T) {
	indices := fromSlice(t, s, []int64{1, 2, 1, 3, 1, 3}, tensor.Shape{3, 2})
	updates := fromSlice(t, s, []float32{1, 2, 4}, tensor.Shape{3})
	shape := tensor.Shape{2, 4}

	scattered, err := s.e.ScatterND(indices, updates, shape, reduce.Sum)
	require.NoError(t, err)
	gathered, err := s.e.GatherND(scattered, indices)
	require.NoError(t, err)

	// Each addressed position holds the fold of all updates mapped there.
	assert.Equal(t, []float32{1, 6, 6}, gathered.AsFloat32())
}

func (s *suite) testScatterErrors(t *testing.T) {
	indices := fromSlice(t, s, []int64{0, 1}, tensor.Shape{2})
	updates := fromSlice(t, s, []float32{1, 2}, tensor.Shape{2})

	_, err := s.e.ScatterFlat(indices, updates, 3, reduce.Mode(42))
	assert.ErrorIs(t, err, tensor.ErrUnsupportedReduction)

	_, err = s.e.ScatterFlat(indices, updates, 1, reduce.Sum)
	assertIndexError(t, err, 1)

	_, err = s.e.ScatterFlat(indices, fromSlice(t, s, []float32{1, 2, 3}, tensor.Shape{3}), 3, reduce.Sum)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = s.e.ScatterND(fromSlice(t, s, []int64{0, 0, 0}, tensor.Shape{1, 3}), fromSlice(t, s, []float32{1}, tensor.Shape{1}), tensor.Shape{2, 2}, reduce.Sum)
	assert.ErrorIs(t, err, tensor.ErrIndexDimensionMismatch)

	_, err = s.e.ScatterFlat(indices, fromSlice(t, s, []uint8{1, 2}, tensor.Shape{2}), 3, reduce.Sum)
	assert.ErrorIs(t, err, tensor.ErrUnsupportedDType)
}

func (s *suite) testOneHot(t *testing.T) {
	indices := fromSlice(t, s, []int64{3, 0, 1}, tensor.Shape{3})

	out, err := s.e.OneHot(indices, 4)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 4}, out.Shape())
	assert.Equal(t, tensor.Float32, out.DType())

	values := out.AsFloat32()
	for r, id := range []int{3, 0, 1} {
		row := values[r*4 : (r+1)*4]
		var sum float32
		for d, v := range row {
			sum += v
			if d == id {
				assert.Equal(t, float32(1), v, "row %d col %d", r, d)
			} else {
				assert.Zero(t, v, "row %d col %d", r, d)
			}
		}
		assert.Equal(t, float32(1), sum)
	}
}

func (s *suite) testOneHotOutOfRange(t *testing.T) {
	indices := fromSlice(t, s, []int64{1, 5}, tensor.Shape{2})

	out, err := s.e.OneHot(indices, 3)
	if s.e.Capabilities().StrictOneHot {
		assert.ErrorIs(t, err, tensor.ErrIndexOutOfBounds)
		return
	}
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0, 0, 0, 0}, out.AsFloat32())
}

func (s *suite) testPlace(t *testing.T) {
	src := fromSlice(t, s, []float32{1, 2}, tensor.Shape{2})

	same, err := s.e.Place(src, s.dev)
	require.NoError(t, err)
	assert.Equal(t, src.AsFloat32(), same.AsFloat32())
	assert.Equal(t, s.dev, same.Device())

	_, err = s.e.Place(src, tensor.GPUDevice(1<<20))
	assert.ErrorIs(t, err, tensor.ErrDeviceUnavailable)
}
