package serialization

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndindex/internal/tensor"
)

func mustFromSlice[T tensor.DType](t *testing.T, data []T, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, shape, tensor.DefaultDevice)
	require.NoError(t, err)
	return raw
}

func TestSafeTensors_RoundTripFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operands.safetensors")
	in := map[string]*tensor.RawTensor{
		"source":  mustFromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}),
		"indices": mustFromSlice(t, []int64{1, 0}, tensor.Shape{2, 1}),
		"mask":    mustFromSlice(t, []bool{true, false}, tensor.Shape{2}),
		"bytes":   mustFromSlice(t, []uint8{7}, tensor.Shape{1}),
		"wide":    mustFromSlice(t, []float64{-1.5}, tensor.Shape{}),
		"ids":     mustFromSlice(t, []int32{3, 2, 1}, tensor.Shape{3}),
		"empty":   mustFromSlice(t, []float32{}, tensor.Shape{0, 4}),
	}
	meta := map[string]string{"op": "gather_nd"}

	require.NoError(t, WriteSafeTensors(path, in, meta))

	out, gotMeta, err := ReadSafeTensorsFile(path)
	require.NoError(t, err)
	assert.Equal(t, meta, gotMeta)
	require.Len(t, out, len(in))

	for name, want := range in {
		got, ok := out[name]
		require.True(t, ok, name)
		assert.Equal(t, want.DType(), got.DType(), name)
		assert.Equal(t, want.Shape(), got.Shape(), name)
		assert.Equal(t, want.Data(), got.Data(), name)
	}
	assert.Equal(t, []int64{1, 0}, out["indices"].AsInt64())
}

func TestSafeTensors_StreamDevice(t *testing.T) {
	var buf bytes.Buffer
	w := NewSafeTensorsStreamWriter(&buf)
	require.NoError(t, w.WriteTensors(map[string]*tensor.RawTensor{
		"x": mustFromSlice(t, []float32{1, 2}, tensor.Shape{2}),
	}, nil))
	require.NoError(t, w.Close())

	out, meta, err := ReadSafeTensors(&buf, ReaderOptions{Device: tensor.GPUDevice(0)})
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Equal(t, tensor.GPUDevice(0), out["x"].Device())
	assert.Equal(t, []float32{1, 2}, out["x"].AsFloat32())
}

func TestSafeTensors_WriterRejects(t *testing.T) {
	w := NewSafeTensorsStreamWriter(&bytes.Buffer{})
	err := w.WriteTensors(map[string]*tensor.RawTensor{
		"../escape": mustFromSlice(t, []float32{1}, tensor.Shape{1}),
	}, nil)
	require.ErrorIs(t, err, ErrInvalidTensorName)

	require.NoError(t, w.Close())
	err = w.WriteTensors(nil, nil)
	require.Error(t, err)
}

// encode builds a raw SafeTensors stream from a literal header.
func encode(header string, data []byte) *bytes.Buffer {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(header)))
	buf.WriteString(header)
	buf.Write(data)
	return &buf
}

func TestReadSafeTensors_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		stream *bytes.Buffer
		want   error
	}{
		{
			name:   "unknown dtype",
			stream: encode(`{"a":{"dtype":"F16","shape":[1],"data_offsets":[0,2]}}`, make([]byte, 2)),
			want:   ErrUnknownDType,
		},
		{
			name:   "size mismatch",
			stream: encode(`{"a":{"dtype":"F32","shape":[2],"data_offsets":[0,4]}}`, make([]byte, 8)),
			want:   ErrSizeMismatch,
		},
		{
			name:   "out of bounds",
			stream: encode(`{"a":{"dtype":"F32","shape":[2],"data_offsets":[0,8]}}`, make([]byte, 4)),
			want:   ErrOutOfBounds,
		},
		{
			name: "overlap",
			stream: encode(`{"a":{"dtype":"F32","shape":[2],"data_offsets":[0,8]},`+
				`"b":{"dtype":"F32","shape":[1],"data_offsets":[4,8]}}`, make([]byte, 8)),
			want: ErrOffsetOverlap,
		},
		{
			name:   "element count overflows",
			stream: encode(`{"a":{"dtype":"F32","shape":[4294967296,4294967296],"data_offsets":[0,0]}}`, nil),
			want:   ErrSizeMismatch,
		},
		{
			name:   "byte size overflows",
			stream: encode(`{"a":{"dtype":"F64","shape":[4611686018427387904],"data_offsets":[0,0]}}`, nil),
			want:   ErrSizeMismatch,
		},
		{
			name:   "path traversal",
			stream: encode(`{"../a":{"dtype":"U8","shape":[1],"data_offsets":[0,1]}}`, make([]byte, 1)),
			want:   ErrInvalidTensorName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadSafeTensors(tt.stream, ReaderOptions{})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadSafeTensors_HeaderTooLarge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(MaxHeaderSize+1)))

	_, _, err := ReadSafeTensors(&buf, ReaderOptions{})
	require.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestReadSafeTensors_Truncated(t *testing.T) {
	_, _, err := ReadSafeTensors(bytes.NewReader([]byte{1, 2}), ReaderOptions{})
	require.Error(t, err)
}

func TestReadSafeTensors_OverflowUnvalidated(t *testing.T) {
	stream := encode(`{"a":{"dtype":"F32","shape":[4294967296,4294967296],"data_offsets":[0,0]}}`, nil)
	_, _, err := ReadSafeTensors(stream, ReaderOptions{ValidationLevel: ValidationNone})
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestLookup(t *testing.T) {
	tensors := map[string]*tensor.RawTensor{
		"source": mustFromSlice(t, []float32{1}, tensor.Shape{1}),
	}

	got, err := Lookup(tensors, "source")
	require.NoError(t, err)
	assert.Same(t, tensors["source"], got)

	_, err = Lookup(tensors, "indices")
	require.ErrorIs(t, err, ErrTensorNotFound)
	assert.Contains(t, err.Error(), "source")
}

func TestValidateTensors_Levels(t *testing.T) {
	overlapping := []TensorMeta{
		{Name: "a", DType: DTypeU8, Shape: []int{4}, Offset: 0, Size: 4},
		{Name: "b", DType: DTypeU8, Shape: []int{4}, Offset: 2, Size: 4},
	}

	require.ErrorIs(t, ValidateTensors(overlapping, 8, ValidationStrict), ErrOffsetOverlap)
	require.NoError(t, ValidateTensors(overlapping, 8, ValidationNormal))
	require.NoError(t, ValidateTensors(overlapping, 8, ValidationNone))
}

func TestValidateTensorOffsets_EmptyShareOffset(t *testing.T) {
	tensors := []TensorMeta{
		{Name: "data", Offset: 0, Size: 8},
		{Name: "empty", Offset: 0, Size: 0},
	}
	require.NoError(t, ValidateTensorOffsets(tensors, 8))
}

func TestValidateTensorName(t *testing.T) {
	tests := []struct {
		name string
		want error
	}{
		{"indices", nil},
		{"layer.0.weight", nil},
		{"a/b", ErrInvalidTensorName},
		{`a\b`, ErrInvalidTensorName},
		{"x\x00y", ErrInvalidTensorName},
		{string(make([]byte, MaxTensorNameLen+1)), ErrTensorNameTooLong},
	}

	for _, tt := range tests {
		err := ValidateTensorName(tt.name)
		if tt.want == nil {
			assert.NoError(t, err)
			continue
		}
		assert.ErrorIs(t, err, tt.want)
	}
}
