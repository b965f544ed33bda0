package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndindex/internal/backend/cpu"
	"github.com/born-ml/ndindex/internal/serialization"
	"github.com/born-ml/ndindex/internal/tensor"
)

// runJSON runs the CLI and decodes its JSON result.
func runJSON(t *testing.T, args ...string) tensorJSON {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), args, &out))

	var tj tensorJSON
	dec := json.NewDecoder(&out)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&tj))
	return tj
}

// numbers renders decoded JSON data as strings for comparison.
func numbers(data []any) []string {
	out := make([]string, len(data))
	for i, v := range data {
		out[i] = v.(json.Number).String()
	}
	return out
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"version"}, &out))
	assert.Contains(t, out.String(), version)
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"transpose"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transpose")
}

func TestRun_Operations(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantShape []int
		wantData  []string
		wantDType string
	}{
		{
			name:      "gather",
			args:      []string{"gather", "-source", "[[1,2],[3,4],[5,6]]", "-indices", "[2,0]"},
			wantShape: []int{2, 2},
			wantData:  []string{"5", "6", "1", "2"},
			wantDType: "float32",
		},
		{
			name:      "gathernd",
			args:      []string{"gathernd", "-source", "[[1,2,3],[4,5,6]]", "-indices", "[[1,2],[0,0]]"},
			wantShape: []int{2},
			wantData:  []string{"6", "1"},
			wantDType: "float32",
		},
		{
			name:      "scatter sum",
			args:      []string{"scatter", "-indices", "[0,1,0]", "-updates", "[3,4,5]", "-size", "3"},
			wantShape: []int{3},
			wantData:  []string{"8", "4", "0"},
			wantDType: "float32",
		},
		{
			name:      "scatter max int",
			args:      []string{"scatter", "-indices", "[0,0,2]", "-updates", "[-3,-1,7]", "-size", "4", "-dtype", "int32", "-reduction", "max"},
			wantShape: []int{4},
			wantData:  []string{"-1", "0", "7", "0"},
			wantDType: "int32",
		},
		{
			name:      "scatternd min touched mask",
			args:      []string{"scatternd", "-indices", "[[0,1],[0,1],[1,0]]", "-updates", "[4,2,9]", "-shape", "2,2", "-reduction", "min", "-strategy", "mask"},
			wantShape: []int{2, 2},
			wantData:  []string{"0", "2", "9", "0"},
			wantDType: "float32",
		},
		{
			name:      "onehot",
			args:      []string{"onehot", "-indices", "[1,0]", "-depth", "3"},
			wantShape: []int{2, 3},
			wantData:  []string{"0", "1", "0", "1", "0", "0"},
			wantDType: "float32",
		},
		{
			name:      "emulated onehot out of range",
			args:      []string{"onehot", "-engine", "emulated", "-indices", "[5]", "-depth", "2"},
			wantShape: []int{1, 2},
			wantData:  []string{"0", "0"},
			wantDType: "float32",
		},
		{
			name:      "explicit dtype",
			args:      []string{"gather", "-source", `{"dtype":"int64","shape":[3],"data":[7,8,9]}`, "-indices", `{"dtype":"int32","data":[1]}`},
			wantShape: []int{1},
			wantData:  []string{"8"},
			wantDType: "int64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runJSON(t, tt.args...)
			assert.Equal(t, tt.wantShape, got.Shape)
			assert.Equal(t, tt.wantData, numbers(got.Data))
			assert.Equal(t, tt.wantDType, got.DType)
			assert.Equal(t, "cpu:0", got.Device)
		})
	}
}

func TestRun_DeviceOverride(t *testing.T) {
	got := runJSON(t, "gather", "-devices", "2", "-device", "cpu:1",
		"-source", "[1,2,3]", "-indices", "[2]")
	assert.Equal(t, "cpu:1", got.Device)

	err := run(context.Background(), []string{"gather", "-device", "gpu:0",
		"-source", "[1,2,3]", "-indices", "[2]"}, &bytes.Buffer{})
	require.ErrorIs(t, err, tensor.ErrDeviceUnavailable)

	err = run(context.Background(), []string{"gather", "-device", "tpu",
		"-source", "[1,2,3]", "-indices", "[2]"}, &bytes.Buffer{})
	require.ErrorIs(t, err, tensor.ErrInvalidDeviceSpec)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"out of bounds", []string{"gather", "-source", "[1,2]", "-indices", "[2]"}, tensor.ErrIndexOutOfBounds},
		{"bad reduction", []string{"scatter", "-indices", "[0]", "-updates", "[1]", "-size", "1", "-reduction", "mean"}, tensor.ErrUnsupportedReduction},
		{"strict onehot", []string{"onehot", "-indices", "[3]", "-depth", "2"}, tensor.ErrIndexOutOfBounds},
		{"missing operand", []string{"gather", "-source", "[1]"}, nil},
		{"ragged", []string{"gather", "-source", "[[1,2],[3]]", "-indices", "[0]"}, nil},
		{"unknown engine", []string{"gather", "-engine", "tpu", "-source", "[1]", "-indices", "[0]"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, &bytes.Buffer{})
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestRun_Files(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "operands.safetensors")
	out := filepath.Join(dir, "result.safetensors")

	indices, err := tensor.FromSlice([]int64{0, 1, 0}, tensor.Shape{3}, tensor.DefaultDevice)
	require.NoError(t, err)
	updates, err := tensor.FromSlice([]float64{3, 4, 5}, tensor.Shape{3}, tensor.DefaultDevice)
	require.NoError(t, err)
	require.NoError(t, serialization.WriteSafeTensors(in, map[string]*tensor.RawTensor{
		"indices": indices,
		"updates": updates,
	}, nil))

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(),
		[]string{"scatter", "-in", in, "-size", "2", "-out", out}, &stdout))
	assert.Empty(t, stdout.String())

	tensors, meta, err := serialization.ReadSafeTensorsFile(out)
	require.NoError(t, err)
	assert.Equal(t, "scatter", meta["op"])
	assert.Equal(t, "sum", meta["reduction"])
	result, err := serialization.Lookup(tensors, "result")
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 4}, result.AsFloat64())
}

func TestRun_OverflowingHeader(t *testing.T) {
	header := `{"source":{"dtype":"F32","shape":[4294967296,4294967296],"data_offsets":[0,0]}}`
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(header))))
	buf.WriteString(header)

	in := filepath.Join(t.TempDir(), "hostile.safetensors")
	require.NoError(t, os.WriteFile(in, buf.Bytes(), 0o600))

	for _, indices := range []string{"[[3,3]]", "[[3]]"} {
		err := run(context.Background(), []string{"gathernd", "-in", in, "-indices", indices}, &bytes.Buffer{})
		require.ErrorIs(t, err, serialization.ErrSizeMismatch, indices)
	}
}

func TestRun_Device(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"device", "cpu", "gpu:1"}, &out))
	assert.Contains(t, out.String(), "cpu:0\thosted=true")
	assert.Contains(t, out.String(), "gpu:1\thosted=false")
}

// fixedTokenizer returns canned ids.
type fixedTokenizer struct {
	ids []int64
}

func (f fixedTokenizer) Encode(string) ([]int64, error) { return f.ids, nil }
func (f fixedTokenizer) Decode([]int64) (string, error) { return "", nil }
func (f fixedTokenizer) VocabSize() int                 { return 5 }

func TestBagOfWords(t *testing.T) {
	e := cpu.New()
	counts, err := bagOfWords(e, fixedTokenizer{ids: []int64{4, 1, 4, 4, 0}}, "ignored")
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{5}, counts.Shape())
	assert.Equal(t, []float32{1, 1, 0, 0, 3}, counts.AsFloat32())

	top := topTokens(counts.AsFloat32(), 2)
	assert.Equal(t, []tokenCount{{id: 4, count: 3}, {id: 0, count: 1}}, top)

	empty, err := bagOfWords(e, fixedTokenizer{}, "")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0, 0}, empty.AsFloat32())
	assert.Empty(t, topTokens(empty.AsFloat32(), 3))
}

func TestParseTensor(t *testing.T) {
	scalar, err := parseTensor("7", tensor.Int32, tensor.DefaultDevice)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{}, scalar.Shape())
	assert.Equal(t, []int32{7}, scalar.AsInt32())

	empty, err := parseTensor("[]", tensor.Float32, tensor.DefaultDevice)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{0}, empty.Shape())

	mask, err := parseTensor("[true,false]", tensor.Bool, tensor.DefaultDevice)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, mask.AsBool())

	_, err = parseTensor(`{"shape":[3],"data":[1,2]}`, tensor.Float32, tensor.DefaultDevice)
	assert.Error(t, err)
	_, err = parseTensor("[1.5]", tensor.Int64, tensor.DefaultDevice)
	assert.Error(t, err)
	_, err = parseTensor("[256]", tensor.Uint8, tensor.DefaultDevice)
	assert.Error(t, err)
}

func TestParseShape(t *testing.T) {
	shape, err := parseShape("2, 3")
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, shape)

	shape, err = parseShape("")
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{}, shape)

	_, err = parseShape("2,x")
	assert.Error(t, err)
	_, err = parseShape("-1")
	assert.Error(t, err)
}
