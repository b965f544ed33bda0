package device

import (
	"errors"
	"testing"

	"github.com/born-ml/ndindex/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want tensor.Device
	}{
		{spec: "cpu", want: tensor.Device{Kind: tensor.CPU, Index: 0}},
		{spec: "cpu:3", want: tensor.Device{Kind: tensor.CPU, Index: 3}},
		{spec: "gpu", want: tensor.Device{Kind: tensor.GPU, Index: 0}},
		{spec: "gpu:1", want: tensor.Device{Kind: tensor.GPU, Index: 1}},
		{spec: " GPU:2 ", want: tensor.Device{Kind: tensor.GPU, Index: 2}},
		{spec: "gpu:0", want: tensor.Device{Kind: tensor.GPU, Index: 0}},
		{spec: "cpu:10", want: tensor.Device{Kind: tensor.CPU, Index: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	specs := []string{"tpu", "", "cuda:0", "gpu:x", "cpu:-1", "gpu:1:2", "mycpu",
		"gpu:+1", "gpu:01", "gpu:", "gpu: 1", "cpu:1e2", "gpu:99999999999999999999"}

	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			_, err := Parse(spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tensor.ErrInvalidDeviceSpec))

			var specErr *tensor.DeviceSpecError
			require.True(t, errors.As(err, &specErr))
			assert.Equal(t, spec, specErr.Spec)
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(tensor.GPUDevice(2))

	got, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, tensor.GPUDevice(2), got, "absent spec should yield the default")

	got, err = r.Resolve("cpu:1")
	require.NoError(t, err)
	assert.Equal(t, tensor.CPUDevice(1), got)

	_, err = r.Resolve("tpu")
	assert.ErrorIs(t, err, tensor.ErrInvalidDeviceSpec)
}

func TestDeviceString(t *testing.T) {
	assert.Equal(t, "gpu:1", tensor.GPUDevice(1).String())
	assert.Equal(t, "cpu:0", tensor.DefaultDevice.String())
}

func TestHostFeatures(t *testing.T) {
	features := HostFeatures()
	t.Logf("host features: %v", features)
	seen := make(map[string]bool)
	for _, f := range features {
		assert.False(t, seen[f], "duplicate feature %q", f)
		seen[f] = true
	}
}
