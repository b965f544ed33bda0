// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndindex/backend/cpu"
	"github.com/born-ml/ndindex/backend/emulated"
	"github.com/born-ml/ndindex/ops"
	"github.com/born-ml/ndindex/tensor"
)

func TestEnginesAgree(t *testing.T) {
	engines := []ops.Engine{cpu.New(), emulated.New()}

	idx, err := tensor.FromSlice([]int64{0, 2, 0}, tensor.Shape{3}, tensor.DefaultDevice)
	require.NoError(t, err)
	upd, err := tensor.FromSlice([]float32{-2, 5, -7}, tensor.Shape{3}, tensor.DefaultDevice)
	require.NoError(t, err)

	for _, mode := range []ops.Mode{ops.Sum, ops.Min, ops.Max} {
		var want []float32
		for i, e := range engines {
			out, err := ops.ScatterFlat(e, idx, upd, 4, mode)
			require.NoError(t, err, "%s %s", e.Name(), mode)
			if i == 0 {
				want = out.AsFloat32()
				continue
			}
			assert.Equal(t, want, out.AsFloat32(), "%s %s", e.Name(), mode)
		}
	}
}

func TestWithDevice(t *testing.T) {
	e := cpu.New(cpu.Config{NumDevices: 2})
	src, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3}, tensor.DefaultDevice)
	require.NoError(t, err)
	idx, err := tensor.FromSlice([]int32{2}, tensor.Shape{1}, tensor.DefaultDevice)
	require.NoError(t, err)

	out, err := ops.GatherFlat(e, src, idx, ops.WithDevice("cpu:1"))
	require.NoError(t, err)
	assert.Equal(t, tensor.CPUDevice(1), out.Device())
	assert.Equal(t, []float64{3}, out.AsFloat64())

	_, err = ops.GatherFlat(e, src, idx, ops.WithDeviceID(tensor.GPUDevice(0)))
	require.ErrorIs(t, err, tensor.ErrDeviceUnavailable)
}
