// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops provides the gather, scatter and one-hot primitives.
//
// Every primitive runs on a caller-chosen Engine and accepts WithDevice to
// place its result. The override is resolved and checked against the engine
// before any work is done. Without it, gathers and one-hot inherit the device
// of their source (or indices) and scatters inherit the device of the updates.
//
// Example:
//
//	e := cpu.New()
//	idx, _ := tensor.FromSlice([]int64{0, 1, 0}, tensor.Shape{3}, tensor.DefaultDevice)
//	upd, _ := tensor.FromSlice([]float32{3, 4, 5}, tensor.Shape{3}, tensor.DefaultDevice)
//	out, _ := ops.ScatterFlat(e, idx, upd, 3, ops.Sum) // [8 4 0]
package ops

import (
	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/ops"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/tensor"
)

// Engine executes the primitives. See backend/cpu, backend/emulated and
// backend/webgpu.
type Engine = engine.Engine

// Capabilities describes what an Engine runs natively.
type Capabilities = engine.Capabilities

// Mode selects how colliding scatter updates are combined.
type Mode = reduce.Mode

// Reduction modes.
const (
	Sum Mode = reduce.Sum
	Min Mode = reduce.Min
	Max Mode = reduce.Max
)

// ParseMode resolves "sum", "min" or "max".
func ParseMode(s string) (Mode, error) { return reduce.ParseMode(s) }

// Option configures a single operation.
type Option = ops.Option

// WithDevice places the result on the device named by spec ("cpu", "gpu:1").
func WithDevice(spec string) Option { return ops.WithDevice(spec) }

// WithDeviceID places the result on dev.
func WithDeviceID(dev tensor.Device) Option { return ops.WithDeviceID(dev) }

// GatherFlat selects rows of source along axis 0.
// Output shape: indices.shape + source.shape[1:].
func GatherFlat(e Engine, source, indices *tensor.RawTensor, opts ...Option) (*tensor.RawTensor, error) {
	return ops.GatherFlat(e, source, indices, opts...)
}

// GatherND reads source at the coordinate tuples in the last dimension of
// indices.
// Output shape: indices.shape[:-1] + source.shape[indices.shape[-1]:].
func GatherND(e Engine, source, indices *tensor.RawTensor, opts ...Option) (*tensor.RawTensor, error) {
	return ops.GatherND(e, source, indices, opts...)
}

// ScatterFlat folds updates into a fresh [size] tensor using mode.
func ScatterFlat(e Engine, indices, updates *tensor.RawTensor, size int, mode Mode, opts ...Option) (*tensor.RawTensor, error) {
	return ops.ScatterFlat(e, indices, updates, size, mode, opts...)
}

// ScatterND folds updates into a fresh tensor of the given shape using mode.
// Positions that receive no update read 0 for every mode.
func ScatterND(e Engine, indices, updates *tensor.RawTensor, shape tensor.Shape, mode Mode, opts ...Option) (*tensor.RawTensor, error) {
	return ops.ScatterND(e, indices, updates, shape, mode, opts...)
}

// OneHot encodes class ids as float32 indicator rows of length depth.
func OneHot(e Engine, indices *tensor.RawTensor, depth int, opts ...Option) (*tensor.RawTensor, error) {
	return ops.OneHot(e, indices, depth, opts...)
}
