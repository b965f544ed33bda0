// Package engine defines the capability interface every computation backend
// implements, plus the validation shared by all of them.
package engine

import (
	"slices"

	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
)

// Engine executes gather/scatter primitives. Implementations must return
// bit-identical results for the same inputs and must be safe for concurrent
// use; inputs are never mutated.
//
// Implementations:
//   - cpu: pure Go, native sum/min/max scatter, optional parallel kernels
//   - emulated: native sum scatter only, min/max emulated per offset
//   - webgpu: float32 kernels on the GPU (windows), other dtypes on the CPU
type Engine interface {
	// Name returns a short engine identifier.
	Name() string

	// Device returns the placement used when the caller gives none.
	Device() tensor.Device

	// Capabilities reports what the engine supports natively.
	Capabilities() Capabilities

	// Place returns t on dev, failing with ErrDeviceUnavailable when the
	// engine cannot host dev. Placing on the current device is a no-op.
	Place(t *tensor.RawTensor, dev tensor.Device) (*tensor.RawTensor, error)

	// GatherFlat selects rows of source along axis 0.
	// Output shape: indices.shape + source.shape[1:].
	GatherFlat(source, indices *tensor.RawTensor) (*tensor.RawTensor, error)

	// GatherND reads source at N-D coordinates.
	// Output shape: indices.shape[:-1] + source.shape[indices.shape[-1]:].
	GatherND(source, indices *tensor.RawTensor) (*tensor.RawTensor, error)

	// ScatterFlat folds updates into a fresh [size] tensor.
	ScatterFlat(indices, updates *tensor.RawTensor, size int, mode reduce.Mode) (*tensor.RawTensor, error)

	// ScatterND folds updates into a fresh tensor of the given shape.
	ScatterND(indices, updates *tensor.RawTensor, shape tensor.Shape, mode reduce.Mode) (*tensor.RawTensor, error)

	// OneHot encodes integer class indices as float32 indicator rows.
	// Output shape: indices.shape + [depth].
	OneHot(indices *tensor.RawTensor, depth int) (*tensor.RawTensor, error)
}

// Capabilities describes an engine's native support.
type Capabilities struct {
	// NativeReductions lists scatter modes run without emulation.
	NativeReductions []reduce.Mode

	// StrictOneHot is true when out-of-range one-hot indices fail with
	// ErrIndexOutOfBounds. When false they produce an all-zero row.
	StrictOneHot bool

	// Strategy is how Min/Max detect untouched positions.
	Strategy reduce.Strategy

	// Devices lists the placements the engine can host.
	Devices []tensor.Device
}

// Native reports whether mode runs without emulation.
func (c Capabilities) Native(mode reduce.Mode) bool {
	return slices.Contains(c.NativeReductions, mode)
}

// Hosts reports whether dev is one of the engine's devices.
func (c Capabilities) Hosts(dev tensor.Device) bool {
	return slices.Contains(c.Devices, dev)
}
