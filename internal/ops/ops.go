// Package ops is the caller-facing layer over an engine.Engine. Every
// operation accepts an optional device override, resolves and checks it
// before any work is done, and places the result there.
//
// Without an override, gather and one-hot results inherit the device of
// their source (or indices), and scatter results inherit the device of the
// updates.
package ops

import (
	"github.com/born-ml/ndindex/internal/device"
	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
)

// Option configures a single operation.
type Option func(*options)

type options struct {
	spec  string
	dev   tensor.Device
	fixed bool
}

// WithDevice places the result on the device named by spec ("cpu", "gpu:1").
// An empty spec means no override.
func WithDevice(spec string) Option {
	return func(o *options) {
		o.spec = spec
	}
}

// WithDeviceID places the result on dev. It takes precedence over WithDevice.
func WithDeviceID(dev tensor.Device) Option {
	return func(o *options) {
		o.dev = dev
		o.fixed = true
	}
}

// target resolves the result device and checks e can host it.
func target(e engine.Engine, inherited tensor.Device, opts []Option) (tensor.Device, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	dev := o.dev
	if !o.fixed {
		var err error
		dev, err = device.NewResolver(inherited).Resolve(o.spec)
		if err != nil {
			return tensor.Device{}, err
		}
	}
	if err := engine.CheckDevice(e.Name(), e.Capabilities(), dev); err != nil {
		return tensor.Device{}, err
	}
	return dev, nil
}

func place(e engine.Engine, dev tensor.Device, result *tensor.RawTensor, err error) (*tensor.RawTensor, error) {
	if err != nil {
		return nil, err
	}
	return e.Place(result, dev)
}

// GatherFlat selects rows of source along axis 0.
// Output shape: indices.shape + source.shape[1:].
func GatherFlat(e engine.Engine, source, indices *tensor.RawTensor, opts ...Option) (*tensor.RawTensor, error) {
	dev, err := target(e, source.Device(), opts)
	if err != nil {
		return nil, err
	}
	result, err := e.GatherFlat(source, indices)
	return place(e, dev, result, err)
}

// GatherND reads source at the coordinate tuples in the last dimension of
// indices.
// Output shape: indices.shape[:-1] + source.shape[indices.shape[-1]:].
func GatherND(e engine.Engine, source, indices *tensor.RawTensor, opts ...Option) (*tensor.RawTensor, error) {
	dev, err := target(e, source.Device(), opts)
	if err != nil {
		return nil, err
	}
	result, err := e.GatherND(source, indices)
	return place(e, dev, result, err)
}

// ScatterFlat folds updates into a fresh [size] tensor using mode.
//
// Example:
//
//	out, _ := ops.ScatterFlat(e, indices, updates, 3, reduce.Sum)
//	// indices [0, 1, 0], updates [3, 4, 5] -> [8, 4, 0]
func ScatterFlat(e engine.Engine, indices, updates *tensor.RawTensor, size int, mode reduce.Mode, opts ...Option) (*tensor.RawTensor, error) {
	dev, err := target(e, updates.Device(), opts)
	if err != nil {
		return nil, err
	}
	result, err := e.ScatterFlat(indices, updates, size, mode)
	return place(e, dev, result, err)
}

// ScatterND folds updates into a fresh tensor of the given shape using mode.
// Positions that receive no update read 0 for every mode.
func ScatterND(e engine.Engine, indices, updates *tensor.RawTensor, shape tensor.Shape, mode reduce.Mode, opts ...Option) (*tensor.RawTensor, error) {
	dev, err := target(e, updates.Device(), opts)
	if err != nil {
		return nil, err
	}
	result, err := e.ScatterND(indices, updates, shape, mode)
	return place(e, dev, result, err)
}

// OneHot encodes class indices as float32 indicator rows of length depth.
// Out-of-range indices fail on engines reporting StrictOneHot and encode as
// zero rows on the others.
func OneHot(e engine.Engine, indices *tensor.RawTensor, depth int, opts ...Option) (*tensor.RawTensor, error) {
	dev, err := target(e, indices.Device(), opts)
	if err != nil {
		return nil, err
	}
	result, err := e.OneHot(indices, depth)
	return place(e, dev, result, err)
}
