// Package emulated implements an engine whose only native scatter primitive
// is scatter-add, the shape of most accelerator runtimes. Min and Max are
// emulated with a sentinel-seeded read-modify-write per offset, and one-hot
// is permissive: out-of-range indices encode as an all-zero row instead of
// failing. Results otherwise match the cpu engine exactly.
package emulated

import (
	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/index"
	"github.com/born-ml/ndindex/internal/parallel"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
	"k8s.io/klog/v2"
)

// Config configures the emulated backend.
type Config struct {
	// Devices lists the placements the backend accepts. The first one is the
	// default device.
	Devices []tensor.Device
}

// DefaultConfig hosts cpu:0 only.
func DefaultConfig() Config {
	return Config{Devices: []tensor.Device{tensor.DefaultDevice}}
}

// Backend implements engine.Engine with emulated Min/Max scatter.
type Backend struct {
	devices []tensor.Device
	mapper  index.Mapper
}

var _ engine.Engine = (*Backend)(nil)

// New creates an emulated backend. With no config, DefaultConfig is used.
func New(cfg ...Config) *Backend {
	c := DefaultConfig()
	if len(cfg) > 0 && len(cfg[0].Devices) > 0 {
		c = cfg[0]
	}
	klog.V(2).InfoS("created emulated backend", "devices", c.Devices)
	return &Backend{
		devices: append([]tensor.Device(nil), c.Devices...),
		mapper:  index.Mapper{Parallel: parallel.Sequential()},
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "emulated"
}

// Device returns the first configured device.
func (b *Backend) Device() tensor.Device {
	return b.devices[0]
}

// Capabilities reports native Sum only and permissive one-hot.
func (b *Backend) Capabilities() engine.Capabilities {
	return engine.Capabilities{
		NativeReductions: []reduce.Mode{reduce.Sum},
		StrictOneHot:     false,
		Strategy:         reduce.Sentinel,
		Devices:          append([]tensor.Device(nil), b.devices...),
	}
}

// Place re-tags t for dev. The backend keeps everything in host memory.
func (b *Backend) Place(t *tensor.RawTensor, dev tensor.Device) (*tensor.RawTensor, error) {
	if err := engine.CheckDevice(b.Name(), b.Capabilities(), dev); err != nil {
		return nil, err
	}
	if t.Device() == dev {
		return t, nil
	}
	return t.WithDevice(dev), nil
}

// GatherFlat selects rows of source along axis 0.
func (b *Backend) GatherFlat(source, indices *tensor.RawTensor) (*tensor.RawTensor, error) {
	plan, err := engine.PlanGatherFlat(b.mapper, source, indices)
	if err != nil {
		return nil, err
	}
	return engine.Gather(source, plan, parallel.Sequential())
}

// GatherND reads source at N-D coordinates.
func (b *Backend) GatherND(source, indices *tensor.RawTensor) (*tensor.RawTensor, error) {
	plan, err := engine.PlanGatherND(b.mapper, source, indices)
	if err != nil {
		return nil, err
	}
	return engine.Gather(source, plan, parallel.Sequential())
}

// OneHot encodes indices; out-of-range indices produce all-zero rows.
func (b *Backend) OneHot(indices *tensor.RawTensor, depth int) (*tensor.RawTensor, error) {
	return engine.OneHotByGather(b, indices, depth, false)
}
