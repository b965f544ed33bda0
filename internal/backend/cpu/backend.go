// Package cpu implements the reference engine in pure Go. Min, Max and Sum
// scatter run natively, one-hot is strict, and kernels can split work across
// goroutines.
package cpu

import (
	"fmt"
	"strings"

	"github.com/born-ml/ndindex/internal/device"
	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/index"
	"github.com/born-ml/ndindex/internal/parallel"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
	"k8s.io/klog/v2"
)

// Config configures the CPU backend.
type Config struct {
	// Parallel controls goroutine fan-out for offset mapping and gathers.
	Parallel parallel.Config

	// Strategy selects how Min/Max scatter detects untouched positions.
	Strategy reduce.Strategy

	// NumDevices is the number of logical CPU devices (cpu:0 .. cpu:N-1).
	NumDevices int
}

// DefaultConfig returns a parallel, sentinel-based configuration with a
// single device.
func DefaultConfig() Config {
	return Config{
		Parallel:   parallel.DefaultConfig(),
		Strategy:   reduce.Sentinel,
		NumDevices: 1,
	}
}

// CPUBackend implements engine.Engine on the host.
type CPUBackend struct {
	device  tensor.Device
	cfg     Config
	mapper  index.Mapper
	devices []tensor.Device
}

var _ engine.Engine = (*CPUBackend)(nil)

// New creates a CPU backend. With no config, DefaultConfig is used.
func New(cfg ...Config) *CPUBackend {
	c := DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	if c.NumDevices < 1 {
		c.NumDevices = 1
	}

	devices := make([]tensor.Device, c.NumDevices)
	for i := range devices {
		devices[i] = tensor.CPUDevice(i)
	}

	klog.V(2).InfoS("created cpu backend",
		"devices", c.NumDevices, "parallel", c.Parallel.Enabled, "workers", c.Parallel.NumWorkers,
		"strategy", c.Strategy, "features", strings.Join(device.HostFeatures(), ","))

	return &CPUBackend{
		device:  tensor.CPUDevice(0),
		cfg:     c,
		mapper:  index.Mapper{Parallel: c.Parallel},
		devices: devices,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "cpu"
}

// Device returns the default compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Capabilities reports native support for every reduction and strict one-hot.
func (cpu *CPUBackend) Capabilities() engine.Capabilities {
	return engine.Capabilities{
		NativeReductions: []reduce.Mode{reduce.Sum, reduce.Min, reduce.Max},
		StrictOneHot:     true,
		Strategy:         cpu.cfg.Strategy,
		Devices:          append([]tensor.Device(nil), cpu.devices...),
	}
}

// Describe returns a one-line summary including host SIMD features.
func (cpu *CPUBackend) Describe() string {
	features := device.HostFeatures()
	if len(features) == 0 {
		features = []string{"none"}
	}
	return fmt.Sprintf("cpu: %d device(s), strategy=%s, simd=%s",
		len(cpu.devices), cpu.cfg.Strategy, strings.Join(features, ","))
}

// Place re-tags t for dev. Host memory is shared by all CPU devices, so no
// copy is made.
func (cpu *CPUBackend) Place(t *tensor.RawTensor, dev tensor.Device) (*tensor.RawTensor, error) {
	if err := engine.CheckDevice(cpu.Name(), cpu.Capabilities(), dev); err != nil {
		return nil, err
	}
	if t.Device() == dev {
		return t, nil
	}
	klog.V(4).InfoS("placing tensor", "engine", cpu.Name(), "from", t.Device(), "to", dev, "bytes", t.ByteSize())
	return t.WithDevice(dev), nil
}
