//go:build windows

// Package webgpu implements the GPU engine on WebGPU.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// Float32 scatter and 4-byte gathers run as compute shaders; offsets are
// always computed on the host by the index mapper, so bounds errors are
// reported before anything is uploaded. Other dtypes run on the host.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/index"
	"github.com/born-ml/ndindex/internal/parallel"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
	"k8s.io/klog/v2"
)

// Config configures the WebGPU backend.
type Config struct {
	// Index is the device index reported for the adapter (gpu:Index).
	Index int
}

// DefaultConfig uses gpu:0.
func DefaultConfig() Config {
	return Config{}
}

// Backend implements engine.Engine on a WebGPU adapter.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	gpu    tensor.Device
	mapper index.Mapper
}

var _ engine.Engine = (*Backend)(nil)

// New creates a WebGPU backend.
// Returns an error wrapping ErrDeviceUnavailable if WebGPU is not available
// or initialization fails.
func New(cfg ...Config) (backend *Backend, err error) {
	c := DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	gpu := tensor.GPUDevice(c.Index)

	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v: %w", r, &tensor.DeviceError{Engine: "webgpu", Device: gpu})
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %v: %w", adapterErr, &tensor.DeviceError{Engine: "webgpu", Device: gpu})
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %v: %w", deviceErr, &tensor.DeviceError{Engine: "webgpu", Device: gpu})
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue: %w", &tensor.DeviceError{Engine: "webgpu", Device: gpu})
	}

	klog.V(2).InfoS("created webgpu backend", "device", gpu)

	return &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		gpu:       gpu,
		mapper:    index.Mapper{Parallel: parallel.DefaultConfig()},
	}, nil
}

// IsAvailable checks if a WebGPU adapter can be acquired.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// Release releases all WebGPU resources.
// Must be called when the backend is no longer needed.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name, pipeline := range b.pipelines {
		pipeline.Release()
		delete(b.pipelines, name)
	}
	for name, shader := range b.shaders {
		shader.Release()
		delete(b.shaders, name)
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "webgpu"
}

// Device returns the adapter's device.
func (b *Backend) Device() tensor.Device {
	return b.gpu
}

// Capabilities reports native support for every reduction and strict one-hot.
// The host CPU is also accepted as a placement.
func (b *Backend) Capabilities() engine.Capabilities {
	return engine.Capabilities{
		NativeReductions: []reduce.Mode{reduce.Sum, reduce.Min, reduce.Max},
		StrictOneHot:     true,
		Strategy:         reduce.Sentinel,
		Devices:          []tensor.Device{b.gpu, tensor.DefaultDevice},
	}
}

// Place re-tags t for dev. Kernel results are read back to host memory, so
// moving between the adapter and the host needs no further copy.
func (b *Backend) Place(t *tensor.RawTensor, dev tensor.Device) (*tensor.RawTensor, error) {
	if err := engine.CheckDevice(b.Name(), b.Capabilities(), dev); err != nil {
		return nil, err
	}
	if t.Device() == dev {
		return t, nil
	}
	klog.V(4).InfoS("placing tensor", "engine", b.Name(), "from", t.Device(), "to", dev, "bytes", t.ByteSize())
	return t.WithDevice(dev), nil
}
