//go:build !windows

// Package webgpu implements the GPU engine on WebGPU. The native bindings are
// only wired up on windows; elsewhere New always fails with
// ErrDeviceUnavailable.
package webgpu

import (
	"fmt"

	"github.com/born-ml/ndindex/internal/backend/cpu"
	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/tensor"
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

// Backend is never constructed on this platform. It carries the method set
// of engine.Engine so callers compile unchanged.
type Backend struct {
	*cpu.CPUBackend
}

var _ engine.Engine = (*Backend)(nil)

// New reports that WebGPU is not available on this platform.
func New(cfg ...Config) (*Backend, error) {
	c := DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return nil, fmt.Errorf("webgpu: not supported on this platform: %w",
		&tensor.DeviceError{Engine: "webgpu", Device: tensor.GPUDevice(c.Index)})
}

// IsAvailable always returns false on this platform.
func IsAvailable() bool {
	return false
}

// Release is a no-op.
func (b *Backend) Release() {}
