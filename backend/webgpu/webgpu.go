// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU engine.
//
// Float32 scatters and 4-byte gathers run as compute shaders; offsets are
// mapped on the host and every other dtype runs on host kernels. The native
// bindings are only available on windows; elsewhere New returns an error
// matching tensor.ErrDeviceUnavailable.
//
// Example:
//
//	gpu, err := webgpu.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Release()
//
//	out, err := ops.ScatterND(gpu, indices, updates, shape, ops.Max)
package webgpu

import (
	internalwebgpu "github.com/born-ml/ndindex/internal/backend/webgpu"
	"github.com/born-ml/ndindex/ops"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Config configures the WebGPU backend.
type Config = internalwebgpu.Config

// Compile-time check that Backend implements ops.Engine.
var _ ops.Engine = (*Backend)(nil)

// New creates a new WebGPU backend. Call Release when done to free GPU
// resources.
func New(cfg ...Config) (*Backend, error) {
	return internalwebgpu.New(cfg...)
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
