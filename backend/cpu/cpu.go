// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go reference engine.
//
// All three scatter reductions run natively, one-hot is strict about
// out-of-range class ids, and offset mapping, gathers and scatters can fan
// out across goroutines (see Config).
package cpu

import (
	internalcpu "github.com/born-ml/ndindex/internal/backend/cpu"
	"github.com/born-ml/ndindex/ops"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Config configures the CPU backend.
type Config = internalcpu.Config

// Compile-time check that Backend implements ops.Engine.
var _ ops.Engine = (*Backend)(nil)

// DefaultConfig returns a parallel, sentinel-based configuration hosting cpu:0.
func DefaultConfig() Config {
	return internalcpu.DefaultConfig()
}

// New creates a new CPU backend. With no config, DefaultConfig is used.
//
// Example:
//
//	e := cpu.New()
//	out, err := ops.GatherFlat(e, source, indices)
func New(cfg ...Config) *Backend {
	return internalcpu.New(cfg...)
}
