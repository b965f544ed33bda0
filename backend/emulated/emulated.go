// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package emulated provides an engine whose only native scatter reduction is
// Sum. Min and Max are emulated with sentinels, and out-of-range one-hot class
// ids encode as zero rows instead of failing.
package emulated

import (
	internalemulated "github.com/born-ml/ndindex/internal/backend/emulated"
	"github.com/born-ml/ndindex/ops"
)

// Backend represents the emulated backend implementation.
type Backend = internalemulated.Backend

// Config configures the emulated backend.
type Config = internalemulated.Config

// Compile-time check that Backend implements ops.Engine.
var _ ops.Engine = (*Backend)(nil)

// DefaultConfig hosts cpu:0 only.
func DefaultConfig() Config {
	return internalemulated.DefaultConfig()
}

// New creates a new emulated backend. With no config, DefaultConfig is used.
func New(cfg ...Config) *Backend {
	return internalemulated.New(cfg...)
}
