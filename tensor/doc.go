// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor and device types of ndindex.
//
// # Overview
//
// A RawTensor is a row-major byte buffer with a shape, a dtype and a device
// placement. Operations never mutate their inputs; results may share buffers
// with them only through views such as Reshape.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/ndindex/backend/cpu"
//	    "github.com/born-ml/ndindex/ops"
//	    "github.com/born-ml/ndindex/tensor"
//	)
//
//	func main() {
//	    e := cpu.New()
//	    src, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.DefaultDevice)
//	    idx, _ := tensor.FromSlice([]int64{1, 2, 0, 0}, tensor.Shape{2, 2}, tensor.DefaultDevice)
//	    out, _ := ops.GatherND(e, src, idx) // [6 1]
//	}
//
// # Supported Data Types
//
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers, also the index dtypes)
//   - uint8 (unsigned integers)
//   - bool (boolean masks)
//
// Scatter reductions accept the four numeric dtypes; gather copies any dtype.
//
// # Devices
//
// A Device is a kind (CPU or GPU) and an index. Specifier strings "cpu",
// "cpu:N", "gpu" and "gpu:N" are parsed by ParseDevice.
package tensor
