// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/ndindex/internal/device"
	"github.com/born-ml/ndindex/internal/tensor"
)

// DType is a constraint for tensor data types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// Numeric is the subset of DType that scatter reductions fold.
type Numeric = tensor.Numeric

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// DeviceKind identifies a class of compute unit.
type DeviceKind = tensor.DeviceKind

// Device kinds.
const (
	CPU DeviceKind = tensor.CPU
	GPU DeviceKind = tensor.GPU
)

// Device identifies a specific compute unit (kind + index).
type Device = tensor.Device

// DefaultDevice is cpu:0.
var DefaultDevice = tensor.DefaultDevice

// CPUDevice returns the CPU device with the given index.
func CPUDevice(index int) Device { return tensor.CPUDevice(index) }

// GPUDevice returns the GPU device with the given index.
func GPUDevice(index int) Device { return tensor.GPUDevice(index) }

// ParseDevice converts "cpu", "cpu:N", "gpu" or "gpu:N" into a Device.
func ParseDevice(spec string) (Device, error) { return device.Parse(spec) }

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the tensor representation shared by every engine.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.DefaultDevice)
//	data := raw.AsFloat32()  // Type-safe access
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType, dev Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, dev)
}

// FromSlice copies data into a new tensor of the given shape.
func FromSlice[T DType](data []T, shape Shape, dev Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, dev)
}

// Values returns the typed view of r's buffer. It panics if T does not match
// r's dtype.
func Values[T DType](r *RawTensor) []T {
	return tensor.Values[T](r)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType, dev Device) (*RawTensor, error) {
	return tensor.Zeros(shape, dtype, dev)
}

// Full creates a tensor with every element set to value.
func Full[T DType](shape Shape, value T, dev Device) (*RawTensor, error) {
	return tensor.Full(shape, value, dev)
}

// Arange creates the 1-D tensor 0, 1, ..., n-1.
func Arange(n int, dtype DataType, dev Device) (*RawTensor, error) {
	return tensor.Arange(n, dtype, dev)
}

// Eye creates the n×n identity matrix.
func Eye(n int, dtype DataType, dev Device) (*RawTensor, error) {
	return tensor.Eye(n, dtype, dev)
}

// ParseDataType resolves a dtype name such as "float32".
func ParseDataType(s string) (DataType, error) {
	return tensor.ParseDataType(s)
}

// Errors returned by ndindex operations. Match them with errors.Is.
var (
	ErrInvalidDeviceSpec      = tensor.ErrInvalidDeviceSpec
	ErrIndexDimensionMismatch = tensor.ErrIndexDimensionMismatch
	ErrIndexOutOfBounds       = tensor.ErrIndexOutOfBounds
	ErrShapeMismatch          = tensor.ErrShapeMismatch
	ErrUnsupportedReduction   = tensor.ErrUnsupportedReduction
	ErrUnsupportedDType       = tensor.ErrUnsupportedDType
	ErrDeviceUnavailable      = tensor.ErrDeviceUnavailable
)

// Typed errors carrying the details of a failure. Match them with errors.As.
type (
	DeviceSpecError = tensor.DeviceSpecError
	DeviceError     = tensor.DeviceError
	IndexError      = tensor.IndexError
	DimensionError  = tensor.DimensionError
	ShapeError      = tensor.ShapeError
	ReductionError  = tensor.ReductionError
	DTypeError      = tensor.DTypeError
)
