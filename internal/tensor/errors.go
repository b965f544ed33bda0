package tensor

import (
	"errors"
	"fmt"
)

// Common errors. Every typed error below unwraps to one of these, so callers
// can match with errors.Is.
var (
	ErrInvalidDeviceSpec      = errors.New("invalid device spec")
	ErrIndexDimensionMismatch = errors.New("index dimension mismatch")
	ErrIndexOutOfBounds       = errors.New("index out of bounds")
	ErrShapeMismatch          = errors.New("shape mismatch")
	ErrUnsupportedReduction   = errors.New("unsupported reduction")
	ErrUnsupportedDType       = errors.New("unsupported dtype")
	ErrDeviceUnavailable      = errors.New("device unavailable")
)

// DeviceSpecError reports a device specifier that could not be parsed.
type DeviceSpecError struct {
	Spec   string // The offending specifier as given by the caller
	Reason string
}

// Error implements the error interface.
func (e *DeviceSpecError) Error() string {
	return fmt.Sprintf("invalid device spec %q: %s (must be one of \"cpu\", \"cpu:N\", \"gpu\", \"gpu:N\")", e.Spec, e.Reason)
}

// Unwrap returns ErrInvalidDeviceSpec.
func (e *DeviceSpecError) Unwrap() error { return ErrInvalidDeviceSpec }

// DeviceError reports a device an engine cannot host.
type DeviceError struct {
	Engine string
	Device Device
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: device %s is not available", e.Engine, e.Device)
}

// Unwrap returns ErrDeviceUnavailable.
func (e *DeviceError) Unwrap() error { return ErrDeviceUnavailable }

// IndexError reports a coordinate outside the addressed dimension.
type IndexError struct {
	Op       string
	Index    int64 // The offending coordinate value
	Dim      int   // Dimension the coordinate addresses
	Size     int   // Size of that dimension
	Position int   // Row of the index tensor holding the coordinate
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of bounds [0, %d) for dimension %d at position %d",
		e.Op, e.Index, e.Size, e.Dim, e.Position)
}

// Unwrap returns ErrIndexOutOfBounds.
func (e *IndexError) Unwrap() error { return ErrIndexOutOfBounds }

// DimensionError reports an index tensor addressing more dimensions than the
// target shape has.
type DimensionError struct {
	Op           string
	NumIndexDims int
	Target       Shape
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: index tuples address %d dimensions but target shape %v has rank %d",
		e.Op, e.NumIndexDims, e.Target, len(e.Target))
}

// Unwrap returns ErrIndexDimensionMismatch.
func (e *DimensionError) Unwrap() error { return ErrIndexDimensionMismatch }

// ShapeError reports incompatible shapes.
type ShapeError struct {
	Op      string
	Got     Shape
	Want    Shape
	Details string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Want != nil {
		return fmt.Sprintf("%s: shape %v is incompatible with %v: %s", e.Op, e.Got, e.Want, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Details)
}

// Unwrap returns ErrShapeMismatch.
func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// ReductionError reports a reduction mode the caller asked for but that does
// not exist (or that the engine cannot run).
type ReductionError struct {
	Mode   string
	Engine string
}

// Error implements the error interface.
func (e *ReductionError) Error() string {
	if e.Engine != "" {
		return fmt.Sprintf("%s: reduction is %q, which this engine does not support", e.Engine, e.Mode)
	}
	return fmt.Sprintf("reduction is %q, but it must be one of \"sum\", \"min\" or \"max\"", e.Mode)
}

// Unwrap returns ErrUnsupportedReduction.
func (e *ReductionError) Unwrap() error { return ErrUnsupportedReduction }

// DTypeError reports a dtype an operation cannot handle.
type DTypeError struct {
	Op      string
	DType   DataType
	Details string
}

// Error implements the error interface.
func (e *DTypeError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Details)
	}
	return fmt.Sprintf("%s: unsupported dtype %s", e.Op, e.DType)
}

// Unwrap returns ErrUnsupportedDType.
func (e *DTypeError) Unwrap() error { return ErrUnsupportedDType }
