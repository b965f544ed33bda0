package tensor

import (
	"fmt"
	"math"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Validate checks if the shape is valid (all dimensions >= 0 and an element
// count that fits in an int). Zero-sized dimensions are allowed and describe
// empty tensors.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return &ShapeError{
				Op:      "validate shape",
				Got:     s,
				Details: fmt.Sprintf("invalid dimension at index %d: %d (must be >= 0)", i, dim),
			}
		}
	}
	if _, ok := s.checkedNumElements(); !ok {
		return &ShapeError{
			Op:      "validate shape",
			Got:     s,
			Details: "element count overflows int",
		}
	}
	return nil
}

// ValidateBytes validates s and checks that s holds elements of elemSize
// bytes without overflowing an int byte count.
func (s Shape) ValidateBytes(elemSize int) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if elemSize > 0 && s.NumElements() > math.MaxInt/elemSize {
		return &ShapeError{
			Op:      "validate shape",
			Got:     s,
			Details: fmt.Sprintf("byte size of %d-byte elements overflows int", elemSize),
		}
	}
	return nil
}

// checkedNumElements is NumElements with overflow detection. Dimensions must
// be non-negative.
func (s Shape) checkedNumElements() (int, bool) {
	n := 1
	for _, dim := range s {
		if dim == 0 {
			return 0, true
		}
	}
	for _, dim := range s {
		if n > math.MaxInt/dim {
			return 0, false
		}
		n *= dim
	}
	return n, true
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Concat returns a new shape holding s followed by other.
func (s Shape) Concat(other Shape) Shape {
	out := make(Shape, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}
