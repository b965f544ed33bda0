package tensor

import "fmt"

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.DefaultDevice)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, &ShapeError{
			Op:      "from slice",
			Got:     shape,
			Details: fmt.Sprintf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data)),
		}
	}

	raw, err := NewRaw(shape, DataTypeOf[T](), device)
	if err != nil {
		return nil, err
	}
	copy(Values[T](raw), data)
	return raw, nil
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return NewRaw(shape, dtype, device) // Data is already zero-initialized by make()
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t, err := tensor.Full[float32](tensor.Shape{3, 3}, 1e12, tensor.DefaultDevice)
func Full[T DType](shape Shape, value T, device Device) (*RawTensor, error) {
	raw, err := NewRaw(shape, DataTypeOf[T](), device)
	if err != nil {
		return nil, err
	}
	data := Values[T](raw)
	for i := range data {
		data[i] = value
	}
	return raw, nil
}

// Arange creates a 1-D tensor holding 0, 1, ..., n-1.
//
// Example:
//
//	idx, _ := tensor.Arange(4, tensor.Int64, tensor.DefaultDevice) // [0, 1, 2, 3]
func Arange(n int, dtype DataType, device Device) (*RawTensor, error) {
	if n < 0 {
		return nil, &ShapeError{Op: "arange", Details: fmt.Sprintf("length must be >= 0, got %d", n)}
	}
	raw, err := NewRaw(Shape{n}, dtype, device)
	if err != nil {
		return nil, err
	}
	switch dtype {
	case Float32:
		fillRange(raw.AsFloat32())
	case Float64:
		fillRange(raw.AsFloat64())
	case Int32:
		fillRange(raw.AsInt32())
	case Int64:
		fillRange(raw.AsInt64())
	default:
		return nil, &DTypeError{Op: "arange", DType: dtype}
	}
	return raw, nil
}

func fillRange[T Numeric](data []T) {
	for i := range data {
		data[i] = T(i)
	}
}

// Eye creates an n×n identity matrix.
//
// Example:
//
//	eye, _ := tensor.Eye(3, tensor.Float32, tensor.DefaultDevice)
//	// [[1, 0, 0],
//	//  [0, 1, 0],
//	//  [0, 0, 1]]
func Eye(n int, dtype DataType, device Device) (*RawTensor, error) {
	if n < 0 {
		return nil, &ShapeError{Op: "eye", Details: fmt.Sprintf("size must be >= 0, got %d", n)}
	}
	raw, err := NewRaw(Shape{n, n}, dtype, device)
	if err != nil {
		return nil, err
	}
	switch dtype {
	case Float32:
		fillDiagonal(raw.AsFloat32(), n, 1)
	case Float64:
		fillDiagonal(raw.AsFloat64(), n, 1)
	case Int32:
		fillDiagonal(raw.AsInt32(), n, 1)
	case Int64:
		fillDiagonal(raw.AsInt64(), n, 1)
	case Uint8:
		fillDiagonal(raw.AsUint8(), n, 1)
	case Bool:
		fillDiagonal(raw.AsBool(), n, true)
	}
	return raw, nil
}

func fillDiagonal[T DType](data []T, n int, one T) {
	for i := 0; i < n; i++ {
		data[i*n+i] = one
	}
}
