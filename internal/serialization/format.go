package serialization

import (
	"github.com/born-ml/ndindex/internal/tensor"
)

// MetadataKey is the reserved header entry holding string metadata.
const MetadataKey = "__metadata__"

// SafeTensors dtype strings.
const (
	DTypeF32  = "F32"
	DTypeF64  = "F64"
	DTypeI32  = "I32"
	DTypeI64  = "I64"
	DTypeU8   = "U8"
	DTypeBool = "BOOL"
)

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// TensorMeta describes where a tensor lives in the data section.
type TensorMeta struct {
	Name   string // Tensor name (e.g., "indices")
	DType  string // SafeTensors dtype (e.g., "F32")
	Shape  []int  // Tensor shape
	Offset int64  // Offset in the data section (bytes from start of tensor data)
	Size   int64  // Size in bytes
}

// dtypeToSafeTensors converts tensor.DataType to SafeTensors dtype string.
func dtypeToSafeTensors(dt tensor.DataType) (string, bool) {
	switch dt {
	case tensor.Float32:
		return DTypeF32, true
	case tensor.Float64:
		return DTypeF64, true
	case tensor.Int32:
		return DTypeI32, true
	case tensor.Int64:
		return DTypeI64, true
	case tensor.Uint8:
		return DTypeU8, true
	case tensor.Bool:
		return DTypeBool, true
	default:
		return "", false
	}
}

// safeTensorsToDType converts a SafeTensors dtype string to tensor.DataType.
func safeTensorsToDType(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeF32:
		return tensor.Float32, true
	case DTypeF64:
		return tensor.Float64, true
	case DTypeI32:
		return tensor.Int32, true
	case DTypeI64:
		return tensor.Int64, true
	case DTypeU8:
		return tensor.Uint8, true
	case DTypeBool:
		return tensor.Bool, true
	default:
		return 0, false
	}
}
