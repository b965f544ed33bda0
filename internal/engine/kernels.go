package engine

import (
	"fmt"

	"github.com/born-ml/ndindex/internal/parallel"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
)

// Gather materializes plan from source on source's device. Elements are
// copied byte-wise, so every dtype is supported.
func Gather(source *tensor.RawTensor, plan *GatherPlan, cfg parallel.Config) (*tensor.RawTensor, error) {
	result, err := tensor.NewRaw(plan.Shape, source.DType(), source.Device())
	if err != nil {
		return nil, err
	}

	elem := source.DType().Size()
	src, dst := source.Data(), result.Data()
	parallel.ForChunks(len(plan.Offsets), func(start, end int) {
		for i := start; i < end; i++ {
			off := plan.Offsets[i] * elem
			copy(dst[i*elem:(i+1)*elem], src[off:off+elem])
		}
	}, cfg)
	return result, nil
}

// ScatterFunc folds updates[i] into a fresh destination of size elements at
// offsets[i].
type ScatterFunc[T tensor.Numeric] func(size int, offsets []int, updates []T, mode reduce.Mode) ([]T, error)

// Scatter runs the kernel matching the dtype of updates and wraps the destination in a tensor on dev.
func Scatter(updates *tensor.RawTensor, plan *ScatterPlan, dev tensor.Device, k Kernels) (*tensor.RawTensor, error) {
	size := plan.Shape.NumElements()
	switch updates.DType() {
	case tensor.Float32:
		return scatterTyped(updates.AsFloat32(), plan, size, dev, k.Float32)
	case tensor.Float64:
		return scatterTyped(updates.AsFloat64(), plan, size, dev, k.Float64)
	case tensor.Int32:
		return scatterTyped(updates.AsInt32(), plan, size, dev, k.Int32)
	case tensor.Int64:
		return scatterTyped(updates.AsInt64(), plan, size, dev, k.Int64)
	default:
		return nil, &tensor.DTypeError{Op: "scatter", DType: updates.DType()}
	}
}

// Kernels holds one scatter kernel per numeric dtype.
type Kernels struct {
	Float32 ScatterFunc[float32]
	Float64 ScatterFunc[float64]
	Int32   ScatterFunc[int32]
	Int64   ScatterFunc[int64]
}

func scatterTyped[T tensor.Numeric](updates []T, plan *ScatterPlan, size int, dev tensor.Device, kernel ScatterFunc[T]) (*tensor.RawTensor, error) {
	if kernel == nil {
		return nil, &tensor.DTypeError{Op: "scatter", DType: tensor.DataTypeOf[T](), Details: fmt.Sprintf("no %s kernel", tensor.DataTypeOf[T]())}
	}
	dst, err := kernel(size, plan.Offsets, updates, plan.Mode)
	if err != nil {
		return nil, err
	}
	return tensor.FromSlice(dst, plan.Shape, dev)
}
