package emulated

import (
	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
	"k8s.io/klog/v2"
)

// ScatterFlat folds updates into a fresh [size] tensor.
func (b *Backend) ScatterFlat(indices, updates *tensor.RawTensor, size int, mode reduce.Mode) (*tensor.RawTensor, error) {
	plan, err := engine.PlanScatterFlat(b.mapper, indices, updates, size, mode)
	if err != nil {
		return nil, err
	}
	return b.scatter(updates, plan)
}

// ScatterND folds updates into a fresh tensor of the given shape.
func (b *Backend) ScatterND(indices, updates *tensor.RawTensor, shape tensor.Shape, mode reduce.Mode) (*tensor.RawTensor, error) {
	plan, err := engine.PlanScatterND(b.mapper, indices, updates, shape, mode)
	if err != nil {
		return nil, err
	}
	return b.scatter(updates, plan)
}

func (b *Backend) scatter(updates *tensor.RawTensor, plan *engine.ScatterPlan) (*tensor.RawTensor, error) {
	klog.V(4).InfoS("scatter", "engine", b.Name(), "updates", updates.Shape(),
		"result", plan.Shape, "mode", plan.Mode, "native", b.Capabilities().Native(plan.Mode))

	k := engine.Kernels{
		Float32: scatter[float32],
		Float64: scatter[float64],
		Int32:   scatter[int32],
		Int64:   scatter[int64],
	}
	return engine.Scatter(updates, plan, updates.Device(), k)
}

// scatter runs Sum on the native add kernel and emulates Min/Max.
func scatter[T tensor.Numeric](size int, offsets []int, updates []T, mode reduce.Mode) ([]T, error) {
	dst := make([]T, size)
	if mode == reduce.Sum {
		scatterAdd(dst, offsets, updates)
		return dst, nil
	}
	if err := reduce.Emulate(dst, offsets, updates, mode, reduce.Sentinel); err != nil {
		return nil, err
	}
	return dst, nil
}

// scatterAdd is the backend's native primitive: dst[offsets[i]] += updates[i].
func scatterAdd[T tensor.Numeric](dst []T, offsets []int, updates []T) {
	for i, off := range offsets {
		dst[off] += updates[i]
	}
}
