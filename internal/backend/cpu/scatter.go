package cpu

import (
	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
	"k8s.io/klog/v2"
)

// ScatterFlat folds updates into a fresh [size] tensor.
//
// Example:
//
//	indices: [0, 1, 0], updates: [3, 4, 5], size: 3, mode: Sum
//	output: [8, 4, 0]
func (cpu *CPUBackend) ScatterFlat(indices, updates *tensor.RawTensor, size int, mode reduce.Mode) (*tensor.RawTensor, error) {
	plan, err := engine.PlanScatterFlat(cpu.mapper, indices, updates, size, mode)
	if err != nil {
		return nil, err
	}
	return cpu.scatter(updates, plan, "scatter_flat")
}

// ScatterND folds updates into a fresh tensor of the given shape.
//
// Example:
//
//	indices: [[0, 1], [1, 0]], updates: [3, 4], shape: [2, 2], mode: Max
//	output: [[0, 3], [4, 0]]
func (cpu *CPUBackend) ScatterND(indices, updates *tensor.RawTensor, shape tensor.Shape, mode reduce.Mode) (*tensor.RawTensor, error) {
	plan, err := engine.PlanScatterND(cpu.mapper, indices, updates, shape, mode)
	if err != nil {
		return nil, err
	}
	return cpu.scatter(updates, plan, "scatter_nd")
}

func (cpu *CPUBackend) scatter(updates *tensor.RawTensor, plan *engine.ScatterPlan, op string) (*tensor.RawTensor, error) {
	klog.V(4).InfoS("scatter", "engine", cpu.Name(), "op", op,
		"updates", updates.Shape(), "result", plan.Shape, "mode", plan.Mode, "strategy", cpu.cfg.Strategy)

	return engine.Scatter(updates, plan, updates.Device(), Kernels(cpu.cfg.Strategy))
}

// Kernels returns accumulator-based scatter kernels for every numeric dtype.
func Kernels(strategy reduce.Strategy) engine.Kernels {
	return engine.Kernels{
		Float32: accumulate[float32](strategy),
		Float64: accumulate[float64](strategy),
		Int32:   accumulate[int32](strategy),
		Int64:   accumulate[int64](strategy),
	}
}

// accumulate folds updates sequentially; collisions make the fold order
// matter for intermediate values only.
func accumulate[T tensor.Numeric](strategy reduce.Strategy) engine.ScatterFunc[T] {
	return func(size int, offsets []int, updates []T, mode reduce.Mode) ([]T, error) {
		acc, err := reduce.NewAccumulator[T](mode, strategy, size)
		if err != nil {
			return nil, err
		}
		acc.AddAll(offsets, updates)
		return acc.Finish(), nil
	}
}
