package cpu

import (
	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/tensor"
	"k8s.io/klog/v2"
)

// GatherFlat selects rows of source along axis 0.
//
// Example:
//
//	source: [[1, 2], [3, 4], [5, 6]]
//	indices: [2, 0]
//	output: [[5, 6], [1, 2]]
func (cpu *CPUBackend) GatherFlat(source, indices *tensor.RawTensor) (*tensor.RawTensor, error) {
	plan, err := engine.PlanGatherFlat(cpu.mapper, source, indices)
	if err != nil {
		return nil, err
	}
	klog.V(4).InfoS("gather", "engine", cpu.Name(), "op", "gather_flat",
		"source", source.Shape(), "indices", indices.Shape(), "result", plan.Shape)
	return engine.Gather(source, plan, cpu.cfg.Parallel)
}

// GatherND reads source at N-D coordinates, spanning unindexed trailing
// dimensions.
//
// Example:
//
//	source: [[1, 2], [3, 4]]
//	indices: [[0, 1], [1, 0]]
//	output: [2, 3]
func (cpu *CPUBackend) GatherND(source, indices *tensor.RawTensor) (*tensor.RawTensor, error) {
	plan, err := engine.PlanGatherND(cpu.mapper, source, indices)
	if err != nil {
		return nil, err
	}
	klog.V(4).InfoS("gather", "engine", cpu.Name(), "op", "gather_nd",
		"source", source.Shape(), "indices", indices.Shape(), "result", plan.Shape)
	return engine.Gather(source, plan, cpu.cfg.Parallel)
}

// OneHot encodes indices as rows of an identity matrix. Indices outside
// [0, depth) fail with ErrIndexOutOfBounds.
func (cpu *CPUBackend) OneHot(indices *tensor.RawTensor, depth int) (*tensor.RawTensor, error) {
	klog.V(4).InfoS("one_hot", "engine", cpu.Name(), "indices", indices.Shape(), "depth", depth)
	return engine.OneHotByGather(cpu, indices, depth, true)
}
