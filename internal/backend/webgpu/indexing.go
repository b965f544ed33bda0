//go:build windows

package webgpu

import (
	"encoding/binary"
	"math"

	"github.com/born-ml/ndindex/internal/backend/cpu"
	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
	"k8s.io/klog/v2"
)

// GatherFlat selects rows of source along axis 0.
func (b *Backend) GatherFlat(source, indices *tensor.RawTensor) (*tensor.RawTensor, error) {
	plan, err := engine.PlanGatherFlat(b.mapper, source, indices)
	if err != nil {
		return nil, err
	}
	return b.gather(source, plan, "gather_flat")
}

// GatherND reads source at N-D coordinates.
func (b *Backend) GatherND(source, indices *tensor.RawTensor) (*tensor.RawTensor, error) {
	plan, err := engine.PlanGatherND(b.mapper, source, indices)
	if err != nil {
		return nil, err
	}
	return b.gather(source, plan, "gather_nd")
}

// OneHot encodes indices by gathering identity rows on the GPU. Indices
// outside [0, depth) fail with ErrIndexOutOfBounds.
func (b *Backend) OneHot(indices *tensor.RawTensor, depth int) (*tensor.RawTensor, error) {
	return engine.OneHotByGather(b, indices, depth, true)
}

func (b *Backend) gather(source *tensor.RawTensor, plan *engine.GatherPlan, op string) (*tensor.RawTensor, error) {
	if source.DType().Size() != 4 || !fitsU32(len(plan.Offsets), source.NumElements()) {
		klog.V(4).InfoS("gather on host", "engine", b.Name(), "op", op, "dtype", source.DType())
		return engine.Gather(source, plan, b.mapper.Parallel)
	}
	klog.V(4).InfoS("gather", "engine", b.Name(), "op", op, "source", source.Shape(), "result", plan.Shape)

	n := len(plan.Offsets)
	data, err := b.dispatch("gather", gatherShader, n,
		[][]byte{source.Data(), u32Bytes(plan.Offsets)},
		uint64(n*4), uint32(n))
	if err != nil {
		return nil, err
	}

	result, err := tensor.NewRaw(plan.Shape, source.DType(), source.Device())
	if err != nil {
		return nil, err
	}
	copy(result.Data(), data)
	return result, nil
}

// ScatterFlat folds updates into a fresh [size] tensor.
// Min and Max of NaN updates on the GPU follow WGSL min/max, which leave NaN unspecified.
func (b *Backend) ScatterFlat(indices, updates *tensor.RawTensor, size int, mode reduce.Mode) (*tensor.RawTensor, error) {
	plan, err := engine.PlanScatterFlat(b.mapper, indices, updates, size, mode)
	if err != nil {
		return nil, err
	}
	return b.scatter(updates, plan, "scatter_flat")
}

// ScatterND folds updates into a fresh tensor of the given shape.
func (b *Backend) ScatterND(indices, updates *tensor.RawTensor, shape tensor.Shape, mode reduce.Mode) (*tensor.RawTensor, error) {
	plan, err := engine.PlanScatterND(b.mapper, indices, updates, shape, mode)
	if err != nil {
		return nil, err
	}
	return b.scatter(updates, plan, "scatter_nd")
}

func (b *Backend) scatter(updates *tensor.RawTensor, plan *engine.ScatterPlan, op string) (*tensor.RawTensor, error) {
	size := plan.Shape.NumElements()
	if updates.DType() != tensor.Float32 || !fitsU32(len(plan.Offsets), size+1) {
		klog.V(4).InfoS("scatter on host", "engine", b.Name(), "op", op, "dtype", updates.DType())
		return engine.Scatter(updates, plan, updates.Device(), cpu.Kernels(reduce.Sentinel))
	}
	klog.V(4).InfoS("scatter", "engine", b.Name(), "op", op,
		"updates", updates.Shape(), "result", plan.Shape, "mode", plan.Mode)

	order, starts := groupByDestination(plan.Offsets, size)
	data, err := b.dispatch("scatter", scatterShader, size,
		[][]byte{updates.Data(), u32Bytes(order), u32Bytes(starts)},
		uint64(size*4), uint32(size), uint32(plan.Mode))
	if err != nil {
		return nil, err
	}

	result, err := tensor.NewRaw(plan.Shape, tensor.Float32, updates.Device())
	if err != nil {
		return nil, err
	}
	copy(result.Data(), data)
	return result, nil
}

// groupByDestination counting-sorts update positions by destination offset.
// Updates for destination d are order[starts[d]:starts[d+1]], in their
// original order, so the GPU folds them in the same order as the host.
func groupByDestination(offsets []int, size int) (order, starts []int) {
	starts = make([]int, size+1)
	for _, off := range offsets {
		starts[off+1]++
	}
	for d := 1; d <= size; d++ {
		starts[d] += starts[d-1]
	}

	cursor := append([]int(nil), starts[:size]...)
	order = make([]int, len(offsets))
	for i, off := range offsets {
		order[cursor[off]] = i
		cursor[off]++
	}
	return order, starts
}

// fitsU32 reports whether a dispatch over n items addressing limit elements
// can run: empty bindings are not allowed and indices must fit in u32.
func fitsU32(n, limit int) bool {
	return n > 0 && limit > 0 && n <= math.MaxUint32 && limit <= math.MaxUint32
}

// u32Bytes encodes values as little-endian u32 words.
func u32Bytes(values []int) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		//nolint:gosec // G115: bounded by fitsU32
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}
