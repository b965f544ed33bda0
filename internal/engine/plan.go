package engine

import (
	"fmt"

	"github.com/born-ml/ndindex/internal/index"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
)

// GatherPlan is a validated gather: where to read and what shape to produce.
type GatherPlan struct {
	Offsets []int
	Shape   tensor.Shape
}

// ScatterPlan is a validated scatter: where each update lands.
type ScatterPlan struct {
	Offsets []int
	Shape   tensor.Shape
	Mode    reduce.Mode
}

// PlanGatherND validates a gather_nd and maps its coordinates onto source.
func PlanGatherND(m index.Mapper, source, indices *tensor.RawTensor) (*GatherPlan, error) {
	layout, offsets, err := m.Map(indices, source.Shape())
	if err != nil {
		return nil, fmt.Errorf("gather_nd: %w", err)
	}
	return &GatherPlan{Offsets: offsets, Shape: layout.ResultShape()}, nil
}

// PlanGatherFlat validates a gather along axis 0. Indices of any rank are
// treated as single-coordinate tuples.
func PlanGatherFlat(m index.Mapper, source, indices *tensor.RawTensor) (*GatherPlan, error) {
	if source.Rank() == 0 {
		return nil, &tensor.ShapeError{Op: "gather_flat", Got: source.Shape(), Details: "source must have rank >= 1"}
	}
	tuples, err := AsTuples(indices)
	if err != nil {
		return nil, fmt.Errorf("gather_flat: %w", err)
	}
	layout, offsets, err := m.Map(tuples, source.Shape())
	if err != nil {
		return nil, fmt.Errorf("gather_flat: %w", err)
	}
	return &GatherPlan{Offsets: offsets, Shape: layout.ResultShape()}, nil
}

// PlanScatterND validates a scatter_nd before anything is allocated: mode,
// target shape, updates dtype, updates shape against the index batch, then
// coordinate bounds.
func PlanScatterND(m index.Mapper, indices, updates *tensor.RawTensor, shape tensor.Shape, mode reduce.Mode) (*ScatterPlan, error) {
	if err := mode.Validate(); err != nil {
		return nil, fmt.Errorf("scatter_nd: %w", err)
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("scatter_nd: %w", err)
	}
	if !updates.DType().IsNumeric() {
		return nil, &tensor.DTypeError{Op: "scatter_nd", DType: updates.DType()}
	}

	layout, err := index.NewLayout(indices.Shape(), shape)
	if err != nil {
		return nil, fmt.Errorf("scatter_nd: %w", err)
	}
	if err := checkUpdates(layout, updates.Shape()); err != nil {
		return nil, err
	}

	_, offsets, err := m.Map(indices, shape)
	if err != nil {
		return nil, fmt.Errorf("scatter_nd: %w", err)
	}
	return &ScatterPlan{Offsets: offsets, Shape: shape.Clone(), Mode: mode}, nil
}

// PlanScatterFlat validates a scatter into a 1-D tensor of the given size.
func PlanScatterFlat(m index.Mapper, indices, updates *tensor.RawTensor, size int, mode reduce.Mode) (*ScatterPlan, error) {
	if size < 0 {
		return nil, &tensor.ShapeError{Op: "scatter_flat", Details: fmt.Sprintf("size must be >= 0, got %d", size)}
	}
	tuples, err := AsTuples(indices)
	if err != nil {
		return nil, fmt.Errorf("scatter_flat: %w", err)
	}
	return PlanScatterND(m, tuples, updates, tensor.Shape{size}, mode)
}

// checkUpdates requires the updates shape to be the index batch dimensions
// followed by the implicit slice dimensions of the target.
func checkUpdates(layout *index.Layout, got tensor.Shape) error {
	batch := layout.Batch
	if len(got) < len(batch) || !got[:len(batch)].Equal(batch) {
		return &tensor.ShapeError{
			Op:      "scatter",
			Got:     got,
			Want:    layout.ResultShape(),
			Details: fmt.Sprintf("leading dimensions must equal the index batch shape %v", batch),
		}
	}
	if !got[len(batch):].Equal(layout.Slice) {
		return &tensor.ShapeError{
			Op:      "scatter",
			Got:     got,
			Want:    layout.ResultShape(),
			Details: fmt.Sprintf("trailing dimensions must equal the target slice %v", layout.Slice),
		}
	}
	return nil
}

// AsTuples views indices as single-coordinate tuples by appending a unit
// dimension: [n] becomes [n, 1].
func AsTuples(indices *tensor.RawTensor) (*tensor.RawTensor, error) {
	if !indices.DType().IsInteger() {
		return nil, &tensor.DTypeError{Op: "index", DType: indices.DType(),
			Details: fmt.Sprintf("index tensor must be int32 or int64, got %s", indices.DType())}
	}
	return indices.Reshape(indices.Shape().Concat(tensor.Shape{1}))
}

// CheckDevice fails with ErrDeviceUnavailable when caps cannot host dev.
func CheckDevice(engine string, caps Capabilities, dev tensor.Device) error {
	if !caps.Hosts(dev) {
		return &tensor.DeviceError{Engine: engine, Device: dev}
	}
	return nil
}
