package engine

import (
	"fmt"

	"github.com/born-ml/ndindex/internal/tensor"
)

// RowGatherer is the part of an Engine one-hot encoding is built on.
type RowGatherer interface {
	GatherFlat(source, indices *tensor.RawTensor) (*tensor.RawTensor, error)
}

// OneHotByGather encodes indices by gathering rows of a depth×depth identity
// matrix and reshaping to indices.shape + [depth].
//
// With strict set, an index outside [0, depth) fails with ErrIndexOutOfBounds
// from the gather. Otherwise such indices are redirected to an extra all-zero
// row, so they encode as zeros.
func OneHotByGather(g RowGatherer, indices *tensor.RawTensor, depth int, strict bool) (*tensor.RawTensor, error) {
	if depth < 0 {
		return nil, &tensor.ShapeError{Op: "one_hot", Details: fmt.Sprintf("depth must be >= 0, got %d", depth)}
	}
	ids, err := indices.IndexValues()
	if err != nil {
		return nil, fmt.Errorf("one_hot: %w", err)
	}
	dev := indices.Device()

	table, err := tensor.Eye(depth, tensor.Float32, dev)
	if err != nil {
		return nil, err
	}
	flat := make([]int64, len(ids))
	copy(flat, ids)

	if !strict {
		// Row depth of the padded table is all zeros.
		padded, err := tensor.Zeros(tensor.Shape{depth + 1, depth}, tensor.Float32, dev)
		if err != nil {
			return nil, err
		}
		copy(padded.AsFloat32(), table.AsFloat32())
		table = padded
		for i, id := range flat {
			if id < 0 || id >= int64(depth) {
				flat[i] = int64(depth)
			}
		}
	}

	rows, err := tensor.FromSlice(flat, tensor.Shape{len(flat)}, dev)
	if err != nil {
		return nil, err
	}
	gathered, err := g.GatherFlat(table, rows)
	if err != nil {
		return nil, fmt.Errorf("one_hot: %w", err)
	}
	return gathered.Reshape(indices.Shape().Concat(tensor.Shape{depth}))
}
