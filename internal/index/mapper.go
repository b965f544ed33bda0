// Package index maps coordinate tensors onto flat row-major offsets.
//
// An index tensor of shape [b0, ..., bn, k] holds one k-tuple per batch
// position. Each tuple addresses the first k dimensions of a target shape; the
// remaining target dimensions are spanned implicitly. With
// stride[i] = product(target[i+1:]), the tuple (i0, ..., i_{k-1}) maps to
//
//	base = Σ i_j * stride[j]
//	offsets = base + 0, base + 1, ..., base + product(target[k:]) - 1
//
// which covers element scatter (k == rank) and row/slab scatter (k < rank)
// with one formula.
package index

import (
	"github.com/born-ml/ndindex/internal/parallel"
	"github.com/born-ml/ndindex/internal/tensor"
)

// Layout describes how an index tensor addresses a target shape.
type Layout struct {
	Target       tensor.Shape // Shape being addressed
	NumIndexDims int          // Last dimension of the index tensor
	Batch        tensor.Shape // Index tensor shape without its last dimension
	Slice        tensor.Shape // Target dimensions spanned implicitly
	SliceSize    int          // product(Slice), the implicit trailing factor

	strides []int
}

// NewLayout validates that indices of shape indicesShape can address target.
func NewLayout(indicesShape, target tensor.Shape) (*Layout, error) {
	if len(indicesShape) == 0 {
		return nil, &tensor.DimensionError{Op: "index layout", NumIndexDims: -1, Target: target}
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := indicesShape.Validate(); err != nil {
		return nil, err
	}
	k := indicesShape[len(indicesShape)-1]
	if k > len(target) {
		return nil, &tensor.DimensionError{Op: "index layout", NumIndexDims: k, Target: target}
	}

	slice := target[k:].Clone()
	return &Layout{
		Target:       target.Clone(),
		NumIndexDims: k,
		Batch:        indicesShape[:len(indicesShape)-1].Clone(),
		Slice:        slice,
		SliceSize:    slice.NumElements(),
		strides:      target.ComputeStrides(),
	}, nil
}

// NumRows returns the number of index tuples.
func (l *Layout) NumRows() int {
	return l.Batch.NumElements()
}

// NumOffsets returns the number of flat offsets the layout produces.
func (l *Layout) NumOffsets() int {
	return l.NumRows() * l.SliceSize
}

// ResultShape returns Batch followed by Slice: the shape of a gather result
// and the expected shape of scatter updates.
func (l *Layout) ResultShape() tensor.Shape {
	return l.Batch.Concat(l.Slice)
}

// Offsets converts flattened coordinates (NumRows × NumIndexDims values) into
// flat offsets, in row order with trailing positions in ascending order.
func (l *Layout) Offsets(coords []int64) ([]int, error) {
	out := make([]int, l.NumOffsets())
	if err := l.fill(out, coords, 0, l.NumRows()); err != nil {
		return nil, err
	}
	return out, nil
}

// fill writes the offsets of rows [startRow, endRow) into out.
func (l *Layout) fill(out []int, coords []int64, startRow, endRow int) error {
	k := l.NumIndexDims
	for row := startRow; row < endRow; row++ {
		base := 0
		tuple := coords[row*k : row*k+k]
		for j, c := range tuple {
			if c < 0 || c >= int64(l.Target[j]) {
				return &tensor.IndexError{Op: "index", Index: c, Dim: j, Size: l.Target[j], Position: row}
			}
			base += int(c) * l.strides[j]
		}
		dst := out[row*l.SliceSize : (row+1)*l.SliceSize]
		for t := range dst {
			dst[t] = base + t
		}
	}
	return nil
}

// Mapper computes offsets, optionally splitting rows across goroutines.
type Mapper struct {
	Parallel parallel.Config
}

// ComputeOffsets maps indices onto target using a sequential Mapper.
//
// Example:
//
//	idx, _ := tensor.FromSlice([]int64{0, 1, 1, 0}, tensor.Shape{2, 2}, tensor.DefaultDevice)
//	offsets, _ := index.ComputeOffsets(idx, tensor.Shape{2, 2}) // [1, 2]
func ComputeOffsets(indices *tensor.RawTensor, target tensor.Shape) ([]int, error) {
	m := Mapper{Parallel: parallel.Sequential()}
	_, offsets, err := m.Map(indices, target)
	return offsets, err
}

// Map validates indices against target and returns the layout and offsets.
func (m Mapper) Map(indices *tensor.RawTensor, target tensor.Shape) (*Layout, []int, error) {
	layout, err := NewLayout(indices.Shape(), target)
	if err != nil {
		return nil, nil, err
	}
	coords, err := indices.IndexValues()
	if err != nil {
		return nil, nil, err
	}

	out := make([]int, layout.NumOffsets())
	err = parallel.ForErr(layout.NumRows(), func(start, end int) error {
		return layout.fill(out, coords, start, end)
	}, m.Parallel)
	if err != nil {
		return nil, nil, err
	}
	return layout, out, nil
}
