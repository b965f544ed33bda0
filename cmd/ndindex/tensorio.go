package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/born-ml/ndindex/internal/blobs"
	"github.com/born-ml/ndindex/internal/serialization"
	"github.com/born-ml/ndindex/internal/tensor"
)

// tensorJSON is the explicit JSON form of a tensor. Data is row-major.
type tensorJSON struct {
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Device string `json:"device,omitempty"`
	Data   []any  `json:"data"`
}

// parseTensor decodes an inline tensor. It accepts either the explicit form
// {"dtype":"int64","shape":[2,1],"data":[1,0]} or a nested array such as
// [[1,2],[3,4]], whose dtype is dt.
func parseTensor(s string, dt tensor.DataType, dev tensor.Device) (*tensor.RawTensor, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parsing tensor json: %w", err)
	}

	var (
		shape  tensor.Shape
		leaves []any
	)
	switch v := v.(type) {
	case map[string]any:
		var tj tensorJSON
		d := json.NewDecoder(strings.NewReader(s))
		d.UseNumber()
		if err := d.Decode(&tj); err != nil {
			return nil, fmt.Errorf("parsing tensor json: %w", err)
		}
		if tj.DType != "" {
			var err error
			if dt, err = tensor.ParseDataType(tj.DType); err != nil {
				return nil, err
			}
		}
		if tj.Shape == nil {
			var err error
			if tj.Shape, err = inferShape(tj.Data); err != nil {
				return nil, err
			}
		}
		shape, leaves = tj.Shape, flatten(tj.Data, nil)
	default:
		var err error
		if shape, err = inferShape(v); err != nil {
			return nil, err
		}
		leaves = flatten(v, nil)
	}

	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(leaves) != shape.NumElements() {
		return nil, fmt.Errorf("shape %v needs %d values, got %d", shape, shape.NumElements(), len(leaves))
	}
	return fromLeaves(leaves, shape, dt, dev)
}

// inferShape walks a nested array and requires every level to be regular.
func inferShape(v any) (tensor.Shape, error) {
	arr, ok := v.([]any)
	if !ok {
		return tensor.Shape{}, nil
	}
	if len(arr) == 0 {
		return tensor.Shape{0}, nil
	}
	inner, err := inferShape(arr[0])
	if err != nil {
		return nil, err
	}
	for i, e := range arr[1:] {
		got, err := inferShape(e)
		if err != nil {
			return nil, err
		}
		if !got.Equal(inner) {
			return nil, fmt.Errorf("ragged array: element %d has shape %v, element 0 has %v", i+1, got, inner)
		}
	}
	return tensor.Shape{len(arr)}.Concat(inner), nil
}

func flatten(v any, out []any) []any {
	arr, ok := v.([]any)
	if !ok {
		return append(out, v)
	}
	for _, e := range arr {
		out = flatten(e, out)
	}
	return out
}

func fromLeaves(leaves []any, shape tensor.Shape, dt tensor.DataType, dev tensor.Device) (*tensor.RawTensor, error) {
	switch dt {
	case tensor.Float32:
		return convert(leaves, shape, dev, func(s string) (float32, error) {
			f, err := strconv.ParseFloat(s, 32)
			return float32(f), err
		})
	case tensor.Float64:
		return convert(leaves, shape, dev, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
	case tensor.Int32:
		return convert(leaves, shape, dev, func(s string) (int32, error) {
			i, err := strconv.ParseInt(s, 10, 32)
			return int32(i), err
		})
	case tensor.Int64:
		return convert(leaves, shape, dev, func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		})
	case tensor.Uint8:
		return convert(leaves, shape, dev, func(s string) (uint8, error) {
			u, err := strconv.ParseUint(s, 10, 8)
			return uint8(u), err
		})
	case tensor.Bool:
		return convert(leaves, shape, dev, strconv.ParseBool)
	default:
		return nil, &tensor.DTypeError{Op: "parse tensor", DType: dt}
	}
}

func convert[T tensor.DType](leaves []any, shape tensor.Shape, dev tensor.Device, parse func(string) (T, error)) (*tensor.RawTensor, error) {
	data := make([]T, len(leaves))
	for i, leaf := range leaves {
		var s string
		switch leaf := leaf.(type) {
		case json.Number:
			s = leaf.String()
		case bool:
			s = strconv.FormatBool(leaf)
		default:
			return nil, fmt.Errorf("value %d: unexpected %T", i, leaf)
		}
		v, err := parse(s)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		data[i] = v
	}
	return tensor.FromSlice(data, shape, dev)
}

// encodeTensor renders t in the explicit JSON form.
func encodeTensor(t *tensor.RawTensor) tensorJSON {
	tj := tensorJSON{
		DType:  t.DType().String(),
		Shape:  t.Shape(),
		Device: t.Device().String(),
		Data:   make([]any, 0, t.NumElements()),
	}
	switch t.DType() {
	case tensor.Float32:
		tj.Data = appendAll(tj.Data, t.AsFloat32())
	case tensor.Float64:
		tj.Data = appendAll(tj.Data, t.AsFloat64())
	case tensor.Int32:
		tj.Data = appendAll(tj.Data, t.AsInt32())
	case tensor.Int64:
		tj.Data = appendAll(tj.Data, t.AsInt64())
	case tensor.Uint8:
		// Widened so []uint8 does not marshal as base64.
		for _, v := range t.AsUint8() {
			tj.Data = append(tj.Data, int(v))
		}
	case tensor.Bool:
		tj.Data = appendAll(tj.Data, t.AsBool())
	}
	return tj
}

func appendAll[T tensor.DType](out []any, values []T) []any {
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// operandFile holds the tensors loaded from -in.
type operandFile struct {
	uri     string
	tensors map[string]*tensor.RawTensor
}

// loadOperands reads a safetensors blob. An empty uri yields an empty set.
func loadOperands(ctx context.Context, uri string, dev tensor.Device) (*operandFile, error) {
	f := &operandFile{uri: uri}
	if uri == "" {
		return f, nil
	}
	r, err := blobs.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f.tensors, _, err = serialization.ReadSafeTensors(r, serialization.ReaderOptions{Device: dev})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", uri, err)
	}
	return f, nil
}

// operand returns the inline tensor when given, else the named tensor from
// the operand file.
func (f *operandFile) operand(name, inline string, dt tensor.DataType, dev tensor.Device) (*tensor.RawTensor, error) {
	if inline != "" {
		t, err := parseTensor(inline, dt, dev)
		if err != nil {
			return nil, fmt.Errorf("-%s: %w", name, err)
		}
		return t, nil
	}
	if f.tensors == nil {
		return nil, fmt.Errorf("missing -%s (or -in with a %q tensor)", name, name)
	}
	return serialization.Lookup(f.tensors, name)
}

// writeResult writes result as safetensors to uri, or as JSON to w when uri
// is empty.
func writeResult(ctx context.Context, w io.Writer, uri string, result *tensor.RawTensor, metadata map[string]string) error {
	if uri == "" {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		if err := enc.Encode(encodeTensor(result)); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}

	out, err := blobs.Create(ctx, uri)
	if err != nil {
		return err
	}
	sw := serialization.NewSafeTensorsStreamWriter(out)
	if err := sw.WriteTensors(map[string]*tensor.RawTensor{"result": result}, metadata); err != nil {
		_ = out.Close() // Best effort close
		return fmt.Errorf("writing %s: %w", uri, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", uri, err)
	}
	return nil
}

// parseShape parses "2,3" into a shape. An empty string is a scalar.
func parseShape(s string) (tensor.Shape, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return tensor.Shape{}, nil
	}
	parts := strings.Split(s, ",")
	shape := make(tensor.Shape, len(parts))
	for i, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid shape %q: %w", s, err)
		}
		shape[i] = d
	}
	return shape, shape.Validate()
}
