package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/ndindex/internal/tensor"
)

// ReaderOptions configures ReadSafeTensors.
type ReaderOptions struct {
	ValidationLevel ValidationLevel // Validation strictness level
	Device          tensor.Device   // Placement recorded on the loaded tensors
}

// ReadSafeTensorsFile reads every tensor of a SafeTensors file with strict
// validation.
func ReadSafeTensorsFile(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for operand files
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadSafeTensors(file, ReaderOptions{ValidationLevel: ValidationStrict})
}

// ReadSafeTensors decodes a complete SafeTensors stream. It returns the
// tensors by name and the string metadata, if any.
func ReadSafeTensors(r io.Reader, opts ReaderOptions) (map[string]*tensor.RawTensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	metas, metadata, err := parseHeader(headerJSON)
	if err != nil {
		return nil, nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateTensors(metas, int64(len(data)), opts.ValidationLevel); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	tensors := make(map[string]*tensor.RawTensor, len(metas))
	for _, m := range metas {
		dt, ok := safeTensorsToDType(m.DType)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q for tensor %q", ErrUnknownDType, m.DType, m.Name)
		}
		raw, err := tensor.NewRaw(m.Shape, dt, opts.Device)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", m.Name, err)
		}
		if m.Offset < 0 || m.Offset+int64(raw.ByteSize()) > int64(len(data)) {
			return nil, nil, &ValidationError{Type: "out_of_bounds", Tensor: m.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", m.Offset, raw.ByteSize(), len(data))}
		}
		copy(raw.Data(), data[m.Offset:m.Offset+int64(raw.ByteSize())])
		tensors[m.Name] = raw
	}
	return tensors, metadata, nil
}

// parseHeader decodes the JSON header into tensor metas ordered by offset.
func parseHeader(headerJSON []byte) ([]TensorMeta, map[string]string, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &entries); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	var metadata map[string]string
	metas := make([]TensorMeta, 0, len(entries))
	for name, msg := range entries {
		if name == MetadataKey {
			if err := json.Unmarshal(msg, &metadata); err != nil {
				return nil, nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
			continue
		}

		var h SafeTensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, nil, fmt.Errorf("failed to parse header for tensor %q: %w", name, err)
		}
		shape := make([]int, len(h.Shape))
		for i, d := range h.Shape {
			shape[i] = int(d)
		}
		metas = append(metas, TensorMeta{
			Name:   name,
			DType:  h.DType,
			Shape:  shape,
			Offset: h.DataOffsets[0],
			Size:   h.DataOffsets[1] - h.DataOffsets[0],
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].Offset < metas[j].Offset
	})
	return metas, metadata, nil
}

// Lookup returns the named tensor or ErrTensorNotFound.
func Lookup(tensors map[string]*tensor.RawTensor, name string) (*tensor.RawTensor, error) {
	t, ok := tensors[name]
	if !ok {
		names := make([]string, 0, len(tensors))
		for n := range tensors {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: %q (have %v)", ErrTensorNotFound, name, names)
	}
	return t, nil
}
