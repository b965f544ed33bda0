// Package device parses device specifier strings into placements.
package device

import (
	"strconv"
	"strings"

	"github.com/born-ml/ndindex/internal/tensor"
)

// Parse converts a specifier of the form "cpu", "cpu:N", "gpu" or "gpu:N"
// into a Device. The index defaults to 0 when omitted.
//
// Example:
//
//	dev, err := device.Parse("gpu:1") // {Kind: GPU, Index: 1}
func Parse(spec string) (tensor.Device, error) {
	token := strings.ToLower(strings.TrimSpace(spec))
	kindToken, indexToken, hasIndex := strings.Cut(token, ":")

	var kind tensor.DeviceKind
	switch kindToken {
	case "cpu":
		kind = tensor.CPU
	case "gpu":
		kind = tensor.GPU
	default:
		return tensor.Device{}, &tensor.DeviceSpecError{Spec: spec, Reason: "unknown device kind " + strconv.Quote(kindToken)}
	}

	if !hasIndex {
		return tensor.Device{Kind: kind}, nil
	}

	if !isDecimal(indexToken) {
		return tensor.Device{}, &tensor.DeviceSpecError{Spec: spec, Reason: "index suffix " + strconv.Quote(indexToken) + " is not a non-negative decimal number"}
	}
	index, err := strconv.Atoi(indexToken)
	if err != nil {
		return tensor.Device{}, &tensor.DeviceSpecError{Spec: spec, Reason: "index suffix " + strconv.Quote(indexToken) + " is out of range"}
	}

	return tensor.Device{Kind: kind, Index: index}, nil
}

// isDecimal reports whether s is ASCII digits without a sign or a redundant
// leading zero.
func isDecimal(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Resolver turns optional specifiers into placements.
type Resolver struct {
	// Default is returned when no specifier is given.
	Default tensor.Device
}

// NewResolver creates a Resolver that falls back to def.
func NewResolver(def tensor.Device) *Resolver {
	return &Resolver{Default: def}
}

// Resolve parses spec, or returns the default placement when spec is empty.
func (r *Resolver) Resolve(spec string) (tensor.Device, error) {
	if strings.TrimSpace(spec) == "" {
		return r.Default, nil
	}
	return Parse(spec)
}
