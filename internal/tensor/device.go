package tensor

import "fmt"

// DeviceKind identifies a class of compute unit.
type DeviceKind int

// Supported device kinds.
const (
	CPU DeviceKind = iota
	GPU
)

// String returns the specifier token for the kind.
func (k DeviceKind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case GPU:
		return "gpu"
	default:
		return fmt.Sprintf("device(%d)", int(k))
	}
}

// Device identifies a specific compute unit (kind + index).
type Device struct {
	Kind  DeviceKind
	Index int
}

// DefaultDevice is the placement used when nothing else is specified.
var DefaultDevice = Device{Kind: CPU, Index: 0}

// CPUDevice returns the CPU device with the given index.
func CPUDevice(index int) Device { return Device{Kind: CPU, Index: index} }

// GPUDevice returns the GPU device with the given index.
func GPUDevice(index int) Device { return Device{Kind: GPU, Index: index} }

// String renders the device in specifier form, e.g. "gpu:1".
func (d Device) String() string {
	return fmt.Sprintf("%s:%d", d.Kind, d.Index)
}
