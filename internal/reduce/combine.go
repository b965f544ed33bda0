package reduce

import (
	"fmt"

	"github.com/born-ml/ndindex/internal/tensor"
)

// Sentinels marking untouched Min/Max destinations.
const (
	MinSentinel = 1e12
	MaxSentinel = -1e12
)

// Combine folds incoming into current. Min and Max use the built-in min/max,
// so a NaN on either side yields NaN.
func Combine[T tensor.Numeric](current, incoming T, mode Mode) T {
	switch mode {
	case Min:
		return min(current, incoming)
	case Max:
		return max(current, incoming)
	default:
		return current + incoming
	}
}

// Seed returns the initial destination value for mode and whether untouched
// positions must be tracked with a mask instead. Sum always seeds 0. Min/Max
// seed their sentinel unless the strategy asks for a mask or T cannot hold
// ±1e12 (int32).
func Seed[T tensor.Numeric](mode Mode, strategy Strategy) (seed T, masked bool) {
	if mode == Sum {
		return 0, false
	}
	if strategy == TouchedMask || !holdsSentinel[T]() {
		return 0, true
	}
	v := float64(MinSentinel)
	if mode == Max {
		v = MaxSentinel
	}
	return T(v), false
}

func holdsSentinel[T tensor.Numeric]() bool {
	var zero T
	_, narrow := any(zero).(int32)
	return !narrow
}

// Cleanup rewrites positions that received no update to 0. With a mask, a
// position is untouched when its flag is false; without one, when it still
// equals seed. Sum needs no cleanup.
func Cleanup[T tensor.Numeric](dst []T, mode Mode, seed T, touched []bool) {
	if mode == Sum {
		return
	}
	if touched != nil {
		for i, ok := range touched {
			if !ok {
				dst[i] = 0
			}
		}
		return
	}
	for i, v := range dst {
		if v == seed {
			dst[i] = 0
		}
	}
}

// Accumulator owns a destination buffer while updates are folded into it.
// It is not safe for concurrent use.
type Accumulator[T tensor.Numeric] struct {
	mode    Mode
	dst     []T
	seed    T
	touched []bool
}

// NewAccumulator allocates a destination of size elements seeded for mode.
func NewAccumulator[T tensor.Numeric](mode Mode, strategy Strategy, size int) (*Accumulator[T], error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, &tensor.ShapeError{Op: "accumulate", Details: fmt.Sprintf("size must be >= 0, got %d", size)}
	}

	seed, masked := Seed[T](mode, strategy)
	a := &Accumulator[T]{mode: mode, dst: make([]T, size), seed: seed}
	if masked {
		a.touched = make([]bool, size)
	} else if seed != 0 {
		for i := range a.dst {
			a.dst[i] = seed
		}
	}
	return a, nil
}

// Add folds value into the destination at offset.
func (a *Accumulator[T]) Add(offset int, value T) {
	if a.touched != nil && !a.touched[offset] {
		a.touched[offset] = true
		a.dst[offset] = value
		return
	}
	a.dst[offset] = Combine(a.dst[offset], value, a.mode)
}

// AddAll folds updates[i] into offsets[i] for every i.
func (a *Accumulator[T]) AddAll(offsets []int, updates []T) {
	for i, off := range offsets {
		a.Add(off, updates[i])
	}
}

// Finish applies the untouched-position cleanup and returns the destination.
// The accumulator must not be used afterwards.
func (a *Accumulator[T]) Finish() []T {
	Cleanup(a.dst, a.mode, a.seed, a.touched)
	dst := a.dst
	a.dst = nil
	return dst
}

// Emulate performs Min/Max (or Sum) scatter into dst with an explicit
// read-modify-write per offset, for engines whose native scatter only adds.
// dst is overwritten; its output matches an Accumulator with the same mode
// and strategy.
func Emulate[T tensor.Numeric](dst []T, offsets []int, updates []T, mode Mode, strategy Strategy) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	if len(offsets) != len(updates) {
		return &tensor.ShapeError{
			Op:      "emulate",
			Details: fmt.Sprintf("%d offsets but %d updates", len(offsets), len(updates)),
		}
	}

	seed, masked := Seed[T](mode, strategy)
	var touched []bool
	if masked {
		touched = make([]bool, len(dst))
	}
	for i := range dst {
		dst[i] = seed
	}

	for i, off := range offsets {
		current := dst[off]
		incoming := updates[i]
		if touched != nil && !touched[off] {
			touched[off] = true
			dst[off] = incoming
			continue
		}
		dst[off] = Combine(current, incoming, mode)
	}

	Cleanup(dst, mode, seed, touched)
	return nil
}
