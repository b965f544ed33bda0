// Package reduce folds colliding scatter updates into a destination buffer.
//
// Sum starts every position at 0. Min and Max have no finite identity, so the
// legacy strategy seeds the destination with a sentinel far outside the
// expected data range (+1e12 for Min, -1e12 for Max) and rewrites any position
// still holding its sentinel to 0 once all updates are applied. An update that
// is exactly equal to the sentinel is therefore indistinguishable from "no
// update" and also reads back as 0. The TouchedMask strategy tracks written
// positions explicitly and has no such blind spot.
package reduce

import (
	"fmt"
	"strings"

	"github.com/born-ml/ndindex/internal/tensor"
)

// Mode selects how colliding updates combine.
type Mode int

// Supported reduction modes.
const (
	Sum Mode = iota
	Min
	Max
)

// String returns the lowercase name used by ParseMode.
func (m Mode) String() string {
	switch m {
	case Sum:
		return "sum"
	case Min:
		return "min"
	case Max:
		return "max"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Validate reports ErrUnsupportedReduction for values outside Sum/Min/Max.
func (m Mode) Validate() error {
	switch m {
	case Sum, Min, Max:
		return nil
	default:
		return &tensor.ReductionError{Mode: m.String()}
	}
}

// ParseMode resolves "sum", "min" or "max" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return Sum, nil
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	default:
		return 0, &tensor.ReductionError{Mode: s}
	}
}

// Strategy selects how Min/Max detect untouched destination positions.
type Strategy int

// Supported strategies.
const (
	// Sentinel seeds ±1e12 and zeroes positions still equal to it.
	Sentinel Strategy = iota
	// TouchedMask records written positions in a []bool.
	TouchedMask
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case Sentinel:
		return "sentinel"
	case TouchedMask:
		return "touched-mask"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy resolves "sentinel" or "touched-mask" ("mask" for short).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sentinel":
		return Sentinel, nil
	case "touched-mask", "mask":
		return TouchedMask, nil
	default:
		return 0, fmt.Errorf("unknown reduction strategy %q (want sentinel or touched-mask)", s)
	}
}
