// internal/codec/scale.go
package codec

import (
	"fmt"
	"math"
)

// Scale applies a multiplicative factor to a decoded value.
// Numbers become float64, lists become []float64, strings pass through.
func Scale(v any, scale float64) any {
	switch x := v.(type) {
	case uint16:
		return float64(x) * scale
	case uint32:
		return float64(x) * scale
	case int32:
		return float64(x) * scale
	case float32:
		return float64(x) * scale
	case []uint16:
		out := make([]float64, len(x))
		for i, w := range x {
			out[i] = float64(w) * scale
		}
		return out
	default:
		return v
	}
}

// Unscale converts a physical value back to the raw integer written to the device.
// The result is rounded to the nearest integer.
func Unscale(v, scale float64) (int64, error) {
	if scale == 0 {
		scale = 1
	}
	raw := math.Round(v / scale)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("%w: %v", ErrRange, v)
	}
	if raw < math.MinInt64 || raw >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v", ErrRange, v)
	}
	return int64(raw), nil
}
