// internal/gateway/field.go
package gateway

import (
	"encoding/json"
	"math"
)

// FieldValue is the outcome of reading one named field.
// Value is a string, float64 or []float64 when OK is true.
type FieldValue struct {
	Name  string
	Value any
	OK    bool
	Err   error
}

type fieldJSON struct {
	Value any    `json:"value"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// MarshalJSON renders {"value":..., "ok":..., "error":...}.
// Non-finite floats have no JSON form and are rendered as null.
func (f FieldValue) MarshalJSON() ([]byte, error) {
	out := fieldJSON{Value: finite(f.Value), OK: f.OK}
	if f.Err != nil {
		out.Error = f.Err.Error()
	}
	return json.Marshal(out)
}

func finite(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case []float64:
		out := make([]any, len(x))
		for i := range x {
			out[i] = finite(x[i])
		}
		return out
	}
	return v
}
