// internal/writer/types.go
package writer

// ResultOK marks a write that reached the device.
const ResultOK = "ok"

// FieldWriter is the exact contract the writer uses.
// *gateway.Gateway satisfies it.
type FieldWriter interface {
	WriteField(name string, value float64) error
}

// Results maps each requested field to "ok" or the error text.
type Results map[string]string

// Writer applies a batch of control writes.
type Writer interface {
	Apply(writes map[string]float64) (Results, error)
}
