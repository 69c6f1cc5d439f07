// internal/writer/writer.go
package writer

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modbus-gateway/internal/transport"
)

type batchWriter struct {
	gw  FieldWriter
	log zerolog.Logger
}

// New returns a Writer over gw.
func New(gw FieldWriter, log zerolog.Logger) Writer {
	return &batchWriter{gw: gw, log: log}
}

// Apply writes each field in sorted name order, one wire operation per field.
// A failed field is recorded and the batch continues.
// When the device is unreachable the remaining writes are abandoned and the error is returned
// together with the results gathered so far.
func (w *batchWriter) Apply(writes map[string]float64) (Results, error) {
	names := make([]string, 0, len(writes))
	for name := range writes {
		names = append(names, name)
	}
	sort.Strings(names)

	res := make(Results, len(names))
	failed := 0

	for _, name := range names {
		err := w.gw.WriteField(name, writes[name])
		if err == nil {
			res[name] = ResultOK
			continue
		}

		failed++
		res[name] = err.Error()

		// ------------------------------------------------------------
		// DEVICE UNREACHABLE: stop, nothing further can succeed
		// ------------------------------------------------------------
		if transport.IsConnectionError(err) {
			w.log.Error().
				Err(err).
				Str("field", name).
				Int("abandoned", len(names)-len(res)).
				Msg("control batch aborted")
			return res, err
		}

		w.log.Warn().Err(err).Str("field", name).Msg("control write failed")
	}

	w.log.Info().
		Int("requested", len(names)).
		Int("failed", failed).
		Msg("control batch applied")

	return res, nil
}
