// internal/transport/builder.go
package transport

import (
	"log"
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/modbus-gateway/internal/config"
	tmodbus "github.com/tamzrod/modbus-gateway/internal/transport/modbus"
)

// Build constructs a Client for the configured source.
// No connection is made here; the first operation dials.
func Build(src cfg.SourceConfig, logger zerolog.Logger, opts ...Option) *Client {
	wire := tmodbus.Config{
		Mode:     src.Mode,
		Endpoint: src.Endpoint,
		UnitID:   src.UnitID,
		Timeout:  time.Duration(src.TimeoutMs) * time.Millisecond,
		BaudRate: src.Serial.BaudRate,
		DataBits: src.Serial.DataBits,
		Parity:   src.Serial.Parity,
		StopBits: src.Serial.StopBits,
	}

	// Frame dumps from goburrow only at trace level.
	if logger.GetLevel() <= zerolog.TraceLevel {
		wire.Logger = log.New(logger.With().Str("component", "goburrow").Logger(), "", 0)
	}

	// client factory: ONE attempt per call
	dial := func() (Conn, error) {
		conn, err := tmodbus.Dial(wire)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	logger.Info().
		Str("mode", src.Mode).
		Str("endpoint", src.Endpoint).
		Uint8("unit_id", src.UnitID).
		Int("timeout_ms", src.TimeoutMs).
		Int("retries", src.Retries).
		Msg("modbus transport configured")

	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(Config{
		Retries: src.Retries,
		Backoff: time.Duration(src.BackoffMs) * time.Millisecond,
	}, dial, opts...)
}
