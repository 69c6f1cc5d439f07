// internal/config/validate.go
package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	g := cfg.Gateway
	src := g.Source

	// ------------------------------------------------------------
	// SOURCE
	// ------------------------------------------------------------

	switch strings.ToLower(src.Mode) {
	case "", "tcp":
		if _, _, err := net.SplitHostPort(src.Endpoint); err != nil {
			return fmt.Errorf("source.endpoint %q: %v", src.Endpoint, err)
		}
	case "rtu":
		if src.Endpoint == "" {
			return fmt.Errorf("source.endpoint: serial device required for rtu mode")
		}
		switch strings.ToUpper(src.Serial.Parity) {
		case "", "N", "E", "O":
		default:
			return fmt.Errorf("source.serial.parity %q: must be N, E or O", src.Serial.Parity)
		}
		if src.Serial.BaudRate < 0 {
			return fmt.Errorf("source.serial.baud_rate must be >= 0")
		}
		if src.Serial.DataBits != 0 && (src.Serial.DataBits < 5 || src.Serial.DataBits > 8) {
			return fmt.Errorf("source.serial.data_bits %d: must be 5..8", src.Serial.DataBits)
		}
		if src.Serial.StopBits != 0 && src.Serial.StopBits != 1 && src.Serial.StopBits != 2 {
			return fmt.Errorf("source.serial.stop_bits %d: must be 1 or 2", src.Serial.StopBits)
		}
	default:
		return fmt.Errorf("source.mode %q: must be tcp or rtu", src.Mode)
	}

	if src.UnitID > 247 {
		return fmt.Errorf("source.unit_id %d: must be 0..247", src.UnitID)
	}
	if src.TimeoutMs <= 0 {
		return fmt.Errorf("source.timeout_ms must be > 0")
	}
	if src.Retries < 0 {
		return fmt.Errorf("source.retries must be >= 0")
	}
	if src.BackoffMs < 0 {
		return fmt.Errorf("source.backoff_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// GATEWAY
	// ------------------------------------------------------------

	if _, _, err := net.SplitHostPort(g.HTTP.Listen); err != nil {
		return fmt.Errorf("http.listen %q: %v", g.HTTP.Listen, err)
	}

	switch strings.ToLower(g.UnknownFields) {
	case "", UnknownFieldsSkip, UnknownFieldsReject:
	default:
		return fmt.Errorf("unknown_fields %q: must be %s or %s", g.UnknownFields, UnknownFieldsSkip, UnknownFieldsReject)
	}

	if g.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll.interval_ms must be >= 0")
	}

	if g.Log.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(g.Log.Level)); err != nil {
			return fmt.Errorf("log.level %q: %v", g.Log.Level, err)
		}
	}
	switch strings.ToLower(g.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format %q: must be json or console", g.Log.Format)
	}

	return nil
}
