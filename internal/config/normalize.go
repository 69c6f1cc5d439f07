// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	g := &cfg.Gateway
	src := &g.Source

	src.Mode = strings.ToLower(src.Mode)
	if src.Mode == "" {
		src.Mode = "tcp"
	}
	if src.Retries == 0 {
		src.Retries = 1
	}

	// ------------------------------------------------------------
	// SERIAL DEFAULTS (RTU ONLY)
	// ------------------------------------------------------------

	if src.Mode == "rtu" {
		s := &src.Serial
		if s.BaudRate == 0 {
			s.BaudRate = 9600
		}
		if s.DataBits == 0 {
			s.DataBits = 8
		}
		s.Parity = strings.ToUpper(s.Parity)
		if s.Parity == "" {
			s.Parity = "N"
		}
		if s.StopBits == 0 {
			s.StopBits = 1
		}
	}

	g.UnknownFields = strings.ToLower(g.UnknownFields)
	if g.UnknownFields == "" {
		g.UnknownFields = UnknownFieldsSkip
	}

	g.Log.Level = strings.ToLower(g.Log.Level)
	if g.Log.Level == "" {
		g.Log.Level = "info"
	}
	g.Log.Format = strings.ToLower(g.Log.Format)
	if g.Log.Format == "" {
		g.Log.Format = "json"
	}
}
