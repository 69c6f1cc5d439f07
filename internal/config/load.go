// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults returns the configuration used when neither file nor environment set a value.
// Values match the stock SUN2000 driver.
func Defaults() *Config {
	return &Config{
		Gateway: GatewayConfig{
			HTTP: HTTPConfig{Listen: "0.0.0.0:8080"},
			Source: SourceConfig{
				Mode:      "tcp",
				Endpoint:  "127.0.0.1:502",
				UnitID:    1,
				TimeoutMs: 5000,
				Retries:   3,
				BackoffMs: 500,
			},
			UnknownFields: UnknownFieldsSkip,
			Log:           LogConfig{Level: "info", Format: "json"},
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment.
// A missing file is not an error. Variables already set win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: env file %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration: defaults, then the YAML file (optional), then environment.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays the environment variables understood by the driver.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	g := &cfg.Gateway
	src := &g.Source

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	// ---- source ----

	str("MODBUS_MODE", &src.Mode)

	host, port := splitEndpoint(src.Endpoint)
	_, hostSet := lookup("MODBUS_HOST")
	_, portSet := lookup("MODBUS_PORT")
	if hostSet || portSet {
		str("MODBUS_HOST", &host)
		str("MODBUS_PORT", &port)
		src.Endpoint = net.JoinHostPort(host, port)
	}
	str("MODBUS_SERIAL_PORT", &src.Endpoint)

	if v, ok := lookup("MODBUS_UNIT"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("config: MODBUS_UNIT: %w", err)
		}
		src.UnitID = uint8(n)
	}

	// MODBUS_TIMEOUT is in seconds, fractional allowed.
	if v, ok := lookup("MODBUS_TIMEOUT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: MODBUS_TIMEOUT: %w", err)
		}
		src.TimeoutMs = int(f * 1000)
	}

	if err := num("MODBUS_RETRIES", &src.Retries); err != nil {
		return err
	}
	if err := num("MODBUS_BACKOFF_MS", &src.BackoffMs); err != nil {
		return err
	}
	if err := num("MODBUS_BAUD_RATE", &src.Serial.BaudRate); err != nil {
		return err
	}
	str("MODBUS_PARITY", &src.Serial.Parity)

	// ---- http ----

	lhost, lport := splitEndpoint(g.HTTP.Listen)
	_, lhostSet := lookup("HTTP_SERVER_HOST")
	_, lportSet := lookup("HTTP_SERVER_PORT")
	if lhostSet || lportSet {
		str("HTTP_SERVER_HOST", &lhost)
		str("HTTP_SERVER_PORT", &lport)
		g.HTTP.Listen = net.JoinHostPort(lhost, lport)
	}

	// ---- misc ----

	str("REGISTERS_PATH", &g.RegistersPath)
	str("UNKNOWN_FIELDS", &g.UnknownFields)
	if err := num("POLL_INTERVAL_MS", &g.Poll.IntervalMs); err != nil {
		return err
	}
	str("LOG_LEVEL", &g.Log.Level)
	str("LOG_FORMAT", &g.Log.Format)

	return nil
}

func splitEndpoint(ep string) (string, string) {
	host, port, err := net.SplitHostPort(ep)
	if err != nil {
		return ep, ""
	}
	return host, port
}
