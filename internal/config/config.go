// internal/config/config.go
package config

type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
}

type GatewayConfig struct {
	HTTP          HTTPConfig   `yaml:"http"`
	Source        SourceConfig `yaml:"source"`
	RegistersPath string       `yaml:"registers_path"` // empty => built-in SUN2000 map
	UnknownFields string       `yaml:"unknown_fields"` // skip | reject
	Poll          PollConfig   `yaml:"poll"`
	Log           LogConfig    `yaml:"log"`
}

// ---- HTTP ----

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Mode      string       `yaml:"mode"`     // tcp | rtu
	Endpoint  string       `yaml:"endpoint"` // host:port (tcp) or device path (rtu)
	UnitID    uint8        `yaml:"unit_id"`
	TimeoutMs int          `yaml:"timeout_ms"` // per attempt
	Retries   int          `yaml:"retries"`    // attempts per operation
	BackoffMs int          `yaml:"backoff_ms"` // fixed delay between attempts
	Serial    SerialConfig `yaml:"serial"`
}

type SerialConfig struct {
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"` // N | E | O
	StopBits int    `yaml:"stop_bits"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int      `yaml:"interval_ms"` // 0 disables background polling
	Fields     []string `yaml:"fields"`      // empty => every field in the map
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

const (
	UnknownFieldsSkip   = "skip"
	UnknownFieldsReject = "reject"
)
