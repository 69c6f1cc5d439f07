// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/modbus-gateway/internal/config"
)

// Build constructs a Poller from config.
// Returns (nil, nil) when polling is disabled (interval 0).
func Build(pc cfg.PollConfig, reader Reader, sink Sink) (*Poller, error) {
	if pc.IntervalMs == 0 {
		return nil, nil
	}

	return New(
		Config{
			Interval: time.Duration(pc.IntervalMs) * time.Millisecond,
			Fields:   pc.Fields,
		},
		reader,
		sink,
	)
}
