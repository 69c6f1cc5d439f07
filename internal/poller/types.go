// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/modbus-gateway/internal/gateway"
)

// Reader is the field-level read contract the poller uses.
// *gateway.Gateway satisfies it.
type Reader interface {
	ReadFields(names []string) (map[string]gateway.FieldValue, error)
}

// Sink receives every poll result. It must not block for long;
// the next tick waits for it.
type Sink interface {
	Observe(res PollResult)
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	At       time.Time
	Duration time.Duration

	// Values holds one entry per field read; failed fields carry their error.
	Values map[string]gateway.FieldValue

	Err error // non-nil means the whole cycle failed (device unreachable)
}
