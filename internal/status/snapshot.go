// internal/status/snapshot.go
package status

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of the connection.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	State               State     `json:"state"`
	Health              uint16    `json:"health"`
	LastErrorCode       uint16    `json:"last_error_code"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	Since               time.Time `json:"since"`
}

// Tracker owns a Snapshot and guards it for concurrent readers.
// The transport client is the only writer.
type Tracker struct {
	mu   sync.Mutex
	snap Snapshot
	now  func() time.Time
}

func NewTracker() *Tracker {
	t := &Tracker{now: time.Now}
	t.snap = Snapshot{
		State:  Disconnected,
		Health: HealthUnknown,
		Since:  t.now(),
	}
	return t
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// SetState records a lifecycle transition. Since only moves on real transitions.
func (t *Tracker) SetState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.snap.State != s {
		t.snap.State = s
		t.snap.Since = t.now()
	}
}

// Success marks the last operation healthy and clears error fields.
func (t *Tracker) Success() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Health = HealthOK
	t.snap.LastErrorCode = 0
	t.snap.LastError = ""
	t.snap.ConsecutiveFailures = 0
}

// Failure records a failed attempt.
func (t *Tracker) Failure(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Health = HealthError
	t.snap.LastErrorCode = ErrorCode(err)
	if err != nil {
		t.snap.LastError = err.Error()
	}
	t.snap.ConsecutiveFailures++
}

// Closed marks the terminal state.
func (t *Tracker) Closed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Health = HealthClosed
	if t.snap.State != Disconnected {
		t.snap.State = Disconnected
		t.snap.Since = t.now()
	}
}
