// internal/status/constants.go
package status

// State is the lifecycle of the single device connection.
//
//	Disconnected -> Connecting -> Connected -> Disconnected (close or error)
type State uint8

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state before any operation completed.
const HealthUnknown uint16 = 0

// HealthOK means the last operation succeeded.
const HealthOK uint16 = 1

// HealthError means the last operation failed.
const HealthError uint16 = 2

// HealthClosed means the client was shut down.
const HealthClosed uint16 = 3

// GenericErrorCode is reported when a failure carries no device code.
const GenericErrorCode uint16 = 1
