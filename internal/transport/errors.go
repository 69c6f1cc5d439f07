// internal/transport/errors.go
package transport

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout           = errors.New("transport: timeout")
	ErrProtocolException = errors.New("transport: protocol exception")
	ErrExhausted         = errors.New("transport: attempts exhausted")
	ErrClosed            = errors.New("transport: client closed")
	ErrNoValues          = errors.New("transport: no registers requested")
	ErrQuantity          = errors.New("transport: register quantity out of range")
)

// Kind classifies a TransportError.
type Kind uint8

const (
	Timeout Kind = iota + 1
	ProtocolException
	Exhausted
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case ProtocolException:
		return "protocol exception"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// TransportError is a failed read or write.
// An Exhausted error wraps the failure of the last attempt.
type TransportError struct {
	Kind     Kind
	Op       string
	Address  uint16
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Kind == Exhausted {
		return fmt.Sprintf("transport: %s addr=%d: %d attempts exhausted: %v", e.Op, e.Address, e.Attempts, e.Err)
	}
	return fmt.Sprintf("transport: %s addr=%d: %s: %v", e.Op, e.Address, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == Timeout
	case ErrProtocolException:
		return e.Kind == ProtocolException
	case ErrExhausted:
		return e.Kind == Exhausted
	}
	return false
}

// ConnectionError means no session could be established on any attempt.
type ConnectionError struct {
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("transport: connection failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err means the device is unreachable as a whole,
// as opposed to one operation failing.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce) || errors.Is(err, ErrClosed)
}

// dialError marks an attempt that failed before reaching the wire.
type dialError struct{ err error }

func (e *dialError) Error() string { return "dial: " + e.err.Error() }
func (e *dialError) Unwrap() error { return e.err }

// IsDialError reports whether a single attempt failed before reaching the wire.
func IsDialError(err error) bool {
	var de *dialError
	return errors.As(err, &de)
}

// classify maps one attempt's raw error into the taxonomy.
// Connection loss (EOF, reset) is returned unchanged.
func classify(op string, addr uint16, err error) error {
	var exc interface{ ExceptionCode() uint8 }
	if errors.As(err, &exc) {
		return &TransportError{Kind: ProtocolException, Op: op, Address: addr, Attempts: 1, Err: err}
	}
	var to interface{ Timeout() bool }
	if errors.As(err, &to) && to.Timeout() {
		return &TransportError{Kind: Timeout, Op: op, Address: addr, Attempts: 1, Err: err}
	}
	return err
}
