// internal/transport/client.go
package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modbus-gateway/internal/status"
)

const (
	DefaultRetries = 3
	DefaultBackoff = 500 * time.Millisecond

	// Modbus PDU limits for FC 3 and FC 16.
	MaxReadWords  = 125
	MaxWriteWords = 123
)

// Conn is the wire session the client drives.
// Implementations are not required to be safe for concurrent use.
type Conn interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	WriteSingleRegister(addr, value uint16) error            // FC 6
	WriteMultipleRegisters(addr uint16, regs []uint16) error // FC 16
	Close() error
}

// Dialer opens a new session. ONE attempt per call.
type Dialer func() (Conn, error)

// Observer receives one callback per wire attempt.
type Observer interface {
	ObserveAttempt(op string, err error, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(string, error, time.Duration) {}

// Config is the retry policy. Timeouts are enforced per attempt by the Conn.
type Config struct {
	Retries int
	Backoff time.Duration
}

// Client owns the single device session.
// Every operation holds mu for its full duration, attempts and backoff included,
// so no two requests are ever in flight on the wire.
type Client struct {
	mu     sync.Mutex
	cfg    Config
	dial   Dialer
	conn   Conn
	closed bool

	status *status.Tracker
	log    zerolog.Logger
	obs    Observer
	sleep  func(time.Duration)
}

type Option func(*Client)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.obs = o
		}
	}
}

// WithSleep replaces the backoff sleep (tests).
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Client) { c.sleep = fn }
}

// New creates a disconnected client. The session is dialed lazily on first use.
func New(cfg Config, dial Dialer, opts ...Option) *Client {
	if cfg.Retries <= 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}

	c := &Client{
		cfg:    cfg,
		dial:   dial,
		status: status.NewTracker(),
		log:    zerolog.Nop(),
		obs:    nopObserver{},
		sleep:  time.Sleep,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ReadWords reads count holding registers starting at addr.
func (c *Client) ReadWords(addr, count uint16) ([]uint16, error) {
	if count == 0 {
		return nil, ErrNoValues
	}
	if count > MaxReadWords {
		return nil, fmt.Errorf("%w: read %d > %d", ErrQuantity, count, MaxReadWords)
	}

	var out []uint16
	err := c.do("read", addr, func(conn Conn) error {
		regs, err := conn.ReadHoldingRegisters(addr, count)
		if err != nil {
			return err
		}
		if len(regs) != int(count) {
			return fmt.Errorf("transport: short read: got=%d want=%d", len(regs), count)
		}
		out = regs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WriteWords writes values starting at addr.
// One value is sent as write single register, more as write multiple registers.
func (c *Client) WriteWords(addr uint16, values []uint16) error {
	if len(values) > MaxWriteWords {
		return fmt.Errorf("%w: write %d > %d", ErrQuantity, len(values), MaxWriteWords)
	}

	switch len(values) {
	case 0:
		return ErrNoValues
	case 1:
		return c.do("write_single", addr, func(conn Conn) error {
			return conn.WriteSingleRegister(addr, values[0])
		})
	default:
		return c.do("write_multiple", addr, func(conn Conn) error {
			return conn.WriteMultipleRegisters(addr, values)
		})
	}
}

// Close releases the session. Safe to call more than once.
// It waits for an in-flight operation to finish.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	err := c.dropLocked()
	c.status.Closed()
	c.log.Info().Msg("transport closed")
	return err
}

// Status returns the current connection snapshot without waiting on the wire.
func (c *Client) Status() status.Snapshot {
	return c.status.Snapshot()
}

// ---- internal ----

func (c *Client) do(op string, addr uint16, fn func(Conn) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	dialFailures := 0
	attempts, err := retry(c.cfg.Retries, c.cfg.Backoff, c.sleep, func(attempt int) error {
		start := time.Now()
		err := c.attemptLocked(op, addr, fn)
		c.obs.ObserveAttempt(op, err, time.Since(start))

		if err != nil {
			var de *dialError
			if errors.As(err, &de) {
				dialFailures++
			}
			c.status.Failure(err)
			c.log.Warn().
				Err(err).
				Str("op", op).
				Uint16("address", addr).
				Int("attempt", attempt).
				Int("max_attempts", c.cfg.Retries).
				Msg("modbus attempt failed")
		}
		return err
	})

	if err == nil {
		c.status.Success()
		return nil
	}

	if dialFailures == attempts {
		var de *dialError
		errors.As(err, &de)
		return &ConnectionError{Attempts: attempts, Err: de.err}
	}
	return &TransportError{Kind: Exhausted, Op: op, Address: addr, Attempts: attempts, Err: err}
}

// attemptLocked performs exactly one wire round trip, dialing first if needed.
func (c *Client) attemptLocked(op string, addr uint16, fn func(Conn) error) error {
	if c.conn == nil {
		if err := c.connectLocked(); err != nil {
			return &dialError{err: err}
		}
	}

	err := fn(c.conn)
	if err == nil {
		return nil
	}

	err = classify(op, addr, err)

	// An exception is a complete response; the session is still in sync.
	// Anything else may leave a late reply on the wire, so start over.
	if !errors.Is(err, ErrProtocolException) {
		if cerr := c.dropLocked(); cerr != nil {
			c.log.Debug().Err(cerr).Msg("close after failure")
		}
	}
	return err
}

func (c *Client) connectLocked() error {
	c.status.SetState(status.Connecting)

	conn, err := c.dial()
	if err != nil {
		c.status.SetState(status.Disconnected)
		return err
	}

	c.conn = conn
	c.status.SetState(status.Connected)
	c.log.Info().Msg("modbus session established")
	return nil
}

func (c *Client) dropLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.status.SetState(status.Disconnected)
	return err
}
