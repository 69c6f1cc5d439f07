// internal/transport/modbus/conn.go
package modbus

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"
)

const (
	ModeTCP = "tcp"
	ModeRTU = "rtu"
)

// Config is minimal wire config.
type Config struct {
	Mode     string // tcp | rtu
	Endpoint string // host:port for tcp, device path for rtu
	UnitID   uint8
	Timeout  time.Duration

	// RTU only
	BaudRate int
	DataBits int
	Parity   string
	StopBits int

	// Optional frame-level debug logger handed to goburrow.
	Logger *log.Logger
}

type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// Conn is one live Modbus session (TCP socket or serial port).
// It is not safe for concurrent use; the transport client serializes access.
type Conn struct {
	handler handler
	client  modbus.Client
}

// Dial opens the session. One attempt per call.
func Dial(cfg Config) (*Conn, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus conn: endpoint required")
	}

	var h handler
	switch cfg.Mode {
	case "", ModeTCP:
		th := modbus.NewTCPClientHandler(cfg.Endpoint)
		th.Timeout = cfg.Timeout
		th.SlaveId = cfg.UnitID
		th.Logger = cfg.Logger
		h = th

	case ModeRTU:
		rh := modbus.NewRTUClientHandler(cfg.Endpoint)
		rh.BaudRate = cfg.BaudRate
		rh.DataBits = cfg.DataBits
		rh.Parity = cfg.Parity
		rh.StopBits = cfg.StopBits
		rh.Timeout = cfg.Timeout
		rh.SlaveId = cfg.UnitID
		rh.Logger = cfg.Logger
		h = rh

	default:
		return nil, fmt.Errorf("modbus conn: unsupported mode %q", cfg.Mode)
	}

	if err := h.Connect(); err != nil {
		return nil, wrapErr(err)
	}

	return &Conn{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Close releases the socket or serial port.
func (c *Conn) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

// ---- transport.Conn interface ----

// ReadHoldingRegisters issues FC 3.
func (c *Conn) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	b, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, wrapErr(err)
	}
	if len(b) != int(qty)*2 {
		return nil, fmt.Errorf("modbus: read-registers payload %d bytes, want %d", len(b), int(qty)*2)
	}
	return unpackRegisters(b), nil
}

// WriteSingleRegister issues FC 6.
func (c *Conn) WriteSingleRegister(addr, value uint16) error {
	_, err := c.client.WriteSingleRegister(addr, value)
	return wrapErr(err)
}

// WriteMultipleRegisters issues FC 16.
func (c *Conn) WriteMultipleRegisters(addr uint16, regs []uint16) error {
	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs))
	return wrapErr(err)
}

// ---- errors ----

// ExceptionError is a Modbus exception response from the device.
type ExceptionError struct {
	Function uint8
	Code     uint8
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus exception: fc=%d code=%d", e.Function, e.Code)
}

func (e *ExceptionError) ExceptionCode() uint8 { return e.Code }

type timeoutError struct{ err error }

func (e *timeoutError) Error() string { return e.err.Error() }
func (e *timeoutError) Unwrap() error { return e.err }
func (e *timeoutError) Timeout() bool { return true }

// wrapErr normalizes goburrow errors so callers can classify them
// without importing goburrow.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}

	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return &ExceptionError{Function: me.FunctionCode, Code: me.ExceptionCode}
	}
	if errors.Is(err, serial.ErrTimeout) {
		return &timeoutError{err: err}
	}
	return err
}

// ---- helpers (pure geometry) ----

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}

// Modbus register memory order (BIG-ENDIAN)
func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
