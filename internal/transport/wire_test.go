// internal/transport/wire_test.go
package transport

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	tmodbus "github.com/tamzrod/modbus-gateway/internal/transport/modbus"
)

// frame is one request seen by the test server.
type frame struct {
	Unit uint8
	FC   uint8
}

// tcpDevice is a minimal Modbus TCP server.
// Reads at or above exceptionAddr answer with exception code 2.
// A silent device reads requests and never answers.
type tcpDevice struct {
	ln     net.Listener
	silent bool

	mu   sync.Mutex
	seen []frame
}

const exceptionAddr = 50000

func startDevice(t *testing.T, silent bool) *tcpDevice {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NilError(t, err)
	d := &tcpDevice{ln: ln, silent: silent}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go d.serve(conn)
		}
	}()
	return d
}

func (d *tcpDevice) serve(conn net.Conn) {
	defer conn.Close()
	for {
		hdr := make([]byte, 7)
		if _, err := io.ReadFull(conn, hdr); err != nil {
			return
		}
		pdu := make([]byte, int(binary.BigEndian.Uint16(hdr[4:]))-1)
		if _, err := io.ReadFull(conn, pdu); err != nil {
			return
		}

		d.mu.Lock()
		d.seen = append(d.seen, frame{Unit: hdr[6], FC: pdu[0]})
		d.mu.Unlock()

		if d.silent {
			continue
		}

		var resp []byte
		addr := binary.BigEndian.Uint16(pdu[1:])
		switch fc := pdu[0]; {
		case fc == 3 && addr < exceptionAddr:
			qty := binary.BigEndian.Uint16(pdu[3:])
			resp = []byte{3, byte(qty * 2)}
			for i := uint16(0); i < qty; i++ {
				resp = binary.BigEndian.AppendUint16(resp, addr+i)
			}
		case fc == 6:
			resp = pdu
		case fc == 16:
			resp = pdu[:5]
		default:
			resp = []byte{fc | 0x80, 2}
		}

		out := append([]byte{}, hdr[:4]...)
		out = binary.BigEndian.AppendUint16(out, uint16(len(resp)+1))
		out = append(out, hdr[6])
		if _, err := conn.Write(append(out, resp...)); err != nil {
			return
		}
	}
}

func (d *tcpDevice) frames() []frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]frame(nil), d.seen...)
}

func wireClient(t *testing.T, d *tcpDevice, unit uint8, timeout time.Duration, cfg Config, dials *int32) *Client {
	t.Helper()
	c := New(cfg, func() (Conn, error) {
		atomic.AddInt32(dials, 1)
		conn, err := tmodbus.Dial(tmodbus.Config{
			Mode:     tmodbus.ModeTCP,
			Endpoint: d.ln.Addr().String(),
			UnitID:   unit,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestWire_FunctionCodesAndUnit(t *testing.T) {
	d := startDevice(t, false)
	var dials int32
	c := wireClient(t, d, 7, time.Second, Config{Retries: 1}, &dials)

	assert.NilError(t, c.WriteWords(40125, []uint16{1000}))
	assert.NilError(t, c.WriteWords(40126, []uint16{0, 5000}))

	words, err := c.ReadWords(100, 2)
	assert.NilError(t, err)
	assert.DeepEqual(t, words, []uint16{100, 101})

	assert.DeepEqual(t, d.frames(), []frame{{7, 6}, {7, 16}, {7, 3}})
	assert.Equal(t, dials, int32(1))
}

func TestWire_ExceptionKeepsSession(t *testing.T) {
	d := startDevice(t, false)
	var dials int32
	c := wireClient(t, d, 1, time.Second, Config{Retries: 2}, &dials)

	_, err := c.ReadWords(exceptionAddr, 1)
	assert.Assert(t, errors.Is(err, ErrProtocolException), "got %v", err)
	assert.Assert(t, errors.Is(err, ErrExhausted))

	_, err = c.ReadWords(1, 1)
	assert.NilError(t, err)
	assert.Equal(t, dials, int32(1))
	assert.Equal(t, len(d.frames()), 3)
}

func TestWire_SilentDeviceTimesOut(t *testing.T) {
	d := startDevice(t, true)
	var dials int32
	c := wireClient(t, d, 1, 100*time.Millisecond, Config{Retries: 2, Backoff: 10 * time.Millisecond}, &dials)

	start := time.Now()
	_, err := c.ReadWords(100, 2)
	elapsed := time.Since(start)

	assert.Assert(t, errors.Is(err, ErrTimeout), "got %v", err)
	assert.Assert(t, errors.Is(err, ErrExhausted))
	assert.Assert(t, !IsConnectionError(err))

	var te *TransportError
	assert.Assert(t, errors.As(err, &te))
	assert.Equal(t, te.Attempts, 2)

	// each timed-out session is dropped and redialed
	assert.Equal(t, dials, int32(2))
	assert.Assert(t, elapsed >= 200*time.Millisecond, "elapsed %v", elapsed)
	assert.Assert(t, elapsed < 2*time.Second, "elapsed %v", elapsed)
}
