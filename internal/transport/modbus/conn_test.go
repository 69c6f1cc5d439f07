// internal/transport/modbus/conn_test.go
package modbus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"
)

func TestPackUnpackRegisters(t *testing.T) {
	regs := []uint16{0x4048, 0xF5C3, 0x0001}
	b := packRegisters(regs)

	want := []byte{0x40, 0x48, 0xF5, 0xC3, 0x00, 0x01}
	if string(b) != string(want) {
		t.Fatalf("pack: got=% x want=% x", b, want)
	}

	back := unpackRegisters(b)
	for i := range regs {
		if back[i] != regs[i] {
			t.Fatalf("unpack[%d]: got=%#04x want=%#04x", i, back[i], regs[i])
		}
	}
}

func TestWrapErr_Exception(t *testing.T) {
	err := wrapErr(&modbus.ModbusError{FunctionCode: 0x83, ExceptionCode: 2})

	var ex *ExceptionError
	if !errors.As(err, &ex) {
		t.Fatalf("expected ExceptionError, got %T", err)
	}
	if ex.ExceptionCode() != 2 || ex.Function != 0x83 {
		t.Fatalf("unexpected exception: %+v", ex)
	}
}

func TestWrapErr_SerialTimeout(t *testing.T) {
	err := wrapErr(fmt.Errorf("read: %w", serial.ErrTimeout))

	var te interface{ Timeout() bool }
	if !errors.As(err, &te) || !te.Timeout() {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !errors.Is(err, serial.ErrTimeout) {
		t.Fatalf("timeout must keep its cause")
	}
}

func TestWrapErr_Passthrough(t *testing.T) {
	if wrapErr(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	plain := errors.New("connection reset")
	if got := wrapErr(plain); got != plain {
		t.Fatalf("plain error changed: %v", got)
	}
}

func TestDial_Validation(t *testing.T) {
	if _, err := Dial(Config{}); err == nil {
		t.Fatalf("expected endpoint error")
	}
	if _, err := Dial(Config{Mode: "udp", Endpoint: "x:502"}); err == nil {
		t.Fatalf("expected mode error")
	}
}
