// internal/writer/writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modbus-gateway/internal/gateway"
	"github.com/tamzrod/modbus-gateway/internal/transport"
)

// ---- fake field writer ----

type fakeFieldWriter struct {
	writes []writeCall
	errs   map[string]error
}

type writeCall struct {
	name  string
	value float64
}

func (f *fakeFieldWriter) WriteField(name string, value float64) error {
	f.writes = append(f.writes, writeCall{name: name, value: value})
	if err := f.errs[name]; err != nil {
		return err
	}
	return nil
}

// ---- tests ----

func TestWriter_SortedOrderAllOK(t *testing.T) {
	fake := &fakeFieldWriter{}
	w := New(fake, zerolog.Nop())

	res, err := w.Apply(map[string]float64{
		"reactive_power_setpoint": -0.5,
		"active_power_limit":      100,
		"active_power_derating":   5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"active_power_derating", "active_power_limit", "reactive_power_setpoint"}
	if len(fake.writes) != len(want) {
		t.Fatalf("expected %d writes, got %d", len(want), len(fake.writes))
	}
	for i, name := range want {
		if fake.writes[i].name != name {
			t.Fatalf("write %d: got=%s want=%s", i, fake.writes[i].name, name)
		}
		if res[name] != ResultOK {
			t.Fatalf("result %s: got=%q", name, res[name])
		}
	}

	if fake.writes[2].value != -0.5 {
		t.Fatalf("value not forwarded: %v", fake.writes[2].value)
	}
}

func TestWriter_CallerErrorDoesNotAbort(t *testing.T) {
	fake := &fakeFieldWriter{
		errs: map[string]error{
			"rated_power": &gateway.FieldError{Field: "rated_power", Err: gateway.ErrNotWritable},
		},
	}
	w := New(fake, zerolog.Nop())

	res, err := w.Apply(map[string]float64{
		"rated_power":        1,
		"active_power_limit": 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(fake.writes))
	}
	if res["active_power_limit"] != ResultOK {
		t.Fatalf("active_power_limit: got=%q", res["active_power_limit"])
	}
	if res["rated_power"] == ResultOK || res["rated_power"] == "" {
		t.Fatalf("rated_power: expected error text, got=%q", res["rated_power"])
	}
}

func TestWriter_ConnectionErrorAborts(t *testing.T) {
	connErr := &transport.ConnectionError{Attempts: 3, Err: errors.New("connection refused")}
	fake := &fakeFieldWriter{
		errs: map[string]error{"active_power_limit": connErr},
	}
	w := New(fake, zerolog.Nop())

	res, err := w.Apply(map[string]float64{
		"active_power_derating":   1,
		"active_power_limit":      2,
		"reactive_power_setpoint": 3,
	})
	if !errors.Is(err, connErr) {
		t.Fatalf("expected connection error, got %v", err)
	}

	// derating ran, limit failed, setpoint never attempted
	if len(fake.writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(fake.writes))
	}
	if res["active_power_derating"] != ResultOK {
		t.Fatalf("derating: got=%q", res["active_power_derating"])
	}
	if res["active_power_limit"] != connErr.Error() {
		t.Fatalf("limit: got=%q", res["active_power_limit"])
	}
	if _, ok := res["reactive_power_setpoint"]; ok {
		t.Fatalf("setpoint must not be attempted")
	}
}

func TestWriter_Empty(t *testing.T) {
	fake := &fakeFieldWriter{}
	w := New(fake, zerolog.Nop())

	res, err := w.Apply(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 0 || len(fake.writes) != 0 {
		t.Fatalf("expected no work, got res=%v writes=%d", res, len(fake.writes))
	}
}
