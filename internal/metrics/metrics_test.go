// internal/metrics/metrics_test.go
package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/tamzrod/modbus-gateway/internal/gateway"
	"github.com/tamzrod/modbus-gateway/internal/poller"
	"github.com/tamzrod/modbus-gateway/internal/status"
	"github.com/tamzrod/modbus-gateway/internal/transport"
)

func TestObserveAttempt_Results(t *testing.T) {
	m := New()

	m.ObserveAttempt("read", nil, 10*time.Millisecond)
	m.ObserveAttempt("read", nil, 20*time.Millisecond)
	m.ObserveAttempt("read", &transport.TransportError{Kind: transport.Timeout, Err: errors.New("i/o timeout")}, time.Second)
	m.ObserveAttempt("write_single", &transport.TransportError{Kind: transport.ProtocolException, Err: errors.New("exc")}, time.Millisecond)
	m.ObserveAttempt("write_multiple", io.EOF, time.Millisecond)

	assert.Equal(t, testutil.ToFloat64(m.attempts.WithLabelValues("read", resultOK)), 2.0)
	assert.Equal(t, testutil.ToFloat64(m.attempts.WithLabelValues("read", resultTimeout)), 1.0)
	assert.Equal(t, testutil.ToFloat64(m.attempts.WithLabelValues("write_single", resultException)), 1.0)
	assert.Equal(t, testutil.ToFloat64(m.attempts.WithLabelValues("write_multiple", resultError)), 1.0)

	// one histogram series per op
	assert.Equal(t, testutil.CollectAndCount(m.attemptDur), 3)
}

func TestObserve_FieldGauges(t *testing.T) {
	m := New()

	m.Observe(poller.PollResult{
		Duration: 250 * time.Millisecond,
		Values: map[string]gateway.FieldValue{
			"active_power": {Name: "active_power", Value: 12.5, OK: true},
			"voltages":     {Name: "voltages", Value: []float64{230, 231, 232}, OK: true},
			"model":        {Name: "model", Value: "SUN2000-10KTL", OK: true},
			"frequency":    {Name: "frequency", Err: errors.New("timeout")},
		},
	})

	assert.Equal(t, testutil.ToFloat64(m.fieldValue.WithLabelValues("active_power")), 12.5)
	assert.Equal(t, testutil.ToFloat64(m.fieldList.WithLabelValues("voltages", "2")), 232.0)
	assert.Equal(t, testutil.CollectAndCount(m.fieldList), 3)
	assert.Equal(t, testutil.CollectAndCount(m.fieldValue), 1)
	assert.Equal(t, testutil.ToFloat64(m.fieldErrors.WithLabelValues("frequency")), 1.0)
	assert.Equal(t, testutil.ToFloat64(m.pollDuration), 0.25)
	assert.Equal(t, testutil.ToFloat64(m.pollFailures), 0.0)
}

func TestObserve_CycleFailure(t *testing.T) {
	m := New()

	m.Observe(poller.PollResult{Err: &transport.ConnectionError{Attempts: 3, Err: errors.New("refused")}})

	assert.Equal(t, testutil.ToFloat64(m.pollFailures), 1.0)
	assert.Equal(t, testutil.CollectAndCount(m.fieldValue), 0)
}

func TestHandler_ExposesSeries(t *testing.T) {
	m := New()
	m.WatchStatus(func() status.Snapshot {
		return status.Snapshot{State: status.Connected, Health: status.HealthOK}
	})
	m.ObserveAttempt("read", nil, time.Millisecond)
	m.Observe(poller.PollResult{Values: map[string]gateway.FieldValue{
		"active_power": {Value: 1.5, OK: true},
	}})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, rec.Code, 200)
	body := rec.Body.String()
	assert.Assert(t, is.Contains(body, `modbus_gateway_transport_attempts_total{op="read",result="ok"} 1`))
	assert.Assert(t, is.Contains(body, `modbus_gateway_field_value{field="active_power"} 1.5`))
	assert.Assert(t, is.Contains(body, `modbus_gateway_connection_state 2`))
	assert.Assert(t, is.Contains(body, `modbus_gateway_health_code 1`))
}
