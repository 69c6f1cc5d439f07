// internal/metrics/metrics.go
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/modbus-gateway/internal/poller"
	"github.com/tamzrod/modbus-gateway/internal/status"
	"github.com/tamzrod/modbus-gateway/internal/transport"
)

const namespace = "modbus_gateway"

// attempt result labels
const (
	resultOK        = "ok"
	resultTimeout   = "timeout"
	resultException = "exception"
	resultDial      = "dial"
	resultError     = "error"
)

// Metrics owns a private registry so several instances never collide (tests).
type Metrics struct {
	reg *prometheus.Registry

	attempts   *prometheus.CounterVec
	attemptDur *prometheus.HistogramVec

	fieldValue  *prometheus.GaugeVec
	fieldList   *prometheus.GaugeVec
	fieldErrors *prometheus.CounterVec

	pollFailures prometheus.Counter
	pollDuration prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),

		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_attempts_total",
			Help:      "Wire attempts by operation and outcome.",
		}, []string{"op", "result"}),

		attemptDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transport_attempt_seconds",
			Help:      "Duration of single wire attempts.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op"}),

		fieldValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "field_value",
			Help:      "Last polled scaled value of a numeric field.",
		}, []string{"field"}),

		fieldList: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "field_list_value",
			Help:      "Last polled scaled value of one element of a list field.",
		}, []string{"field", "index"}),

		fieldErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_errors_total",
			Help:      "Polled field reads that failed.",
		}, []string{"field"}),

		pollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_failures_total",
			Help:      "Poll cycles aborted because the device was unreachable.",
		}),

		pollDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of the last poll cycle.",
		}),
	}

	m.reg.MustRegister(
		m.attempts,
		m.attemptDur,
		m.fieldValue,
		m.fieldList,
		m.fieldErrors,
		m.pollFailures,
		m.pollDuration,
	)
	return m
}

// WatchStatus exports the transport connection snapshot.
// Call at most once per Metrics.
func (m *Metrics) WatchStatus(snapshot func() status.Snapshot) {
	m.reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "0 disconnected, 1 connecting, 2 connected.",
		}, func() float64 { return float64(snapshot().State) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "health_code",
			Help:      "0 unknown, 1 ok, 2 error, 3 closed.",
		}, func() float64 { return float64(snapshot().Health) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consecutive_failures",
			Help:      "Failed attempts since the last success.",
		}, func() float64 { return float64(snapshot().ConsecutiveFailures) }),
	)
}

// ObserveAttempt implements transport.Observer.
func (m *Metrics) ObserveAttempt(op string, err error, d time.Duration) {
	m.attempts.WithLabelValues(op, attemptResult(err)).Inc()
	m.attemptDur.WithLabelValues(op).Observe(d.Seconds())
}

// Observe implements poller.Sink.
func (m *Metrics) Observe(res poller.PollResult) {
	m.pollDuration.Set(res.Duration.Seconds())

	if res.Err != nil {
		m.pollFailures.Inc()
		return
	}

	for name, fv := range res.Values {
		if !fv.OK {
			m.fieldErrors.WithLabelValues(name).Inc()
			continue
		}
		switch v := fv.Value.(type) {
		case float64:
			m.fieldValue.WithLabelValues(name).Set(v)
		case []float64:
			for i, x := range v {
				m.fieldList.WithLabelValues(name, strconv.Itoa(i)).Set(x)
			}
		}
		// strings have no gauge form
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry (tests, extra collectors).
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func attemptResult(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, transport.ErrTimeout):
		return resultTimeout
	case errors.Is(err, transport.ErrProtocolException):
		return resultException
	case transport.IsDialError(err):
		return resultDial
	default:
		return resultError
	}
}
