// internal/poller/poller.go
package poller

import (
	"errors"
	"time"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration
	Fields   []string // empty => all
}

// Poller is a dumb, clock-driven reader.
type Poller struct {
	cfg    Config
	reader Reader
	sink   Sink
	now    func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, reader Reader, sink Sink) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if reader == nil {
		return nil, errors.New("poller: reader required")
	}
	if sink == nil {
		return nil, errors.New("poller: sink required")
	}
	return &Poller{cfg: cfg, reader: reader, sink: sink, now: time.Now}, nil
}

// PollOnce performs exactly one poll cycle and hands the result to the sink.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{At: p.now()}

	values, err := p.reader.ReadFields(p.cfg.Fields)
	res.Duration = p.now().Sub(res.At)

	if err != nil {
		res.Err = err
	} else {
		res.Values = values
	}

	p.sink.Observe(res)
	return res
}
