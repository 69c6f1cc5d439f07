// internal/poller/runner.go
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Run starts the ticker loop until ctx is done.
// One goroutine. No overlap: a slow cycle delays the next tick.
func (p *Poller) Run(ctx context.Context, log zerolog.Logger) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	log.Info().Dur("interval", p.cfg.Interval).Int("fields", len(p.cfg.Fields)).Msg("poller started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("poller stopped")
			return
		case <-ticker.C:
			res := p.PollOnce()
			if res.Err != nil {
				log.Warn().Err(res.Err).Msg("poll cycle failed")
				continue
			}
			log.Debug().Int("fields", len(res.Values)).Dur("took", res.Duration).Msg("poll cycle done")
		}
	}
}
