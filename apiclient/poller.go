package apiclient

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Polling intervals used by the two frontends.
const (
	WidgetPollInterval    = 3 * time.Second
	DashboardPollInterval = 5 * time.Second
)

// Poller invokes a fetch function on a fixed interval. A tick that fires
// while the previous fetch is still in flight is skipped, so slow fetches
// never overlap.
type Poller struct {
	interval time.Duration
	fetch    func(context.Context)
	inFlight atomic.Bool
}

func NewPoller(interval time.Duration, fetch func(context.Context)) *Poller {
	return &Poller{interval: interval, fetch: fetch}
}

// Run blocks until ctx is canceled, firing the fetch on every tick that finds
// no fetch still running.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go p.Tick(ctx)
		}
	}
}

// Tick runs one poll attempt synchronously. It returns false when the attempt
// was skipped because an earlier fetch had not resolved yet.
func (p *Poller) Tick(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		log.Debug().Msg("Poll tick skipped, previous fetch still in flight")
		return false
	}
	defer p.inFlight.Store(false)
	p.fetch(ctx)
	return true
}
