package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trezcool/ayudantias/core"
)

// Poller runs a refresh at a fixed interval. A tick that fires while the previous
// refresh is still running is dropped, and each refresh is bounded by the interval.
type Poller struct {
	interval time.Duration
	refresh  func(ctx context.Context) error
	logger   core.Logger

	// OnRefresh, if set, is called after every refresh that finished before Run was cancelled.
	OnRefresh func(err error)

	inFlight int32
	runs     int64
	skipped  int64
	wg       sync.WaitGroup
}

func NewPoller(interval time.Duration, refresh func(ctx context.Context) error, logger core.Logger) *Poller {
	return &Poller{interval: interval, refresh: refresh, logger: logger}
}

// Run refreshes once right away, then on every tick until ctx is done.
// It returns after the last refresh has finished.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&p.inFlight, 0, 1) {
		atomic.AddInt64(&p.skipped, 1)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer atomic.StoreInt32(&p.inFlight, 0)

		rctx, cancel := context.WithTimeout(ctx, p.interval)
		defer cancel()

		err := p.refresh(rctx)
		atomic.AddInt64(&p.runs, 1)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.logger.Error(fmt.Sprintf("refresh failed: %v", err), err)
		}
		if p.OnRefresh != nil {
			p.OnRefresh(err)
		}
	}()
}

// Stats returns the number of completed refreshes and of dropped ticks.
func (p *Poller) Stats() (runs, skipped int64) {
	return atomic.LoadInt64(&p.runs), atomic.LoadInt64(&p.skipped)
}
