package clock

import (
	"context"
	"sync"
	"time"
)

// Runner feeds real elapsed time into a Clock at a fixed interval.
type Runner struct {
	clock    *Clock
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(c *Clock, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Runner{clock: c, interval: interval, now: time.Now}
}

// Start launches the tick loop. A running loop is left untouched.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	go r.loop(ctx)
}

// Stop ends the loop and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context) {
	defer r.wg.Done()
	t := time.NewTicker(r.interval)
	defer t.Stop()
	last := r.now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			now := r.now()
			d := now.Sub(last)
			last = now
			r.clock.Tick(d)
		}
	}
}
