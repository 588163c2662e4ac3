// Package ticker runs a cancellable periodic task. A Ticker has at most one
// running loop and its ticks never overlap.
package ticker

import (
	"context"
	"sync"
	"time"
)

// Ticker calls fn every interval between Start and Stop.
type Ticker struct {
	fn       func(context.Context, time.Time)
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
	mu       sync.Mutex
}

// New creates a stopped Ticker.
func New(interval time.Duration, fn func(context.Context, time.Time)) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{interval: interval, fn: fn}
}

// Start begins ticking. fn is called once immediately and then on every tick
// until ctx is done or Stop is called. Start on a running Ticker does nothing
// and reports false. A loop ended by ctx still needs Stop before a restart.
func (t *Ticker) Start(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go func() {
		defer close(done)
		tk := time.NewTicker(t.interval)
		defer tk.Stop()

		t.fn(ctx, time.Now())
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tk.C:
				// A slow fn drops ticks rather than queueing them.
				t.fn(ctx, now)
			}
		}
	}()
	return true
}

// Running reports whether a loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Stop cancels the loop and waits for an in-flight call to return. Stopping
// a stopped Ticker is a no-op. A stopped Ticker may be started again.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done returns a channel closed when the current loop exits, or nil when the
// Ticker is not running.
func (t *Ticker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
