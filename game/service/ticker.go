package service

import (
	"context"
	"sync/atomic"
	"time"
)

// Ticker runs a callback on a fixed period until stopped. A session owns at
// most one; replacing it always stops the previous one first.
type Ticker struct {
	cancel  context.CancelFunc
	done    chan struct{}
	stopped atomic.Bool
	ticks   atomic.Int64
}

// StartTicker starts calling fn every interval in its own goroutine. fn
// receives the number of ticks delivered so far, starting at 1.
func StartTicker(interval time.Duration, fn func(t *Ticker, tick int64)) *Ticker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Ticker{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				fn(t, t.ticks.Add(1))
			}
		}
	}()

	return t
}

// Stop cancels the ticker. It never blocks, so it is safe to call while
// holding a lock the callback also takes; callbacks must check Stopped under
// that lock before acting.
func (t *Ticker) Stop() {
	if t == nil {
		return
	}
	t.stopped.Store(true)
	t.cancel()
}

// Stopped reports whether Stop has been called
func (t *Ticker) Stopped() bool {
	return t == nil || t.stopped.Load()
}

// Done is closed once the ticker goroutine has exited
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}
