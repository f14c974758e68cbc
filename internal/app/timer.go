package app

import (
	"context"
	"sync"
	"time"

	"clockin/internal/domain"
)

// LiveTimer emits the running billable seconds of an open session on a
// fixed interval until stopped.
type LiveTimer struct {
	schedule domain.Schedule
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLiveTimer creates a stopped timer.
func NewLiveTimer(schedule domain.Schedule) *LiveTimer {
	return &LiveTimer{schedule: schedule, now: time.Now}
}

// Start begins ticking for a session opened at clockIn. The first value is
// sent right away. A running timer is stopped first. The channel is closed
// when the timer stops or ctx is done.
func (t *LiveTimer) Start(ctx context.Context, clockIn time.Time, interval time.Duration) <-chan int64 {
	t.Stop()

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan int64, 1)
	done := make(chan struct{})

	t.mu.Lock()
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	go func() {
		defer close(done)
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case ch <- t.schedule.BillableSeconds(clockIn, t.now()):
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Stop cancels the timer and waits for its goroutine to exit.
func (t *LiveTimer) Stop() {
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

// Running reports whether a tick goroutine is active.
func (t *LiveTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}
