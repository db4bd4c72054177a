package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for pacing requests
type Limiter interface {
	// Wait blocks until the next request may proceed or ctx is done
	Wait(ctx context.Context) error
}

// FixedDelay pauses for the same duration on every Wait
type FixedDelay struct {
	delay time.Duration
	mu    sync.Mutex
	waits int
	slept time.Duration
}

// NewFixedDelay creates a limiter that sleeps delay per call. A non-positive
// delay makes Wait return immediately.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay}
}

// Wait sleeps for the configured delay. It returns ctx.Err() if ctx ends first.
func (f *FixedDelay) Wait(ctx context.Context) error {
	f.mu.Lock()
	f.waits++
	f.mu.Unlock()

	if f.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.delay)
	defer timer.Stop()

	start := time.Now()
	select {
	case <-ctx.Done():
		f.record(time.Since(start))
		return ctx.Err()
	case <-timer.C:
		f.record(f.delay)
		return nil
	}
}

func (f *FixedDelay) record(d time.Duration) {
	f.mu.Lock()
	f.slept += d
	f.mu.Unlock()
}

// Delay returns the configured pause
func (f *FixedDelay) Delay() time.Duration {
	return f.delay
}

// Stats returns how many times Wait was called and the total time spent
// sleeping
func (f *FixedDelay) Stats() (waits int, slept time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waits, f.slept
}
