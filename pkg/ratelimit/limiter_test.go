package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestFixedDelay(t *testing.T) {
	limiter := NewFixedDelay(50 * time.Millisecond)

	start := time.Now()
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait() returned after %v, expected at least 50ms", elapsed)
	}

	waits, slept := limiter.Stats()
	if waits != 1 {
		t.Errorf("Expected 1 wait, got %d", waits)
	}
	if slept != 50*time.Millisecond {
		t.Errorf("Expected 50ms slept, got %v", slept)
	}
	if limiter.Delay() != 50*time.Millisecond {
		t.Errorf("Delay() = %v", limiter.Delay())
	}
}

func TestFixedDelayZero(t *testing.T) {
	limiter := NewFixedDelay(0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Zero delay should not block, took %v", elapsed)
	}

	if waits, _ := limiter.Stats(); waits != 3 {
		t.Errorf("Expected 3 waits, got %d", waits)
	}
}

func TestFixedDelayCancelled(t *testing.T) {
	limiter := NewFixedDelay(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := limiter.Wait(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Wait() ignored cancellation, took %v", elapsed)
	}
}

func TestFixedDelayZeroHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewFixedDelay(0).Wait(ctx); err != context.Canceled {
		t.Errorf("Expected Canceled, got %v", err)
	}
}
