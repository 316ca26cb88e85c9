package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_NoLimit(t *testing.T) {
	l := NewLimiter(0, 0)
	defer l.Stop()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("unlimited limiter blocked for %v", elapsed)
	}
}

func TestLimiter_Paces(t *testing.T) {
	l := NewLimiter(100, 0) // 10ms interval
	defer l.Stop()

	start := time.Now()
	for i := 0; i < 4; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// First slot is immediate, three more at 10ms spacing.
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("expected pacing of at least 25ms, got %v", elapsed)
	}
}

func TestLimiter_ContextCancel(t *testing.T) {
	l := NewLimiter(1, 0) // 1s interval
	defer l.Stop()

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatalf("expected context deadline error")
	}
}

func TestLimiter_JitterClamped(t *testing.T) {
	// Out-of-range jitter values must not panic or stall.
	for _, jitter := range []float64{-1, 2} {
		l := NewLimiter(1000, jitter)
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error with jitter %v: %v", jitter, err)
		}
		l.Stop()
	}
}
