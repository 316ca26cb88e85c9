// Package ratelimit paces outbound page loads so tracked stores see a
// polite, slightly irregular request cadence.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter spaces operations at a fixed interval with optional jitter.
// It is safe for concurrent use; waiters are serialized in arrival order
// by the internal schedule.
type Limiter struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
	jitter   float64
}

// NewLimiter creates a limiter allowing rps operations per second. Jitter
// (0.0 to 1.0) randomizes each slot by up to that fraction of the interval.
// An rps <= 0 produces a limiter that never blocks.
func NewLimiter(rps float64, jitter float64) *Limiter {
	l := &Limiter{}
	if rps <= 0 {
		return l
	}
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	l.interval = time.Duration(float64(time.Second) / rps)
	l.jitter = jitter
	return l
}

// Wait blocks until the caller's slot arrives or the context is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	if l.next.Before(now) {
		l.next = now
	}
	slot := l.next
	step := l.interval
	if l.jitter > 0 {
		step += time.Duration(float64(l.interval) * l.jitter * rand.Float64())
	}
	l.next = slot.Add(step)
	l.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stop releases limiter resources. The current implementation holds none.
func (l *Limiter) Stop() {}
