// Package poll provides a bounded-retry polling primitive. It exists so that
// "wait until X or give up" loops share one implementation with a declared
// interval and timeout instead of ad hoc sleep loops scattered across callers.
package poll

import (
	"context"
	"time"
)

// Config declares the retry cadence for a polling loop.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultConfig matches the cadence used by the content wait gate.
var DefaultConfig = Config{
	Interval: 200 * time.Millisecond,
	Timeout:  3 * time.Second,
}

// Until repeatedly calls cond until it returns true, the timeout elapses, or
// ctx is cancelled. It reports whether cond ever returned true. It never
// returns an error: a timeout is an expected outcome, not a failure.
func Until(ctx context.Context, cfg Config, cond func(ctx context.Context) bool) bool {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}

	deadline := time.Now().Add(cfg.Timeout)

	if cond(ctx) {
		return true
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case now := <-ticker.C:
			if cond(ctx) {
				return true
			}
			if now.After(deadline) {
				return false
			}
		}
	}
}

// Settled is the inverse loop: it waits until cond stops returning true.
// The wait gate uses this to hold detection off while a page reports that it
// is still loading, proceeding regardless once the budget is spent.
func Settled(ctx context.Context, cfg Config, busy func(ctx context.Context) bool) bool {
	return Until(ctx, cfg, func(ctx context.Context) bool {
		return !busy(ctx)
	})
}
