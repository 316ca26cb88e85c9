// Package proxy rotates outbound requests across a set of proxy endpoints,
// resting endpoints that keep failing.
package proxy

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

type endpoint struct {
	url       *url.URL
	failures  int
	restUntil time.Time
}

// Pool is a round-robin proxy rotation with per-endpoint failure tracking.
// An endpoint that fails MaxFailures times in a row rests for Cooldown
// before it is offered again. Safe for concurrent use.
type Pool struct {
	mu        sync.Mutex
	endpoints []*endpoint
	index     int

	maxFailures int
	cooldown    time.Duration
}

// Config tunes endpoint health handling. Zero values get defaults.
type Config struct {
	MaxFailures int
	Cooldown    time.Duration
}

// NewPool creates a pool from raw proxy URLs. Entries without a scheme
// default to http. An empty list yields a pool whose Next always returns
// nil, which callers treat as "direct connection".
func NewPool(cfg Config, rawURLs ...string) (*Pool, error) {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}

	p := &Pool{maxFailures: cfg.MaxFailures, cooldown: cfg.Cooldown}
	for _, raw := range rawURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy %q: %w", raw, err)
		}
		p.endpoints = append(p.endpoints, &endpoint{url: u})
	}
	return p, nil
}

// Size returns the number of configured endpoints, resting or not.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.endpoints)
}

// Next returns the next available proxy URL, or nil when the pool is empty
// or every endpoint is resting.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	for range p.endpoints {
		e := p.endpoints[p.index]
		p.index = (p.index + 1) % len(p.endpoints)

		if !e.restUntil.IsZero() && now.After(e.restUntil) {
			e.restUntil = time.Time{}
			e.failures = 0
		}
		if e.restUntil.IsZero() {
			return e.url
		}
	}
	return nil
}

// Report records the outcome of a request made through proxyURL. A nil
// proxyURL (direct connection) is ignored.
func (p *Pool) Report(proxyURL *url.URL, ok bool) {
	if proxyURL == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	target := proxyURL.String()
	for _, e := range p.endpoints {
		if e.url.String() != target {
			continue
		}
		if ok {
			if e.failures > 0 {
				e.failures--
			}
			return
		}
		e.failures++
		if e.failures >= p.maxFailures {
			e.restUntil = time.Now().Add(p.cooldown)
		}
		return
	}
}
