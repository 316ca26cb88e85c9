// Package useragent rotates realistic browser User-Agent strings across
// page loads.
package useragent

import (
	"math/rand"
	"sync/atomic"
)

// DefaultPool covers current desktop Chrome, Firefox, Safari and Edge.
var DefaultPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
}

// Pool hands out User-Agents round-robin or at random. Safe for
// concurrent use.
type Pool struct {
	agents  []string
	counter atomic.Uint64
}

// NewPool creates a pool over the given agents, falling back to
// DefaultPool when none are provided.
func NewPool(agents []string) *Pool {
	if len(agents) == 0 {
		agents = DefaultPool
	}
	copied := make([]string, len(agents))
	copy(copied, agents)
	return &Pool{agents: copied}
}

// Next returns the next agent in round-robin order.
func (p *Pool) Next() string {
	idx := p.counter.Add(1) - 1
	return p.agents[idx%uint64(len(p.agents))]
}

// Random returns a uniformly random agent from the pool.
func (p *Pool) Random() string {
	return p.agents[rand.Intn(len(p.agents))]
}

// All returns a copy of the pool's agents.
func (p *Pool) All() []string {
	copied := make([]string, len(p.agents))
	copy(copied, p.agents)
	return copied
}
