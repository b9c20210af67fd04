// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

// Package pool provides sync.Pool-backed allocators for the boxed CSON
// node types (Object, Array), reducing allocation churn for proxies that
// create and tear down resource sets at a high rate.
package pool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/murphyproxy/resource-proxy/pkg/logging"
)

// NodePool recycles boxed values of type T. T must be safe to reuse once
// Put is called; callers are responsible for resetting any fields that
// shouldn't leak between uses before returning a value via Put.
type NodePool[T any] struct {
	pool   sync.Pool
	new    func() *T
	reset  func(*T)
	logger logging.Logger
	gets   atomic.Int64
	puts   atomic.Int64
	news   atomic.Int64
	reaper *idleReaper
}

// NodePoolConfig configures a NodePool.
type NodePoolConfig[T any] struct {
	// New constructs a fresh zero-value T when the pool is empty.
	New func() *T

	// Reset clears a T's fields before it's returned to the pool. May be
	// nil if T has no state that needs clearing.
	Reset func(*T)

	Logger logging.Logger
}

// NewNodePool creates a new NodePool.
func NewNodePool[T any](config NodePoolConfig[T]) *NodePool[T] {
	if config.New == nil {
		panic("pool: New constructor is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	p := &NodePool[T]{
		new:    config.New,
		reset:  config.Reset,
		logger: logger,
	}
	p.pool.New = func() any {
		p.news.Add(1)
		return p.new()
	}

	return p
}

// Get returns a value from the pool, allocating a new one if the pool is
// empty.
func (p *NodePool[T]) Get() *T {
	p.gets.Add(1)
	return p.pool.Get().(*T)
}

// Put returns a value to the pool after resetting it.
func (p *NodePool[T]) Put(v *T) {
	if v == nil {
		return
	}
	if p.reset != nil {
		p.reset(v)
	}
	p.puts.Add(1)
	p.pool.Put(v)
}

// Stats reports allocator pressure for the pool.
type Stats struct {
	Gets int64
	Puts int64
	News int64
}

// Stats returns a snapshot of pool usage counters.
func (p *NodePool[T]) Stats() Stats {
	return Stats{
		Gets: p.gets.Load(),
		Puts: p.puts.Load(),
		News: p.news.Load(),
	}
}

// ReuseRatio returns the fraction of Gets that were satisfied from the
// pool rather than allocating a new value, in [0,1].
func (s Stats) ReuseRatio() float64 {
	if s.Gets == 0 {
		return 0
	}
	return 1 - float64(s.News)/float64(s.Gets)
}

// StartMonitoring logs pool stats every interval until StopMonitoring is
// called. Safe to call at most once per pool.
func (p *NodePool[T]) StartMonitoring(interval time.Duration) {
	if p.reaper != nil {
		return
	}
	p.reaper = newIdleReaper(interval)
	go p.reaper.run(p.Stats, p.logger)
}

// StopMonitoring stops a running monitor goroutine started with
// StartMonitoring. No-op if monitoring was never started.
func (p *NodePool[T]) StopMonitoring() {
	if p.reaper != nil {
		p.reaper.Stop()
	}
}

// idleReaper periodically logs pool pressure; it exists so long-lived
// clients can surface pool health the same way the connection manager
// this package descends from surfaced idle-connection health.
type idleReaper struct {
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

func newIdleReaper(interval time.Duration) *idleReaper {
	return &idleReaper{interval: interval, stop: make(chan struct{})}
}

func (r *idleReaper) run(statsFn func() Stats, logger logging.Logger) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s := statsFn()
			logger.Debug("pool stats", "gets", s.Gets, "puts", s.Puts, "news", s.News)
		case <-r.stop:
			return
		}
	}
}

func (r *idleReaper) Stop() {
	r.once.Do(func() { close(r.stop) })
}
