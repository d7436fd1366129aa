// Package mempressure drops rebuildable caches when the process nears its
// GOMEMLIMIT.
package mempressure

import (
	"log/slog"
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// Purger drops state that can be rebuilt on demand.
type Purger interface {
	Purge()
}

// StatsReader abstracts runtime.ReadMemStats for testability.
type StatsReader interface {
	ReadMemStats(m *runtime.MemStats)
}

type runtimeStats struct{}

func (runtimeStats) ReadMemStats(m *runtime.MemStats) { runtime.ReadMemStats(m) }

// Options tunes a Monitor. Zero values take the defaults.
type Options struct {
	// Threshold is the usage/limit ratio that counts as pressure. Default 0.8.
	Threshold float64
	// Interval between checks. Default 10s.
	Interval time.Duration
	// Cooldown is the minimum time between two purges. Default 1m.
	Cooldown time.Duration
}

// Monitor polls memory usage against GOMEMLIMIT and purges when the
// threshold is crossed.
type Monitor struct {
	opts   Options
	purger Purger
	stats  StatsReader
	limit  func() int64

	lastPurge time.Time
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewMonitor creates a monitor that purges p under pressure.
func NewMonitor(p Purger, opts Options) *Monitor {
	if opts.Threshold <= 0 {
		opts.Threshold = 0.8
	}
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = time.Minute
	}
	return &Monitor{
		opts:   opts,
		purger: p,
		stats:  runtimeStats{},
		limit:  currentLimit,
		stopCh: make(chan struct{}),
	}
}

// currentLimit reads GOMEMLIMIT without changing it.
func currentLimit() int64 {
	return debug.SetMemoryLimit(-1)
}

// Start begins polling in the background.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run()
	}()
}

func (m *Monitor) run() {
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case now := <-ticker.C:
			m.tick(now)
		}
	}
}

func (m *Monitor) tick(now time.Time) {
	usage, limit, over := m.check()
	if !over {
		return
	}
	if !m.lastPurge.IsZero() && now.Sub(m.lastPurge) < m.opts.Cooldown {
		return
	}
	m.lastPurge = now

	slog.Warn("memory pressure, purging cluster clients",
		"usage_bytes", usage,
		"limit_bytes", limit,
		"threshold", m.opts.Threshold,
	)
	m.purger.Purge()
	debug.FreeOSMemory()
}

// check reports usage, the limit and whether usage is above the threshold.
// An unset GOMEMLIMIT never counts as pressure.
func (m *Monitor) check() (uint64, int64, bool) {
	limit := m.limit()
	if limit <= 0 || limit == math.MaxInt64 {
		return 0, limit, false
	}

	var stats runtime.MemStats
	m.stats.ReadMemStats(&stats)
	usage := stats.Sys - stats.HeapReleased

	return usage, limit, float64(usage)/float64(limit) > m.opts.Threshold
}

// Stop halts polling and waits for the loop to exit. Safe to call more
// than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()
}
