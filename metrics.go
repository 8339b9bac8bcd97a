package boltgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// The page pool deliberately does not report through this interface: its hot
// paths perform no logging and no I/O. Use DB.PoolStats for pool counters.
type MetricsCollector interface {
	// RecordOpen is called after a database open attempt.
	RecordOpen(duration time.Duration, err error)

	// RecordGrow is called after each mapping growth attempt.
	// newSize is the target mapping size in bytes.
	RecordGrow(newSize uint64, duration time.Duration, err error)

	// RecordSync is called after each explicit flush of the mapping.
	RecordSync(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)         {}
func (NoopMetricsCollector) RecordGrow(uint64, time.Duration, error) {}
func (NoopMetricsCollector) RecordSync(time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount      atomic.Int64
	OpenErrors     atomic.Int64
	GrowCount      atomic.Int64
	GrowErrors     atomic.Int64
	GrowTotalNanos atomic.Int64
	LastGrowSize   atomic.Uint64
	SyncCount      atomic.Int64
	SyncErrors     atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(duration time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(newSize uint64, duration time.Duration, err error) {
	b.GrowCount.Add(1)
	b.GrowTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GrowErrors.Add(1)
		return
	}
	b.LastGrowSize.Store(newSize)
}

// RecordSync implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSync(duration time.Duration, err error) {
	b.SyncCount.Add(1)
	if err != nil {
		b.SyncErrors.Add(1)
	}
}
