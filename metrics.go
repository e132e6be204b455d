package mdarena

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    allocCounter   prometheus.Counter
//	    liveBytesGauge prometheus.Gauge
//	}
//
//	func (p *PrometheusCollector) RecordAlloc(bytes int, duration time.Duration, err error) {
//	    p.allocCounter.Inc()
//	    p.liveBytesGauge.Add(float64(bytes))
//	}
type MetricsCollector interface {
	// RecordAlloc is called after each Alloc.
	// bytes is the block size (0 on failure), err is nil if successful.
	RecordAlloc(bytes int, duration time.Duration, err error)

	// RecordFree is called once per released block.
	RecordFree(bytes int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAlloc(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordFree(int)                        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocCount      atomic.Int64
	AllocErrors     atomic.Int64
	AllocBytes      atomic.Int64
	AllocTotalNanos atomic.Int64
	FreeCount       atomic.Int64
	FreeBytes       atomic.Int64
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(bytes int, duration time.Duration, err error) {
	b.AllocCount.Add(1)
	b.AllocTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AllocErrors.Add(1)
		return
	}
	b.AllocBytes.Add(int64(bytes))
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(bytes int) {
	b.FreeCount.Add(1)
	b.FreeBytes.Add(int64(bytes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	allocBytes := b.AllocBytes.Load()
	freeBytes := b.FreeBytes.Load()
	return BasicMetricsStats{
		AllocCount:    b.AllocCount.Load(),
		AllocErrors:   b.AllocErrors.Load(),
		AllocAvgNanos: b.getAvgAllocNanos(),
		AllocBytes:    allocBytes,
		FreeCount:     b.FreeCount.Load(),
		FreeBytes:     freeBytes,
		LiveBytes:     allocBytes - freeBytes,
	}
}

func (b *BasicMetricsCollector) getAvgAllocNanos() int64 {
	count := b.AllocCount.Load()
	if count == 0 {
		return 0
	}
	return b.AllocTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocCount    int64
	AllocErrors   int64
	AllocAvgNanos int64
	AllocBytes    int64
	FreeCount     int64
	FreeBytes     int64
	LiveBytes     int64
}
