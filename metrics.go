package brickstream

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
//	    loadBytes prometheus.Counter
//	    evictions *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordEviction(tier brickstream.Tier, bytes int64) {
//	    p.evictions.WithLabelValues(tier.String()).Inc()
//	}
type MetricsCollector interface {
	// RecordLoad is called after each brick read.
	// bytes is the attached size, err is nil if successful.
	RecordLoad(bytes int64, duration time.Duration, err error)

	// RecordEviction is called for every evicted brick.
	RecordEviction(tier Tier, bytes int64)

	// RecordRun is called after each Run.
	// processed is the number of requests consumed, loaded the number of
	// bricks made resident.
	RecordRun(processed, loaded int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int64, time.Duration, error)   {}
func (NoopMetricsCollector) RecordEviction(Tier, int64)               {}
func (NoopMetricsCollector) RecordRun(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadBytes      atomic.Int64
	LoadTotalNanos atomic.Int64
	EvictionCount  atomic.Int64
	EvictionBytes  atomic.Int64
	RunCount       atomic.Int64
	RunErrors      atomic.Int64
	RunProcessed   atomic.Int64
	RunTotalNanos  atomic.Int64

	evictionsByTier [numTiers + 1]atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int64, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(bytes)
}

// RecordEviction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEviction(tier Tier, bytes int64) {
	b.EvictionCount.Add(1)
	b.EvictionBytes.Add(bytes)
	if int(tier) < len(b.evictionsByTier) {
		b.evictionsByTier[tier].Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(processed, loaded int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunProcessed.Add(int64(processed))
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		LoadCount:     b.LoadCount.Load(),
		LoadErrors:    b.LoadErrors.Load(),
		LoadBytes:     b.LoadBytes.Load(),
		LoadAvgNanos:  avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		EvictionCount: b.EvictionCount.Load(),
		EvictionBytes: b.EvictionBytes.Load(),
		RunCount:      b.RunCount.Load(),
		RunErrors:     b.RunErrors.Load(),
		RunProcessed:  b.RunProcessed.Load(),
		RunAvgNanos:   avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
	}
	for t := TierDatasetHidden; t <= TierProcessed; t++ {
		s.EvictionsByTier[t] = b.evictionsByTier[t].Load()
	}
	return s
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount     int64
	LoadErrors    int64
	LoadBytes     int64
	LoadAvgNanos  int64
	EvictionCount int64
	EvictionBytes int64
	RunCount      int64
	RunErrors     int64
	RunProcessed  int64
	RunAvgNanos   int64

	// EvictionsByTier is indexed by Tier; index 0 is unused.
	EvictionsByTier [numTiers + 1]int64
}
