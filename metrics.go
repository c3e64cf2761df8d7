package idmap

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
//	    buildCounter   prometheus.Counter
//	    buildHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordBuild(nodes int64, duration time.Duration, err error) {
//	    p.buildCounter.Inc()
//	    p.buildHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordAllocate is called after each batch reservation.
	// count is the requested batch length, err is nil if successful.
	RecordAllocate(count int, err error)

	// RecordBuild is called after each Build.
	// nodes is the node count of the finished map (0 on error).
	RecordBuild(nodes int64, duration time.Duration, err error)

	// RecordImport is called after each Import.
	RecordImport(nodes int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAllocate(int, error)                {}
func (NoopMetricsCollector) RecordBuild(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordImport(int, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocateCount    atomic.Int64
	AllocateIDs      atomic.Int64
	AllocateErrors   atomic.Int64
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	BuildNodes       atomic.Int64
	BuildTotalNanos  atomic.Int64
	ImportCount      atomic.Int64
	ImportErrors     atomic.Int64
	ImportNodes      atomic.Int64
	ImportTotalNanos atomic.Int64
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(count int, err error) {
	b.AllocateCount.Add(1)
	if err != nil {
		b.AllocateErrors.Add(1)
		return
	}
	b.AllocateIDs.Add(int64(count))
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(nodes int64, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BuildNodes.Add(nodes)
}

// RecordImport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImport(nodes int, duration time.Duration, err error) {
	b.ImportCount.Add(1)
	b.ImportTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ImportErrors.Add(1)
		return
	}
	b.ImportNodes.Add(int64(nodes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocateCount:  b.AllocateCount.Load(),
		AllocateIDs:    b.AllocateIDs.Load(),
		AllocateErrors: b.AllocateErrors.Load(),
		BuildCount:     b.BuildCount.Load(),
		BuildErrors:    b.BuildErrors.Load(),
		BuildNodes:     b.BuildNodes.Load(),
		BuildAvgNanos:  avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		ImportCount:    b.ImportCount.Load(),
		ImportErrors:   b.ImportErrors.Load(),
		ImportNodes:    b.ImportNodes.Load(),
		ImportAvgNanos: avg(b.ImportTotalNanos.Load(), b.ImportCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocateCount  int64
	AllocateIDs    int64
	AllocateErrors int64
	BuildCount     int64
	BuildErrors    int64
	BuildNodes     int64
	BuildAvgNanos  int64
	ImportCount    int64
	ImportErrors   int64
	ImportNodes    int64
	ImportAvgNanos int64
}
