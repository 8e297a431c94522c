package finvec

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
//	    upsertCounter  prometheus.Counter
//	    queryHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordUpsert(count int, duration time.Duration, err error) {
//	    p.upsertCounter.Add(float64(count))
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordUpsert is called after each upsert operation.
	// count is the number of items attempted, duration is the total time
	// taken, err is nil if successful.
	RecordUpsert(count int, duration time.Duration, err error)

	// RecordQuery is called after each query operation.
	// k is the number of neighbors requested, duration is the time taken,
	// err is nil if successful.
	RecordQuery(k int, duration time.Duration, err error)

	// RecordDelete is called after each delete operation.
	// removed is the number of records actually tombstoned.
	RecordDelete(removed int, duration time.Duration, err error)

	// RecordRebuild is called after each index rebuild.
	RecordRebuild(duration time.Duration, err error)

	// RecordPersist is called after each artifact save.
	RecordPersist(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordUpsert(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordDelete(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRebuild(time.Duration, error)     {}
func (NoopMetricsCollector) RecordPersist(time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	UpsertCount       atomic.Int64
	UpsertErrors      atomic.Int64
	UpsertTotalNanos  atomic.Int64
	QueryCount        atomic.Int64
	QueryErrors       atomic.Int64
	QueryTotalNanos   atomic.Int64
	DeleteCount       atomic.Int64
	DeleteErrors      atomic.Int64
	DeletedRecords    atomic.Int64
	RebuildCount      atomic.Int64
	RebuildErrors     atomic.Int64
	RebuildTotalNanos atomic.Int64
	PersistCount      atomic.Int64
	PersistErrors     atomic.Int64
}

func (m *BasicMetricsCollector) RecordUpsert(count int, duration time.Duration, err error) {
	m.UpsertCount.Add(int64(count))
	m.UpsertTotalNanos.Add(int64(duration))
	if err != nil {
		m.UpsertErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordQuery(k int, duration time.Duration, err error) {
	m.QueryCount.Add(1)
	m.QueryTotalNanos.Add(int64(duration))
	if err != nil {
		m.QueryErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordDelete(removed int, duration time.Duration, err error) {
	m.DeleteCount.Add(1)
	m.DeletedRecords.Add(int64(removed))
	if err != nil {
		m.DeleteErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordRebuild(duration time.Duration, err error) {
	m.RebuildCount.Add(1)
	m.RebuildTotalNanos.Add(int64(duration))
	if err != nil {
		m.RebuildErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordPersist(duration time.Duration, err error) {
	m.PersistCount.Add(1)
	if err != nil {
		m.PersistErrors.Add(1)
	}
}
