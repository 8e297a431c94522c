package finvec

import (
	"log/slog"

	"github.com/quantmesh/finvec/blobstore"
	"github.com/quantmesh/finvec/codec"
)

type options struct {
	codec            codec.Codec
	overfetchFactor  int
	rebuildThreshold float64
	metricsCollector MetricsCollector
	logger           *Logger
	mirror           blobstore.BlobStore
	mirrorPrefix     string
}

// Option configures Store constructor/load behavior.
//
// Today options primarily exist to avoid exploding the API surface
// (e.g. codec-specific constructor variants).
type Option func(*options)

// WithCodec configures the codec used for metadata artifacts.
//
// If nil is passed, codec.Default is used. Loading always resolves the
// codec recorded in the artifact, so changing this only affects newly
// written artifacts.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithOverfetchFactor configures how many candidates are fetched per
// requested result to compensate for tombstones and filter misses.
// The default of 3 matches typical delete-and-filter workloads; raise it
// when queries combine selective filters with high churn.
//
// Values below 1 are ignored.
func WithOverfetchFactor(factor int) Option {
	return func(o *options) {
		if factor >= 1 {
			o.overfetchFactor = factor
		}
	}
}

// WithRebuildThreshold configures the deleted fraction that triggers a
// compacting rebuild of the index. The default is 0.10.
//
// Values outside (0, 1] are ignored. A threshold of 1 effectively
// disables automatic rebuilds.
func WithRebuildThreshold(threshold float64) Option {
	return func(o *options) {
		if threshold > 0 && threshold <= 1 {
			o.rebuildThreshold = threshold
		}
	}
}

// WithLogger configures structured logging for store operations.
//
// If nil is passed, logging is disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel is a convenience to enable text logging at the given
// level without constructing a Logger.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures operational metrics collection.
//
// If nil is passed, metrics are disabled.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		if collector == nil {
			collector = NoopMetricsCollector{}
		}
		o.metricsCollector = collector
	}
}

// WithMirror configures a blob store that receives a copy of both
// artifacts after every successful local save. Keys are prefix plus the
// artifact base names. Mirroring is best effort for plain stores; a
// store implementing blobstore.PairWriter publishes both artifacts
// atomically.
func WithMirror(store blobstore.BlobStore, prefix string) Option {
	return func(o *options) {
		o.mirror = store
		o.mirrorPrefix = prefix
	}
}
