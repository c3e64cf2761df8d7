package idmap

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/idmap/internal/arrayidmap"
	"github.com/hupe1980/idmap/internal/highlimit"
	"github.com/hupe1980/idmap/model"
)

// DefaultBatchSize is the number of nodes Import inserts per allocation.
const DefaultBatchSize = 10_000

// DefaultSparsityFactor is the ratio of highest original id to node count
// from which the two-level map is chosen.
const DefaultSparsityFactor int64 = 64

type options struct {
	concurrency        int
	typeID             string
	highestOriginalID  int64
	highLimitThreshold int64
	nodeCount          int64
	sparsityFactor     int64
	originalIDLimit    int64
	batchSize          int
	metricsCollector   MetricsCollector
	logger             *Logger
}

// Option configures builder selection and import behavior.
type Option func(*options)

// WithConcurrency sets the number of workers. Shard count and worker
// slots are derived from it. Values < 1 are treated as 1.
func WithConcurrency(concurrency int) Option {
	return func(o *options) {
		o.concurrency = max(concurrency, 1)
	}
}

// WithTypeID forces the id map type, e.g. "array" or "highlimit-array".
// By default the type is chosen from the highest original id.
func WithTypeID(typeID string) Option {
	return func(o *options) {
		o.typeID = typeID
	}
}

// WithHighestOriginalID supplies an upper bound of all original ids.
//
// The bound selects the map type and is validated by Build: a bound below
// an inserted id fails the build.
func WithHighestOriginalID(id int64) Option {
	return func(o *options) {
		o.highestOriginalID = id
	}
}

// WithHighLimitThreshold sets the largest original id served by a
// single-level "array" map. Larger ids select the two-level map.
func WithHighLimitThreshold(id int64) Option {
	return func(o *options) {
		o.highLimitThreshold = id
	}
}

// WithNodeCount supplies the expected number of nodes. Together with
// WithHighestOriginalID it lets NewBuilder detect sparse id spaces.
// Import counts its nodes itself.
func WithNodeCount(n int64) Option {
	return func(o *options) {
		o.nodeCount = n
	}
}

// WithSparsityFactor sets the ratio of highest original id to node count
// from which the two-level map is chosen. Values < 1 disable the check.
func WithSparsityFactor(f int64) Option {
	return func(o *options) {
		o.sparsityFactor = f
	}
}

// WithOriginalIDLimit sets the exclusive upper bound of original ids
// accepted by two-level maps.
func WithOriginalIDLimit(limit int64) Option {
	return func(o *options) {
		o.originalIDLimit = limit
	}
}

// WithBatchSize sets the number of nodes Import inserts per allocation.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &idmap.BasicMetricsCollector{}
//	m, _ := idmap.Import(ctx, nodes, idmap.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Builds: %d, Nodes: %d\n", stats.BuildCount, stats.BuildNodes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := idmap.NewJSONLogger(slog.LevelInfo)
//	m, _ := idmap.Import(ctx, nodes, idmap.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		concurrency:        runtime.GOMAXPROCS(0),
		highestOriginalID:  model.UnknownHighestID,
		highLimitThreshold: arrayidmap.DefaultMaxOriginalID,
		sparsityFactor:     DefaultSparsityFactor,
		originalIDLimit:    highlimit.DefaultOriginalIDLimit,
		batchSize:          DefaultBatchSize,
		metricsCollector:   NoopMetricsCollector{},
		logger:             NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
