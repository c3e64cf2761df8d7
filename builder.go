package idmap

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/idmap/internal/arrayidmap"
	"github.com/hupe1980/idmap/internal/highlimit"
	"github.com/hupe1980/idmap/labels"
	"github.com/hupe1980/idmap/model"
)

// TypeIDArray is the type id of the single-level dense map.
const TypeIDArray = arrayidmap.TypeID

// TypeIDHighLimitArray is the type id of the two-level map wrapping an
// "array" map.
var TypeIDHighLimitArray = highlimit.TypeID(arrayidmap.TypeID)

// Builder builds an id map of a fixed type. It reports metrics and logs
// around the underlying builder and unifies its errors.
//
// Builder is safe for concurrent use as long as every worker index is used
// by at most one goroutine at a time.
type Builder struct {
	b           model.IDMapBuilder
	typeID      string
	concurrency int
	metrics     MetricsCollector
	logger      *Logger
}

var _ model.IDMapBuilder = (*Builder)(nil)

// NewBuilder creates a builder.
//
// The type is taken from WithTypeID if given. Otherwise a two-level map is
// chosen when WithHighestOriginalID exceeds WithHighLimitThreshold, or when
// it is at least WithSparsityFactor times WithNodeCount. A single-level map
// is chosen in all other cases, including when neither bound is known.
func NewBuilder(optFns ...Option) (*Builder, error) {
	o := applyOptions(optFns)
	return newBuilder(selectTypeID(o), o)
}

// BuilderForTypeID recreates a builder from a persisted type id, as
// returned by IDMap.TypeID.
func BuilderForTypeID(typeID string, concurrency int, optFns ...Option) (*Builder, error) {
	o := applyOptions(optFns)
	o.concurrency = max(concurrency, 1)
	return newBuilder(typeID, o)
}

func selectTypeID(o options) string {
	if o.typeID != "" {
		return o.typeID
	}
	if o.highestOriginalID > o.highLimitThreshold {
		return TypeIDHighLimitArray
	}
	if sparse(o.highestOriginalID, o.nodeCount, o.sparsityFactor) {
		return TypeIDHighLimitArray
	}
	return TypeIDArray
}

// sparse reports whether highest exceeds factor ids per node. Unknown
// counts never count as sparse.
func sparse(highest, nodeCount, factor int64) bool {
	if highest < 0 || nodeCount <= 0 || factor < 1 {
		return false
	}
	return highest/nodeCount >= factor
}

func newBuilder(typeID string, o options) (*Builder, error) {
	b, err := newIDMapBuilder(typeID, o, false)
	if err != nil {
		return nil, err
	}

	logger := o.logger.WithTypeID(typeID).WithConcurrency(o.concurrency)
	logger.Debug("id map builder created")

	return &Builder{
		b:           b,
		typeID:      typeID,
		concurrency: o.concurrency,
		metrics:     o.metricsCollector,
		logger:      logger,
	}, nil
}

// newIDMapBuilder resolves typeID recursively. Nested builders only see
// dense intermediate ids and keep their default limits.
func newIDMapBuilder(typeID string, o options, nested bool) (model.IDMapBuilder, error) {
	if typeID == arrayidmap.TypeID {
		if nested {
			return arrayidmap.NewBuilder(o.concurrency), nil
		}
		return arrayidmap.NewBuilder(o.concurrency, arrayidmap.WithMaxOriginalID(o.highLimitThreshold)), nil
	}

	if innerTypeID, ok := highlimit.InnerTypeID(typeID); ok {
		inner, err := newIDMapBuilder(innerTypeID, o, true)
		if err != nil {
			return nil, err
		}
		return highlimit.NewBuilder(o.concurrency, inner, highlimit.WithOriginalIDLimit(o.originalIDLimit)), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownTypeID, typeID)
}

// TypeID returns the type id of the maps this builder produces.
func (b *Builder) TypeID() string {
	return b.typeID
}

// Concurrency returns the number of worker slots.
func (b *Builder) Concurrency() int {
	return b.concurrency
}

// Allocate reserves batchLength ids for worker, which must be in
// [0, Concurrency()).
//
// In two-level mode Insert replaces the caller's ids with intermediate ids.
func (b *Builder) Allocate(worker, batchLength int) (model.IDMapAllocator, error) {
	alloc, err := b.b.Allocate(worker, batchLength)
	err = translateError(err)
	b.metrics.RecordAllocate(batchLength, err)
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// Build finalizes the map. lb holds labels keyed by the ids found in the
// inserted slices after Insert returned; it may be nil.
func (b *Builder) Build(lb *labels.Builder, highestNodeID int64, concurrency int) (model.IDMap, error) {
	return b.BuildContext(context.Background(), lb, highestNodeID, concurrency)
}

// BuildContext is like Build, with ctx passed to the logger.
func (b *Builder) BuildContext(ctx context.Context, lb *labels.Builder, highestNodeID int64, concurrency int) (model.IDMap, error) {
	start := time.Now()

	m, err := b.b.Build(lb, highestNodeID, concurrency)
	err = translateError(err)
	duration := time.Since(start)

	if err != nil {
		b.metrics.RecordBuild(0, duration, err)
		b.logger.LogBuild(ctx, 0, model.NotFound, duration, err)
		return nil, err
	}

	b.metrics.RecordBuild(m.NodeCount(), duration, nil)
	b.logger.LogBuild(ctx, m.NodeCount(), m.HighestOriginalID(), duration, nil)
	return m, nil
}
