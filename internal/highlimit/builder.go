package highlimit

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/idmap/internal/sharded"
	"github.com/hupe1980/idmap/labels"
	"github.com/hupe1980/idmap/model"
)

// OriginalIDBits is the number of bits an original id may occupy.
const OriginalIDBits = 58

// DefaultOriginalIDLimit is the exclusive upper bound of original ids.
const DefaultOriginalIDLimit int64 = 1 << OriginalIDBits

// Option configures a Builder.
type Option func(*Builder)

// WithOriginalIDLimit sets the exclusive upper bound of original ids.
func WithOriginalIDLimit(limit int64) Option {
	return func(b *Builder) {
		b.originalIDLimit = limit
	}
}

// Builder composes a sharded intermediate layer with an inner builder.
type Builder struct {
	intermediate    *sharded.BatchedBuilder
	inner           model.IDMapBuilder
	adders          []*BulkAdder
	concurrency     int
	originalIDLimit int64
	closed          atomic.Bool

	errMu sync.Mutex
	err   error
}

var _ model.IDMapBuilder = (*Builder)(nil)

// NewBuilder creates a two-level builder around inner. inner must accept
// the same worker indices [0, concurrency).
func NewBuilder(concurrency int, inner model.IDMapBuilder, opts ...Option) *Builder {
	concurrency = max(concurrency, 1)
	b := &Builder{
		intermediate:    sharded.NewBatchedBuilder(concurrency, true),
		inner:           inner,
		adders:          make([]*BulkAdder, concurrency),
		concurrency:     concurrency,
		originalIDLimit: DefaultOriginalIDLimit,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allocate reserves batchLength ids in both layers for worker.
func (b *Builder) Allocate(worker, batchLength int) (model.IDMapAllocator, error) {
	if b.closed.Load() {
		panic("highlimit: Allocate on a built Builder")
	}
	if worker < 0 || worker >= b.concurrency {
		panic(fmt.Sprintf("highlimit: worker %d out of range [0, %d)", worker, b.concurrency))
	}

	batch, err := b.intermediate.PrepareBatch(worker, batchLength)
	if err != nil {
		return nil, b.fail(err)
	}
	innerAlloc, err := b.inner.Allocate(worker, batchLength)
	if err != nil {
		return nil, b.fail(err)
	}

	adder := b.adders[worker]
	if adder == nil {
		adder = &BulkAdder{}
		b.adders[worker] = adder
	}
	adder.reset(batch, innerAlloc)
	return adder, nil
}

// Build finalizes the intermediate layer, checks that its highest original
// id is encodable, then builds the inner map bounded by the highest
// intermediate id.
//
// highestNodeID is either model.UnknownHighestID or an upper bound of the
// inserted original ids. A bound below an inserted id fails the build. The
// map always reports the true maximum from HighestOriginalID.
//
// lb must hold labels keyed by intermediate ids, which is what callers see
// in their slices after Insert.
func (b *Builder) Build(lb *labels.Builder, highestNodeID int64, concurrency int) (model.IDMap, error) {
	if !b.closed.CompareAndSwap(false, true) {
		return nil, ErrClosed
	}
	for _, adder := range b.adders {
		if adder != nil {
			adder.close()
		}
	}
	if err := b.firstErr(); err != nil {
		return nil, err
	}

	// The intermediate layer always records the true maximum. A supplied
	// highestNodeID is only checked against it.
	intermediate, err := b.intermediate.Build(model.UnknownHighestID)
	if err != nil {
		return nil, err
	}

	observed := intermediate.MaxOriginalID()
	if highestNodeID != model.UnknownHighestID && highestNodeID < observed {
		return nil, fmt.Errorf("%w: supplied %d, observed %d", sharded.ErrHighestIDTooSmall, highestNodeID, observed)
	}

	if err := b.encode(observed); err != nil {
		return nil, err
	}

	// The intermediate space is dense, so its highest id is size-1.
	inner, err := b.inner.Build(lb, intermediate.Size()-1, concurrency)
	if err != nil {
		return nil, err
	}

	return &IDMap{intermediate: intermediate, inner: inner}, nil
}

func (b *Builder) fail(err error) error {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	if b.err == nil {
		b.err = err
	}
	return err
}

func (b *Builder) firstErr() error {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	return b.err
}

// encode checks that originalID is representable below the limit.
func (b *Builder) encode(originalID int64) error {
	if originalID >= b.originalIDLimit {
		return &ErrOriginalIDOutOfRange{Highest: originalID, Limit: b.originalIDLimit}
	}
	return nil
}

// BulkAdder inserts one batch into both layers. It belongs to one worker.
type BulkAdder struct {
	intermediate *sharded.Batch
	inner        model.IDMapAllocator
}

var _ model.IDMapAllocator = (*BulkAdder)(nil)

func (a *BulkAdder) reset(intermediate *sharded.Batch, inner model.IDMapAllocator) {
	a.intermediate = intermediate
	a.inner = inner
}

func (a *BulkAdder) close() {
	a.intermediate = nil
	a.inner = nil
}

// AllocatedSize returns the number of ids reserved for this batch.
func (a *BulkAdder) AllocatedSize() int {
	if a.intermediate == nil {
		return 0
	}
	return a.intermediate.AllocatedSize()
}

// Insert maps originalIDs through both layers. On return the slice holds
// intermediate ids.
func (a *BulkAdder) Insert(originalIDs []int64) {
	if a.intermediate == nil {
		panic("highlimit: BulkAdder.Insert before Allocate or after Build")
	}
	// Phase 1: original ids are replaced in place by intermediate ids.
	a.intermediate.Insert(originalIDs)
	// Phase 2: the inner layer only ever sees intermediate ids.
	a.inner.Insert(originalIDs)
}
