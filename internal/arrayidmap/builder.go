package arrayidmap

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/idmap/internal/container"
	"github.com/hupe1980/idmap/internal/conv"
	"github.com/hupe1980/idmap/labels"
	"github.com/hupe1980/idmap/model"
	"golang.org/x/sync/errgroup"
)

// TypeID is the persisted tag of maps built by this package.
const TypeID = "array"

// DefaultMaxOriginalID is the largest original id the forward array addresses.
const DefaultMaxOriginalID int64 = 1<<40 - 1

// fillChunk is the number of mapped ids one goroutine inverts at a time.
const fillChunk = 1 << 16

// Option configures a Builder.
type Option func(*Builder)

// WithMaxOriginalID sets the largest original id Build accepts.
func WithMaxOriginalID(n int64) Option {
	return func(b *Builder) {
		b.maxOriginalID = n
	}
}

// WithMaxNodeCount limits the total number of ids that may be allocated.
func WithMaxNodeCount(n int64) Option {
	return func(b *Builder) {
		b.maxNodeCount = n
	}
}

// Builder builds an IDMap from concurrent batches.
type Builder struct {
	nextID        atomic.Int64
	inserted      atomic.Int64
	reverse       *container.GrowingLongArray
	adders        []*BulkAdder
	concurrency   int
	maxNodeCount  int64
	maxOriginalID int64
	closed        atomic.Bool

	errMu sync.Mutex
	err   error
}

var _ model.IDMapBuilder = (*Builder)(nil)

// NewBuilder creates a builder with concurrency worker slots.
func NewBuilder(concurrency int, opts ...Option) *Builder {
	concurrency = max(concurrency, 1)
	b := &Builder{
		reverse:       container.NewGrowingLongArray(),
		adders:        make([]*BulkAdder, concurrency),
		concurrency:   concurrency,
		maxNodeCount:  math.MaxInt64,
		maxOriginalID: DefaultMaxOriginalID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allocate reserves batchLength mapped ids for worker and returns the
// worker's BulkAdder reset to that range.
func (b *Builder) Allocate(worker, batchLength int) (model.IDMapAllocator, error) {
	if b.closed.Load() {
		panic("arrayidmap: Allocate on a built Builder")
	}
	if worker < 0 || worker >= b.concurrency {
		panic(fmt.Sprintf("arrayidmap: worker %d out of range [0, %d)", worker, b.concurrency))
	}

	start, end, err := b.reserve(batchLength)
	if err != nil {
		b.fail(err)
		return nil, err
	}

	adder := b.adders[worker]
	if adder == nil {
		adder = &BulkAdder{owner: b, maxOriginalID: model.NotFound}
		b.adders[worker] = adder
	}
	adder.reset(start, end-start, b.reverse.EnsureCapacity(end))
	return adder, nil
}

func (b *Builder) reserve(batchLength int) (int64, int64, error) {
	n, err := conv.IntToInt64(batchLength)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: batch length %d: %w", ErrOverflow, batchLength, err)
	}
	for {
		start := b.nextID.Load()
		end, err := conv.AddInt64(start, n)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: reserving %d ids at %d: %w", ErrOverflow, n, start, err)
		}
		if end > b.maxNodeCount {
			return 0, 0, fmt.Errorf("%w: reserving %d ids at %d exceeds %d", ErrOverflow, n, start, b.maxNodeCount)
		}
		if b.nextID.CompareAndSwap(start, end) {
			return start, end, nil
		}
	}
}

func (b *Builder) fail(err error) {
	b.errMu.Lock()
	if b.err == nil {
		b.err = err
	}
	b.errMu.Unlock()
}

func (b *Builder) firstErr() error {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	return b.err
}

// Build closes all bulk adders and finalizes the map.
func (b *Builder) Build(lb *labels.Builder, highestNodeID int64, concurrency int) (model.IDMap, error) {
	if !b.closed.CompareAndSwap(false, true) {
		return nil, ErrClosed
	}

	observed := model.NotFound
	for _, adder := range b.adders {
		if adder != nil {
			observed = max(observed, adder.maxOriginalID)
			adder.close()
		}
	}
	if err := b.firstErr(); err != nil {
		return nil, err
	}

	nodeCount := b.nextID.Load()
	if inserted := b.inserted.Load(); inserted != nodeCount {
		return nil, fmt.Errorf("%w: %d ids reserved, %d inserted", ErrIncompleteBatch, nodeCount, inserted)
	}

	highest := highestNodeID
	switch {
	case highest == model.UnknownHighestID:
		highest = observed
	case highest < observed:
		return nil, fmt.Errorf("%w: supplied %d, observed %d", ErrHighestIDTooSmall, highest, observed)
	}
	if highest > b.maxOriginalID {
		return nil, &ErrOriginalIDOutOfRange{Highest: highest, Limit: b.maxOriginalID}
	}

	concurrency = max(concurrency, 1)
	reverse := b.reverse.Freeze(nodeCount)

	forward, err := invert(reverse, highest, concurrency)
	if err != nil {
		return nil, err
	}

	info, err := lb.Build(nodeCount, forward.Get, concurrency)
	if err != nil {
		return nil, err
	}

	return &IDMap{
		reverse: reverse,
		forward: forward,
		highest: highest,
		labels:  info,
	}, nil
}

// invert builds the original -> mapped array from the mapped -> original array.
func invert(reverse *container.LongArray, highest int64, concurrency int) (*container.SparseLongArray, error) {
	forward := container.NewSparseLongArray(highest+1, model.NotFound)

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for from := int64(0); from < reverse.Size(); from += fillChunk {
		to := from + fillChunk
		g.Go(func() error {
			var err error
			reverse.Range(from, to, func(mapped, original int64) bool {
				if prev, ok := forward.SetIfAbsent(original, mapped); !ok {
					err = fmt.Errorf("%w: %d mapped to %d and %d", ErrDuplicateOriginalID, original, prev, mapped)
					return false
				}
				return true
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return forward, nil
}

// BulkAdder writes one reserved batch. It belongs to one worker.
type BulkAdder struct {
	owner         *Builder
	writer        container.PageWriter
	start         int64
	length        int64
	used          int64
	maxOriginalID int64
	ready         bool
}

var _ model.IDMapAllocator = (*BulkAdder)(nil)

func (a *BulkAdder) reset(start, length int64, writer container.PageWriter) {
	a.start = start
	a.length = length
	a.used = 0
	a.writer = writer
	a.ready = true
}

func (a *BulkAdder) close() {
	a.ready = false
	a.writer = container.PageWriter{}
}

// AllocatedSize returns the number of ids reserved for this batch.
func (a *BulkAdder) AllocatedSize() int {
	return int(a.length)
}

// Insert assigns the next reserved mapped ids to originalIDs in order.
// originalIDs is not modified.
func (a *BulkAdder) Insert(originalIDs []int64) {
	if !a.ready {
		panic("arrayidmap: BulkAdder.Insert before Allocate or after Build")
	}
	n := int64(len(originalIDs))
	if a.used+n > a.length {
		panic(fmt.Sprintf("arrayidmap: inserting %d ids into a batch with %d of %d ids left", n, a.length-a.used, a.length))
	}
	for _, id := range originalIDs {
		if id < 0 {
			panic(fmt.Sprintf("arrayidmap: negative original id %d", id))
		}
		if id > a.maxOriginalID {
			a.maxOriginalID = id
		}
	}
	a.writer.Copy(a.start+a.used, originalIDs)
	a.used += n
	a.owner.inserted.Add(n)
}
