package sharded

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/idmap/internal/conv"
)

// BatchedBuilder reserves contiguous mapped id ranges per batch.
//
// Each worker index in [0, concurrency) owns one reusable Batch. A worker
// index must only be used by one goroutine at a time.
type BatchedBuilder struct {
	shards       shards
	nextID       atomic.Int64
	maxNodeCount int64
	overrideIDs  bool
	concurrency  int
	batches      []*Batch
	closed       atomic.Bool

	errMu sync.Mutex
	err   error
}

// NewBatchedBuilder creates a builder for concurrency workers. With
// overrideIDs, Batch.Insert overwrites its input with the assigned ids.
func NewBatchedBuilder(concurrency int, overrideIDs bool) *BatchedBuilder {
	concurrency = max(concurrency, 1)
	return &BatchedBuilder{
		shards:       newShards(concurrency),
		maxNodeCount: math.MaxInt64,
		overrideIDs:  overrideIDs,
		concurrency:  concurrency,
		batches:      make([]*Batch, concurrency),
	}
}

// SetMaxNodeCount limits the total number of ids that may be reserved.
// It must be called before the first PrepareBatch.
func (b *BatchedBuilder) SetMaxNodeCount(n int64) {
	b.maxNodeCount = n
}

// Concurrency returns the number of worker slots.
func (b *BatchedBuilder) Concurrency() int {
	return b.concurrency
}

// PrepareBatch reserves count ids and returns the worker's Batch
// initialized with that range.
//
// A reservation that would leave the representable id range fails the
// whole build: the error is returned here and again from Build.
func (b *BatchedBuilder) PrepareBatch(worker, count int) (*Batch, error) {
	if b.closed.Load() {
		panic("sharded: PrepareBatch on a built BatchedBuilder")
	}
	if worker < 0 || worker >= b.concurrency {
		panic(fmt.Sprintf("sharded: worker %d out of range [0, %d)", worker, b.concurrency))
	}

	start, err := b.reserve(count)
	if err != nil {
		b.fail(err)
		return nil, err
	}

	batch := b.batches[worker]
	if batch == nil {
		batch = &Batch{owner: b}
		b.batches[worker] = batch
	}
	batch.reset(start, int64(count))
	return batch, nil
}

func (b *BatchedBuilder) reserve(count int) (int64, error) {
	n, err := conv.IntToInt64(count)
	if err != nil {
		return 0, fmt.Errorf("%w: batch length %d: %w", ErrOverflow, count, err)
	}
	for {
		start := b.nextID.Load()
		end, err := conv.AddInt64(start, n)
		if err != nil {
			return 0, fmt.Errorf("%w: reserving %d ids at %d: %w", ErrOverflow, n, start, err)
		}
		if end > b.maxNodeCount {
			return 0, fmt.Errorf("%w: reserving %d ids at %d exceeds %d", ErrOverflow, n, start, b.maxNodeCount)
		}
		if b.nextID.CompareAndSwap(start, end) {
			return start, nil
		}
	}
}

func (b *BatchedBuilder) fail(err error) {
	b.errMu.Lock()
	if b.err == nil {
		b.err = err
	}
	b.errMu.Unlock()
}

// Err returns the first fatal error recorded by any batch.
func (b *BatchedBuilder) Err() error {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	return b.err
}

// Size returns the number of reserved ids.
func (b *BatchedBuilder) Size() int64 {
	return b.nextID.Load()
}

// Build closes every worker batch and finalizes the map. Pass
// model.UnknownHighestID to compute the maximum original id.
// Build must only be called after all workers have returned.
func (b *BatchedBuilder) Build(maxOriginalID int64) (*Map, error) {
	if !b.closed.CompareAndSwap(false, true) {
		return nil, ErrClosed
	}
	for _, batch := range b.batches {
		if batch != nil {
			batch.close()
		}
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b.shards.build(b.nextID.Load(), maxOriginalID, b.concurrency)
}

// Batch inserts ids into a reserved range. It belongs to one worker.
type Batch struct {
	owner  *BatchedBuilder
	start  int64
	length int64
	used   int64
	ready  bool
}

func (b *Batch) reset(start, length int64) {
	b.start = start
	b.length = length
	b.used = 0
	b.ready = true
}

func (b *Batch) close() {
	b.ready = false
}

// AllocatedSize returns the number of ids reserved for this batch.
func (b *Batch) AllocatedSize() int {
	return int(b.length)
}

// Start returns the first mapped id of the reserved range.
func (b *Batch) Start() int64 {
	return b.start
}

// Insert assigns the next reserved ids to originalIDs, taking one shard
// lock per id. In override mode every element of originalIDs is replaced
// by its assigned id.
//
// Inserting an original id that is already present records
// ErrDuplicateOriginalID and fails the build.
func (b *Batch) Insert(originalIDs []int64) {
	if !b.ready {
		panic("sharded: Batch.Insert before PrepareBatch or after Build")
	}
	if b.used+int64(len(originalIDs)) > b.length {
		panic(fmt.Sprintf("sharded: inserting %d ids into a batch with %d of %d ids left",
			len(originalIDs), b.length-b.used, b.length))
	}

	owner := b.owner
	for i, original := range originalIDs {
		if original < 0 {
			panic(fmt.Sprintf("sharded: negative original id %d", original))
		}
		mapped := b.start + b.used
		b.used++

		sh := owner.shards.find(original)
		sh.mu.Lock()
		stored, added := sh.put(original, mapped)
		sh.mu.Unlock()

		if !added {
			owner.fail(fmt.Errorf("%w: %d already mapped to %d", ErrDuplicateOriginalID, original, stored))
		}
		if owner.overrideIDs {
			originalIDs[i] = stored
		}
	}
}
