package sharded

import (
	"fmt"
	"sync/atomic"
)

// SequentialBuilder assigns mapped ids one original id at a time.
// AddNode is safe for concurrent use.
type SequentialBuilder struct {
	shards      shards
	nextID      atomic.Int64
	concurrency int
	closed      atomic.Bool
}

// NewSequentialBuilder creates a builder partitioned for concurrency writers.
func NewSequentialBuilder(concurrency int) *SequentialBuilder {
	return &SequentialBuilder{
		shards:      newShards(concurrency),
		concurrency: max(concurrency, 1),
	}
}

// AddNode maps originalID to a new mapped id and returns it.
//
// If originalID was added before, AddNode returns -(existing)-1 instead.
// Decode with ExistingMappedID, i.e. existing == -result-1.
//
// originalID must be non-negative.
func (b *SequentialBuilder) AddNode(originalID int64) int64 {
	if b.closed.Load() {
		panic("sharded: AddNode on a built SequentialBuilder")
	}
	if originalID < 0 {
		panic(fmt.Sprintf("sharded: negative original id %d", originalID))
	}

	sh := b.shards.find(originalID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if existing, ok := sh.mapping[originalID]; ok {
		return -existing - 1
	}
	// The counter is advanced under the shard lock after the existence
	// check, so duplicates never consume an id.
	mapped := b.nextID.Add(1) - 1
	sh.put(originalID, mapped)
	return mapped
}

// ExistingMappedID decodes a negative AddNode result into the mapped id
// that was already assigned.
func ExistingMappedID(result int64) int64 {
	return -result - 1
}

// Size returns the number of ids added so far.
func (b *SequentialBuilder) Size() int64 {
	return b.nextID.Load()
}

// Build finalizes the map. Pass model.UnknownHighestID to compute the
// maximum original id from the inserted ids.
func (b *SequentialBuilder) Build(maxOriginalID int64) (*Map, error) {
	if !b.closed.CompareAndSwap(false, true) {
		return nil, ErrClosed
	}
	return b.shards.build(b.nextID.Load(), maxOriginalID, b.concurrency)
}
