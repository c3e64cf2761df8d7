package testutil

import (
	"math/rand/v2"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// Int64N returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Int64N(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int64N(n)
}

// UniqueIDs returns n distinct ids in [lo, hi) in random order.
// It panics if the range holds fewer than n ids.
func (r *RNG) UniqueIDs(n int, lo, hi int64) []int64 {
	if hi-lo < int64(n) {
		panic("testutil: id range smaller than n")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int64]struct{}, n)
	ids := make([]int64, 0, n)
	for len(ids) < n {
		id := lo + r.rand.Int64N(hi-lo)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Shuffle permutes ids in place.
func (r *RNG) Shuffle(ids []int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}

// Batches splits ids into consecutive sub-slices of at most size elements.
// The batches share ids' backing array.
func Batches(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = 1
	}
	out := make([][]int64, 0, (len(ids)+size-1)/size)
	for from := 0; from < len(ids); from += size {
		out = append(out, ids[from:min(from+size, len(ids)):min(from+size, len(ids))])
	}
	return out
}
