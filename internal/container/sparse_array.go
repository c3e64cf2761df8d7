package container

import "sync/atomic"

const (
	// Pages of a SparseLongArray hold 4096 entries (32 KiB).
	sparsePageBits = 12
	sparsePageSize = 1 << sparsePageBits
	sparsePageMask = sparsePageSize - 1
)

type sparsePage = [sparsePageSize]int64

func numSparsePages(size int64) int {
	return int((size + sparsePageMask) >> sparsePageBits)
}

// SparseLongArray is a fixed-capacity paged int64 array whose pages are only
// allocated when an entry in them is written. Unset entries read as the
// default value given at construction.
//
// SetIfAbsent is safe for concurrent use. Get is safe for concurrent use once
// all writers have finished.
type SparseLongArray struct {
	pages    []atomic.Pointer[sparsePage]
	capacity int64
	def      int64
}

// NewSparseLongArray creates an array addressing [0, capacity).
func NewSparseLongArray(capacity, defaultValue int64) *SparseLongArray {
	if capacity < 0 {
		capacity = 0
	}
	return &SparseLongArray{
		pages:    make([]atomic.Pointer[sparsePage], numSparsePages(capacity)),
		capacity: capacity,
		def:      defaultValue,
	}
}

// Capacity returns the number of addressable entries.
func (a *SparseLongArray) Capacity() int64 {
	return a.capacity
}

// Get returns the value at index i, or the default value if i is out of
// range or was never written.
func (a *SparseLongArray) Get(i int64) int64 {
	if i < 0 || i >= a.capacity {
		return a.def
	}
	p := a.pages[i>>sparsePageBits].Load()
	if p == nil {
		return a.def
	}
	return p[i&sparsePageMask]
}

// SetIfAbsent stores v at index i unless a value was stored before.
// It returns the value present after the call and whether v was stored.
func (a *SparseLongArray) SetIfAbsent(i, v int64) (int64, bool) {
	p := a.page(i >> sparsePageBits)
	slot := &p[i&sparsePageMask]
	if atomic.CompareAndSwapInt64(slot, a.def, v) {
		return v, true
	}
	return atomic.LoadInt64(slot), false
}

// AllocatedPages returns the number of pages holding at least one write.
func (a *SparseLongArray) AllocatedPages() int {
	n := 0
	for i := range a.pages {
		if a.pages[i].Load() != nil {
			n++
		}
	}
	return n
}

func (a *SparseLongArray) page(idx int64) *sparsePage {
	ptr := &a.pages[idx]
	if p := ptr.Load(); p != nil {
		return p
	}

	fresh := new(sparsePage)
	if a.def != 0 {
		for j := range fresh {
			fresh[j] = a.def
		}
	}
	if ptr.CompareAndSwap(nil, fresh) {
		return fresh
	}
	return ptr.Load()
}
