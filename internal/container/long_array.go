package container

import "sync"

const (
	// pageBits determines the size of each page.
	// 16 bits = 65536 entries per page.
	pageBits = 16
	pageSize = 1 << pageBits
	pageMask = pageSize - 1
)

type page = [pageSize]int64

func numPages(size int64) int {
	return int((size + pageMask) >> pageBits)
}

// LongArray is a fixed-size paged int64 array.
// Concurrent writes to distinct indices are safe.
type LongArray struct {
	pages []*page
	size  int64
}

// NewLongArray allocates a zeroed array of the given size.
func NewLongArray(size int64) *LongArray {
	if size < 0 {
		size = 0
	}
	pages := make([]*page, numPages(size))
	for i := range pages {
		pages[i] = new(page)
	}
	return &LongArray{pages: pages, size: size}
}

// Get returns the value at index i. i must be in [0, Size()).
func (a *LongArray) Get(i int64) int64 {
	return a.pages[i>>pageBits][i&pageMask]
}

// Set stores v at index i. i must be in [0, Size()).
func (a *LongArray) Set(i, v int64) {
	a.pages[i>>pageBits][i&pageMask] = v
}

// Size returns the number of addressable entries.
func (a *LongArray) Size() int64 {
	return a.size
}

// Range calls fn for every index in [from, to) with its value.
// Iteration stops early if fn returns false.
func (a *LongArray) Range(from, to int64, fn func(i, v int64) bool) {
	if from < 0 {
		from = 0
	}
	if to > a.size {
		to = a.size
	}
	for i := from; i < to; {
		p := a.pages[i>>pageBits]
		end := min((i|pageMask)+1, to)
		for ; i < end; i++ {
			if !fn(i, p[i&pageMask]) {
				return
			}
		}
	}
}

// GrowingLongArray is a paged int64 array that grows page by page.
//
// Callers reserve disjoint index ranges (see EnsureCapacity) and may then
// write their own range without further synchronization.
type GrowingLongArray struct {
	mu    sync.Mutex // Protects growth
	pages []*page
	cap   int64
}

// NewGrowingLongArray creates an empty array.
func NewGrowingLongArray() *GrowingLongArray {
	return &GrowingLongArray{}
}

// EnsureCapacity guarantees that indices [0, n) are addressable and returns
// a writer over the current pages that covers them.
func (a *GrowingLongArray) EnsureCapacity(n int64) PageWriter {
	return PageWriter{pages: a.grow(n)}
}

func (a *GrowingLongArray) grow(n int64) []*page {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n <= a.cap {
		return a.pages
	}

	want := numPages(n)
	if want > len(a.pages) {
		grown := make([]*page, want, max(want, 2*len(a.pages)))
		copy(grown, a.pages)
		for i := len(a.pages); i < want; i++ {
			grown[i] = new(page)
		}
		a.pages = grown
	}
	a.cap = int64(len(a.pages)) << pageBits
	return a.pages
}

// Capacity returns the number of addressable entries.
func (a *GrowingLongArray) Capacity() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cap
}

// Freeze returns a fixed view of the first size entries. The growing array
// must not be written afterwards.
func (a *GrowingLongArray) Freeze(size int64) *LongArray {
	pages := a.grow(size)
	return &LongArray{pages: pages[:numPages(size)], size: size}
}

// PageWriter writes into the pages of a GrowingLongArray that were
// addressable when the writer was obtained.
type PageWriter struct {
	pages []*page
}

// Copy writes values to consecutive indices starting at start.
func (w PageWriter) Copy(start int64, values []int64) {
	for len(values) > 0 {
		p := w.pages[start>>pageBits]
		off := start & pageMask
		n := copy(p[off:], values)
		values = values[n:]
		start += int64(n)
	}
}
