package highlimit

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/hupe1980/idmap/internal/arrayidmap"
	"github.com/hupe1980/idmap/internal/sharded"
	"github.com/hupe1980/idmap/labels"
	"github.com/hupe1980/idmap/model"
	"github.com/hupe1980/idmap/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// recordingBuilder wraps an inner builder and remembers every id handed
// to its allocators.
type recordingBuilder struct {
	model.IDMapBuilder

	mu   sync.Mutex
	seen []int64
	high int64
}

func (r *recordingBuilder) Allocate(worker, batchLength int) (model.IDMapAllocator, error) {
	alloc, err := r.IDMapBuilder.Allocate(worker, batchLength)
	if err != nil {
		return nil, err
	}
	return &recordingAllocator{IDMapAllocator: alloc, owner: r}, nil
}

func (r *recordingBuilder) Build(lb *labels.Builder, highestNodeID int64, concurrency int) (model.IDMap, error) {
	r.high = highestNodeID
	return r.IDMapBuilder.Build(lb, highestNodeID, concurrency)
}

type recordingAllocator struct {
	model.IDMapAllocator
	owner *recordingBuilder
}

func (a *recordingAllocator) Insert(ids []int64) {
	a.owner.mu.Lock()
	a.owner.seen = append(a.owner.seen, ids...)
	a.owner.mu.Unlock()
	a.IDMapAllocator.Insert(ids)
}

type failingBuilder struct {
	model.IDMapBuilder
	err error
}

func (f failingBuilder) Build(*labels.Builder, int64, int) (model.IDMap, error) {
	return nil, f.err
}

func sparseIDs(n int, seed uint64) []int64 {
	return testutil.NewRNG(seed).UniqueIDs(n, 1<<50, 1<<50+1<<57)
}

func TestTypeID(t *testing.T) {
	assert.Equal(t, "highlimit-array", TypeID("array"))

	assert.True(t, IsHighLimitTypeID("highlimit-array"))
	assert.False(t, IsHighLimitTypeID("array"))
	assert.False(t, IsHighLimitTypeID("highlimit-"))

	inner, ok := InnerTypeID("highlimit-array")
	assert.True(t, ok)
	assert.Equal(t, "array", inner)

	inner, ok = InnerTypeID("highlimit-highlimit-array")
	assert.True(t, ok)
	assert.Equal(t, "highlimit-array", inner)

	_, ok = InnerTypeID("array")
	assert.False(t, ok)
}

func TestBuilder_RoundTrip(t *testing.T) {
	const workers = 4
	ids := sparseIDs(20_000, 1)

	inner := &recordingBuilder{IDMapBuilder: arrayidmap.NewBuilder(workers)}
	b := NewBuilder(workers, inner)

	g := new(errgroup.Group)
	for w := range workers {
		g.Go(func() error {
			buf := make([]int64, 0, 500)
			for off := w * 500; off < len(ids); off += workers * 500 {
				buf = append(buf[:0], ids[off:min(off+500, len(ids))]...)
				alloc, err := b.Allocate(w, len(buf))
				if err != nil {
					return err
				}
				alloc.Insert(buf)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	m, err := b.Build(nil, model.UnknownHighestID, workers)
	require.NoError(t, err)

	assert.Equal(t, "highlimit-array", m.TypeID())
	assert.Equal(t, int64(len(ids)), m.NodeCount())
	assert.Equal(t, slices.Max(ids), m.HighestOriginalID())

	// The inner builder only ever saw dense intermediate ids.
	require.Len(t, inner.seen, len(ids))
	seen := slices.Clone(inner.seen)
	slices.Sort(seen)
	for i, id := range seen {
		require.Equal(t, int64(i), id)
	}
	assert.Equal(t, int64(len(ids)-1), inner.high)

	mappedSeen := make([]bool, len(ids))
	for _, id := range ids {
		mapped := m.ToMappedNodeID(id)
		require.NotEqual(t, model.NotFound, mapped)
		require.False(t, mappedSeen[mapped])
		mappedSeen[mapped] = true
		require.Equal(t, id, m.ToOriginalNodeID(mapped))
		require.True(t, m.ContainsOriginalID(id))
	}

	assert.Equal(t, model.NotFound, m.ToMappedNodeID(3))
	assert.False(t, m.ContainsOriginalID(3))
}

func TestBuilder_InsertLeavesIntermediateIDs(t *testing.T) {
	b := NewBuilder(1, arrayidmap.NewBuilder(1))

	ids := []int64{1_000_000, 2_000_000, 3_000_000}
	alloc, err := b.Allocate(0, len(ids))
	require.NoError(t, err)
	assert.Equal(t, 3, alloc.AllocatedSize())
	alloc.Insert(ids)

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	assert.Equal(t, []int64{0, 1, 2}, sorted)

	m, err := b.Build(nil, model.UnknownHighestID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.NodeCount())
	assert.Equal(t, int64(3_000_000), m.HighestOriginalID())
}

func TestBuilder_LabelsKeyedByIntermediateIDs(t *testing.T) {
	b := NewBuilder(1, arrayidmap.NewBuilder(1))
	lb := labels.NewBuilder()

	originals := []int64{1 << 52, 1 << 53, 1 << 54, 1 << 55}
	ids := slices.Clone(originals)
	alloc, err := b.Allocate(0, len(ids))
	require.NoError(t, err)
	alloc.Insert(ids)

	lb.Add("Even", ids[0])
	lb.Add("Even", ids[2])
	lb.Add("Odd", ids[1])
	lb.Add("Odd", ids[3])

	m, err := b.Build(lb, model.UnknownHighestID, 2)
	require.NoError(t, err)

	assert.Equal(t, []labels.NodeLabel{"Even", "Odd"}, m.AvailableNodeLabels())
	assert.True(t, m.HasLabel(m.ToMappedNodeID(originals[0]), "Even"))
	assert.Equal(t, []labels.NodeLabel{"Odd"}, m.NodeLabels(m.ToMappedNodeID(originals[3])))

	filtered, err := m.WithFilteredLabels([]labels.NodeLabel{"Odd"}, 1)
	require.NoError(t, err)

	assert.Equal(t, "highlimit-array", filtered.TypeID())
	assert.Equal(t, int64(2), filtered.NodeCount())
	assert.Equal(t, int64(4), filtered.RootNodeCount())
	assert.Equal(t, originals[3], filtered.HighestOriginalID())
	assert.Same(t, m, filtered.RootIDMap())

	assert.Equal(t, model.NotFound, filtered.ToMappedNodeID(originals[0]))
	assert.False(t, filtered.ContainsOriginalID(originals[2]))
	for _, original := range []int64{originals[1], originals[3]} {
		fid := filtered.ToMappedNodeID(original)
		require.NotEqual(t, model.NotFound, fid)
		assert.Equal(t, original, filtered.ToOriginalNodeID(fid))
		assert.True(t, filtered.HasLabel(fid, "Odd"))

		rootID := filtered.ToRootNodeID(fid)
		assert.Equal(t, m.ToMappedNodeID(original), rootID)
		assert.Equal(t, fid, filtered.ToFilteredNodeID(rootID))
		assert.True(t, filtered.ContainsRootNodeID(rootID))
	}

	again, err := filtered.WithFilteredLabels([]labels.NodeLabel{"Even"}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.NodeCount())
}

func TestBuilder_OriginalIDOutOfRange(t *testing.T) {
	b := NewBuilder(1, arrayidmap.NewBuilder(1), WithOriginalIDLimit(1<<20))

	alloc, err := b.Allocate(0, 2)
	require.NoError(t, err)
	alloc.Insert([]int64{5, 1 << 20})

	m, err := b.Build(nil, model.UnknownHighestID, 1)
	assert.Nil(t, m)

	var rangeErr *ErrOriginalIDOutOfRange
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, int64(1<<20), rangeErr.Highest)
	assert.Equal(t, int64(1<<20), rangeErr.Limit)
}

func TestBuilder_DefaultLimit(t *testing.T) {
	b := NewBuilder(1, arrayidmap.NewBuilder(1))

	alloc, err := b.Allocate(0, 1)
	require.NoError(t, err)
	alloc.Insert([]int64{DefaultOriginalIDLimit})

	_, err = b.Build(nil, model.UnknownHighestID, 1)
	var rangeErr *ErrOriginalIDOutOfRange
	assert.ErrorAs(t, err, &rangeErr)
}

func TestBuilder_SuppliedHighestID(t *testing.T) {
	build := func(t *testing.T, highest int64) (model.IDMap, error) {
		t.Helper()
		b := NewBuilder(1, arrayidmap.NewBuilder(1))
		alloc, err := b.Allocate(0, 2)
		require.NoError(t, err)
		alloc.Insert([]int64{5, 10})
		return b.Build(nil, highest, 1)
	}

	t.Run("LargerBoundKeepsTrueMaximum", func(t *testing.T) {
		m, err := build(t, 1_000)
		require.NoError(t, err)
		assert.Equal(t, int64(10), m.HighestOriginalID())
		assert.Equal(t, int64(1), m.ToMappedNodeID(10))
	})

	t.Run("LimitAsBound", func(t *testing.T) {
		m, err := build(t, DefaultOriginalIDLimit)
		require.NoError(t, err)
		assert.Equal(t, int64(10), m.HighestOriginalID())
	})

	t.Run("ExactBound", func(t *testing.T) {
		m, err := build(t, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), m.HighestOriginalID())
	})

	t.Run("BoundTooSmall", func(t *testing.T) {
		_, err := build(t, 7)
		assert.ErrorIs(t, err, sharded.ErrHighestIDTooSmall)
	})
}

func TestBuilder_PropagatesErrors(t *testing.T) {
	t.Run("inner build", func(t *testing.T) {
		boom := errors.New("boom")
		b := NewBuilder(1, failingBuilder{IDMapBuilder: arrayidmap.NewBuilder(1), err: boom})

		alloc, err := b.Allocate(0, 1)
		require.NoError(t, err)
		alloc.Insert([]int64{1})

		_, err = b.Build(nil, model.UnknownHighestID, 1)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("inner allocate", func(t *testing.T) {
		b := NewBuilder(1, arrayidmap.NewBuilder(1, arrayidmap.WithMaxNodeCount(1)))

		_, err := b.Allocate(0, 2)
		require.ErrorIs(t, err, arrayidmap.ErrOverflow)

		_, err = b.Build(nil, model.UnknownHighestID, 1)
		assert.ErrorIs(t, err, arrayidmap.ErrOverflow)
	})

	t.Run("duplicate", func(t *testing.T) {
		b := NewBuilder(1, arrayidmap.NewBuilder(1))
		alloc, err := b.Allocate(0, 2)
		require.NoError(t, err)
		alloc.Insert([]int64{7, 7})

		_, err = b.Build(nil, model.UnknownHighestID, 1)
		assert.ErrorIs(t, err, sharded.ErrDuplicateOriginalID)
	})

	t.Run("highest too small", func(t *testing.T) {
		b := NewBuilder(1, arrayidmap.NewBuilder(1))
		alloc, err := b.Allocate(0, 1)
		require.NoError(t, err)
		alloc.Insert([]int64{100})

		_, err = b.Build(nil, 10, 1)
		assert.ErrorIs(t, err, sharded.ErrHighestIDTooSmall)
	})
}

func TestBuilder_ContractViolations(t *testing.T) {
	t.Run("uninitialized", func(t *testing.T) {
		var a BulkAdder
		assert.Panics(t, func() { a.Insert([]int64{1}) })
		assert.Equal(t, 0, a.AllocatedSize())
	})

	t.Run("after build", func(t *testing.T) {
		b := NewBuilder(1, arrayidmap.NewBuilder(1))
		alloc, err := b.Allocate(0, 1)
		require.NoError(t, err)
		alloc.Insert([]int64{1})

		_, err = b.Build(nil, model.UnknownHighestID, 1)
		require.NoError(t, err)

		assert.Panics(t, func() { alloc.Insert([]int64{2}) })
		assert.Panics(t, func() { _, _ = b.Allocate(0, 1) })

		_, err = b.Build(nil, model.UnknownHighestID, 1)
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestBuilder_Empty(t *testing.T) {
	m, err := NewBuilder(2, arrayidmap.NewBuilder(2)).Build(nil, model.UnknownHighestID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.NodeCount())
	assert.Equal(t, model.NotFound, m.HighestOriginalID())
	assert.False(t, m.ContainsOriginalID(0))
}
