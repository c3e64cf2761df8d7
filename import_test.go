package idmap

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/hupe1980/idmap/labels"
	"github.com/hupe1980/idmap/model"
	"github.com/hupe1980/idmap/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sparseNodes returns n distinct ids in [base, base+n*64) with every
// third node labeled "Person" and every fifth "City".
func sparseNodes(n int, base int64, seed uint64) []Node {
	ids := testutil.NewRNG(seed).UniqueIDs(n, base, base+int64(n)*64)
	nodes := make([]Node, len(ids))
	for i, id := range ids {
		nodes[i].OriginalID = id
		if i%3 == 0 {
			nodes[i].Labels = append(nodes[i].Labels, "Person")
		}
		if i%5 == 0 {
			nodes[i].Labels = append(nodes[i].Labels, "City")
		}
	}
	return nodes
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name   string
		base   int64
		typeID string
	}{
		{name: "Array", base: 0, typeID: TypeIDArray},
		{name: "HighLimit", base: 1 << 50, typeID: TypeIDHighLimitArray},
	} {
		t.Run(tc.name, func(t *testing.T) {
			nodes := sparseNodes(5_000, tc.base, 7)

			m, err := Import(ctx, nodes, WithConcurrency(4), WithBatchSize(97))
			require.NoError(t, err)

			assert.Equal(t, tc.typeID, m.TypeID())
			assert.Equal(t, int64(len(nodes)), m.NodeCount())
			assert.Equal(t, int64(len(nodes)), m.RootNodeCount())
			require.NoError(t, Validate(m))

			highest := int64(-1)
			for _, n := range nodes {
				highest = max(highest, n.OriginalID)

				mapped := m.ToMappedNodeID(n.OriginalID)
				require.GreaterOrEqual(t, mapped, int64(0))
				require.Less(t, mapped, m.NodeCount())
				assert.Equal(t, n.OriginalID, m.ToOriginalNodeID(mapped))
				assert.Equal(t, mapped, m.ToRootNodeID(mapped))
				assert.True(t, m.ContainsOriginalID(n.OriginalID))

				for _, l := range n.Labels {
					assert.True(t, m.HasLabel(mapped, l), "node %d label %s", n.OriginalID, l)
				}
			}
			assert.Equal(t, highest, m.HighestOriginalID())
			assert.Equal(t, []labels.NodeLabel{"City", "Person"}, m.AvailableNodeLabels())

			assert.Equal(t, model.NotFound, m.ToMappedNodeID(tc.base+int64(len(nodes))*64+1))
			assert.False(t, m.ContainsOriginalID(tc.base+int64(len(nodes))*64+1))
		})
	}

	t.Run("Filtered", func(t *testing.T) {
		for _, base := range []int64{0, 1 << 50} {
			nodes := sparseNodes(1_000, base, 11)

			m, err := Import(ctx, nodes, WithConcurrency(3), WithBatchSize(50))
			require.NoError(t, err)

			f, err := m.WithFilteredLabels([]labels.NodeLabel{"Person"}, 3)
			require.NoError(t, err)
			require.NoError(t, Validate(f))
			assert.Equal(t, m.NodeCount(), f.RootNodeCount())
			assert.Same(t, m, f.RootIDMap())

			persons := 0
			for i, n := range nodes {
				rootID := m.ToMappedNodeID(n.OriginalID)
				filteredID := f.ToMappedNodeID(n.OriginalID)
				if i%3 != 0 {
					assert.Equal(t, model.NotFound, filteredID)
					assert.False(t, f.ContainsRootNodeID(rootID))
					assert.Equal(t, model.NotFound, f.ToFilteredNodeID(rootID))
					continue
				}
				persons++
				require.NotEqual(t, model.NotFound, filteredID)
				assert.True(t, f.ContainsRootNodeID(rootID))
				assert.Equal(t, filteredID, f.ToFilteredNodeID(rootID))
				assert.Equal(t, rootID, f.ToRootNodeID(filteredID))
				assert.Equal(t, n.OriginalID, f.ToOriginalNodeID(filteredID))
			}
			assert.Equal(t, int64(persons), f.NodeCount())
		}
	})

	t.Run("UnknownLabel", func(t *testing.T) {
		m, err := Import(ctx, sparseNodes(100, 0, 3))
		require.NoError(t, err)

		_, err = m.WithFilteredLabels([]labels.NodeLabel{"Planet"}, 1)
		assert.ErrorIs(t, err, ErrUnknownLabel)
	})

	t.Run("NoLabels", func(t *testing.T) {
		m, err := Import(ctx, []Node{{OriginalID: 3}, {OriginalID: 1}})
		require.NoError(t, err)

		assert.Equal(t, []labels.NodeLabel{labels.AllNodes}, m.AvailableNodeLabels())
		assert.True(t, m.HasLabel(0, labels.AllNodes))
	})

	t.Run("Empty", func(t *testing.T) {
		m, err := Import(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), m.NodeCount())
		assert.False(t, m.ContainsOriginalID(0))
		require.NoError(t, Validate(m))
	})

	t.Run("NegativeID", func(t *testing.T) {
		_, err := Import(ctx, []Node{{OriginalID: 1}, {OriginalID: -4}})
		assert.ErrorIs(t, err, ErrNegativeOriginalID)
	})

	t.Run("Duplicate", func(t *testing.T) {
		for _, typeID := range []string{TypeIDArray, TypeIDHighLimitArray} {
			nodes := []Node{{OriginalID: 10}, {OriginalID: 20}, {OriginalID: 10}}
			_, err := Import(ctx, nodes, WithTypeID(typeID), WithConcurrency(2), WithBatchSize(1))
			assert.ErrorIs(t, err, ErrDuplicateOriginalID, typeID)
		}
	})

	t.Run("HighestTooSmall", func(t *testing.T) {
		nodes := []Node{{OriginalID: 1}, {OriginalID: 10}}
		_, err := Import(ctx, nodes, WithHighestOriginalID(5))
		assert.ErrorIs(t, err, ErrHighestIDTooSmall)
	})

	t.Run("RangeExceeded", func(t *testing.T) {
		nodes := []Node{{OriginalID: 1}, {OriginalID: 5_000}}

		_, err := Import(ctx, nodes, WithTypeID(TypeIDHighLimitArray), WithOriginalIDLimit(1_000))
		var rangeErr *ErrIDRangeExceeded
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, int64(5_000), rangeErr.Highest)
		assert.Equal(t, int64(999), rangeErr.MaxSupported)

		_, err = Import(ctx, nodes, WithTypeID(TypeIDArray), WithHighLimitThreshold(100))
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, int64(5_000), rangeErr.Highest)
		assert.Equal(t, int64(100), rangeErr.MaxSupported)
	})

	t.Run("SparseIDsSelectHighLimit", func(t *testing.T) {
		ids := testutil.NewRNG(17).UniqueIDs(2_000, 0, 1<<39)
		nodes := make([]Node, len(ids))
		for i, id := range ids {
			nodes[i].OriginalID = id
		}

		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)

		m, err := Import(ctx, nodes)
		require.NoError(t, err)

		runtime.ReadMemStats(&after)

		assert.Equal(t, TypeIDHighLimitArray, m.TypeID())
		assert.Equal(t, int64(len(ids)), m.NodeCount())
		require.NoError(t, Validate(m))
		assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))
	})

	t.Run("HighestBoundKeepsTrueMaximum", func(t *testing.T) {
		nodes := []Node{{OriginalID: 5}, {OriginalID: 10}}

		m, err := Import(ctx, nodes, WithHighestOriginalID(1<<50))
		require.NoError(t, err)
		assert.Equal(t, TypeIDHighLimitArray, m.TypeID())
		assert.Equal(t, int64(10), m.HighestOriginalID())
	})

	t.Run("ThresholdSelectsHighLimit", func(t *testing.T) {
		nodes := []Node{{OriginalID: 1}, {OriginalID: 5_000}}

		m, err := Import(ctx, nodes, WithHighLimitThreshold(100))
		require.NoError(t, err)
		assert.Equal(t, TypeIDHighLimitArray, m.TypeID())
		assert.Equal(t, int64(5_000), m.HighestOriginalID())
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := Import(cctx, sparseNodes(100, 0, 5))
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("Metrics", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}
		nodes := sparseNodes(1_000, 0, 13)

		_, err := Import(ctx, nodes, WithMetricsCollector(metrics), WithBatchSize(100), WithConcurrency(2))
		require.NoError(t, err)

		stats := metrics.GetStats()
		assert.Equal(t, int64(1), stats.ImportCount)
		assert.Equal(t, int64(0), stats.ImportErrors)
		assert.Equal(t, int64(1_000), stats.ImportNodes)
		assert.Equal(t, int64(10), stats.AllocateCount)
		assert.Equal(t, int64(1_000), stats.AllocateIDs)
		assert.Equal(t, int64(1), stats.BuildCount)
		assert.Equal(t, int64(1_000), stats.BuildNodes)

		_, err = Import(ctx, []Node{{OriginalID: -1}}, WithMetricsCollector(metrics))
		require.Error(t, err)
		assert.Equal(t, int64(1), metrics.GetStats().ImportErrors)
	})
}
