package idmap

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/idmap/labels"
	"github.com/hupe1980/idmap/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Node is one node handed to Import.
type Node struct {
	OriginalID int64
	Labels     []labels.NodeLabel
}

// Import builds an id map from nodes using WithConcurrency workers.
//
// The map type is chosen as in NewBuilder, with the node count taken from
// nodes and the highest original id taken from nodes unless
// WithHighestOriginalID is given. Sparse ids therefore select the
// two-level map even below the high limit threshold. Nodes are split
// into batches of WithBatchSize; batch k is inserted by worker
// k % concurrency. Import stops between batches when ctx is done.
func Import(ctx context.Context, nodes []Node, optFns ...Option) (model.IDMap, error) {
	o := applyOptions(optFns)

	start := time.Now()
	m, err := importNodes(ctx, nodes, o)
	duration := time.Since(start)

	o.metricsCollector.RecordImport(len(nodes), duration, err)
	o.logger.LogImport(ctx, len(nodes), duration, err)

	return m, err
}

func importNodes(ctx context.Context, nodes []Node, o options) (model.IDMap, error) {
	observed := model.NotFound
	for i, n := range nodes {
		if n.OriginalID < 0 {
			return nil, fmt.Errorf("%w: node %d has id %d", ErrNegativeOriginalID, i, n.OriginalID)
		}
		observed = max(observed, n.OriginalID)
	}

	selection := o
	if selection.highestOriginalID == model.UnknownHighestID {
		selection.highestOriginalID = observed
	}
	selection.nodeCount = int64(len(nodes))

	b, err := newBuilder(selectTypeID(selection), o)
	if err != nil {
		return nil, err
	}

	lb := labels.NewBuilder()

	var (
		inserted atomic.Int64
		progress = rate.Sometimes{Interval: time.Second}
	)

	batchSize := o.batchSize
	numBatches := (len(nodes) + batchSize - 1) / batchSize
	workers := min(o.concurrency, numBatches)
	stride := workers * batchSize

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			ids := make([]int64, 0, batchSize)
			for from := w * batchSize; from < len(nodes); from += stride {
				if err := gctx.Err(); err != nil {
					return err
				}

				batch := nodes[from:min(from+batchSize, len(nodes))]
				ids = ids[:0]
				for _, n := range batch {
					ids = append(ids, n.OriginalID)
				}

				alloc, err := b.Allocate(w, len(ids))
				if err != nil {
					return err
				}
				alloc.Insert(ids)

				// ids now holds the ids the builder keys labels by.
				for i, n := range batch {
					if len(n.Labels) > 0 {
						lb.AddAll(ids[i], n.Labels...)
					}
				}

				done := inserted.Add(int64(len(batch)))
				progress.Do(func() {
					o.logger.LogProgress(gctx, done, len(nodes))
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return b.BuildContext(ctx, lb, o.highestOriginalID, o.concurrency)
}
