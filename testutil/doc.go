// Package testutil provides testing utilities for idmap.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating sparse original ids and splitting
// them into loader-sized batches.
//
// # Random Id Generation
//
//	rng := testutil.NewRNG(seed)
//	ids := rng.UniqueIDs(1_000, 1<<50, 1<<57) // distinct ids in [1<<50, 1<<57)
//	rng.Shuffle(ids)
//
// # Batching
//
//	for _, batch := range testutil.Batches(ids, 128) {
//	    alloc, _ := b.Allocate(worker, len(batch))
//	    alloc.Insert(batch)
//	}
package testutil
