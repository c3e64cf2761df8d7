// Package model defines the contracts shared by all id map implementations.
//
// # Identity Types
//
//   - Original id: caller-supplied, sparse, non-negative int64
//   - Mapped id: dense, zero-based int64 in [0, NodeCount())
//   - Root id: mapped id in the unfiltered map a filtered view was derived from
//
// # Build Contracts
//
// Loaders talk to an IDMapBuilder. Every worker owns one allocator slot,
// selected by a worker index in [0, concurrency):
//
//	alloc, err := builder.Allocate(worker, len(ids))
//	alloc.Insert(ids) // ids may be overwritten in place
//	...
//	m, err := builder.Build(labelBuilder, model.UnknownHighestID, concurrency)
//
// Lookups never fail with an error. Absent ids yield NotFound.
package model
