// Package idmap maps sparse, arbitrary node ids onto dense zero-based ids
// and back.
//
// A graph loader hands batches of original ids to an id map builder from many
// goroutines at once. The finished map is immutable and safe for concurrent
// reads.
//
// # Map types
//
// Two map types are available, identified by their type id:
//
//	"array"            dense forward array indexed by original id
//	"highlimit-array"  sharded hash layer in front of an "array" map
//
// The two-level map first translates original ids into a dense intermediate
// id space, so the inner map only ever sees compact ids. Type ids are stable
// strings meant to be persisted next to the graph; BuilderForTypeID turns
// them back into a builder.
//
// # Quick Start
//
//	nodes := []idmap.Node{
//	    {OriginalID: 42, Labels: []labels.NodeLabel{"Person"}},
//	    {OriginalID: 1 << 50, Labels: []labels.NodeLabel{"City"}},
//	}
//	m, err := idmap.Import(ctx, nodes, idmap.WithConcurrency(4))
//	if err != nil {
//	    return err
//	}
//	mapped := m.ToMappedNodeID(42)       // in [0, 2)
//	original := m.ToOriginalNodeID(mapped) // 42
//
// # Building by hand
//
// Loaders with their own batching drive a builder directly. Every worker
// uses its own index in [0, concurrency):
//
//	b, _ := idmap.NewBuilder(idmap.WithConcurrency(n))
//	alloc, err := b.Allocate(worker, len(ids))
//	alloc.Insert(ids)
//	...
//	m, err := b.Build(lb, model.UnknownHighestID, n)
//
// Builders in two-level mode overwrite ids with intermediate ids during
// Insert. Labels must be recorded against the slice contents after Insert.
//
// # Errors
//
// Contract violations such as inserting more ids than were allocated panic.
// Data errors are returned by Build and can be matched with errors.Is
// against ErrDuplicateOriginalID, ErrIncompleteBatch, ErrOverflow and
// friends, or with errors.As against *ErrIDRangeExceeded.
package idmap
