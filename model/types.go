package model

import "github.com/hupe1980/idmap/labels"

// NotFound is returned by lookups that have no mapping.
const NotFound int64 = -1

// UnknownHighestID tells a builder to compute the highest original id from
// the inserted ids instead of validating a caller-supplied bound.
const UnknownHighestID int64 = -1

// IDMap is a finished, immutable, bidirectional node id mapping.
// All methods are safe for concurrent use.
type IDMap interface {
	// ToMappedNodeID returns the mapped id of originalID, or NotFound.
	ToMappedNodeID(originalID int64) int64
	// ToOriginalNodeID returns the original id of mappedID.
	// mappedID must be in [0, NodeCount()).
	ToOriginalNodeID(mappedID int64) int64
	// ToRootNodeID returns the id of mappedID in the root (unfiltered) map.
	ToRootNodeID(mappedID int64) int64
	// ContainsOriginalID reports whether originalID was inserted.
	ContainsOriginalID(originalID int64) bool
	// HighestOriginalID returns the largest inserted original id.
	HighestOriginalID() int64
	// NodeCount returns the number of nodes in this map.
	NodeCount() int64
	// RootNodeCount returns the number of nodes in the root map.
	RootNodeCount() int64
	// TypeID returns the persisted tag describing this map's concrete type.
	TypeID() string

	// AvailableNodeLabels returns all labels known to the map.
	AvailableNodeLabels() []labels.NodeLabel
	// HasLabel reports whether mappedID carries label.
	HasLabel(mappedID int64, label labels.NodeLabel) bool
	// NodeLabels returns the labels carried by mappedID.
	NodeLabels(mappedID int64) []labels.NodeLabel
	// ForEachNode calls fn for every mapped id in ascending order until fn
	// returns false.
	ForEachNode(fn func(mappedID int64) bool)

	// WithFilteredLabels returns a view restricted to nodes carrying any of
	// the given labels.
	WithFilteredLabels(nodeLabels []labels.NodeLabel, concurrency int) (FilteredIDMap, error)
}

// FilteredIDMap is an IDMap over a label-defined subset of a root map.
// Its mapped ids are dense in [0, NodeCount()).
type FilteredIDMap interface {
	IDMap

	// ToFilteredNodeID translates a root mapped id into this view, or
	// returns NotFound if the node is not part of the view.
	ToFilteredNodeID(rootNodeID int64) int64
	// ContainsRootNodeID reports whether rootNodeID is part of the view.
	ContainsRootNodeID(rootNodeID int64) bool
	// RootIDMap returns the map this view was derived from.
	RootIDMap() IDMap
}

// IDMapAllocator inserts one reserved batch of ids.
//
// An allocator belongs to a single worker. It is reset by every Allocate
// call for that worker and must not be retained across them.
type IDMapAllocator interface {
	// AllocatedSize returns the number of ids reserved for this batch.
	AllocatedSize() int
	// Insert records originalIDs. Implementations in override mode replace
	// each element with the id they assigned.
	Insert(originalIDs []int64)
}

// IDMapBuilder constructs an IDMap from concurrent batches.
//
// A builder is open until Build is called. Calling Allocate or Insert on a
// closed builder is a programming error and panics.
type IDMapBuilder interface {
	// Allocate reserves batchLength ids for the given worker and returns the
	// worker's allocator, initialized for that range.
	Allocate(worker, batchLength int) (IDMapAllocator, error)
	// Build finalizes the map. highestNodeID is either UnknownHighestID or
	// an upper bound of all inserted original ids. lb may be nil.
	Build(lb *labels.Builder, highestNodeID int64, concurrency int) (IDMap, error)
}
