package sharded

import (
	"github.com/hupe1980/idmap/internal/container"
	"github.com/hupe1980/idmap/internal/hash"
	"github.com/hupe1980/idmap/model"
)

// Map is the finished, immutable bidirectional mapping.
type Map struct {
	mappings      []map[int64]int64
	shift         uint
	mask          int
	reverse       *container.LongArray
	maxOriginalID int64
}

// ToMappedNodeID returns the mapped id of originalID, or model.NotFound.
func (m *Map) ToMappedNodeID(originalID int64) int64 {
	mapping := m.mappings[hash.ShardIndex(originalID, m.shift, m.mask)]
	if mapped, ok := mapping[originalID]; ok {
		return mapped
	}
	return model.NotFound
}

// ToOriginalNodeID returns the original id of mappedID.
// mappedID must be in [0, Size()); other values are not checked.
func (m *Map) ToOriginalNodeID(mappedID int64) int64 {
	return m.reverse.Get(mappedID)
}

// Contains reports whether originalID was inserted.
func (m *Map) Contains(originalID int64) bool {
	_, ok := m.mappings[hash.ShardIndex(originalID, m.shift, m.mask)][originalID]
	return ok
}

// MaxOriginalID returns the maximum original id resolved by Build: the
// largest inserted id when Build got model.UnknownHighestID, otherwise the
// supplied bound. An empty map built without a bound returns model.NotFound.
func (m *Map) MaxOriginalID() int64 {
	return m.maxOriginalID
}

// Size returns the number of mapped ids.
func (m *Map) Size() int64 {
	return m.reverse.Size()
}

// NumShards returns the number of partitions.
func (m *Map) NumShards() int {
	return len(m.mappings)
}
