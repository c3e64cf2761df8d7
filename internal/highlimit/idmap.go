package highlimit

import (
	"github.com/hupe1980/idmap/internal/sharded"
	"github.com/hupe1980/idmap/labels"
	"github.com/hupe1980/idmap/model"
)

// IDMap translates through the intermediate layer before delegating to
// the inner map.
type IDMap struct {
	intermediate *sharded.Map
	inner        model.IDMap
}

var _ model.IDMap = (*IDMap)(nil)

// ToMappedNodeID returns the internal id of originalID, or model.NotFound.
func (m *IDMap) ToMappedNodeID(originalID int64) int64 {
	intermediateID := m.intermediate.ToMappedNodeID(originalID)
	if intermediateID == model.NotFound {
		return model.NotFound
	}
	return m.inner.ToMappedNodeID(intermediateID)
}

// ToOriginalNodeID returns the original id of an internal id.
func (m *IDMap) ToOriginalNodeID(mappedID int64) int64 {
	return m.intermediate.ToOriginalNodeID(m.inner.ToOriginalNodeID(mappedID))
}

// ToRootNodeID delegates to the inner map.
func (m *IDMap) ToRootNodeID(mappedID int64) int64 {
	return m.inner.ToRootNodeID(mappedID)
}

// ContainsOriginalID reports whether originalID was inserted.
func (m *IDMap) ContainsOriginalID(originalID int64) bool {
	intermediateID := m.intermediate.ToMappedNodeID(originalID)
	if intermediateID == model.NotFound {
		return false
	}
	return m.inner.ContainsOriginalID(intermediateID)
}

// HighestOriginalID returns the highest original id known to the
// intermediate layer.
func (m *IDMap) HighestOriginalID() int64 {
	return m.intermediate.MaxOriginalID()
}

// NodeCount returns the inner map's node count.
func (m *IDMap) NodeCount() int64 {
	return m.inner.NodeCount()
}

// RootNodeCount returns the inner map's root node count.
func (m *IDMap) RootNodeCount() int64 {
	return m.inner.RootNodeCount()
}

// TypeID returns "highlimit-" followed by the inner type id.
func (m *IDMap) TypeID() string {
	return TypeID(m.inner.TypeID())
}

// AvailableNodeLabels returns the inner map's labels.
func (m *IDMap) AvailableNodeLabels() []labels.NodeLabel {
	return m.inner.AvailableNodeLabels()
}

// HasLabel reports whether the internal id carries label.
func (m *IDMap) HasLabel(mappedID int64, label labels.NodeLabel) bool {
	return m.inner.HasLabel(mappedID, label)
}

// NodeLabels returns the labels of the internal id.
func (m *IDMap) NodeLabels(mappedID int64) []labels.NodeLabel {
	return m.inner.NodeLabels(mappedID)
}

// ForEachNode iterates the inner map's ids.
func (m *IDMap) ForEachNode(fn func(mappedID int64) bool) {
	m.inner.ForEachNode(fn)
}

// WithFilteredLabels filters the inner map and keeps the intermediate
// translation in front of it.
func (m *IDMap) WithFilteredLabels(nodeLabels []labels.NodeLabel, concurrency int) (model.FilteredIDMap, error) {
	filtered, err := m.inner.WithFilteredLabels(nodeLabels, concurrency)
	if err != nil {
		return nil, err
	}
	return &FilteredIDMap{IDMap: IDMap{intermediate: m.intermediate, inner: filtered}, root: m, filtered: filtered}, nil
}

// FilteredIDMap is the two-level view over a filtered inner map.
type FilteredIDMap struct {
	IDMap
	root     *IDMap
	filtered model.FilteredIDMap
}

var _ model.FilteredIDMap = (*FilteredIDMap)(nil)

// ToFilteredNodeID translates a root internal id into the view.
func (f *FilteredIDMap) ToFilteredNodeID(rootNodeID int64) int64 {
	return f.filtered.ToFilteredNodeID(rootNodeID)
}

// ContainsRootNodeID reports whether rootNodeID is part of the view.
func (f *FilteredIDMap) ContainsRootNodeID(rootNodeID int64) bool {
	return f.filtered.ContainsRootNodeID(rootNodeID)
}

// RootIDMap returns the unfiltered two-level map.
func (f *FilteredIDMap) RootIDMap() model.IDMap {
	return f.root
}

// WithFilteredLabels filters the root map again.
func (f *FilteredIDMap) WithFilteredLabels(nodeLabels []labels.NodeLabel, concurrency int) (model.FilteredIDMap, error) {
	return f.root.WithFilteredLabels(nodeLabels, concurrency)
}
