package arrayidmap

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/idmap/internal/container"
	"github.com/hupe1980/idmap/labels"
	"github.com/hupe1980/idmap/model"
)

// IDMap is the finished dense map.
type IDMap struct {
	reverse *container.LongArray       // mapped -> original
	forward *container.SparseLongArray // original -> mapped
	highest int64
	labels  *labels.Information
}

var _ model.IDMap = (*IDMap)(nil)

// ToMappedNodeID returns the mapped id of originalID, or model.NotFound.
func (m *IDMap) ToMappedNodeID(originalID int64) int64 {
	return m.forward.Get(originalID)
}

// ToOriginalNodeID returns the original id of mappedID.
func (m *IDMap) ToOriginalNodeID(mappedID int64) int64 {
	return m.reverse.Get(mappedID)
}

// ToRootNodeID returns mappedID; an unfiltered map is its own root.
func (m *IDMap) ToRootNodeID(mappedID int64) int64 {
	return mappedID
}

// ContainsOriginalID reports whether originalID was inserted.
func (m *IDMap) ContainsOriginalID(originalID int64) bool {
	return m.forward.Get(originalID) != model.NotFound
}

// HighestOriginalID returns the largest original id.
func (m *IDMap) HighestOriginalID() int64 {
	return m.highest
}

// NodeCount returns the number of nodes.
func (m *IDMap) NodeCount() int64 {
	return m.reverse.Size()
}

// RootNodeCount returns NodeCount.
func (m *IDMap) RootNodeCount() int64 {
	return m.reverse.Size()
}

// TypeID returns "array".
func (m *IDMap) TypeID() string {
	return TypeID
}

// AvailableNodeLabels returns all known labels.
func (m *IDMap) AvailableNodeLabels() []labels.NodeLabel {
	return m.labels.AvailableLabels()
}

// HasLabel reports whether mappedID carries label.
func (m *IDMap) HasLabel(mappedID int64, label labels.NodeLabel) bool {
	return m.labels.HasLabel(mappedID, label)
}

// NodeLabels returns the labels of mappedID.
func (m *IDMap) NodeLabels(mappedID int64) []labels.NodeLabel {
	return m.labels.NodeLabels(mappedID)
}

// ForEachNode calls fn for every mapped id in ascending order.
func (m *IDMap) ForEachNode(fn func(mappedID int64) bool) {
	for id := range m.reverse.Size() {
		if !fn(id) {
			return
		}
	}
}

// WithFilteredLabels returns the view of nodes carrying any of nodeLabels.
func (m *IDMap) WithFilteredLabels(nodeLabels []labels.NodeLabel, _ int) (model.FilteredIDMap, error) {
	nodes, err := m.labels.Union(nodeLabels)
	if err != nil {
		return nil, err
	}
	return newFilteredIDMap(m, nodes), nil
}

// FilteredIDMap is a label-restricted view over an IDMap. Filtered ids are
// the ranks of the root ids in the view's node bitmap.
type FilteredIDMap struct {
	root   *IDMap
	nodes  *roaring64.Bitmap
	toRoot *container.LongArray
}

var _ model.FilteredIDMap = (*FilteredIDMap)(nil)

func newFilteredIDMap(root *IDMap, nodes *roaring64.Bitmap) *FilteredIDMap {
	toRoot := container.NewLongArray(int64(nodes.GetCardinality()))
	var filtered int64
	it := nodes.Iterator()
	for it.HasNext() {
		toRoot.Set(filtered, int64(it.Next()))
		filtered++
	}
	return &FilteredIDMap{root: root, nodes: nodes, toRoot: toRoot}
}

// ToFilteredNodeID translates a root id into the view, or returns model.NotFound.
func (f *FilteredIDMap) ToFilteredNodeID(rootNodeID int64) int64 {
	if rootNodeID < 0 || !f.nodes.Contains(uint64(rootNodeID)) {
		return model.NotFound
	}
	return int64(f.nodes.Rank(uint64(rootNodeID))) - 1
}

// ContainsRootNodeID reports whether rootNodeID is part of the view.
func (f *FilteredIDMap) ContainsRootNodeID(rootNodeID int64) bool {
	return rootNodeID >= 0 && f.nodes.Contains(uint64(rootNodeID))
}

// RootIDMap returns the unfiltered map.
func (f *FilteredIDMap) RootIDMap() model.IDMap {
	return f.root
}

// ToMappedNodeID returns the filtered id of originalID, or model.NotFound.
func (f *FilteredIDMap) ToMappedNodeID(originalID int64) int64 {
	rootID := f.root.ToMappedNodeID(originalID)
	if rootID == model.NotFound {
		return model.NotFound
	}
	return f.ToFilteredNodeID(rootID)
}

// ToOriginalNodeID returns the original id of a filtered id.
func (f *FilteredIDMap) ToOriginalNodeID(mappedID int64) int64 {
	return f.root.ToOriginalNodeID(f.toRoot.Get(mappedID))
}

// ToRootNodeID returns the root id of a filtered id.
func (f *FilteredIDMap) ToRootNodeID(mappedID int64) int64 {
	return f.toRoot.Get(mappedID)
}

// ContainsOriginalID reports whether originalID is part of the view.
func (f *FilteredIDMap) ContainsOriginalID(originalID int64) bool {
	return f.ToMappedNodeID(originalID) != model.NotFound
}

// HighestOriginalID returns the root map's highest original id.
func (f *FilteredIDMap) HighestOriginalID() int64 {
	return f.root.HighestOriginalID()
}

// NodeCount returns the number of nodes in the view.
func (f *FilteredIDMap) NodeCount() int64 {
	return f.toRoot.Size()
}

// RootNodeCount returns the number of nodes in the root map.
func (f *FilteredIDMap) RootNodeCount() int64 {
	return f.root.NodeCount()
}

// TypeID returns the root map's type id.
func (f *FilteredIDMap) TypeID() string {
	return f.root.TypeID()
}

// AvailableNodeLabels returns the root map's labels.
func (f *FilteredIDMap) AvailableNodeLabels() []labels.NodeLabel {
	return f.root.AvailableNodeLabels()
}

// HasLabel reports whether the filtered id carries label.
func (f *FilteredIDMap) HasLabel(mappedID int64, label labels.NodeLabel) bool {
	return f.root.HasLabel(f.toRoot.Get(mappedID), label)
}

// NodeLabels returns the labels of the filtered id.
func (f *FilteredIDMap) NodeLabels(mappedID int64) []labels.NodeLabel {
	return f.root.NodeLabels(f.toRoot.Get(mappedID))
}

// ForEachNode calls fn for every filtered id in ascending order.
func (f *FilteredIDMap) ForEachNode(fn func(mappedID int64) bool) {
	for id := range f.toRoot.Size() {
		if !fn(id) {
			return
		}
	}
}

// WithFilteredLabels filters the root map again.
func (f *FilteredIDMap) WithFilteredLabels(nodeLabels []labels.NodeLabel, concurrency int) (model.FilteredIDMap, error) {
	return f.root.WithFilteredLabels(nodeLabels, concurrency)
}
