package labels

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"
)

// NodeLabel names a node label.
type NodeLabel string

// AllNodes is the implicit label carried by every node.
const AllNodes NodeLabel = "__ALL__"

var (
	// ErrUnknownLabel is returned when filtering by a label the map does not know.
	ErrUnknownLabel = errors.New("unknown node label")

	// ErrUnmappedNode is returned when a recorded id has no mapped id.
	ErrUnmappedNode = errors.New("labelled node has no mapped id")
)

type labelSet struct {
	mu  sync.Mutex
	ids *roaring64.Bitmap
}

// Builder collects label assignments. It is safe for concurrent use.
type Builder struct {
	mu   sync.RWMutex
	sets map[NodeLabel]*labelSet
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{sets: make(map[NodeLabel]*labelSet)}
}

// Add records that node id carries label. id must be non-negative.
func (b *Builder) Add(label NodeLabel, id int64) {
	if id < 0 {
		panic(fmt.Sprintf("labels: negative node id %d", id))
	}
	s := b.set(label)
	s.mu.Lock()
	s.ids.Add(uint64(id))
	s.mu.Unlock()
}

// AddAll records every label in nodeLabels for node id.
func (b *Builder) AddAll(id int64, nodeLabels ...NodeLabel) {
	for _, l := range nodeLabels {
		b.Add(l, id)
	}
}

func (b *Builder) set(label NodeLabel) *labelSet {
	b.mu.RLock()
	s, ok := b.sets[label]
	b.mu.RUnlock()
	if ok {
		return s
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok = b.sets[label]; ok {
		return s
	}
	s = &labelSet{ids: roaring64.New()}
	b.sets[label] = s
	return s
}

// Build translates every recorded id through toMapped and returns the
// finished label information for a map of nodeCount nodes. A nil builder or
// a builder without labels yields AllNodes information.
func (b *Builder) Build(nodeCount int64, toMapped func(id int64) int64, concurrency int) (*Information, error) {
	if b == nil {
		return AllNodesInformation(nodeCount), nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.sets) == 0 {
		return AllNodesInformation(nodeCount), nil
	}

	names := make([]NodeLabel, 0, len(b.sets))
	for l := range b.sets {
		names = append(names, l)
	}
	slices.Sort(names)

	built := make([]*roaring64.Bitmap, len(names))

	g := new(errgroup.Group)
	g.SetLimit(max(concurrency, 1))
	for i, name := range names {
		src := b.sets[name].ids
		g.Go(func() error {
			dst := roaring64.New()
			it := src.Iterator()
			for it.HasNext() {
				id := int64(it.Next())
				mapped := toMapped(id)
				if mapped < 0 || mapped >= nodeCount {
					return fmt.Errorf("%w: label %q, id %d", ErrUnmappedNode, name, id)
				}
				dst.Add(uint64(mapped))
			}
			dst.RunOptimize()
			built[i] = dst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sets := make(map[NodeLabel]*roaring64.Bitmap, len(names))
	for i, name := range names {
		sets[name] = built[i]
	}
	return &Information{nodeCount: nodeCount, sets: sets, labels: names}, nil
}

// Information is the finished, immutable label assignment of an id map.
type Information struct {
	nodeCount int64
	sets      map[NodeLabel]*roaring64.Bitmap
	labels    []NodeLabel
}

// AllNodesInformation returns information where every node carries only AllNodes.
func AllNodesInformation(nodeCount int64) *Information {
	return &Information{nodeCount: nodeCount, labels: []NodeLabel{AllNodes}}
}

// IsSingleLabel reports whether only the implicit AllNodes label exists.
func (i *Information) IsSingleLabel() bool {
	return i.sets == nil
}

// AvailableLabels returns the known labels in sorted order.
func (i *Information) AvailableLabels() []NodeLabel {
	return slices.Clone(i.labels)
}

// HasLabel reports whether mappedID carries label.
func (i *Information) HasLabel(mappedID int64, label NodeLabel) bool {
	if mappedID < 0 || mappedID >= i.nodeCount {
		return false
	}
	if label == AllNodes {
		return true
	}
	bm, ok := i.sets[label]
	return ok && bm.Contains(uint64(mappedID))
}

// NodeLabels returns the labels carried by mappedID.
func (i *Information) NodeLabels(mappedID int64) []NodeLabel {
	if mappedID < 0 || mappedID >= i.nodeCount {
		return nil
	}
	if i.IsSingleLabel() {
		return []NodeLabel{AllNodes}
	}
	var out []NodeLabel
	for _, l := range i.labels {
		if i.sets[l].Contains(uint64(mappedID)) {
			out = append(out, l)
		}
	}
	return out
}

// Validate returns ErrUnknownLabel if any label is not known.
func (i *Information) Validate(nodeLabels []NodeLabel) error {
	for _, l := range nodeLabels {
		if l == AllNodes {
			continue
		}
		if _, ok := i.sets[l]; !ok {
			return fmt.Errorf("%w: %q (available: %v)", ErrUnknownLabel, l, i.labels)
		}
	}
	return nil
}

// Union returns a new bitmap of all mapped ids carrying any of nodeLabels.
func (i *Information) Union(nodeLabels []NodeLabel) (*roaring64.Bitmap, error) {
	if err := i.Validate(nodeLabels); err != nil {
		return nil, err
	}

	out := roaring64.New()
	for _, l := range nodeLabels {
		if l == AllNodes {
			if i.nodeCount > 0 {
				out.AddRange(0, uint64(i.nodeCount))
			}
			return out, nil
		}
	}
	for _, l := range nodeLabels {
		out.Or(i.sets[l])
	}
	return out, nil
}
