package sharded

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/idmap/internal/container"
	"github.com/hupe1980/idmap/internal/conv"
	"github.com/hupe1980/idmap/internal/hash"
	"github.com/hupe1980/idmap/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
)

var (
	// ErrOverflow is returned when reserving a batch would exceed the id range.
	ErrOverflow = errors.New("sharded: id range overflow")

	// ErrDuplicateOriginalID is returned by Build if a batch inserted an
	// original id that was already present.
	ErrDuplicateOriginalID = errors.New("sharded: duplicate original id")

	// ErrIncompleteBatch is returned by Build if reserved ids were never inserted.
	ErrIncompleteBatch = errors.New("sharded: reserved ids were not inserted")

	// ErrHighestIDTooSmall is returned by Build if the supplied maximum
	// original id is smaller than an inserted id.
	ErrHighestIDTooSmall = errors.New("sharded: supplied max original id is smaller than an inserted id")

	// ErrClosed is returned by Build on a builder that was already built.
	ErrClosed = errors.New("sharded: builder already built")
)

// shard owns one partition of the original -> mapped mapping.
// All access during construction happens under mu.
type shard struct {
	_             cpu.CacheLinePad
	mu            sync.Mutex
	mapping       map[int64]int64
	maxOriginalID int64
}

func newShard() *shard {
	return &shard{
		mapping:       make(map[int64]int64),
		maxOriginalID: model.NotFound,
	}
}

// put records originalID -> mappedID unless originalID is already present.
// It returns the mapped id stored after the call and whether it was new.
// Caller must hold mu.
func (s *shard) put(originalID, mappedID int64) (int64, bool) {
	if existing, ok := s.mapping[originalID]; ok {
		return existing, false
	}
	s.mapping[originalID] = mappedID
	if originalID > s.maxOriginalID {
		s.maxOriginalID = originalID
	}
	return mappedID, true
}

// shards is the partition table shared by both builders.
type shards struct {
	shards []*shard
	shift  uint
	mask   int
}

func newShards(concurrency int) shards {
	n := conv.NextPowerOfTwo(max(concurrency, 1) * 4)
	s := shards{
		shards: make([]*shard, n),
		shift:  uint(32 - conv.Log2(n)),
		mask:   n - 1,
	}
	for i := range s.shards {
		s.shards[i] = newShard()
	}
	return s
}

func (s shards) find(originalID int64) *shard {
	return s.shards[hash.ShardIndex(originalID, s.shift, s.mask)]
}

// build finalizes the shards into a read-only Map.
// It must only run after every writer has finished.
func (s shards) build(nodeCount, maxOriginalID int64, concurrency int) (*Map, error) {
	observed := model.NotFound
	var total int64
	for _, sh := range s.shards {
		observed = max(observed, sh.maxOriginalID)
		total += int64(len(sh.mapping))
	}

	if total != nodeCount {
		return nil, fmt.Errorf("%w: %d ids reserved, %d inserted", ErrIncompleteBatch, nodeCount, total)
	}

	switch {
	case maxOriginalID == model.UnknownHighestID:
		maxOriginalID = observed
	case maxOriginalID < observed:
		return nil, fmt.Errorf("%w: supplied %d, observed %d", ErrHighestIDTooSmall, maxOriginalID, observed)
	}

	reverse := container.NewLongArray(nodeCount)

	g := new(errgroup.Group)
	g.SetLimit(max(concurrency, 1))
	for _, sh := range s.shards {
		g.Go(func() error {
			for original, mapped := range sh.mapping {
				reverse.Set(mapped, original)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mappings := make([]map[int64]int64, len(s.shards))
	for i, sh := range s.shards {
		mappings[i] = sh.mapping
	}

	return &Map{
		mappings:      mappings,
		shift:         s.shift,
		mask:          s.mask,
		reverse:       reverse,
		maxOriginalID: maxOriginalID,
	}, nil
}
