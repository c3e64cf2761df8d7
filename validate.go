package idmap

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/idmap/model"
)

// Validate checks that m is a bijection between its original ids and
// [0, NodeCount()): every mapped id is visited once, translates to an
// original id no larger than HighestOriginalID, and that original id
// translates back to the same mapped id.
//
// Validate touches every node and is meant for tests and debugging.
func Validate(m model.IDMap) error {
	n := m.NodeCount()
	if n < 0 {
		return fmt.Errorf("%w: negative node count %d", ErrInconsistentMapping, n)
	}

	seen := bitset.New(uint(n))
	highest := m.HighestOriginalID()

	var err error
	m.ForEachNode(func(mapped int64) bool {
		if mapped < 0 || mapped >= n {
			err = fmt.Errorf("%w: mapped id %d outside [0, %d)", ErrInconsistentMapping, mapped, n)
			return false
		}
		if seen.Test(uint(mapped)) {
			err = fmt.Errorf("%w: mapped id %d visited twice", ErrInconsistentMapping, mapped)
			return false
		}
		seen.Set(uint(mapped))

		original := m.ToOriginalNodeID(mapped)
		if original < 0 || original > highest {
			err = fmt.Errorf("%w: mapped id %d has original id %d outside [0, %d]", ErrInconsistentMapping, mapped, original, highest)
			return false
		}
		if back := m.ToMappedNodeID(original); back != mapped {
			err = fmt.Errorf("%w: original id %d maps to %d, expected %d", ErrInconsistentMapping, original, back, mapped)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	if got := seen.Count(); got != uint(n) {
		return fmt.Errorf("%w: %d of %d mapped ids visited", ErrInconsistentMapping, got, n)
	}
	return nil
}
