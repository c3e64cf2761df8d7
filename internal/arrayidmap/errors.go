package arrayidmap

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow is returned when a batch reservation exceeds the id range.
	ErrOverflow = errors.New("arrayidmap: id range overflow")

	// ErrDuplicateOriginalID is returned by Build if an original id was inserted twice.
	ErrDuplicateOriginalID = errors.New("arrayidmap: duplicate original id")

	// ErrIncompleteBatch is returned by Build if reserved ids were never inserted.
	ErrIncompleteBatch = errors.New("arrayidmap: reserved ids were not inserted")

	// ErrHighestIDTooSmall is returned by Build if the supplied highest
	// original id is smaller than an inserted id.
	ErrHighestIDTooSmall = errors.New("arrayidmap: supplied highest original id is smaller than an inserted id")

	// ErrClosed is returned by Build on a builder that was already built.
	ErrClosed = errors.New("arrayidmap: builder already built")
)

// ErrOriginalIDOutOfRange is returned by Build if the highest original id
// cannot be addressed by the forward array.
type ErrOriginalIDOutOfRange struct {
	Highest int64
	Limit   int64
}

func (e *ErrOriginalIDOutOfRange) Error() string {
	return fmt.Sprintf("arrayidmap: highest original id %d exceeds addressable range [0, %d]", e.Highest, e.Limit)
}
