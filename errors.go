package idmap

import (
	"errors"
	"fmt"

	"github.com/hupe1980/idmap/internal/arrayidmap"
	"github.com/hupe1980/idmap/internal/highlimit"
	"github.com/hupe1980/idmap/internal/sharded"
	"github.com/hupe1980/idmap/labels"
)

var (
	// ErrOverflow is returned when a batch reservation leaves the id range.
	ErrOverflow = errors.New("id range overflow")

	// ErrDuplicateOriginalID is returned when an original id is inserted twice in bulk.
	ErrDuplicateOriginalID = errors.New("duplicate original id")

	// ErrIncompleteBatch is returned when reserved ids were never inserted.
	ErrIncompleteBatch = errors.New("reserved ids were not inserted")

	// ErrHighestIDTooSmall is returned when a supplied highest original id
	// is smaller than an inserted id.
	ErrHighestIDTooSmall = errors.New("supplied highest original id is smaller than an inserted id")

	// ErrClosed is returned when building a builder twice.
	ErrClosed = errors.New("builder already built")

	// ErrUnknownTypeID is returned for a type id no builder exists for.
	ErrUnknownTypeID = errors.New("unknown id map type id")

	// ErrNegativeOriginalID is returned by Import for negative original ids.
	ErrNegativeOriginalID = errors.New("negative original id")

	// ErrUnknownLabel is returned when filtering by a label the map does not know.
	ErrUnknownLabel = labels.ErrUnknownLabel

	// ErrInconsistentMapping is returned by Validate.
	ErrInconsistentMapping = errors.New("inconsistent id mapping")
)

// ErrIDRangeExceeded indicates that the highest original id cannot be
// represented by the selected map type.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrIDRangeExceeded struct {
	Highest      int64
	MaxSupported int64
	cause        error
}

func (e *ErrIDRangeExceeded) Error() string {
	return fmt.Sprintf("original id range exceeded: highest id %d, supported ids [0, %d]", e.Highest, e.MaxSupported)
}

func (e *ErrIDRangeExceeded) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var hr *highlimit.ErrOriginalIDOutOfRange
	if errors.As(err, &hr) {
		return &ErrIDRangeExceeded{Highest: hr.Highest, MaxSupported: hr.Limit - 1, cause: hr}
	}
	var ar *arrayidmap.ErrOriginalIDOutOfRange
	if errors.As(err, &ar) {
		return &ErrIDRangeExceeded{Highest: ar.Highest, MaxSupported: ar.Limit, cause: ar}
	}

	switch {
	case errors.Is(err, sharded.ErrOverflow), errors.Is(err, arrayidmap.ErrOverflow):
		return fmt.Errorf("%w: %w", ErrOverflow, err)
	case errors.Is(err, sharded.ErrDuplicateOriginalID), errors.Is(err, arrayidmap.ErrDuplicateOriginalID):
		return fmt.Errorf("%w: %w", ErrDuplicateOriginalID, err)
	case errors.Is(err, sharded.ErrIncompleteBatch), errors.Is(err, arrayidmap.ErrIncompleteBatch):
		return fmt.Errorf("%w: %w", ErrIncompleteBatch, err)
	case errors.Is(err, sharded.ErrHighestIDTooSmall), errors.Is(err, arrayidmap.ErrHighestIDTooSmall):
		return fmt.Errorf("%w: %w", ErrHighestIDTooSmall, err)
	case errors.Is(err, sharded.ErrClosed), errors.Is(err, arrayidmap.ErrClosed), errors.Is(err, highlimit.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
