package idmap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/idmap/internal/arrayidmap"
	"github.com/hupe1980/idmap/internal/highlimit"
	"github.com/hupe1980/idmap/internal/sharded"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateErrorSentinels(t *testing.T) {
	for _, tc := range []struct {
		in   error
		want error
	}{
		{in: sharded.ErrOverflow, want: ErrOverflow},
		{in: arrayidmap.ErrOverflow, want: ErrOverflow},
		{in: sharded.ErrDuplicateOriginalID, want: ErrDuplicateOriginalID},
		{in: arrayidmap.ErrDuplicateOriginalID, want: ErrDuplicateOriginalID},
		{in: sharded.ErrIncompleteBatch, want: ErrIncompleteBatch},
		{in: arrayidmap.ErrIncompleteBatch, want: ErrIncompleteBatch},
		{in: sharded.ErrHighestIDTooSmall, want: ErrHighestIDTooSmall},
		{in: arrayidmap.ErrHighestIDTooSmall, want: ErrHighestIDTooSmall},
		{in: sharded.ErrClosed, want: ErrClosed},
		{in: arrayidmap.ErrClosed, want: ErrClosed},
		{in: highlimit.ErrClosed, want: ErrClosed},
	} {
		t.Run(tc.in.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tc.in)
			got := translateError(wrapped)

			assert.ErrorIs(t, got, tc.want)
			// The internal error stays reachable.
			assert.ErrorIs(t, got, tc.in)
		})
	}
}

func TestErrIDRangeExceeded(t *testing.T) {
	t.Run("HighLimit", func(t *testing.T) {
		cause := &highlimit.ErrOriginalIDOutOfRange{Highest: 1 << 60, Limit: 1 << 58}
		err := translateError(fmt.Errorf("build: %w", cause))

		var rangeErr *ErrIDRangeExceeded
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, int64(1<<60), rangeErr.Highest)
		assert.Equal(t, int64(1<<58-1), rangeErr.MaxSupported)
		assert.Same(t, cause, errors.Unwrap(rangeErr))
		assert.Contains(t, rangeErr.Error(), "1152921504606846976")
	})

	t.Run("Array", func(t *testing.T) {
		cause := &arrayidmap.ErrOriginalIDOutOfRange{Highest: 500, Limit: 100}
		err := translateError(cause)

		var rangeErr *ErrIDRangeExceeded
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, int64(500), rangeErr.Highest)
		assert.Equal(t, int64(100), rangeErr.MaxSupported)

		var inner *arrayidmap.ErrOriginalIDOutOfRange
		assert.ErrorAs(t, err, &inner)
	})
}
