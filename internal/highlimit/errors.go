package highlimit

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Build on a builder that was already built.
var ErrClosed = errors.New("highlimit: builder already built")

// ErrOriginalIDOutOfRange is returned by Build if the highest original id
// cannot be encoded within the limit of the intermediate layer.
type ErrOriginalIDOutOfRange struct {
	Highest int64
	Limit   int64
}

func (e *ErrOriginalIDOutOfRange) Error() string {
	return fmt.Sprintf("highlimit: highest original id %d is outside the supported range [0, %d)", e.Highest, e.Limit)
}
