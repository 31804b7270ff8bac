package brickstream

import (
	"errors"
	"fmt"

	"github.com/hupe1980/brickstream/brick"
)

var (
	// ErrInvalidMemoryLimit is returned when the memory limit is not positive.
	ErrInvalidMemoryLimit = errors.New("memory limit must be positive")

	// ErrNilSource is returned by New when no Source is given.
	ErrNilSource = errors.New("source must not be nil")

	// ErrEmptyPayload is recorded when a Source returns no buffer and no error.
	ErrEmptyPayload = errors.New("source returned no payload")

	// ErrBudgetExceeded is matched by every budget exhaustion error.
	ErrBudgetExceeded = errors.New("memory budget exceeded")
)

// ErrBudgetExhausted reports a load that was dropped because eviction
// could not make room for it.
//
// errors.Is(err, ErrBudgetExceeded) reports true for it.
type ErrBudgetExhausted struct {
	BrickID  brick.ID
	Required int64
	Used     int64
	Limit    int64
}

func (e *ErrBudgetExhausted) Error() string {
	return fmt.Sprintf("brick %d: memory budget exceeded: required %d, used %d, limit %d",
		e.BrickID, e.Required, e.Used, e.Limit)
}

func (e *ErrBudgetExhausted) Unwrap() error { return ErrBudgetExceeded }
