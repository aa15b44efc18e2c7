package services

import (
	"errors"
	"fmt"
)

// Recoverable outcomes of the award and progress pipelines. These are typed
// results, not failures: controllers map them onto benign responses and the
// enclosing transaction rolls back without partial state.
var (
	// ErrInvalidAward rejects non-positive award amounts.
	ErrInvalidAward = errors.New("award amount must be positive")
	// ErrAlreadyAwarded signals an idempotency-key collision: the logical
	// award already has a ledger entry. Expected under concurrent retries.
	ErrAlreadyAwarded = errors.New("already awarded")
	// ErrAlreadyCompleted rejects daily actions on a completed challenge.
	ErrAlreadyCompleted = errors.New("challenge already completed")
	// ErrNotFound signals an unknown user or challenge reference.
	ErrNotFound = errors.New("record not found")
)

// ValidationError reports an out-of-range or malformed input value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
