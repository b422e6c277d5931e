// Package xerrors carries the engine's typed errors: small structs with
// an operation name, a path, and an Unwrap so errors.Is/errors.As keep
// working through them. RejectedError is returned to Index/Reindex
// callers; StoreError and ParseError never reach them: they are logged
// (internal/diag) or, for StoreError, left for the next sync.
package xerrors

import (
	"fmt"
	"time"
)

// StoreError records a failure opening or writing one backing store. It
// never clears the store's accumulator: the caller is expected to retry
// on the next sync.
type StoreError struct {
	Store      string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewStoreError(store, op string, err error) *StoreError {
	return &StoreError{Store: store, Operation: op, Underlying: err, Timestamp: time.Now()}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %s: %v", e.Store, e.Operation, e.Underlying)
}

func (e *StoreError) Unwrap() error { return e.Underlying }

// ParseError records a translation-unit acquisition failure. It is never
// fatal to a job: a job with no unit simply emits its completion event,
// but the error is useful for the debug trace.
type ParseError struct {
	Input      string
	Underlying error
	Timestamp  time.Time
}

func NewParseError(input string, err error) *ParseError {
	return &ParseError{Input: input, Underlying: err, Timestamp: time.Now()}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Input, e.Underlying)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// RejectedError is returned, not logged, when Index/Reindex declines a
// request; rejection is normal control flow, not an error worth a trace
// line. It satisfies the error interface so callers that want a typed
// reason can errors.As for it instead of just checking for id == -1.
type RejectedError struct {
	Input  string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected %s: %s", e.Input, e.Reason)
}
