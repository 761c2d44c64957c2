package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match these through Is so
// callers can branch without caring about the concrete type.
var (
	// ErrStoreUnavailable marks a document store transport failure.
	// Never retried inside the core; retry policy belongs to callers.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrElementNotFound marks a missing nested entity inside an
	// aggregate.
	ErrElementNotFound = errors.New("element not found")

	// ErrConcurrentModification marks a whole-document replace that
	// lost a revision race. Callers must re-read and retry.
	ErrConcurrentModification = errors.New("aggregate was modified concurrently")
)

// ElementNotFoundError reports a platform, unit or deployment missing
// from its containing aggregate.
type ElementNotFoundError struct {
	Kind Kind
	ID   ID
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *ElementNotFoundError) Is(target error) bool {
	return target == ErrElementNotFound
}

// InvalidStatusTransitionError reports a ledger append that would
// violate the deployment state machine. The ledger is not mutated.
type InvalidStatusTransitionError struct {
	From DeploymentStatus
	To   DeploymentStatus
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("invalid deployment status transition %q -> %q", e.From, e.To)
}

// OutOfOrderLedgerEntryError reports a ledger append whose timestamp
// precedes the last committed entry.
type OutOfOrderLedgerEntryError struct {
	Last int64
	Next int64
}

func (e *OutOfOrderLedgerEntryError) Error() string {
	return fmt.Sprintf("ledger entry timestamp %d precedes last committed entry %d", e.Next, e.Last)
}

// StoreError wraps a document store failure with the operation that
// produced it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
