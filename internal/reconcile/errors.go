package reconcile

import "errors"

var (
	// ErrSourceUnavailable wraps any failed call to the coin daemon.
	ErrSourceUnavailable = errors.New("ledger source unavailable")

	// ErrStoreWriteFailed wraps a rejected write that was not a duplicate.
	ErrStoreWriteFailed = errors.New("ledger store write failed")

	// ErrInvariantViolation marks a state the reconciler must never reach.
	ErrInvariantViolation = errors.New("reconciler invariant violated")
)
