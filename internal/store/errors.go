package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hance08/teller/internal/model"
)

var (
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrRecordNotFound      = errors.New("record not found")
	ErrUnknownCollection   = errors.New("unknown collection")
	ErrConstraintViolation = errors.New("database constraint violation")
)

// BulkResult reports how many documents of an unordered bulk insert were
// written.
type BulkResult struct {
	Inserted int
}

// WriteFailure is one rejected document of a bulk insert. Err wraps
// ErrDuplicateKey when the document collided with an existing unique key.
type WriteFailure struct {
	Index int
	Key   string
	Err   error
}

// BulkWriteError is returned by an unordered bulk insert when at least one
// document was rejected. The remaining documents were still attempted.
type BulkWriteError struct {
	Collection model.Collection
	Inserted   int
	Failures   []WriteFailure
}

func (e *BulkWriteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bulk insert into %s: %d inserted, %d rejected", e.Collection, e.Inserted, len(e.Failures))
	for _, f := range e.Failures {
		if !errors.Is(f.Err, ErrDuplicateKey) {
			fmt.Fprintf(&b, "; first failure at %d (%s): %v", f.Index, f.Key, f.Err)
			break
		}
	}
	return b.String()
}

func (e *BulkWriteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Duplicates counts the failures caused by a unique key collision.
func (e *BulkWriteError) Duplicates() int {
	n := 0
	for _, f := range e.Failures {
		if errors.Is(f.Err, ErrDuplicateKey) {
			n++
		}
	}
	return n
}

// OnlyDuplicates reports whether every rejected document was a duplicate.
func (e *BulkWriteError) OnlyDuplicates() bool {
	return e.Duplicates() == len(e.Failures)
}

// TableFor maps a collection to its table name.
func TableFor(c model.Collection) (string, error) {
	switch c {
	case model.CollectionSend:
		return "send_txns", nil
	case model.CollectionReceive:
		return "recv_txns", nil
	case model.CollectionMove:
		return "move_txns", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
}
