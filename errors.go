package crossfilter

import (
	"errors"
	"fmt"

	"github.com/hupe1980/crossfilter/selection"
)

var (
	// ErrNoDataset is returned when the registry has no published dataset.
	ErrNoDataset = errors.New("crossfilter: no dataset published")

	// ErrNoRegistry is returned by New when no dataset registry is given.
	ErrNoRegistry = errors.New("crossfilter: registry is required")

	// ErrNoHost is returned when an operation needs the host but none is
	// configured.
	ErrNoHost = selection.ErrNoHost
)

// ErrInvalidOptions indicates a malformed cross-filter option.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidOptions struct {
	Field string
	Value any
	cause error
}

func (e *ErrInvalidOptions) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid cross-filter options: %v", e.cause)
	}
	return fmt.Sprintf("invalid cross-filter option %s: %v", e.Field, e.Value)
}

func (e *ErrInvalidOptions) Unwrap() error { return e.cause }

// ErrCommitFailed indicates that the host rejected a selection commit. The
// last confirmed selection is unchanged.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrCommitFailed struct {
	Identities int
	Cleared    bool
	cause      error
}

func (e *ErrCommitFailed) Error() string {
	if e.Cleared {
		return fmt.Sprintf("clear selection: %v", e.cause)
	}
	return fmt.Sprintf("commit %d identities: %v", e.Identities, e.cause)
}

func (e *ErrCommitFailed) Unwrap() error { return e.cause }
