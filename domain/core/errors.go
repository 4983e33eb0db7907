package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Sourcing errors
	ErrUnreadableSource = errors.New("unreadable source")
	ErrInvalidURL       = fmt.Errorf("%w: unrecognized spreadsheet URL", ErrUnreadableSource)
	ErrTabNotFound      = errors.New("tab not found")

	// Remote fetch errors, kept distinct because each needs different guidance
	ErrNotFound       = errors.New("spreadsheet not found")
	ErrAccessDenied   = errors.New("access to spreadsheet denied")
	ErrNotPublic      = errors.New("spreadsheet is not shared publicly")
	ErrFetchTimeout   = errors.New("spreadsheet fetch timed out")
	ErrFetchCancelled = errors.New("spreadsheet fetch cancelled")
	ErrFetchFailed    = errors.New("spreadsheet host unreachable")

	// Mapping errors
	ErrInvalidColumn  = errors.New("column out of range")
	ErrTitleNotMapped = errors.New("no column mapped to title")
	ErrNoValidRows    = errors.New("no row has a non-empty title")

	// Workflow errors
	ErrInvalidTransition = errors.New("invalid pipeline transition")
	ErrCommitItemFailed  = errors.New("task creation failed")
)

// CommitItemFailedError reports a commit that stopped mid-batch. Succeeded
// tasks stay created; the caller may retry from Item onward.
type CommitItemFailedError struct {
	Succeeded int
	Index     int
	Title     string
	Err       error
}

func (e *CommitItemFailedError) Error() string {
	return fmt.Sprintf("%v: item %d (%q) after %d created: %v", ErrCommitItemFailed, e.Index+1, e.Title, e.Succeeded, e.Err)
}

func (e *CommitItemFailedError) Unwrap() []error {
	return []error{ErrCommitItemFailed, e.Err}
}

// NewTransitionError reports an operation attempted in the wrong state
func NewTransitionError(op, state string) error {
	return fmt.Errorf("%w: %s not allowed in state %s", ErrInvalidTransition, op, state)
}

// NewUnreadableSourceError wraps a reader failure
func NewUnreadableSourceError(reason string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadableSource, reason, err)
	}
	return fmt.Errorf("%w: %s", ErrUnreadableSource, reason)
}

// IsRemoteFetchError reports whether err came from the remote spreadsheet fetch
func IsRemoteFetchError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrNotPublic) ||
		errors.Is(err, ErrFetchTimeout) ||
		errors.Is(err, ErrFetchCancelled) ||
		errors.Is(err, ErrFetchFailed)
}

// IsMappingError reports whether err blocks leaving the mapping stage
func IsMappingError(err error) bool {
	return errors.Is(err, ErrTitleNotMapped) || errors.Is(err, ErrNoValidRows)
}
