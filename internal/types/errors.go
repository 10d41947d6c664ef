package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for denco-notify operations.
var (
	// ErrUnknownTargetType indicates a rule with an unrecognized target kind.
	// Such a rule is skipped for the event and reported, never a crash.
	ErrUnknownTargetType = errors.New("unknown target condition type")

	// ErrUnknownDestinationType indicates an action with an unrecognized
	// destination kind.
	ErrUnknownDestinationType = errors.New("unknown destination type")

	// ErrUnresolvedDestination indicates a staff destination with no usable
	// contact field for the action's channel. Scoped to the single action.
	ErrUnresolvedDestination = errors.New("destination could not be resolved")

	// ErrStaffNotFound indicates the staff directory has no such record.
	ErrStaffNotFound = errors.New("staff record not found")

	// ErrTemplateNotFound indicates the snapshot lacks the action's template.
	ErrTemplateNotFound = errors.New("notification template not found")

	// ErrTooManyKeywordTerms indicates a keyword condition exceeds MaxKeywordTerms.
	ErrTooManyKeywordTerms = errors.New("keyword condition has too many terms")

	// ErrTooManyTargetValues indicates a target set exceeds MaxTargetValues.
	ErrTooManyTargetValues = errors.New("target condition has too many values")

	// ErrTooManyActions indicates a rule exceeds MaxActionsPerRule.
	ErrTooManyActions = errors.New("rule has too many actions")
)

// SendError classifies a transport failure as transient or permanent.
// Transient errors (timeouts, 5xx-equivalent) are retried per policy;
// permanent errors (invalid address, authentication) fail immediately.
type SendError struct {
	Err       error
	Transient bool
}

// Error implements the error interface.
func (e *SendError) Error() string {
	if e.Transient {
		return fmt.Sprintf("transient send error: %v", e.Err)
	}
	return fmt.Sprintf("permanent send error: %v", e.Err)
}

// Unwrap exposes the underlying transport error for errors.Is/As.
func (e *SendError) Unwrap() error { return e.Err }

// TransientSend wraps err as a retryable transport failure.
func TransientSend(err error) error {
	return &SendError{Err: err, Transient: true}
}

// PermanentSend wraps err as a non-retryable transport failure.
func PermanentSend(err error) error {
	return &SendError{Err: err, Transient: false}
}

// IsTransientSend reports whether err is classified as retryable.
// Unclassified errors are treated as permanent: retrying an unknown failure
// risks duplicate delivery.
func IsTransientSend(err error) bool {
	var se *SendError
	if errors.As(err, &se) {
		return se.Transient
	}
	return false
}
