package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced appointment, patient or
	// doctor does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDoctorBusy is returned by CallNext while the doctor already has an
	// in-progress appointment. The caller should complete that visit first.
	ErrDoctorBusy = errors.New("doctor already has an appointment in progress")

	// ErrConflict signals a lost write race, e.g. two walk-in registrations
	// competing for the same queue number. It is retried internally and
	// should not normally reach a caller.
	ErrConflict = errors.New("concurrent update conflict")
)

// ValidationError reports a malformed or missing request field. It is always
// caller-fixable and never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports a state change that the transition table
// does not permit from the record's current status. It is a business-rule
// rejection, not a system fault; the record is left unchanged.
type InvalidTransitionError struct {
	From    Status
	Trigger Trigger
	Reason  string // optional guard explanation
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s an appointment in status %q: %s", e.Trigger, e.From, e.Reason)
	}
	return fmt.Sprintf("cannot %s an appointment in status %q", e.Trigger, e.From)
}
