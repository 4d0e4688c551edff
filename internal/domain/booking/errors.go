package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidationError reports malformed input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError covers both missing and inactive references.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s %s", e.Entity, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

type PermissionDeniedError struct {
	ActorID uuid.UUID
	Action  string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("actor %s is not allowed to %s", e.ActorID, e.Action)
}

// SchedulingConflictError means the sitter already holds a blocking booking
// overlapping [Start, End).
type SchedulingConflictError struct {
	SitterID uuid.UUID
	Start    time.Time
	End      time.Time
}

func (e *SchedulingConflictError) Error() string {
	if e.Start.IsZero() {
		return fmt.Sprintf("sitter %s schedule changed concurrently", e.SitterID)
	}
	return fmt.Sprintf(
		"sitter %s is not available between %s and %s",
		e.SitterID,
		e.Start.UTC().Format(time.RFC3339),
		e.End.UTC().Format(time.RFC3339),
	)
}

type InvalidStateTransitionError struct {
	BookingID uuid.UUID
	From      Status
	To        Status
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("booking %s cannot move from %s to %s", e.BookingID, e.From, e.To)
}

// AlreadyTerminalError is returned for any transition requested out of
// COMPLETED or CANCELLED. It unwraps to an InvalidStateTransitionError so
// callers matching the broader kind still see it.
type AlreadyTerminalError struct {
	BookingID uuid.UUID
	Status    Status
	Target    Status
}

func (e *AlreadyTerminalError) Error() string {
	return fmt.Sprintf("booking %s is already %s", e.BookingID, e.Status)
}

func (e *AlreadyTerminalError) Unwrap() error {
	return &InvalidStateTransitionError{BookingID: e.BookingID, From: e.Status, To: e.Target}
}
