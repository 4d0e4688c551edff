package booking

import (
	"strings"

	"github.com/iacastillo90/petcare-booking/internal/models"
)

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var allStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// ScheduleBlocking lists the statuses that reserve a sitter's time.
var ScheduleBlocking = []Status{StatusConfirmed, StatusInProgress}

func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func (s Status) Valid() bool {
	for _, st := range allStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	for _, t := range transitions {
		if t.From == s {
			return false
		}
	}
	return s.Valid()
}

func (s Status) Blocking() bool {
	for _, st := range ScheduleBlocking {
		if s == st {
			return true
		}
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Reason: "unknown status " + raw}
	}
	return s, nil
}

// InitialStatus is the status every new booking starts in.
func InitialStatus() Status {
	return StatusPending
}

// ===============================
// Transition table
// ===============================

// ActorRule names who may request a transition. The decision itself is
// delegated to Permissions.
type ActorRule int

const (
	ActorAssignedSitter ActorRule = iota + 1
	ActorSitterCreatorOrAdmin
)

// Effect is the side effect applied together with the status change.
type Effect int

const (
	EffectNone Effect = iota
	EffectStartWork
	EffectFinishWork
)

type Transition struct {
	From  Status
	To    Status
	Actor ActorRule

	RecheckAvailability bool
	RequiresReason      bool
	Effect              Effect
}

var transitions = []Transition{
	{From: StatusPending, To: StatusConfirmed, Actor: ActorAssignedSitter, RecheckAvailability: true},
	{From: StatusConfirmed, To: StatusInProgress, Actor: ActorAssignedSitter, Effect: EffectStartWork},
	{From: StatusInProgress, To: StatusCompleted, Actor: ActorAssignedSitter, Effect: EffectFinishWork},
	{From: StatusPending, To: StatusCancelled, Actor: ActorSitterCreatorOrAdmin, RequiresReason: true},
	{From: StatusConfirmed, To: StatusCancelled, Actor: ActorSitterCreatorOrAdmin, RequiresReason: true},
}

// Transitions returns a copy of the transition table.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// LookupTransition finds the table row for from -> to.
func LookupTransition(from, to Status) (Transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}

// ResolveTransition returns the rule that moves b to target, or the typed
// error explaining why no such rule exists.
func ResolveTransition(b *models.Booking, target Status) (Transition, error) {
	if !target.Valid() {
		return Transition{}, &ValidationError{Field: "status", Reason: "unknown status " + string(target)}
	}

	current := Status(b.Status)
	if t, ok := LookupTransition(current, target); ok {
		return t, nil
	}

	if current.IsTerminal() {
		return Transition{}, &AlreadyTerminalError{BookingID: b.ID, Status: current, Target: target}
	}
	return Transition{}, &InvalidStateTransitionError{BookingID: b.ID, From: current, To: target}
}
