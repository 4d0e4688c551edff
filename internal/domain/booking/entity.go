package booking

import (
	"strings"
	"time"

	"github.com/iacastillo90/petcare-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Apply moves b along t and assigns the timestamps the transition owns.
// The caller has already resolved t for b's current status.
func Apply(b *models.Booking, t Transition, reason string, now time.Time) error {
	if Status(b.Status) != t.From {
		return &InvalidStateTransitionError{BookingID: b.ID, From: Status(b.Status), To: t.To}
	}

	reason = strings.TrimSpace(reason)
	if t.RequiresReason && reason == "" {
		return &ValidationError{Field: "cancellation_reason", Reason: "required when cancelling"}
	}

	switch t.Effect {
	case EffectStartWork:
		b.ActualStartTime = &now
	case EffectFinishWork:
		b.ActualEndTime = &now
	}

	if t.To == StatusCancelled {
		b.CancellationReason = reason
	}

	b.Status = string(t.To)
	b.UpdatedAt = now
	return nil
}

// CheckInvariants validates the per-row invariants of a booking.
func CheckInvariants(b *models.Booking) error {
	if !b.EndTime.After(b.StartTime) {
		return &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	if !b.TotalPrice.IsPositive() {
		return &ValidationError{Field: "total_price", Reason: "must be positive"}
	}

	cancelled := Status(b.Status) == StatusCancelled
	hasReason := strings.TrimSpace(b.CancellationReason) != ""
	if cancelled != hasReason {
		return &ValidationError{Field: "cancellation_reason", Reason: "must be set exactly when cancelled"}
	}
	return nil
}
