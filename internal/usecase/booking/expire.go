package booking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
)

const (
	ExpiryReason    = "expired: start time passed"
	expiryBatchSize = 100
)

// ExpirePendingBookings cancels PENDING requests whose start time has
// passed, through the normal transition path.
type ExpirePendingBookings struct {
	deps       *Deps
	transition *TransitionBooking
}

func NewExpirePendingBookings(deps *Deps, transition *TransitionBooking) *ExpirePendingBookings {
	return &ExpirePendingBookings{deps: deps, transition: transition}
}

// Execute returns how many bookings it cancelled. Bookings that moved on
// concurrently are skipped; other failures are joined.
func (uc *ExpirePendingBookings) Execute(ctx context.Context) (int, error) {
	stale, err := uc.deps.Store.ListPendingStartedBefore(ctx, uc.deps.Clock.Now(), expiryBatchSize)
	if err != nil {
		return 0, err
	}

	var (
		cancelled int
		errs      []error
	)
	for _, b := range stale {
		_, err := uc.transition.Execute(ctx, domain.SystemActor(), TransitionBookingInput{
			BookingID: b.ID,
			Target:    domain.StatusCancelled,
			Reason:    ExpiryReason,
			From:      domain.StatusPending,
		})

		var moved *domain.InvalidStateTransitionError
		switch {
		case err == nil:
			cancelled++
		case errors.As(err, &moved):
			uc.deps.Log.Debug("pending booking moved on before expiry", zap.Stringer("booking_id", b.ID))
		default:
			errs = append(errs, err)
		}
	}

	return cancelled, errors.Join(errs...)
}
