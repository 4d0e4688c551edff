package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"

	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

// BookingView is a booking plus its settlement once completed.
type BookingView struct {
	Booking *models.Booking
	Fee     *models.PlatformFee
}

type GetBooking struct {
	deps *Deps
}

func NewGetBooking(deps *Deps) *GetBooking {
	return &GetBooking{deps: deps}
}

func (uc *GetBooking) Execute(ctx context.Context, actor domain.Actor, id uuid.UUID) (*BookingView, error) {
	b, err := uc.deps.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := uc.deps.Permissions.CanView(ctx, actor, b)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &domain.PermissionDeniedError{ActorID: actor.ID, Action: "view booking " + id.String()}
	}

	view := &BookingView{Booking: b}
	if domain.Status(b.Status) != domain.StatusCompleted {
		return view, nil
	}

	fee, err := uc.deps.Store.GetPlatformFee(ctx, b.ID)
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
	case err != nil:
		return nil, err
	default:
		view.Fee = fee
	}
	return view, nil
}
