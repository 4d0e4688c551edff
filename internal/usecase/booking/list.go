package booking

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

type ListBookings struct {
	deps *Deps
}

func NewListBookings(deps *Deps) *ListBookings {
	return &ListBookings{deps: deps}
}

// ForSitter lists a sitter's bookings ordered by start time. Only the
// sitter and administrators may read it.
func (uc *ListBookings) ForSitter(
	ctx context.Context,
	actor domain.Actor,
	sitterID uuid.UUID,
	status *domain.Status,
) ([]models.Booking, error) {

	allowed, err := uc.deps.Permissions.CanActAsSitter(ctx, actor, sitterID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		if allowed, err = uc.deps.Permissions.IsAdmin(ctx, actor); err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, &domain.PermissionDeniedError{ActorID: actor.ID, Action: "list bookings of sitter " + sitterID.String()}
	}

	return uc.deps.Store.ListBySitter(ctx, sitterID, status)
}

// ForCreator lists the bookings creatorID requested.
func (uc *ListBookings) ForCreator(
	ctx context.Context,
	actor domain.Actor,
	creatorID uuid.UUID,
	status *domain.Status,
) ([]models.Booking, error) {

	allowed := actor.ID != uuid.Nil && actor.ID == creatorID
	if !allowed {
		var err error
		if allowed, err = uc.deps.Permissions.IsAdmin(ctx, actor); err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, &domain.PermissionDeniedError{ActorID: actor.ID, Action: "list bookings of user " + creatorID.String()}
	}

	return uc.deps.Store.ListByCreator(ctx, creatorID, status)
}
