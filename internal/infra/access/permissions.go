// Package access decides what an actor may do with a booking.
package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

// Roster answers the ownership questions permissions depend on.
type Roster interface {
	PetOwner(ctx context.Context, petID uuid.UUID) (ownerID uuid.UUID, found bool, err error)
}

var _ booking.Permissions = (*RolePermissions)(nil)

// RolePermissions grants administrators everything, pet owners the right to
// book for their pets and sitters control over their own schedule.
type RolePermissions struct {
	roster Roster
}

func NewRolePermissions(roster Roster) *RolePermissions {
	return &RolePermissions{roster: roster}
}

func (p *RolePermissions) IsAdmin(_ context.Context, actor booking.Actor) (bool, error) {
	return isAdmin(actor), nil
}

func (p *RolePermissions) CanCreateBooking(ctx context.Context, actor booking.Actor, petID uuid.UUID) (bool, error) {
	if isAdmin(actor) {
		return true, nil
	}
	if actor.ID == uuid.Nil {
		return false, nil
	}

	owner, found, err := p.roster.PetOwner(ctx, petID)
	if err != nil || !found {
		return false, err
	}
	return owner == actor.ID, nil
}

func (p *RolePermissions) CanActAsSitter(_ context.Context, actor booking.Actor, sitterID uuid.UUID) (bool, error) {
	return actor.ID != uuid.Nil && actor.ID == sitterID, nil
}

func (p *RolePermissions) CanCancel(_ context.Context, actor booking.Actor, b *models.Booking) (bool, error) {
	return isAdmin(actor) || isParty(actor, b), nil
}

func (p *RolePermissions) CanView(_ context.Context, actor booking.Actor, b *models.Booking) (bool, error) {
	return isAdmin(actor) || isParty(actor, b), nil
}

func isAdmin(actor booking.Actor) bool {
	return actor.System || actor.Role == models.RoleAdmin
}

func isParty(actor booking.Actor, b *models.Booking) bool {
	if actor.ID == uuid.Nil {
		return false
	}
	return actor.ID == b.SitterID || actor.ID == b.BookedByUserID
}
