package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iacastillo90/petcare-booking/internal/models"
)

// Actor is whoever calls the lifecycle. System actors are background jobs
// acting with administrator rights.
type Actor struct {
	ID     uuid.UUID
	Role   string
	System bool
}

func SystemActor() Actor {
	return Actor{System: true}
}

// Permissions answers capability questions. The lifecycle never inspects
// roles itself.
type Permissions interface {
	CanCreateBooking(ctx context.Context, actor Actor, petID uuid.UUID) (bool, error)
	CanActAsSitter(ctx context.Context, actor Actor, sitterID uuid.UUID) (bool, error)
	CanCancel(ctx context.Context, actor Actor, b *models.Booking) (bool, error)
	CanView(ctx context.Context, actor Actor, b *models.Booking) (bool, error)
	IsAdmin(ctx context.Context, actor Actor) (bool, error)
}

type Offering struct {
	ID                uuid.UUID
	SitterID          uuid.UUID
	Price             decimal.Decimal
	DurationInMinutes int
	Active            bool
}

// Presence is the answer of an existence lookup.
type Presence struct {
	Exists bool
	Active bool
}

// Directory looks up the records the booking core references by id.
type Directory interface {
	GetOffering(ctx context.Context, id uuid.UUID) (*Offering, error)
	Pet(ctx context.Context, id uuid.UUID) (Presence, error)
	User(ctx context.Context, id uuid.UUID) (Presence, error)
}
