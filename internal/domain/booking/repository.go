package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iacastillo90/petcare-booking/internal/models"
)

// Store is the persistence boundary of the booking core.
type Store interface {
	// Atomically runs fn as one unit serialized against every other unit
	// for the same sitter. Writes made through tx are visible to later
	// units only if fn returns nil.
	Atomically(ctx context.Context, sitterID uuid.UUID, fn func(tx Tx) error) error

	// -------- Reads --------
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetPlatformFee(ctx context.Context, bookingID uuid.UUID) (*models.PlatformFee, error)

	ListBySitter(ctx context.Context, sitterID uuid.UUID, status *Status) ([]models.Booking, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, status *Status) ([]models.Booking, error)

	ListOverlapping(ctx context.Context, q OverlapQuery) ([]models.Booking, error)
	ListPendingStartedBefore(ctx context.Context, before time.Time, limit int) ([]models.Booking, error)
}

// Tx is the write side of a unit opened by Store.Atomically.
type Tx interface {
	ConflictQuerier

	Create(ctx context.Context, b *models.Booking) error
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Update(ctx context.Context, b *models.Booking) error
	CreatePlatformFee(ctx context.Context, fee *models.PlatformFee) error
}
