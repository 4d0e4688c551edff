package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

var _ booking.Directory = (*DirectoryGorm)(nil)

// DirectoryGorm reads users, pets and offerings owned by other parts of the
// platform.
type DirectoryGorm struct {
	db *gorm.DB
}

func NewDirectoryGorm(db *gorm.DB) *DirectoryGorm {
	return &DirectoryGorm{db: db}
}

func (d *DirectoryGorm) GetOffering(ctx context.Context, id uuid.UUID) (*booking.Offering, error) {
	var o models.ServiceOffering
	if err := d.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "service_offering", id)
	}

	return &booking.Offering{
		ID:                o.ID,
		SitterID:          o.SitterID,
		Price:             o.Price,
		DurationInMinutes: o.DurationInMinutes,
		Active:            o.Active,
	}, nil
}

func (d *DirectoryGorm) Pet(ctx context.Context, id uuid.UUID) (booking.Presence, error) {
	return presence(ctx, d.db, &models.Pet{}, id)
}

func (d *DirectoryGorm) User(ctx context.Context, id uuid.UUID) (booking.Presence, error) {
	return presence(ctx, d.db, &models.User{}, id)
}

// PetOwner implements access.Roster.
func (d *DirectoryGorm) PetOwner(ctx context.Context, petID uuid.UUID) (uuid.UUID, bool, error) {
	var pet models.Pet
	err := d.db.WithContext(ctx).Select("id", "owner_id").First(&pet, "id = ?", petID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return pet.OwnerID, true, nil
}

func presence(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) (booking.Presence, error) {
	var row struct{ Active bool }
	err := db.WithContext(ctx).Model(model).Select("active").Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return booking.Presence{}, nil
	}
	if err != nil {
		return booking.Presence{}, err
	}
	return booking.Presence{Exists: true, Active: row.Active}, nil
}
