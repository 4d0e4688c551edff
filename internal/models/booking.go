package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking references its pet, sitter, offering and creator by id only.
// CreatedAt/UpdatedAt are assigned by the lifecycle, never by gorm.
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	PetID             uuid.UUID `gorm:"type:uuid;not null;index" json:"pet_id"`
	SitterID          uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_sitter_start,priority:1" json:"sitter_id"`
	ServiceOfferingID uuid.UUID `gorm:"type:uuid;not null" json:"service_offering_id"`
	BookedByUserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"booked_by_user_id"`

	StartTime       time.Time  `gorm:"not null;index:idx_bookings_sitter_start,priority:2" json:"start_time"`
	EndTime         time.Time  `gorm:"not null" json:"end_time"`
	ActualStartTime *time.Time `json:"actual_start_time"`
	ActualEndTime   *time.Time `json:"actual_end_time"`

	Status     string          `gorm:"size:20;not null;index" json:"status"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`

	Notes              string `gorm:"size:1000" json:"notes"`
	CancellationReason string `gorm:"size:500" json:"cancellation_reason"`

	CreatedAt time.Time `gorm:"autoCreateTime:false;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;not null" json:"updated_at"`
}

// Same reports whether both values denote the same persisted booking.
func (b *Booking) Same(other *Booking) bool {
	if b == nil || other == nil {
		return false
	}
	return b.ID != uuid.Nil && b.ID == other.ID
}
