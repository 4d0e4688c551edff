package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceOffering is owned by the catalog side of the platform; the booking
// core only reads it.
type ServiceOffering struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SitterID uuid.UUID `gorm:"type:uuid;index" json:"sitter_id"`

	Name              string          `gorm:"size:100;not null" json:"name"`
	Price             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	DurationInMinutes int             `gorm:"not null" json:"duration_in_minutes"`
	Active            bool            `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
