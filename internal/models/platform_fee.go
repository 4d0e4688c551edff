package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlatformFee struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"booking_id"`

	BaseAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"base_amount"`
	FeePercentage decimal.Decimal `gorm:"type:numeric(5,4);not null" json:"fee_percentage"`
	FeeAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fee_amount"`
	NetAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"net_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime:false;not null" json:"created_at"`
}
