package dto

import (
	"time"

	"github.com/iacastillo90/petcare-booking/internal/cache"
	"github.com/iacastillo90/petcare-booking/internal/domain/pricing"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	PetID             string     `json:"pet_id" binding:"required,uuid"`
	SitterID          string     `json:"sitter_id" binding:"required,uuid"`
	ServiceOfferingID string     `json:"service_offering_id" binding:"required,uuid"`
	StartTime         time.Time  `json:"start_time" binding:"required"`
	EndTime           *time.Time `json:"end_time"`
	Notes             string     `json:"notes" binding:"max=1000"`
}

type TransitionRequest struct {
	Status             string `json:"status" binding:"required"`
	CancellationReason string `json:"cancellation_reason" binding:"max=500"`
}

// ======================================================
// RESPONSES
// ======================================================

type PlatformFeeDTO struct {
	BaseAmount    string    `json:"base_amount"`
	FeePercentage string    `json:"fee_percentage"`
	FeeAmount     string    `json:"fee_amount"`
	NetAmount     string    `json:"net_amount"`
	CreatedAt     time.Time `json:"created_at"`
}

type BookingDTO struct {
	ID                string `json:"id"`
	PetID             string `json:"pet_id"`
	SitterID          string `json:"sitter_id"`
	ServiceOfferingID string `json:"service_offering_id"`
	BookedByUserID    string `json:"booked_by_user_id"`

	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	ActualStartTime *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time `json:"actual_end_time,omitempty"`

	Status             string `json:"status"`
	TotalPrice         string `json:"total_price"`
	Notes              string `json:"notes,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PlatformFee *PlatformFeeDTO `json:"platform_fee,omitempty"`
}

type IntervalDTO struct {
	BookingID string    `json:"booking_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

func NewBookingDTO(b *models.Booking, fee *models.PlatformFee) BookingDTO {
	out := BookingDTO{
		ID:                 b.ID.String(),
		PetID:              b.PetID.String(),
		SitterID:           b.SitterID.String(),
		ServiceOfferingID:  b.ServiceOfferingID.String(),
		BookedByUserID:     b.BookedByUserID.String(),
		StartTime:          b.StartTime.UTC(),
		EndTime:            b.EndTime.UTC(),
		ActualStartTime:    b.ActualStartTime,
		ActualEndTime:      b.ActualEndTime,
		Status:             b.Status,
		TotalPrice:         b.TotalPrice.StringFixed(pricing.MoneyPlaces),
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt.UTC(),
		UpdatedAt:          b.UpdatedAt.UTC(),
	}

	if fee != nil {
		out.PlatformFee = &PlatformFeeDTO{
			BaseAmount:    fee.BaseAmount.StringFixed(pricing.MoneyPlaces),
			FeePercentage: fee.FeePercentage.String(),
			FeeAmount:     fee.FeeAmount.StringFixed(pricing.MoneyPlaces),
			NetAmount:     fee.NetAmount.StringFixed(pricing.MoneyPlaces),
			CreatedAt:     fee.CreatedAt.UTC(),
		}
	}
	return out
}

func NewBookingList(list []models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(list))
	for i := range list {
		out = append(out, NewBookingDTO(&list[i], nil))
	}
	return out
}

func NewIntervalList(list []cache.Interval) []IntervalDTO {
	out := make([]IntervalDTO, 0, len(list))
	for _, iv := range list {
		out = append(out, IntervalDTO{
			BookingID: iv.BookingID.String(),
			StartTime: iv.Start.UTC(),
			EndTime:   iv.End.UTC(),
			Status:    iv.Status,
		})
	}
	return out
}
