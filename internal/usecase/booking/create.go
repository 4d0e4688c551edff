package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/domain/pricing"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	PetID             uuid.UUID
	SitterID          uuid.UUID
	ServiceOfferingID uuid.UUID

	StartTime time.Time
	// EndTime defaults to StartTime plus the offering duration.
	EndTime *time.Time

	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	deps *Deps
}

func NewCreateBooking(deps *Deps) *CreateBooking {
	return &CreateBooking{deps: deps}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	actor domain.Actor,
	in CreateBookingInput,
) (_ *models.Booking, err error) {

	ctx, span := tracer.Start(ctx, "booking.create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("sitter_id", in.SitterID.String()))

	d := uc.deps

	// --------------------------------------------------
	// 1️⃣ Input
	// --------------------------------------------------
	switch {
	case actor.ID == uuid.Nil:
		return nil, &domain.ValidationError{Field: "actor", Reason: "bookings need an identified creator"}
	case in.PetID == uuid.Nil:
		return nil, &domain.ValidationError{Field: "pet_id", Reason: "required"}
	case in.SitterID == uuid.Nil:
		return nil, &domain.ValidationError{Field: "sitter_id", Reason: "required"}
	case in.ServiceOfferingID == uuid.Nil:
		return nil, &domain.ValidationError{Field: "service_offering_id", Reason: "required"}
	case in.StartTime.IsZero():
		return nil, &domain.ValidationError{Field: "start_time", Reason: "required"}
	}

	// --------------------------------------------------
	// 2️⃣ Referenced records
	// --------------------------------------------------
	if err := uc.requireActive(ctx, "pet", in.PetID, d.Directory.Pet); err != nil {
		return nil, err
	}
	if err := uc.requireActive(ctx, "sitter", in.SitterID, d.Directory.User); err != nil {
		return nil, err
	}
	if err := uc.requireActive(ctx, "user", actor.ID, d.Directory.User); err != nil {
		return nil, err
	}

	offering, err := d.Directory.GetOffering(ctx, in.ServiceOfferingID)
	if err != nil {
		return nil, err
	}
	if !offering.Active {
		return nil, &domain.NotFoundError{Entity: "service_offering", ID: offering.ID, Reason: "is inactive"}
	}
	if offering.SitterID != in.SitterID {
		return nil, &domain.ValidationError{Field: "service_offering_id", Reason: "offering_sitter_mismatch"}
	}

	// --------------------------------------------------
	// 3️⃣ Permission
	// --------------------------------------------------
	allowed, err := d.Permissions.CanCreateBooking(ctx, actor, in.PetID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &domain.PermissionDeniedError{ActorID: actor.ID, Action: "create booking"}
	}

	// --------------------------------------------------
	// 4️⃣ Interval
	// --------------------------------------------------
	now := d.Clock.Now()
	start := in.StartTime.UTC()

	end := start.Add(time.Duration(offering.DurationInMinutes) * time.Minute)
	if in.EndTime != nil {
		end = in.EndTime.UTC()
	}

	if !end.After(start) {
		return nil, &domain.ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	length := end.Sub(start)
	if length%time.Minute != 0 {
		return nil, &domain.ValidationError{Field: "end_time", Reason: "duration must be a whole number of minutes"}
	}
	if start.Before(now) {
		return nil, &domain.ValidationError{Field: "start_time", Reason: "start_in_past"}
	}

	// --------------------------------------------------
	// 5️⃣ Price (fixed at creation)
	// --------------------------------------------------
	total, err := d.Pricing.ComputeTotalPrice(
		pricing.Offering{Price: offering.Price, DurationInMinutes: offering.DurationInMinutes},
		int(length/time.Minute),
	)
	if err != nil {
		return nil, &domain.ValidationError{Field: "duration", Reason: err.Error(), Err: err}
	}

	b := &models.Booking{
		ID:                uuid.New(),
		PetID:             in.PetID,
		SitterID:          in.SitterID,
		ServiceOfferingID: offering.ID,
		BookedByUserID:    actor.ID,
		StartTime:         start,
		EndTime:           end,
		Status:            string(domain.InitialStatus()),
		TotalPrice:        total,
		Notes:             strings.TrimSpace(in.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := domain.CheckInvariants(b); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 6️⃣ Conflict check + insert, one unit
	// --------------------------------------------------
	err = d.Store.Atomically(ctx, b.SitterID, func(tx domain.Tx) error {
		conflict, err := d.Checker.HasCreateConflict(ctx, tx, b.SitterID, b.StartTime, b.EndTime)
		if err != nil {
			return err
		}
		if conflict {
			return &domain.SchedulingConflictError{SitterID: b.SitterID, Start: b.StartTime, End: b.EndTime}
		}
		return tx.Create(ctx, b)
	})
	if err != nil {
		return nil, withInterval(err, b)
	}

	span.SetAttributes(attribute.String("booking_id", b.ID.String()))
	d.Log.Info("booking created",
		zap.Stringer("booking_id", b.ID),
		zap.Stringer("sitter_id", b.SitterID),
		actorRef(actor),
	)

	// --------------------------------------------------
	// 7️⃣ Events
	// --------------------------------------------------
	d.afterCommit(ctx, actor, b, map[string]any{
		"sitter_id":   b.SitterID.String(),
		"start_time":  b.StartTime,
		"end_time":    b.EndTime,
		"total_price": b.TotalPrice.StringFixed(pricing.MoneyPlaces),
	})

	return b, nil
}

func (uc *CreateBooking) requireActive(
	ctx context.Context,
	entity string,
	id uuid.UUID,
	lookup func(context.Context, uuid.UUID) (domain.Presence, error),
) error {
	p, err := lookup(ctx, id)
	if err != nil {
		return err
	}
	if !p.Exists {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	if !p.Active {
		return &domain.NotFoundError{Entity: entity, ID: id, Reason: "is inactive"}
	}
	return nil
}
