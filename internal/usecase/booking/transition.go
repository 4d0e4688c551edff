package booking

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/domain/pricing"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

type TransitionBookingInput struct {
	BookingID uuid.UUID
	Target    domain.Status
	Reason    string

	// From, when set, makes the transition conditional on the booking
	// still being in that status.
	From domain.Status
}

type TransitionBooking struct {
	deps *Deps
}

func NewTransitionBooking(deps *Deps) *TransitionBooking {
	return &TransitionBooking{deps: deps}
}

// Execute moves a booking along one row of the transition table. The row is
// resolved against a snapshot for authorization and again against the
// locked row inside the unit, so a concurrent change is never overwritten.
func (uc *TransitionBooking) Execute(
	ctx context.Context,
	actor domain.Actor,
	in TransitionBookingInput,
) (_ *models.Booking, err error) {

	ctx, span := tracer.Start(ctx, "booking.transition")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("booking_id", in.BookingID.String()),
		attribute.String("target_status", string(in.Target)),
	)

	d := uc.deps

	snapshot, err := d.Store.GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}

	if err := in.expect(snapshot); err != nil {
		return nil, err
	}
	rule, err := domain.ResolveTransition(snapshot, in.Target)
	if err != nil {
		return nil, err
	}
	if err := uc.authorize(ctx, actor, rule, snapshot); err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(in.Reason)
	if rule.RequiresReason && reason == "" {
		return nil, &domain.ValidationError{Field: "cancellation_reason", Reason: "required when cancelling"}
	}

	var (
		from    domain.Status
		updated *models.Booking
		fee     *models.PlatformFee
	)

	err = d.Store.Atomically(ctx, snapshot.SitterID, func(tx domain.Tx) error {
		b, err := tx.GetForUpdate(ctx, in.BookingID)
		if err != nil {
			return err
		}

		if err := in.expect(b); err != nil {
			return err
		}
		current, err := domain.ResolveTransition(b, in.Target)
		if err != nil {
			return err
		}
		if current.Actor != rule.Actor {
			if err := uc.authorize(ctx, actor, current, b); err != nil {
				return err
			}
		}

		if current.RecheckAvailability {
			conflict, err := d.Checker.HasConflict(ctx, tx, b.SitterID, b.StartTime, b.EndTime, b.ID)
			if err != nil {
				return err
			}
			if conflict {
				return &domain.SchedulingConflictError{SitterID: b.SitterID, Start: b.StartTime, End: b.EndTime}
			}
		}

		from = domain.Status(b.Status)
		now := d.Clock.Now()
		if err := domain.Apply(b, current, reason, now); err != nil {
			return err
		}
		if err := tx.Update(ctx, b); err != nil {
			return err
		}

		fee = nil
		if current.To == domain.StatusCompleted {
			fee, err = uc.platformFee(b)
			if err != nil {
				return err
			}
			if err := tx.CreatePlatformFee(ctx, fee); err != nil {
				return err
			}
		}

		updated = b
		return nil
	})
	if err != nil {
		return nil, withInterval(err, snapshot)
	}

	d.Log.Info("booking transitioned",
		zap.Stringer("booking_id", updated.ID),
		zap.String("from", string(from)),
		zap.String("to", updated.Status),
		actorRef(actor),
	)

	meta := map[string]any{
		"sitter_id": updated.SitterID.String(),
		"from":      string(from),
		"to":        updated.Status,
	}
	if updated.CancellationReason != "" {
		meta["reason"] = updated.CancellationReason
	}
	if fee != nil {
		meta["fee_amount"] = fee.FeeAmount.StringFixed(pricing.MoneyPlaces)
		meta["net_amount"] = fee.NetAmount.StringFixed(pricing.MoneyPlaces)
	}
	d.afterCommit(ctx, actor, updated, meta)

	return updated, nil
}

func (in TransitionBookingInput) expect(b *models.Booking) error {
	if in.From == "" || domain.Status(b.Status) == in.From {
		return nil
	}
	return &domain.InvalidStateTransitionError{BookingID: b.ID, From: domain.Status(b.Status), To: in.Target}
}

func (uc *TransitionBooking) authorize(
	ctx context.Context,
	actor domain.Actor,
	rule domain.Transition,
	b *models.Booking,
) error {

	var (
		allowed bool
		err     error
	)
	switch rule.Actor {
	case domain.ActorAssignedSitter:
		allowed, err = uc.deps.Permissions.CanActAsSitter(ctx, actor, b.SitterID)
	case domain.ActorSitterCreatorOrAdmin:
		allowed, err = uc.deps.Permissions.CanCancel(ctx, actor, b)
	}
	if err != nil {
		return err
	}
	if !allowed {
		return &domain.PermissionDeniedError{
			ActorID: actor.ID,
			Action:  "move booking " + b.ID.String() + " to " + string(rule.To),
		}
	}
	return nil
}

func (uc *TransitionBooking) platformFee(b *models.Booking) (*models.PlatformFee, error) {
	pct := uc.deps.FeePercentage
	feeAmount, net, err := uc.deps.Pricing.ComputePlatformFee(b.TotalPrice, pct)
	if err != nil {
		return nil, err
	}

	return &models.PlatformFee{
		BookingID:     b.ID,
		BaseAmount:    b.TotalPrice,
		FeePercentage: pct,
		FeeAmount:     feeAmount,
		NetAmount:     net,
		CreatedAt:     b.UpdatedAt,
	}, nil
}
