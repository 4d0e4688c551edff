// Package booking implements the booking lifecycle operations: admission,
// state transitions, reads and housekeeping.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/iacastillo90/petcare-booking/internal/audit"
	"github.com/iacastillo90/petcare-booking/internal/cache"
	"github.com/iacastillo90/petcare-booking/internal/clock"
	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/domain/pricing"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

var tracer = otel.Tracer("github.com/iacastillo90/petcare-booking/usecase/booking")

// EventDispatcher takes committed lifecycle events. Implementations must
// not block.
type EventDispatcher interface {
	Dispatch(ev audit.Event)
}

type ScheduleCache interface {
	Get(ctx context.Context, sitterID uuid.UUID, from, to time.Time) ([]cache.Interval, bool, error)
	Put(ctx context.Context, sitterID uuid.UUID, from, to time.Time, intervals []cache.Interval) error
	Invalidate(ctx context.Context, sitterID uuid.UUID) error
}

// ======================================================
// DEPENDENCIES
// ======================================================

// Deps is shared by every use case in this package. Events and Cache are
// optional.
type Deps struct {
	Store       domain.Store
	Directory   domain.Directory
	Permissions domain.Permissions
	Checker     *domain.AvailabilityChecker
	Pricing     pricing.Engine
	Clock       clock.Clock

	FeePercentage decimal.Decimal

	Events EventDispatcher
	Cache  ScheduleCache
	Log    *zap.Logger
}

func (d *Deps) withDefaults() *Deps {
	out := *d
	if out.Clock == nil {
		out.Clock = clock.System{}
	}
	if out.Checker == nil {
		out.Checker = domain.NewAvailabilityChecker(domain.HoldSoft)
	}
	if out.Log == nil {
		out.Log = zap.NewNop()
	}
	return &out
}

// Lifecycle groups the use cases for transport adapters.
type Lifecycle struct {
	Create     *CreateBooking
	Transition *TransitionBooking
	Get        *GetBooking
	List       *ListBookings
	Schedule   *GetSitterSchedule
	Expire     *ExpirePendingBookings
}

func NewLifecycle(deps Deps) *Lifecycle {
	d := deps.withDefaults()
	transition := NewTransitionBooking(d)

	return &Lifecycle{
		Create:     NewCreateBooking(d),
		Transition: transition,
		Get:        NewGetBooking(d),
		List:       NewListBookings(d),
		Schedule:   NewGetSitterSchedule(d),
		Expire:     NewExpirePendingBookings(d, transition),
	}
}

// ======================================================
// HELPERS
// ======================================================

var eventActions = map[domain.Status]string{
	domain.StatusPending:    "booking.created",
	domain.StatusConfirmed:  "booking.confirmed",
	domain.StatusInProgress: "booking.started",
	domain.StatusCompleted:  "booking.completed",
	domain.StatusCancelled:  "booking.cancelled",
}

// EventAction is the audit action and routing key emitted when a booking
// enters status.
func EventAction(status domain.Status) string {
	return eventActions[status]
}

func (d *Deps) afterCommit(ctx context.Context, actor domain.Actor, b *models.Booking, meta map[string]any) {
	if d.Cache != nil {
		if err := d.Cache.Invalidate(ctx, b.SitterID); err != nil {
			d.Log.Warn("schedule cache invalidation failed",
				zap.Stringer("sitter_id", b.SitterID),
				zap.Error(err),
			)
		}
	}

	if d.Events == nil {
		return
	}

	id := b.ID
	ev := audit.Event{
		Action:     EventAction(domain.Status(b.Status)),
		Entity:     "booking",
		EntityID:   &id,
		Metadata:   meta,
		OccurredAt: b.UpdatedAt,
	}
	if actor.ID != uuid.Nil {
		actorID := actor.ID
		ev.ActorID = &actorID
	}
	d.Events.Dispatch(ev)
}

// withInterval fills in the interval of a conflict reported by the store
// backstop, which only knows the sitter.
func withInterval(err error, b *models.Booking) error {
	var conflict *domain.SchedulingConflictError
	if errors.As(err, &conflict) && conflict.Start.IsZero() {
		conflict.Start = b.StartTime
		conflict.End = b.EndTime
	}
	return err
}

func actorRef(actor domain.Actor) zap.Field {
	if actor.System {
		return zap.String("actor", "system")
	}
	return zap.Stringer("actor", actor.ID)
}
