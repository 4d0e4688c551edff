package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

func TestTransition_FullLifecycle(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)
	b := f.create(at(10, 0), at(11, 0))

	f.clock.Advance(time.Hour)
	confirmed := f.mustMove(f.sitter, b.ID, domain.StatusConfirmed, "")
	assert.Equal(t, testNow.Add(time.Hour), confirmed.UpdatedAt)
	assert.Equal(t, testNow, confirmed.CreatedAt)

	f.clock.Set(at(10, 3))
	started := f.mustMove(f.sitter, b.ID, domain.StatusInProgress, "")
	require.NotNil(t, started.ActualStartTime)
	assert.Equal(t, at(10, 3), *started.ActualStartTime)

	f.clock.Set(at(11, 1))
	done := f.mustMove(f.sitter, b.ID, domain.StatusCompleted, "")
	require.NotNil(t, done.ActualEndTime)
	assert.Equal(t, at(11, 1), *done.ActualEndTime)
	assert.Equal(t, string(domain.StatusCompleted), done.Status)

	assert.Equal(t, []string{
		"booking.created",
		"booking.confirmed",
		"booking.started",
		"booking.completed",
	}, f.events.actions())
}

func TestTransition_CompletionRecordsPlatformFee(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)
	premium := uuid.New()
	f.dir.AddOffering(models.ServiceOffering{
		ID: premium, SitterID: f.sitter.ID, Active: true,
		Price: decimal.RequireFromString("100.00"), DurationInMinutes: 120,
	})

	in := f.input(at(9, 0), at(11, 0))
	in.ServiceOfferingID = premium
	b, err := f.lc.Create.Execute(context.Background(), f.owner, in)
	require.NoError(t, err)

	f.mustMove(f.sitter, b.ID, domain.StatusConfirmed, "")
	f.mustMove(f.sitter, b.ID, domain.StatusInProgress, "")
	f.mustMove(f.sitter, b.ID, domain.StatusCompleted, "")

	view, err := f.lc.Get.Execute(context.Background(), f.owner, b.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Fee)

	assert.Equal(t, "100.00", view.Fee.BaseAmount.StringFixed(2))
	assert.Equal(t, "15.00", view.Fee.FeeAmount.StringFixed(2))
	assert.Equal(t, "85.00", view.Fee.NetAmount.StringFixed(2))
	assert.True(t, view.Fee.FeeAmount.Add(view.Fee.NetAmount).Equal(view.Booking.TotalPrice))
}

func TestTransition_NoFeeBeforeCompletion(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)
	b := f.confirmed(at(10, 0), at(11, 0))

	view, err := f.lc.Get.Execute(context.Background(), f.sitter, b.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Fee)

	_, err = f.store.GetPlatformFee(context.Background(), b.ID)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestTransition_OnlyAssignedSitterDrivesWork(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)
	b := f.create(at(10, 0), at(11, 0))

	for _, actor := range []domain.Actor{f.owner, f.admin, f.stranger} {
		_, err := f.move(actor, b.ID, domain.StatusConfirmed, "")

		var denied *domain.PermissionDeniedError
		assert.ErrorAs(t, err, &denied)
	}

	stored, _ := f.store.GetByID(context.Background(), b.ID)
	assert.Equal(t, string(domain.StatusPending), stored.Status)
}

func TestTransition_CancellationRules(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)

	pending := f.create(at(8, 0), at(9, 0))
	_, err := f.move(f.owner, pending.ID, domain.StatusCancelled, "  ")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = f.move(f.stranger, pending.ID, domain.StatusCancelled, "not mine")
	var denied *domain.PermissionDeniedError
	require.ErrorAs(t, err, &denied)

	cancelled := f.mustMove(f.owner, pending.ID, domain.StatusCancelled, "vet appointment")
	assert.Equal(t, "vet appointment", cancelled.CancellationReason)

	bySitter := f.confirmed(at(10, 0), at(11, 0))
	f.mustMove(f.sitter, bySitter.ID, domain.StatusCancelled, "sick")

	byAdmin := f.confirmed(at(12, 0), at(13, 0))
	f.mustMove(f.admin, byAdmin.ID, domain.StatusCancelled, "policy breach")

	started := f.confirmed(at(14, 0), at(15, 0))
	f.mustMove(f.sitter, started.ID, domain.StatusInProgress, "")
	_, err = f.move(f.owner, started.ID, domain.StatusCancelled, "too late")
	var invalid *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &invalid)
	var terminal *domain.AlreadyTerminalError
	assert.False(t, errors.As(err, &terminal))
}

func TestTransition_TerminalBookingsReject(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)
	b := f.create(at(10, 0), at(11, 0))
	f.mustMove(f.owner, b.ID, domain.StatusCancelled, "first")
	eventsBefore := len(f.events.actions())

	_, err := f.move(f.owner, b.ID, domain.StatusCancelled, "second")

	var terminal *domain.AlreadyTerminalError
	require.ErrorAs(t, err, &terminal)
	var invalid *domain.InvalidStateTransitionError
	assert.ErrorAs(t, err, &invalid)

	stored, _ := f.store.GetByID(context.Background(), b.ID)
	assert.Equal(t, "first", stored.CancellationReason)
	assert.Len(t, f.events.actions(), eventsBefore)
}

func TestTransition_UnknownBookingAndStatus(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)

	_, err := f.move(f.sitter, uuid.New(), domain.StatusConfirmed, "")
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)

	b := f.create(at(10, 0), at(11, 0))
	_, err = f.move(f.sitter, b.ID, domain.Status("ARCHIVED"), "")
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.move(f.sitter, b.ID, domain.StatusCompleted, "")
	var invalid *domain.InvalidStateTransitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestTransition_ConfirmRechecksAvailability(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)
	first := f.create(at(10, 0), at(11, 0))
	second := f.create(at(10, 30), at(11, 30))

	f.mustMove(f.sitter, first.ID, domain.StatusConfirmed, "")
	_, err := f.move(f.sitter, second.ID, domain.StatusConfirmed, "")

	var conflict *domain.SchedulingConflictError
	require.ErrorAs(t, err, &conflict)

	stored, _ := f.store.GetByID(context.Background(), second.ID)
	assert.Equal(t, string(domain.StatusPending), stored.Status)

	f.mustMove(f.owner, second.ID, domain.StatusCancelled, "slot taken")
}

func TestTransition_ConditionalOnStatus(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)
	b := f.confirmed(at(10, 0), at(11, 0))

	_, err := f.lc.Transition.Execute(context.Background(), domain.SystemActor(), TransitionBookingInput{
		BookingID: b.ID,
		Target:    domain.StatusCancelled,
		Reason:    ExpiryReason,
		From:      domain.StatusPending,
	})

	var invalid *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.StatusConfirmed, invalid.From)
}
