package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

func TestCreate_DefaultDuration(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)

	in := f.input(at(10, 0), time.Time{})
	in.EndTime = nil
	in.Notes = "  second gate code 42  "

	b, err := f.lc.Create.Execute(context.Background(), f.owner, in)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, at(11, 0), b.EndTime)
	assert.Equal(t, string(domain.StatusPending), b.Status)
	assert.Equal(t, "30.00", b.TotalPrice.StringFixed(2))
	assert.Equal(t, f.owner.ID, b.BookedByUserID)
	assert.Equal(t, "second gate code 42", b.Notes)
	assert.Equal(t, testNow, b.CreatedAt)
	assert.Equal(t, testNow, b.UpdatedAt)

	stored, err := f.store.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Same(b))

	assert.Equal(t, []string{"booking.created"}, f.events.actions())
	assert.Equal(t, []uuid.UUID{f.sitter.ID}, f.cache.invalidated)
}

func TestCreate_ScalesPriceWithDuration(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)

	b := f.create(at(10, 0), at(11, 30))

	assert.True(t, decimal.RequireFromString("45.00").Equal(b.TotalPrice))
}

func TestCreate_BoundaryScenario(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)
	f.confirmed(at(10, 0), at(11, 0))

	_, err := f.lc.Create.Execute(context.Background(), f.owner, f.input(at(10, 59), at(11, 30)))

	var conflict *domain.SchedulingConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, f.sitter.ID, conflict.SitterID)
	assert.Equal(t, at(10, 59), conflict.Start)

	b, err := f.lc.Create.Execute(context.Background(), f.owner, f.input(at(11, 0), at(11, 30)))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), b.Status)
}

func TestCreate_SoftHoldAllowsOverlappingRequests(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)

	f.create(at(10, 0), at(11, 0))
	f.create(at(10, 30), at(11, 30))

	list, err := f.store.ListBySitter(context.Background(), f.sitter.ID, nil)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCreate_FirmHoldBlocksOverlappingRequests(t *testing.T) {
	f := newFixture(t, domain.HoldFirm)

	f.create(at(10, 0), at(11, 0))
	_, err := f.lc.Create.Execute(context.Background(), f.owner, f.input(at(10, 30), at(11, 30)))

	var conflict *domain.SchedulingConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestCreate_IgnoresTerminalBookings(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)
	b := f.confirmed(at(10, 0), at(11, 0))
	f.mustMove(f.owner, b.ID, domain.StatusCancelled, "plans changed")

	f.create(at(10, 0), at(11, 0))
}

func TestCreate_ReferenceChecks(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)

	inactiveOffering := uuid.New()
	f.dir.AddOffering(models.ServiceOffering{
		ID: inactiveOffering, SitterID: f.sitter.ID,
		Price: decimal.NewFromInt(10), DurationInMinutes: 30,
	})
	foreignOffering := uuid.New()
	f.dir.AddOffering(models.ServiceOffering{
		ID: foreignOffering, SitterID: uuid.New(),
		Price: decimal.NewFromInt(10), DurationInMinutes: 30, Active: true,
	})
	retiredPet := uuid.New()
	f.dir.AddPet(models.Pet{ID: retiredPet, OwnerID: f.owner.ID})

	cases := []struct {
		name    string
		mutate  func(in *CreateBookingInput)
		wantErr any
	}{
		{"unknown pet", func(in *CreateBookingInput) { in.PetID = uuid.New() }, &domain.NotFoundError{}},
		{"inactive pet", func(in *CreateBookingInput) { in.PetID = retiredPet }, &domain.NotFoundError{}},
		{"unknown sitter", func(in *CreateBookingInput) { in.SitterID = uuid.New() }, &domain.NotFoundError{}},
		{"unknown offering", func(in *CreateBookingInput) { in.ServiceOfferingID = uuid.New() }, &domain.NotFoundError{}},
		{"inactive offering", func(in *CreateBookingInput) { in.ServiceOfferingID = inactiveOffering }, &domain.NotFoundError{}},
		{"offering of another sitter", func(in *CreateBookingInput) { in.ServiceOfferingID = foreignOffering }, &domain.ValidationError{}},
		{"missing pet id", func(in *CreateBookingInput) { in.PetID = uuid.Nil }, &domain.ValidationError{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := f.input(at(10, 0), at(11, 0))
			tc.mutate(&in)

			_, err := f.lc.Create.Execute(context.Background(), f.owner, in)
			require.Error(t, err)

			switch tc.wantErr.(type) {
			case *domain.NotFoundError:
				var nf *domain.NotFoundError
				assert.ErrorAs(t, err, &nf)
			case *domain.ValidationError:
				var ve *domain.ValidationError
				assert.ErrorAs(t, err, &ve)
			}
		})
	}
	assert.Empty(t, f.events.actions())
}

func TestCreate_IntervalValidation(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)

	cases := map[string]CreateBookingInput{
		"end before start": f.input(at(11, 0), at(10, 0)),
		"empty interval":   f.input(at(10, 0), at(10, 0)),
		"partial minute":   f.input(at(10, 0), at(10, 30).Add(15*time.Second)),
		"in the past":      f.input(testNow.Add(-time.Hour), testNow),
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.lc.Create.Execute(context.Background(), f.owner, in)

			var ve *domain.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestCreate_Permissions(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)

	_, err := f.lc.Create.Execute(context.Background(), f.stranger, f.input(at(10, 0), at(11, 0)))
	var denied *domain.PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, f.stranger.ID, denied.ActorID)

	b, err := f.lc.Create.Execute(context.Background(), f.admin, f.input(at(10, 0), at(11, 0)))
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, b.BookedByUserID)

	_, err = f.lc.Create.Execute(context.Background(), domain.SystemActor(), f.input(at(12, 0), at(13, 0)))
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}
