package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iacastillo90/petcare-booking/internal/audit"
	"github.com/iacastillo90/petcare-booking/internal/cache"
	"github.com/iacastillo90/petcare-booking/internal/clock"
	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/infra/access"
	"github.com/iacastillo90/petcare-booking/internal/infra/memory"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

var (
	testNow = time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC)
	day     = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordedEvents) Dispatch(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordedEvents) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Action
	}
	return out
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID][]cache.Interval
	invalidated []uuid.UUID
	gets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[uuid.UUID][]cache.Interval)}
}

func (c *fakeCache) Get(_ context.Context, sitterID uuid.UUID, _, _ time.Time) ([]cache.Interval, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[sitterID]
	return v, ok, nil
}

func (c *fakeCache) Put(_ context.Context, sitterID uuid.UUID, _, _ time.Time, intervals []cache.Interval) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sitterID] = intervals
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, sitterID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sitterID)
	c.invalidated = append(c.invalidated, sitterID)
	return nil
}

type fixture struct {
	t *testing.T

	store  *memory.Store
	dir    *memory.Directory
	clock  *clock.Manual
	events *recordedEvents
	cache  *fakeCache
	lc     *Lifecycle

	owner    domain.Actor
	sitter   domain.Actor
	admin    domain.Actor
	stranger domain.Actor

	pet      uuid.UUID
	offering uuid.UUID
}

func newFixture(t *testing.T, policy domain.HoldPolicy) *fixture {
	t.Helper()

	f := &fixture{
		t:        t,
		store:    memory.NewStore(),
		dir:      memory.NewDirectory(),
		clock:    clock.NewManual(testNow),
		events:   &recordedEvents{},
		cache:    newFakeCache(),
		owner:    domain.Actor{ID: uuid.New(), Role: models.RoleOwner},
		sitter:   domain.Actor{ID: uuid.New(), Role: models.RoleSitter},
		admin:    domain.Actor{ID: uuid.New(), Role: models.RoleAdmin},
		stranger: domain.Actor{ID: uuid.New(), Role: models.RoleOwner},
		pet:      uuid.New(),
		offering: uuid.New(),
	}

	for _, a := range []domain.Actor{f.owner, f.sitter, f.admin, f.stranger} {
		f.dir.AddUser(models.User{ID: a.ID, Role: a.Role, Active: true})
	}
	f.dir.AddPet(models.Pet{ID: f.pet, OwnerID: f.owner.ID, Name: "Rex", Active: true})
	f.dir.AddOffering(models.ServiceOffering{
		ID:                f.offering,
		SitterID:          f.sitter.ID,
		Name:              "Dog walk",
		Price:             decimal.RequireFromString("30.00"),
		DurationInMinutes: 60,
		Active:            true,
	})

	f.lc = NewLifecycle(Deps{
		Store:         f.store,
		Directory:     f.dir,
		Permissions:   access.NewRolePermissions(f.dir),
		Checker:       domain.NewAvailabilityChecker(policy),
		Clock:         f.clock,
		FeePercentage: decimal.RequireFromString("0.15"),
		Events:        f.events,
		Cache:         f.cache,
	})
	return f
}

func (f *fixture) input(start, end time.Time) CreateBookingInput {
	return CreateBookingInput{
		PetID:             f.pet,
		SitterID:          f.sitter.ID,
		ServiceOfferingID: f.offering,
		StartTime:         start,
		EndTime:           &end,
	}
}

func (f *fixture) create(start, end time.Time) *models.Booking {
	f.t.Helper()
	b, err := f.lc.Create.Execute(context.Background(), f.owner, f.input(start, end))
	require.NoError(f.t, err)
	return b
}

func (f *fixture) move(actor domain.Actor, id uuid.UUID, target domain.Status, reason string) (*models.Booking, error) {
	return f.lc.Transition.Execute(context.Background(), actor, TransitionBookingInput{
		BookingID: id,
		Target:    target,
		Reason:    reason,
	})
}

func (f *fixture) mustMove(actor domain.Actor, id uuid.UUID, target domain.Status, reason string) *models.Booking {
	f.t.Helper()
	b, err := f.move(actor, id, target, reason)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) confirmed(start, end time.Time) *models.Booking {
	f.t.Helper()
	b := f.create(start, end)
	return f.mustMove(f.sitter, b.ID, domain.StatusConfirmed, "")
}
