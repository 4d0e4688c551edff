package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

var _ booking.Directory = (*Directory)(nil)

// Directory is a seedable lookup of users, pets and offerings.
type Directory struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]models.User
	pets      map[uuid.UUID]models.Pet
	offerings map[uuid.UUID]models.ServiceOffering
}

func NewDirectory() *Directory {
	return &Directory{
		users:     make(map[uuid.UUID]models.User),
		pets:      make(map[uuid.UUID]models.Pet),
		offerings: make(map[uuid.UUID]models.ServiceOffering),
	}
}

func (d *Directory) AddUser(u models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *Directory) AddPet(p models.Pet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pets[p.ID] = p
}

func (d *Directory) AddOffering(o models.ServiceOffering) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offerings[o.ID] = o
}

func (d *Directory) GetOffering(_ context.Context, id uuid.UUID) (*booking.Offering, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	o, ok := d.offerings[id]
	if !ok {
		return nil, &booking.NotFoundError{Entity: "service_offering", ID: id}
	}
	return &booking.Offering{
		ID:                o.ID,
		SitterID:          o.SitterID,
		Price:             o.Price,
		DurationInMinutes: o.DurationInMinutes,
		Active:            o.Active,
	}, nil
}

func (d *Directory) Pet(_ context.Context, id uuid.UUID) (booking.Presence, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.pets[id]
	return booking.Presence{Exists: ok, Active: ok && p.Active}, nil
}

func (d *Directory) User(_ context.Context, id uuid.UUID) (booking.Presence, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	return booking.Presence{Exists: ok, Active: ok && u.Active}, nil
}

// PetOwner implements access.Roster.
func (d *Directory) PetOwner(_ context.Context, petID uuid.UUID) (uuid.UUID, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.pets[petID]
	return p.OwnerID, ok, nil
}
