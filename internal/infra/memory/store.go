// Package memory holds map-backed implementations of the booking ports,
// used by tests and by STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

var _ booking.Store = (*Store)(nil)

// Store keeps committed rows in maps. Units for the same sitter run one at a
// time; their writes are staged and published only when the unit succeeds.
type Store struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]models.Booking
	fees     map[uuid.UUID]models.PlatformFee
	nextFee  uint

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}
}

func NewStore() *Store {
	return &Store{
		bookings: make(map[uuid.UUID]models.Booking),
		fees:     make(map[uuid.UUID]models.PlatformFee),
		locks:    make(map[uuid.UUID]chan struct{}),
	}
}

// --------------------------------------------------
// Unit of work
// --------------------------------------------------

func (s *Store) sitterLock(sitterID uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[sitterID]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[sitterID] = l
	}
	return l
}

func (s *Store) Atomically(ctx context.Context, sitterID uuid.UUID, fn func(tx booking.Tx) error) error {
	lock := s.sitterLock(sitterID)

	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-lock }()

	tx := &memTx{
		store:    s,
		bookings: make(map[uuid.UUID]models.Booking),
		fees:     make(map[uuid.UUID]models.PlatformFee),
	}
	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

// commit publishes staged rows after re-checking the constraints the
// database would enforce.
func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, b := range tx.bookings {
		if !booking.Status(b.Status).Blocking() {
			continue
		}
		for otherID, other := range s.bookings {
			if staged, ok := tx.bookings[otherID]; ok {
				other = staged
			}
			if otherID == id || other.SitterID != b.SitterID || !booking.Status(other.Status).Blocking() {
				continue
			}
			if booking.Overlaps(b.StartTime, b.EndTime, other.StartTime, other.EndTime) {
				return &booking.SchedulingConflictError{SitterID: b.SitterID, Start: b.StartTime, End: b.EndTime}
			}
		}
	}
	for bookingID := range tx.fees {
		if _, ok := s.fees[bookingID]; ok {
			return &booking.ValidationError{Field: "platform_fee", Reason: "already recorded for booking " + bookingID.String()}
		}
	}

	for id, b := range tx.bookings {
		s.bookings[id] = b
	}
	for bookingID, f := range tx.fees {
		s.nextFee++
		f.ID = s.nextFee
		s.fees[bookingID] = f
	}
	return nil
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, &booking.NotFoundError{Entity: "booking", ID: id}
	}
	return &b, nil
}

func (s *Store) GetPlatformFee(_ context.Context, bookingID uuid.UUID) (*models.PlatformFee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.fees[bookingID]
	if !ok {
		return nil, &booking.NotFoundError{Entity: "platform_fee", ID: bookingID}
	}
	return &f, nil
}

func (s *Store) ListBySitter(_ context.Context, sitterID uuid.UUID, status *booking.Status) ([]models.Booking, error) {
	return s.filter(func(b models.Booking) bool {
		return b.SitterID == sitterID && matchStatus(b, status)
	}), nil
}

func (s *Store) ListByCreator(_ context.Context, creatorID uuid.UUID, status *booking.Status) ([]models.Booking, error) {
	return s.filter(func(b models.Booking) bool {
		return b.BookedByUserID == creatorID && matchStatus(b, status)
	}), nil
}

func (s *Store) ListOverlapping(_ context.Context, q booking.OverlapQuery) ([]models.Booking, error) {
	return s.filter(func(b models.Booking) bool {
		return overlapMatch(b, q)
	}), nil
}

func (s *Store) ListPendingStartedBefore(_ context.Context, before time.Time, limit int) ([]models.Booking, error) {
	out := s.filter(func(b models.Booking) bool {
		return booking.Status(b.Status) == booking.StatusPending && b.StartTime.Before(before)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) filter(keep func(models.Booking) bool) []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out
}

func sortByStart(list []models.Booking) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartTime.Equal(list[j].StartTime) {
			return list[i].ID.String() < list[j].ID.String()
		}
		return list[i].StartTime.Before(list[j].StartTime)
	})
}

func matchStatus(b models.Booking, status *booking.Status) bool {
	return status == nil || booking.Status(b.Status) == *status
}

func overlapMatch(b models.Booking, q booking.OverlapQuery) bool {
	if b.SitterID != q.SitterID || b.ID == q.ExcludeID {
		return false
	}
	inStatus := false
	for _, st := range q.Statuses {
		if booking.Status(b.Status) == st {
			inStatus = true
			break
		}
	}
	return inStatus && booking.Overlaps(b.StartTime, b.EndTime, q.Start, q.End)
}

// --------------------------------------------------
// Tx
// --------------------------------------------------

type memTx struct {
	store    *Store
	bookings map[uuid.UUID]models.Booking
	fees     map[uuid.UUID]models.PlatformFee
}

// view returns the committed rows overlaid with this unit's staged rows.
func (t *memTx) view() map[uuid.UUID]models.Booking {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	out := make(map[uuid.UUID]models.Booking, len(t.store.bookings)+len(t.bookings))
	for id, b := range t.store.bookings {
		out[id] = b
	}
	for id, b := range t.bookings {
		out[id] = b
	}
	return out
}

func (t *memTx) CountOverlapping(ctx context.Context, q booking.OverlapQuery) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	for _, b := range t.view() {
		if overlapMatch(b, q) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) Create(ctx context.Context, b *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if _, exists := t.view()[b.ID]; exists {
		return &booking.ValidationError{Field: "id", Reason: "duplicate booking id"}
	}
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, ok := t.view()[id]
	if !ok {
		return nil, &booking.NotFoundError{Entity: "booking", ID: id}
	}
	return &b, nil
}

func (t *memTx) Update(ctx context.Context, b *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.view()[b.ID]; !ok {
		return &booking.NotFoundError{Entity: "booking", ID: b.ID}
	}
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) CreatePlatformFee(ctx context.Context, fee *models.PlatformFee) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.fees[fee.BookingID]; ok {
		return &booking.ValidationError{Field: "platform_fee", Reason: "already recorded for booking " + fee.BookingID.String()}
	}
	t.fees[fee.BookingID] = *fee
	return nil
}
