package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

var (
	_ booking.Store = (*BookingGormStore)(nil)
	_ booking.Tx    = (*bookingGormTx)(nil)
)

type BookingGormStore struct {
	db *gorm.DB
}

func NewBookingGormStore(db *gorm.DB) *BookingGormStore {
	return &BookingGormStore{db: db}
}

// --------------------------------------------------
// Unit of work
// --------------------------------------------------

// Atomically runs fn in one transaction holding the sitter's advisory lock.
// A unit that loses a serialization race is replayed once; a second loss is
// reported as a scheduling conflict.
func (s *BookingGormStore) Atomically(
	ctx context.Context,
	sitterID uuid.UUID,
	fn func(tx booking.Tx) error,
) error {

	err := s.runUnit(ctx, sitterID, fn)
	if isRetryable(err) {
		err = s.runUnit(ctx, sitterID, fn)
	}

	switch {
	case err == nil:
		return nil
	case isRetryable(err), isExclusionConflict(err):
		return &booking.SchedulingConflictError{SitterID: sitterID}
	case isUniqueViolation(err):
		return &booking.ValidationError{Field: "platform_fee", Reason: "already recorded", Err: err}
	}
	return err
}

func (s *BookingGormStore) runUnit(
	ctx context.Context,
	sitterID uuid.UUID,
	fn func(tx booking.Tx) error,
) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"SELECT pg_advisory_xact_lock(hashtextextended(?, 0))",
			sitterID.String(),
		).Error; err != nil {
			return fmt.Errorf("lock sitter schedule: %w", err)
		}
		return fn(&bookingGormTx{db: tx})
	})
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (s *BookingGormStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &b, nil
}

func (s *BookingGormStore) GetPlatformFee(ctx context.Context, bookingID uuid.UUID) (*models.PlatformFee, error) {
	var fee models.PlatformFee
	if err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&fee).Error; err != nil {
		return nil, notFound(err, "platform_fee", bookingID)
	}
	return &fee, nil
}

func (s *BookingGormStore) ListBySitter(
	ctx context.Context,
	sitterID uuid.UUID,
	status *booking.Status,
) ([]models.Booking, error) {
	return s.list(ctx, "sitter_id = ?", sitterID, status)
}

func (s *BookingGormStore) ListByCreator(
	ctx context.Context,
	creatorID uuid.UUID,
	status *booking.Status,
) ([]models.Booking, error) {
	return s.list(ctx, "booked_by_user_id = ?", creatorID, status)
}

func (s *BookingGormStore) list(
	ctx context.Context,
	where string,
	id uuid.UUID,
	status *booking.Status,
) ([]models.Booking, error) {

	q := s.db.WithContext(ctx).Where(where, id)
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}

	var list []models.Booking
	if err := q.Order("start_time ASC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *BookingGormStore) ListOverlapping(ctx context.Context, q booking.OverlapQuery) ([]models.Booking, error) {
	var list []models.Booking
	if err := overlapScope(s.db.WithContext(ctx), q).
		Order("start_time ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *BookingGormStore) ListPendingStartedBefore(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]models.Booking, error) {

	q := s.db.WithContext(ctx).
		Where("status = ? AND start_time < ?", string(booking.StatusPending), before).
		Order("start_time ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var list []models.Booking
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// --------------------------------------------------
// Tx
// --------------------------------------------------

type bookingGormTx struct {
	db *gorm.DB
}

func (t *bookingGormTx) CountOverlapping(ctx context.Context, q booking.OverlapQuery) (int64, error) {
	var count int64
	if err := overlapScope(t.db.WithContext(ctx), q).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (t *bookingGormTx) Create(ctx context.Context, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return t.db.WithContext(ctx).Create(b).Error
}

func (t *bookingGormTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &b, nil
}

func (t *bookingGormTx) Update(ctx context.Context, b *models.Booking) error {
	return t.db.WithContext(ctx).Save(b).Error
}

func (t *bookingGormTx) CreatePlatformFee(ctx context.Context, fee *models.PlatformFee) error {
	return t.db.WithContext(ctx).Create(fee).Error
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func overlapScope(db *gorm.DB, q booking.OverlapQuery) *gorm.DB {
	statuses := make([]string, len(q.Statuses))
	for i, st := range q.Statuses {
		statuses[i] = string(st)
	}

	scope := db.Model(&models.Booking{}).Where(
		"sitter_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
		q.SitterID, statuses, q.End, q.Start,
	)
	if q.ExcludeID != uuid.Nil {
		scope = scope.Where("id <> ?", q.ExcludeID)
	}
	return scope
}

func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &booking.NotFoundError{Entity: entity, ID: id}
	}
	return err
}
