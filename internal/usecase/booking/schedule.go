package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iacastillo90/petcare-booking/internal/cache"
	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
)

// MaxScheduleWindow bounds a single schedule query.
const MaxScheduleWindow = 31 * 24 * time.Hour

type GetSitterSchedule struct {
	deps *Deps
}

func NewGetSitterSchedule(deps *Deps) *GetSitterSchedule {
	return &GetSitterSchedule{deps: deps}
}

// Execute returns the sitter's CONFIRMED and IN_PROGRESS intervals that
// intersect [from, to). The answer may be stale by up to the cache TTL and
// must not be used to admit bookings.
func (uc *GetSitterSchedule) Execute(
	ctx context.Context,
	sitterID uuid.UUID,
	from time.Time,
	to time.Time,
) ([]cache.Interval, error) {

	d := uc.deps
	from, to = from.UTC(), to.UTC()

	if !to.After(from) {
		return nil, &domain.ValidationError{Field: "to", Reason: "must be after from"}
	}
	if to.Sub(from) > MaxScheduleWindow {
		return nil, &domain.ValidationError{Field: "to", Reason: "window longer than 31 days"}
	}

	sitter, err := d.Directory.User(ctx, sitterID)
	if err != nil {
		return nil, err
	}
	if !sitter.Exists {
		return nil, &domain.NotFoundError{Entity: "sitter", ID: sitterID}
	}

	if d.Cache != nil {
		cached, ok, err := d.Cache.Get(ctx, sitterID, from, to)
		if err != nil {
			d.Log.Warn("schedule cache read failed", zap.Stringer("sitter_id", sitterID), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	rows, err := d.Store.ListOverlapping(ctx, domain.OverlapQuery{
		SitterID: sitterID,
		Start:    from,
		End:      to,
		Statuses: domain.ScheduleBlocking,
	})
	if err != nil {
		return nil, err
	}

	intervals := make([]cache.Interval, 0, len(rows))
	for _, b := range rows {
		intervals = append(intervals, cache.Interval{
			BookingID: b.ID,
			Start:     b.StartTime,
			End:       b.EndTime,
			Status:    b.Status,
		})
	}

	if d.Cache != nil {
		if err := d.Cache.Put(ctx, sitterID, from, to, intervals); err != nil {
			d.Log.Warn("schedule cache write failed", zap.Stringer("sitter_id", sitterID), zap.Error(err))
		}
	}
	return intervals, nil
}
