package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HoldPolicy decides whether PENDING bookings block new requests.
type HoldPolicy string

const (
	// HoldSoft: PENDING bookings reserve nothing until confirmed.
	HoldSoft HoldPolicy = "soft"
	// HoldFirm: PENDING bookings also block creation of overlapping requests.
	HoldFirm HoldPolicy = "firm"
)

func ParseHoldPolicy(raw string) (HoldPolicy, bool) {
	switch HoldPolicy(raw) {
	case HoldSoft, "":
		return HoldSoft, true
	case HoldFirm:
		return HoldFirm, true
	}
	return "", false
}

// OverlapQuery selects bookings of one sitter in Statuses whose interval
// intersects [Start, End).
type OverlapQuery struct {
	SitterID  uuid.UUID
	Start     time.Time
	End       time.Time
	Statuses  []Status
	ExcludeID uuid.UUID
}

// ConflictQuerier is the store primitive the checker is built on.
type ConflictQuerier interface {
	CountOverlapping(ctx context.Context, q OverlapQuery) (int64, error)
}

// Overlaps uses half-open intervals: touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

type AvailabilityChecker struct {
	policy HoldPolicy
}

func NewAvailabilityChecker(policy HoldPolicy) *AvailabilityChecker {
	if policy == "" {
		policy = HoldSoft
	}
	return &AvailabilityChecker{policy: policy}
}

func (c *AvailabilityChecker) Policy() HoldPolicy {
	return c.policy
}

// HasConflict reports whether a CONFIRMED or IN_PROGRESS booking of sitterID
// overlaps [start, end). excluding may be uuid.Nil.
func (c *AvailabilityChecker) HasConflict(
	ctx context.Context,
	q ConflictQuerier,
	sitterID uuid.UUID,
	start time.Time,
	end time.Time,
	excluding uuid.UUID,
) (bool, error) {
	return c.count(ctx, q, OverlapQuery{
		SitterID:  sitterID,
		Start:     start,
		End:       end,
		Statuses:  ScheduleBlocking,
		ExcludeID: excluding,
	})
}

// HasCreateConflict applies the hold policy on top of HasConflict.
func (c *AvailabilityChecker) HasCreateConflict(
	ctx context.Context,
	q ConflictQuerier,
	sitterID uuid.UUID,
	start time.Time,
	end time.Time,
) (bool, error) {
	statuses := ScheduleBlocking
	if c.policy == HoldFirm {
		statuses = append([]Status{StatusPending}, ScheduleBlocking...)
	}
	return c.count(ctx, q, OverlapQuery{
		SitterID: sitterID,
		Start:    start,
		End:      end,
		Statuses: statuses,
	})
}

func (c *AvailabilityChecker) count(ctx context.Context, q ConflictQuerier, oq OverlapQuery) (bool, error) {
	if !oq.End.After(oq.Start) {
		return false, &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	n, err := q.CountOverlapping(ctx, oq)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
