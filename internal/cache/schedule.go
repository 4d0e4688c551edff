// Package cache keeps read-through copies of sitter schedules in Redis.
// Entries are advisory: admission decisions always go to the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Interval is one busy slot of a sitter.
type Interval struct {
	BookingID uuid.UUID `json:"booking_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
}

// ScheduleCache stores one hash per sitter; each field is a queried window.
// Dropping the hash invalidates every window at once.
type ScheduleCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewScheduleCache(rdb *redis.Client, ttl time.Duration) *ScheduleCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ScheduleCache{rdb: rdb, ttl: ttl, prefix: "schedule"}
}

func (c *ScheduleCache) key(sitterID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", c.prefix, sitterID)
}

func windowField(from, to time.Time) string {
	return from.UTC().Format(time.RFC3339) + "|" + to.UTC().Format(time.RFC3339)
}

// Get returns the cached window, if any.
func (c *ScheduleCache) Get(ctx context.Context, sitterID uuid.UUID, from, to time.Time) ([]Interval, bool, error) {
	raw, err := c.rdb.HGet(ctx, c.key(sitterID), windowField(from, to)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var out []Interval
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false, fmt.Errorf("decode cached schedule: %w", err)
	}
	return out, true, nil
}

func (c *ScheduleCache) Put(ctx context.Context, sitterID uuid.UUID, from, to time.Time, intervals []Interval) error {
	if intervals == nil {
		intervals = []Interval{}
	}
	payload, err := json.Marshal(intervals)
	if err != nil {
		return err
	}

	key := c.key(sitterID)
	if err := c.rdb.HSet(ctx, key, windowField(from, to), string(payload)).Err(); err != nil {
		return err
	}
	return c.rdb.Expire(ctx, key, c.ttl).Err()
}

// Invalidate drops every cached window of the sitter.
func (c *ScheduleCache) Invalidate(ctx context.Context, sitterID uuid.UUID) error {
	return c.rdb.Del(ctx, c.key(sitterID)).Err()
}
