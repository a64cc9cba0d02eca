// Package quota enforces the daily posting limit.
package quota

import (
	"context"
	"time"

	"newsbot/internal/storage"
)

const dateKeyLayout = "2006-01-02"

// Tracker counts posts per calendar day in a fixed timezone and
// enforces an upper bound. Day rollover is implicit: the first consume
// on a new date key starts from zero because no row exists yet.
type Tracker struct {
	store storage.Store
	loc   *time.Location
	limit int
}

// New creates a Tracker. limit must be positive (validated at config load).
func New(store storage.Store, loc *time.Location, limit int) *Tracker {
	return &Tracker{store: store, loc: loc, limit: limit}
}

// DateKey returns the calendar-day key for now in the tracker's timezone.
func (t *Tracker) DateKey(now time.Time) string {
	return now.In(t.loc).Format(dateKeyLayout)
}

// TryConsume takes one slot from today's quota. Returns true if a slot
// was consumed, false if the day's limit is already reached (no state
// is mutated in that case).
func (t *Tracker) TryConsume(ctx context.Context, now time.Time) (bool, error) {
	return t.store.TryIncrementDailyCounter(ctx, t.DateKey(now), t.limit)
}

// Limit returns the configured daily limit.
func (t *Tracker) Limit() int {
	return t.limit
}

// Used returns how many slots have been consumed today.
func (t *Tracker) Used(ctx context.Context, now time.Time) (int, error) {
	return t.store.DailyCount(ctx, t.DateKey(now))
}
