// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"time"
)

// Store is the narrow interface the gating pipeline persists through.
// Both mutating operations are atomic: concurrent callers never both
// observe "absent" or both observe "below limit".
type Store interface {
	// CheckAndMarkSeen records the fingerprint if it has never been
	// seen. Returns true if the record was inserted (the item is new),
	// false if the fingerprint already existed.
	CheckAndMarkSeen(ctx context.Context, fingerprint string, postedAt time.Time) (bool, error)

	// UnmarkSeen removes a fingerprint so the item becomes eligible
	// again. Used when a pre-marked item fails publication transiently.
	UnmarkSeen(ctx context.Context, fingerprint string) error

	// TryIncrementDailyCounter increments the counter for dateKey if it
	// is below limit. Returns true if a slot was consumed.
	TryIncrementDailyCounter(ctx context.Context, dateKey string, limit int) (bool, error)

	// DailyCount returns the counter for dateKey; 0 if no row exists.
	DailyCount(ctx context.Context, dateKey string) (int, error)

	Close() error
}
