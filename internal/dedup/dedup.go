// Package dedup computes content fingerprints and decides item novelty.
package dedup

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"newsbot/internal/model"
	"newsbot/internal/storage"
)

// Fingerprint returns a stable identifier for an item's identity,
// derived from its normalized title and URL. Two items with the same
// fingerprint are the same post regardless of which source produced
// them. Normalization (case folding, whitespace collapsing) must never
// change: fingerprints are compared against historical records.
func Fingerprint(title, url string) string {
	h := sha256.Sum256([]byte(normalize(title) + "\n" + normalize(url)))
	return fmt.Sprintf("%x", h)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Detector decides whether an item has been published before.
type Detector struct {
	store storage.Store
}

// New creates a Detector over the given store.
func New(store storage.Store) *Detector {
	return &Detector{store: store}
}

// IsNewAndMark atomically records the item's fingerprint if it was
// never seen. Returns true for a new item (now marked), false for a
// duplicate (no write performed).
func (d *Detector) IsNewAndMark(ctx context.Context, item model.CandidateItem, now time.Time) (bool, error) {
	return d.store.CheckAndMarkSeen(ctx, Fingerprint(item.Title, item.URL), now)
}

// Release removes the item's fingerprint so it can be retried on a
// later cycle. Used when publication failed transiently after the item
// was already marked.
func (d *Detector) Release(ctx context.Context, item model.CandidateItem) error {
	return d.store.UnmarkSeen(ctx, Fingerprint(item.Title, item.URL))
}
