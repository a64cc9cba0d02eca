// Package model defines the domain types used across the application.
package model

import "time"

// SourceType identifies how a source's items are fetched.
type SourceType string

// Supported source types.
const (
	TypeFeed       SourceType = "feed"
	TypeAggregator SourceType = "aggregator"
)

// Source is a configured origin of candidate items.
// Immutable after configuration load.
type Source struct {
	Name      string
	URL       string
	Type      SourceType
	Tag       string
	Include   []string
	Exclude   []string
	ExcludeRe []string
}

// CandidateItem is a single item produced by a source fetcher.
// Transient; never persisted directly.
type CandidateItem struct {
	SourceName   string
	Title        string
	URL          string
	Summary      string
	DiscoveredAt time.Time
}

// SeenRecord tracks a published item's fingerprint.
// At most one record per fingerprint, ever.
type SeenRecord struct {
	Fingerprint string
	PostedAt    time.Time
}

// DailyCounter holds the number of posts made on one calendar day
// in the configured timezone.
type DailyCounter struct {
	DateKey string
	Count   int
}
