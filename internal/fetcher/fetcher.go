// Package fetcher downloads candidate items from configured sources.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"newsbot/internal/model"
)

const userAgent = "newsbot/1.0 (+https://example.com)"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher produces candidate items for a source. Implementations must
// be safe to call repeatedly; returning the same items across calls is
// expected and handled downstream by duplicate detection.
type Fetcher interface {
	Fetch(ctx context.Context, src model.Source) ([]model.CandidateItem, error)
}

// ForType returns the fetcher implementation for a source type.
func ForType(t model.SourceType, client HTTPClient) (Fetcher, error) {
	switch t {
	case model.TypeFeed:
		return NewRSS(client), nil
	case model.TypeAggregator:
		return NewHackerNews(client), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", t)
	}
}

// RSS fetches and parses RSS/Atom feeds.
type RSS struct {
	client HTTPClient
}

// NewRSS creates an RSS fetcher with the given HTTP client.
func NewRSS(client HTTPClient) *RSS {
	return &RSS{client: client}
}

// Fetch downloads the feed at src.URL and converts its entries to
// candidate items. Entries without a link are skipped.
func (f *RSS) Fetch(ctx context.Context, src model.Source) ([]model.CandidateItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	now := time.Now().UTC()
	var items []model.CandidateItem
	for _, entry := range feed.Items {
		link := entry.Link
		if link == "" {
			link = entry.GUID
		}
		if link == "" {
			continue
		}
		items = append(items, model.CandidateItem{
			SourceName:   src.Name,
			Title:        CleanText(entry.Title),
			URL:          link,
			Summary:      CleanText(entry.Description),
			DiscoveredAt: now,
		})
	}
	return items, nil
}
