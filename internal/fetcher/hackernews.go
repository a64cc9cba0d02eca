package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"newsbot/internal/model"
)

// hnStoryLimit caps how many top stories are pulled per fetch.
const hnStoryLimit = 30

// HackerNews fetches top stories from the Hacker News Firebase API.
// The source URL is the API base (https://hacker-news.firebaseio.com).
type HackerNews struct {
	client HTTPClient
	limit  int
}

// NewHackerNews creates an aggregator fetcher with the given HTTP client.
func NewHackerNews(client HTTPClient) *HackerNews {
	return &HackerNews{client: client, limit: hnStoryLimit}
}

type hnItem struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
	Time  int64  `json:"time"`
}

// Fetch returns the current top stories as candidate items.
func (f *HackerNews) Fetch(ctx context.Context, src model.Source) ([]model.CandidateItem, error) {
	var ids []int64
	if err := f.getJSON(ctx, src.URL+"/v0/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("top stories: %w", err)
	}
	if len(ids) > f.limit {
		ids = ids[:f.limit]
	}

	now := time.Now().UTC()
	var items []model.CandidateItem
	for _, id := range ids {
		if ctx.Err() != nil {
			return items, ctx.Err()
		}
		var story hnItem
		if err := f.getJSON(ctx, fmt.Sprintf("%s/v0/item/%d.json", src.URL, id), &story); err != nil {
			return items, fmt.Errorf("item %d: %w", id, err)
		}
		if story.Type != "story" || story.Title == "" {
			continue
		}
		link := story.URL
		if link == "" {
			// Ask/Show HN posts have no external URL.
			link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
		}
		items = append(items, model.CandidateItem{
			SourceName:   src.Name,
			Title:        CleanText(story.Title),
			URL:          link,
			DiscoveredAt: now,
		})
	}
	return items, nil
}

func (f *HackerNews) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
