// Package pipeline drives candidate items from the configured sources
// through dedup, night-mode, quota, formatting, and publication.
package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"newsbot/internal/config"
	"newsbot/internal/dedup"
	"newsbot/internal/fetcher"
	"newsbot/internal/filter"
	"newsbot/internal/format"
	"newsbot/internal/model"
	"newsbot/internal/nightmode"
	"newsbot/internal/publisher"
	"newsbot/internal/quota"
	"newsbot/internal/storage"
)

const fetchTimeout = 30 * time.Second

// Publisher is the interface for delivering a formatted message.
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// Pipeline periodically fetches all sources and publishes the items
// that survive gating. It is the only component sequencing calls; the
// dedup/quota/publish path for items runs strictly serially.
type Pipeline struct {
	sources  []model.Source
	fetchers map[model.SourceType]fetcher.Fetcher
	detector *dedup.Detector
	quota    *quota.Tracker
	night    *nightmode.Gate
	pub      Publisher
	log      *slog.Logger

	tick             time.Duration
	maxPerRun        int
	postDelay        time.Duration
	markRejectedSeen bool
}

// New creates a Pipeline wired to the default HTTP client.
func New(cfg *config.Config, sources []model.Source, store storage.Store, pub Publisher, log *slog.Logger) *Pipeline {
	fetchers := map[model.SourceType]fetcher.Fetcher{
		model.TypeFeed:       fetcher.NewRSS(http.DefaultClient),
		model.TypeAggregator: fetcher.NewHackerNews(http.DefaultClient),
	}
	return NewWithFetchers(cfg, sources, store, pub, fetchers, log)
}

// NewWithFetchers creates a Pipeline with custom fetchers (useful for testing).
func NewWithFetchers(cfg *config.Config, sources []model.Source, store storage.Store, pub Publisher, fetchers map[model.SourceType]fetcher.Fetcher, log *slog.Logger) *Pipeline {
	return &Pipeline{
		sources:          sources,
		fetchers:         fetchers,
		detector:         dedup.New(store),
		quota:            quota.New(store, cfg.Location, cfg.DailyLimit),
		night:            nightmode.New(cfg.Location, cfg.NightStartHour, cfg.NightEndHour),
		pub:              pub,
		log:              log,
		tick:             cfg.CheckInterval,
		maxPerRun:        cfg.MaxPostsPerRun,
		postDelay:        cfg.PostDelay,
		markRejectedSeen: cfg.MarkRejectedSeen,
	}
}

// SetTickInterval overrides the configured check interval.
func (p *Pipeline) SetTickInterval(d time.Duration) {
	p.tick = d
}

// Run starts the polling loop, blocking until ctx is cancelled. The
// first tick fires immediately. A tick in flight when ctx is cancelled
// finishes its current item's commit; no new tick is started.
func (p *Pipeline) Run(ctx context.Context) {
	p.RunTick(ctx)

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunTick(ctx)
		}
	}
}

// RunTick executes one full fetch-gate-publish cycle.
func (p *Pipeline) RunTick(ctx context.Context) {
	now := time.Now()

	if p.night.IsQuietNow(now) {
		p.log.Info("night mode active, skipping tick")
		return
	}

	used, err := p.quota.Used(ctx, now)
	if err != nil {
		p.log.Error("read daily counter", "error", err)
		return
	}
	if used >= p.quota.Limit() {
		p.log.Info("daily limit reached, skipping tick", "posted_today", used)
		return
	}

	batches := p.fetchAll(ctx)

	posted := 0
	for i, src := range p.sources {
		for _, item := range batches[i] {
			if ctx.Err() != nil {
				return
			}
			if posted >= p.maxPerRun {
				p.log.Info("per-run post cap reached", "posted", posted)
				return
			}
			if !filter.Match(item, src) {
				p.log.Debug("item filtered", "source", src.Name, "title", item.Title)
				continue
			}

			status := p.processItem(ctx, item, src)
			switch status {
			case statusPublished:
				posted++
				p.sleep(ctx, p.postDelay)
			case statusQuiet, statusExhausted, statusStoreError:
				// These end the whole remaining cycle, not just the item.
				return
			case statusDuplicate, statusDropped, statusFailed:
			}
		}
	}
	if posted > 0 {
		p.log.Info("tick finished", "published", posted)
	}
}

type itemStatus int

const (
	statusPublished itemStatus = iota
	statusDuplicate
	statusQuiet
	statusExhausted
	statusFailed
	statusDropped
	statusStoreError
)

// processItem runs one candidate through dedup, night gate, quota,
// formatting, and publication. The fingerprint is marked before the
// publish attempt so two overlapping runs cannot both publish; every
// non-published outcome except a permanent rejection releases it again.
func (p *Pipeline) processItem(ctx context.Context, item model.CandidateItem, src model.Source) itemStatus {
	now := time.Now()

	isNew, err := p.detector.IsNewAndMark(ctx, item, now)
	if err != nil {
		p.log.Error("dedup check", "source", src.Name, "url", item.URL, "error", err)
		return statusStoreError
	}
	if !isNew {
		return statusDuplicate
	}

	if p.night.IsQuietNow(now) {
		// The window opened mid-tick. Leave the item eligible for a
		// future cycle.
		if err := p.release(ctx, item); err != nil {
			return statusStoreError
		}
		p.log.Info("night mode active, stopping publications")
		return statusQuiet
	}

	consumed, err := p.quota.TryConsume(ctx, now)
	if err != nil {
		p.log.Error("consume quota", "source", src.Name, "error", err)
		return statusStoreError
	}
	if !consumed {
		if err := p.release(ctx, item); err != nil {
			return statusStoreError
		}
		p.log.Info("daily limit reached, stopping publications")
		return statusExhausted
	}

	text := format.Message(item, src.Tag)
	if err := p.pub.Publish(ctx, text); err != nil {
		if publisher.IsPermanent(err) {
			p.log.Error("message rejected", "source", src.Name, "url", item.URL, "error", err)
			if !p.markRejectedSeen {
				if rerr := p.release(ctx, item); rerr != nil {
					return statusStoreError
				}
			}
			return statusDropped
		}
		p.log.Warn("publish failed, will retry next tick", "source", src.Name, "url", item.URL, "error", err)
		if rerr := p.release(ctx, item); rerr != nil {
			return statusStoreError
		}
		return statusFailed
	}

	p.log.Info("published", "source", src.Name, "title", item.Title, "url", item.URL)
	return statusPublished
}

// release unmarks a fingerprint. It runs detached from ctx cancellation
// so a shutdown mid-item still leaves consistent state behind.
func (p *Pipeline) release(ctx context.Context, item model.CandidateItem) error {
	if err := p.detector.Release(context.WithoutCancel(ctx), item); err != nil {
		p.log.Error("release fingerprint", "url", item.URL, "error", err)
		return err
	}
	return nil
}

// fetchAll pulls every source in parallel. Fetching has no effect on
// shared state, so failures are logged per source and the others proceed.
func (p *Pipeline) fetchAll(ctx context.Context) [][]model.CandidateItem {
	batches := make([][]model.CandidateItem, len(p.sources))

	var g errgroup.Group
	for i, src := range p.sources {
		i, src := i, src
		g.Go(func() error {
			f, ok := p.fetchers[src.Type]
			if !ok {
				p.log.Error("no fetcher for source type", "source", src.Name, "type", src.Type)
				return nil
			}
			fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
			defer cancel()

			items, err := f.Fetch(fctx, src)
			if err != nil {
				p.log.Error("fetch source", "source", src.Name, "url", src.URL, "error", err)
				return nil
			}
			p.log.Debug("fetched source", "source", src.Name, "items", len(items))
			batches[i] = items
			return nil
		})
	}
	_ = g.Wait()

	return batches
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
