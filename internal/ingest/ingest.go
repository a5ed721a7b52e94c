// Package ingest supplies the externally sourced event collection: it
// fetches the external feed from the authority, normalizes it, and serves it
// from a TTL cache so browsing does not hit the feed on every render.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"eventhound/internal/authority"
	"eventhound/internal/models"
	"eventhound/internal/normalize"
)

const (
	collection = "externalEvents"
	cacheKey   = "externalEvents"

	// DefaultCacheSize is the freecache allocation for ingested snapshots.
	DefaultCacheSize = 4 * 1024 * 1024
)

// Refresher fetches and caches the external event feed.
type Refresher struct {
	client   *authority.Client
	cache    Cacher
	ttl      time.Duration
	interval time.Duration
	log      zerolog.Logger

	mu   sync.Mutex
	last []models.Event // fallback when the feed and the cache both miss
}

// NewRefresher creates a Refresher. A nil cache gets an in-process
// MemoryCache; a non-positive ttl defaults to 5 minutes.
func NewRefresher(client *authority.Client, cache Cacher, ttl time.Duration, log zerolog.Logger) *Refresher {
	if cache == nil {
		cache = NewMemoryCache(DefaultCacheSize)
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Refresher{
		client:   client,
		cache:    cache,
		ttl:      ttl,
		interval: ttl,
		log:      log,
	}
}

// Events returns the current external event snapshot: the cached copy when
// fresh, otherwise a new fetch. When the fetch fails but an earlier snapshot
// exists, the stale snapshot is returned rather than an error.
func (r *Refresher) Events(ctx context.Context) ([]models.Event, error) {
	var cached []models.Event
	if err := r.cache.Get(cacheKey, &cached); err == nil {
		return cached, nil
	}

	events, err := r.Refresh(ctx)
	if err != nil {
		r.mu.Lock()
		last := r.last
		r.mu.Unlock()
		if last != nil {
			r.log.Warn().Err(err).Msg("external feed unavailable, serving stale snapshot")
			return last, nil
		}
		return nil, err
	}
	return events, nil
}

// Refresh fetches the feed unconditionally, with exponential backoff on
// transient failures, and replaces the cached snapshot.
func (r *Refresher) Refresh(ctx context.Context) ([]models.Event, error) {
	var raws []normalize.RawExternal

	operation := func() error {
		raws = nil
		return r.client.List(ctx, collection, nil, &raws)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("fetch external events: %w", err)
	}

	events := normalize.Externals(raws)
	if err := r.cache.Set(cacheKey, events, r.ttl); err != nil {
		r.log.Warn().Err(err).Msg("cache external events")
	}

	r.mu.Lock()
	r.last = events
	r.mu.Unlock()

	r.log.Debug().Int("count", len(events)).Msg("external events refreshed")
	return events, nil
}

// Run refreshes the feed on a ticker until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Refresh(ctx); err != nil {
				r.log.Warn().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}
