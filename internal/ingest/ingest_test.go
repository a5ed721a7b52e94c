package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"eventhound/internal/authority"
	"eventhound/internal/authority/authoritytest"
	"eventhound/internal/models"
)

func seedFeed(srv *authoritytest.Server) {
	srv.Seed("externalEvents",
		authoritytest.Record{
			"name":      "Night Run",
			"startDate": "2026-09-10",
			"category":  "sport",
			"price":     0,
			"location":  map[string]any{"city": "Varna", "address": "Sea Garden"},
		},
	)
}

func TestEventsFetchesAndNormalizes(t *testing.T) {
	srv := authoritytest.New()
	t.Cleanup(srv.Close)
	seedFeed(srv)

	r := NewRefresher(authority.New(srv.URL(), nil, zerolog.Nop()), nil, time.Minute, zerolog.Nop())
	events, err := r.Events(context.Background())
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if !ev.IsExternal || ev.Title != "Night Run" || ev.Location.City != "Varna" {
		t.Errorf("unexpected normalization: %+v", ev)
	}
}

func TestEventsServesFromCache(t *testing.T) {
	srv := authoritytest.New()
	t.Cleanup(srv.Close)
	seedFeed(srv)

	r := NewRefresher(authority.New(srv.URL(), nil, zerolog.Nop()), nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	if _, err := r.Events(ctx); err != nil {
		t.Fatalf("first Events: %v", err)
	}
	fetched := srv.Count("GET", "externalEvents")

	if _, err := r.Events(ctx); err != nil {
		t.Fatalf("second Events: %v", err)
	}
	if got := srv.Count("GET", "externalEvents"); got != fetched {
		t.Errorf("cache miss: fetch count went from %d to %d", fetched, got)
	}
}

func TestEventsFallsBackToStaleSnapshot(t *testing.T) {
	srv := authoritytest.New()
	seedFeed(srv)

	client := authority.New(srv.URL(), nil, zerolog.Nop())
	// A one-second ttl expires the cached snapshot before the second read.
	r := NewRefresher(client, NewMemoryCache(DefaultCacheSize), time.Second, zerolog.Nop())
	ctx := context.Background()

	first, err := r.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}

	srv.Close()
	time.Sleep(1100 * time.Millisecond)

	second, err := r.Events(ctx)
	if err != nil {
		t.Fatalf("expected the stale snapshot, got error: %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("stale snapshot has %d events, want %d", len(second), len(first))
	}
}

func TestEventsErrorWithNothingCached(t *testing.T) {
	srv := authoritytest.New()
	base := srv.URL()
	srv.Close()

	r := NewRefresher(authority.New(base, nil, zerolog.Nop()), nil, time.Minute, zerolog.Nop())
	if _, err := r.Events(context.Background()); err == nil {
		t.Fatal("expected error with no cache and no feed")
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache(DefaultCacheSize)
	in := []models.Event{{ID: "1", Title: "x", IsExternal: true}}
	if err := cache.Set("k", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var out []models.Event
	if err := cache.Get("k", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(out) != 1 || out[0].ID != in[0].ID || out[0].Title != in[0].Title || !out[0].IsExternal {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	cache := NewMemoryCache(DefaultCacheSize)
	var out []models.Event
	if err := cache.Get("absent", &out); err == nil {
		t.Fatal("expected a miss error")
	}
}
