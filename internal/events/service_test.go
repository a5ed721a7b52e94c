package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"eventhound/internal/authority"
	"eventhound/internal/authority/authoritytest"
	"eventhound/internal/events"
	"eventhound/internal/models"
	"eventhound/internal/session"
)

func newService(t *testing.T, sess session.Session) (*events.Service, *authoritytest.Server) {
	t.Helper()
	srv := authoritytest.New()
	t.Cleanup(srv.Close)
	client := authority.New(srv.URL(), nil, zerolog.Nop())
	return events.New(client, sess, zerolog.Nop()), srv
}

func validEvent() models.Event {
	return models.Event{
		Title:     "Open Mic",
		StartDate: time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC),
		Location:  models.Location{City: "Sofia", Address: "Club X"},
		Category:  "music",
		Price:     models.NumericPrice(5),
	}
}

func TestCreate(t *testing.T) {
	svc, srv := newService(t, session.Static{ID: "3"})

	created, err := svc.Create(context.Background(), validEvent())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected a server-assigned id")
	}
	if created.CreatorID != "3" {
		t.Errorf("CreatorID = %q, want the current actor", created.CreatorID)
	}
	if len(srv.All("events")) != 1 {
		t.Error("event not stored")
	}
}

func TestCreateValidation(t *testing.T) {
	svc, srv := newService(t, session.Static{ID: "3"})
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(ev *models.Event)
	}{
		{"missing title", func(ev *models.Event) { ev.Title = "" }},
		{"missing start date", func(ev *models.Event) { ev.StartDate = time.Time{} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := validEvent()
			tc.mutate(&ev)
			if _, err := svc.Create(ctx, ev); err != events.ErrInvalidEvent {
				t.Errorf("err = %v, want ErrInvalidEvent", err)
			}
		})
	}
	if got := srv.Count("POST", "events"); got != 0 {
		t.Errorf("%d create requests issued for invalid events", got)
	}
}

func TestCreateRequiresActor(t *testing.T) {
	svc, srv := newService(t, session.Anonymous())
	if _, err := svc.Create(context.Background(), validEvent()); err != events.ErrNotAuthenticated {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
	if got := srv.Count("POST", "events"); got != 0 {
		t.Errorf("%d requests issued without an actor", got)
	}
}

func TestListNormalizes(t *testing.T) {
	svc, srv := newService(t, session.Static{ID: "3"})
	srv.Seed("events", authoritytest.Record{
		"title":     "Flea Market",
		"startDate": "2026-09-12",
		"city":      "Ruse",
		"address":   "Central Sq",
		"category":  "market",
		"price":     "безплатно",
		"creatorId": 3,
	})

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	ev := got[0]
	if ev.IsExternal {
		t.Error("local events must not carry the IsExternal flag")
	}
	if ev.Location.City != "Ruse" || !ev.Price.IsFree() {
		t.Errorf("unexpected normalization: %+v", ev)
	}
}

func TestDeleteByNonOwner(t *testing.T) {
	svc, srv := newService(t, session.Static{ID: "3"})

	ev := validEvent()
	ev.ID = "1"
	ev.CreatorID = "9"
	if err := svc.Delete(context.Background(), ev); err != events.ErrNotOwner {
		t.Errorf("err = %v, want ErrNotOwner", err)
	}
	if got := srv.Count("DELETE", "events"); got != 0 {
		t.Errorf("%d delete requests issued by a non-owner", got)
	}
}

func TestUpdateAndDeleteByOwner(t *testing.T) {
	svc, _ := newService(t, session.Static{ID: "3"})
	ctx := context.Background()

	created, err := svc.Create(ctx, validEvent())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Title = "Open Mic Night"
	updated, err := svc.Update(ctx, created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Open Mic Night" {
		t.Errorf("Title = %q after update", updated.Title)
	}

	if err := svc.Delete(ctx, updated); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
