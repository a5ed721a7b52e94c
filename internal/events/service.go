// Package events covers the lifecycle of locally authored events: listing
// them from the authority plus owner-checked create, update, and delete.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"eventhound/internal/authority"
	"eventhound/internal/models"
	"eventhound/internal/normalize"
	"eventhound/internal/session"
)

const collection = "events"

var (
	// ErrNotAuthenticated signals there is no current actor.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotOwner indicates the actor does not own the event.
	ErrNotOwner = errors.New("only the event creator may modify it")
	// ErrInvalidEvent rejects an event missing required fields.
	ErrInvalidEvent = errors.New("event needs a title and a start date")
)

// Service manages the events collection.
type Service struct {
	client  *authority.Client
	session session.Session
	log     zerolog.Logger
	now     func() time.Time
}

// New constructs a Service.
func New(client *authority.Client, sess session.Session, log zerolog.Logger) *Service {
	return &Service{
		client:  client,
		session: sess,
		log:     log,
		now:     time.Now,
	}
}

// List fetches all locally authored events.
func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	var raws []normalize.RawLocal
	if err := s.client.List(ctx, collection, nil, &raws); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return normalize.Locals(raws), nil
}

// Create stores a new event owned by the current actor. The authority
// assigns the id; the stored record is returned in canonical form.
func (s *Service) Create(ctx context.Context, ev models.Event) (models.Event, error) {
	actor, ok := s.session.UserID()
	if !ok {
		return models.Event{}, ErrNotAuthenticated
	}
	if ev.Title == "" || ev.StartDate.IsZero() {
		return models.Event{}, ErrInvalidEvent
	}

	ev.CreatorID = actor
	ev.CreatedAt = s.now()
	body := normalize.LocalWire(ev)
	body.ID = ""

	var created normalize.RawLocal
	if err := s.client.Create(ctx, collection, body, &created); err != nil {
		return models.Event{}, fmt.Errorf("create event: %w", err)
	}
	s.log.Info().Str("event", created.ID.String()).Msg("event created")
	return normalize.Local(created), nil
}

// Update replaces an event. Only the owning actor may update; the check runs
// locally before any request.
func (s *Service) Update(ctx context.Context, ev models.Event) (models.Event, error) {
	actor, ok := s.session.UserID()
	if !ok {
		return models.Event{}, ErrNotAuthenticated
	}
	if ev.CreatorID != actor {
		return models.Event{}, ErrNotOwner
	}
	if ev.Title == "" || ev.StartDate.IsZero() {
		return models.Event{}, ErrInvalidEvent
	}

	var updated normalize.RawLocal
	if err := s.client.Update(ctx, collection, ev.ID, normalize.LocalWire(ev), &updated); err != nil {
		return models.Event{}, fmt.Errorf("update event: %w", err)
	}
	return normalize.Local(updated), nil
}

// Delete removes an event. Only the owning actor may delete; the check runs
// locally before any request.
func (s *Service) Delete(ctx context.Context, ev models.Event) error {
	actor, ok := s.session.UserID()
	if !ok {
		return ErrNotAuthenticated
	}
	if ev.CreatorID != actor {
		return ErrNotOwner
	}
	if err := s.client.Delete(ctx, collection, ev.ID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.Info().Str("event", ev.ID.String()).Msg("event deleted")
	return nil
}
