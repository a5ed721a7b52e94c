package relation

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"eventhound/internal/authority"
	"eventhound/internal/models"
	"eventhound/internal/session"
)

func interestsKind() Kind[models.Interest] {
	return Kind[models.Interest]{
		Collection: "interests",
		Unique:     true,
		ListQuery: func(scope Scope) url.Values {
			return url.Values{"eventId": {scope.Target.String()}}
		},
		RecordID: func(i models.Interest) models.ID { return i.ID },
		ActorID:  func(i models.Interest) models.ID { return i.UserID },
		TargetID: func(i models.Interest) models.ID { return i.EventID },
		NewRecord: func(id, actor, target models.ID, _ time.Time) models.Interest {
			return models.Interest{ID: id, UserID: actor, EventID: target}
		},
		Body: func(i models.Interest) any {
			return map[string]any{
				"eventId": i.EventID,
				"userId":  i.UserID,
			}
		},
	}
}

// Interests caches the interest records of one event: every actor's record,
// so the interested count and the current actor's own state come from the
// same view.
type Interests struct {
	store *Store[models.Interest]
}

func NewInterests(client *authority.Client, sess session.Session, log zerolog.Logger) *Interests {
	return &Interests{
		store: NewStore(interestsKind(), client, sess, log.With().Str("store", "interests").Logger()),
	}
}

// LoadForEvent fetches all interest records of the event.
func (i *Interests) LoadForEvent(ctx context.Context, eventID models.ID) {
	i.store.Load(ctx, Scope{Target: eventID})
}

// Has reports whether the current actor is interested in the event.
func (i *Interests) Has(eventID models.ID) bool {
	return i.store.Has(eventID)
}

// Count returns how many actors are interested in the event.
func (i *Interests) Count(eventID models.ID) int {
	return i.store.CountFor(eventID)
}

// Toggle flips the current actor's interest in the event.
func (i *Interests) Toggle(ctx context.Context, eventID models.ID) (bool, error) {
	return i.store.Toggle(ctx, eventID)
}

func (i *Interests) Records() []models.Interest {
	return i.store.Records()
}

func (i *Interests) Subscribe(fn func()) func() {
	return i.store.Subscribe(fn)
}
