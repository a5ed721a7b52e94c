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

func favoritesKind() Kind[models.Favorite] {
	return Kind[models.Favorite]{
		Collection: "favorites",
		Unique:     true,
		ListQuery: func(scope Scope) url.Values {
			return url.Values{"userId": {scope.Actor.String()}}
		},
		RecordID: func(f models.Favorite) models.ID { return f.ID },
		ActorID:  func(f models.Favorite) models.ID { return f.UserID },
		TargetID: func(f models.Favorite) models.ID { return f.EventID },
		NewRecord: func(id, actor, target models.ID, now time.Time) models.Favorite {
			return models.Favorite{ID: id, UserID: actor, EventID: target, CreatedAt: now}
		},
		Body: func(f models.Favorite) any {
			return map[string]any{
				"userId":    f.UserID,
				"eventId":   f.EventID.String(),
				"createdAt": f.CreatedAt.UTC().Format(time.RFC3339),
			}
		},
	}
}

// Favorites is the current actor's favorite events.
type Favorites struct {
	store *Store[models.Favorite]
}

func NewFavorites(client *authority.Client, sess session.Session, log zerolog.Logger) *Favorites {
	return &Favorites{
		store: NewStore(favoritesKind(), client, sess, log.With().Str("store", "favorites").Logger()),
	}
}

// Load fetches all of the actor's favorites.
func (f *Favorites) Load(ctx context.Context) {
	f.store.Load(ctx, Scope{})
}

// Has reports whether the event is a favorite of the current actor.
func (f *Favorites) Has(eventID models.ID) bool {
	return f.store.Has(eventID)
}

// Toggle favorites or unfavorites the event; see Store.Toggle.
func (f *Favorites) Toggle(ctx context.Context, eventID models.ID) (bool, error) {
	return f.store.Toggle(ctx, eventID)
}

func (f *Favorites) Records() []models.Favorite {
	return f.store.Records()
}

func (f *Favorites) Subscribe(fn func()) func() {
	return f.store.Subscribe(fn)
}
