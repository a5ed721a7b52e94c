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

func likesKind() Kind[models.Like] {
	return Kind[models.Like]{
		Collection: "userLikes",
		Unique:     true,
		ListQuery: func(scope Scope) url.Values {
			return url.Values{"toUserId": {scope.Target.String()}}
		},
		RecordID: func(l models.Like) models.ID { return l.ID },
		ActorID:  func(l models.Like) models.ID { return l.FromUserID },
		TargetID: func(l models.Like) models.ID { return l.ToUserID },
		NewRecord: func(id, actor, target models.ID, _ time.Time) models.Like {
			return models.Like{ID: id, FromUserID: actor, ToUserID: target}
		},
		Body: func(l models.Like) any {
			return map[string]any{
				"fromUserId": l.FromUserID,
				"toUserId":   l.ToUserID,
			}
		},
	}
}

// Likes caches the likes aimed at one user. The authority has no
// delete-by-pair endpoint, so unliking resolves the record id from the cache
// and deletes by id.
type Likes struct {
	store *Store[models.Like]
}

func NewLikes(client *authority.Client, sess session.Session, log zerolog.Logger) *Likes {
	return &Likes{
		store: NewStore(likesKind(), client, sess, log.With().Str("store", "likes").Logger()),
	}
}

// LoadForUser fetches all likes received by the user.
func (l *Likes) LoadForUser(ctx context.Context, userID models.ID) {
	l.store.Load(ctx, Scope{Target: userID})
}

// Has reports whether the current actor likes the user.
func (l *Likes) Has(userID models.ID) bool {
	return l.store.Has(userID)
}

// Count returns how many likes the user has received.
func (l *Likes) Count(userID models.ID) int {
	return l.store.CountFor(userID)
}

// Toggle likes or unlikes the user.
func (l *Likes) Toggle(ctx context.Context, userID models.ID) (bool, error) {
	return l.store.Toggle(ctx, userID)
}

func (l *Likes) Records() []models.Like {
	return l.store.Records()
}

func (l *Likes) Subscribe(fn func()) func() {
	return l.store.Subscribe(fn)
}
