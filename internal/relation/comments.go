package relation

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eventhound/internal/authority"
	"eventhound/internal/models"
	"eventhound/internal/session"
)

func commentsKind() Kind[models.Comment] {
	return Kind[models.Comment]{
		Collection: "comments",
		PrependNew: true,
		ListQuery: func(scope Scope) url.Values {
			return url.Values{
				"eventId": {scope.Target.String()},
				"_sort":   {"createdAt"},
				"_order":  {"desc"},
			}
		},
		RecordID: func(c models.Comment) models.ID { return c.ID },
		ActorID:  func(c models.Comment) models.ID { return c.UserID },
		TargetID: func(c models.Comment) models.ID { return c.EventID },
		Body: func(c models.Comment) any {
			return map[string]any{
				"eventId":   c.EventID.String(),
				"userId":    c.UserID,
				"text":      c.Text,
				"createdAt": c.CreatedAt.UTC().Format(time.RFC3339),
			}
		},
	}
}

// Comments caches one event's comments, newest first. Unlike the unique
// relations an actor may hold any number of comments per event, so adds
// carry a payload and removals address a specific record.
type Comments struct {
	store *Store[models.Comment]
}

func NewComments(client *authority.Client, sess session.Session, log zerolog.Logger) *Comments {
	return &Comments{
		store: NewStore(commentsKind(), client, sess, log.With().Str("store", "comments").Logger()),
	}
}

// LoadForEvent fetches the event's comments, newest first.
func (c *Comments) LoadForEvent(ctx context.Context, eventID models.ID) {
	c.store.Load(ctx, Scope{Target: eventID})
}

// Add posts a comment on the event. Empty text is rejected before any local
// mutation or request. The comment appears optimistically at the top of the
// cache and is reconciled against the authority once the create settles.
func (c *Comments) Add(ctx context.Context, eventID models.ID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	actor, ok := c.store.session.UserID()
	if !ok {
		return ErrNotAuthenticated
	}

	rec := models.Comment{
		ID:        placeholderID(),
		EventID:   eventID,
		UserID:    actor,
		Text:      text,
		CreatedAt: c.store.now(),
	}
	return c.store.Insert(ctx, rec)
}

// Remove deletes the actor's own comment. A non-owning actor is rejected
// from cached data alone, before any request is issued.
func (c *Comments) Remove(ctx context.Context, commentID models.ID) error {
	return c.store.RemoveOwned(ctx, commentID)
}

func (c *Comments) Records() []models.Comment {
	return c.store.Records()
}

func (c *Comments) Subscribe(fn func()) func() {
	return c.store.Subscribe(fn)
}
