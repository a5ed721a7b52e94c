package relation_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhound/internal/authority"
	"eventhound/internal/authority/authoritytest"
	"eventhound/internal/relation"
	"eventhound/internal/session"
)

func newComments(t *testing.T, sess session.Session) (*relation.Comments, *authoritytest.Server) {
	t.Helper()
	srv := authoritytest.New()
	t.Cleanup(srv.Close)
	client := authority.New(srv.URL(), nil, zerolog.Nop())
	return relation.NewComments(client, sess, zerolog.Nop()), srv
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	comments, srv := newComments(t, session.Static{ID: "1"})
	comments.LoadForEvent(ctx, "e1")

	require.NoError(t, comments.Add(ctx, "e1", "see you there"))

	records := comments.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "see you there", records[0].Text)
	assert.False(t, records[0].ID.IsZero())
	require.Len(t, srv.All("comments"), 1)
}

func TestAddCommentRejectsEmptyText(t *testing.T) {
	ctx := context.Background()
	comments, srv := newComments(t, session.Static{ID: "1"})

	err := comments.Add(ctx, "e1", "   ")
	assert.ErrorIs(t, err, relation.ErrEmptyText)
	assert.Zero(t, srv.Count("POST", "comments"), "validation must run before any request")
	assert.Empty(t, comments.Records(), "validation must run before any optimistic insert")
}

func TestAddCommentRequiresActor(t *testing.T) {
	ctx := context.Background()
	comments, srv := newComments(t, session.Anonymous())

	err := comments.Add(ctx, "e1", "hello")
	assert.ErrorIs(t, err, relation.ErrNotAuthenticated)
	assert.Zero(t, srv.Count("POST", "comments"))
}

func TestAddCommentRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	comments, srv := newComments(t, session.Static{ID: "1"})
	comments.LoadForEvent(ctx, "e1")

	srv.FailNext("POST", "comments", http.StatusInternalServerError)
	err := comments.Add(ctx, "e1", "lost words")
	require.Error(t, err)
	assert.Empty(t, comments.Records())
}

func TestCommentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	comments, srv := newComments(t, session.Static{ID: "1"})
	srv.Seed("comments",
		authoritytest.Record{"eventId": "e1", "userId": 2, "text": "old", "createdAt": "2026-08-01T10:00:00Z"},
		authoritytest.Record{"eventId": "e1", "userId": 3, "text": "new", "createdAt": "2026-08-20T10:00:00Z"},
	)

	comments.LoadForEvent(ctx, "e1")
	records := comments.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "new", records[0].Text)
	assert.Equal(t, "old", records[1].Text)
}

func TestRemoveCommentByOwner(t *testing.T) {
	ctx := context.Background()
	comments, srv := newComments(t, session.Static{ID: "1"})
	srv.Seed("comments", authoritytest.Record{"id": int64(5), "eventId": "e1", "userId": 1, "text": "mine", "createdAt": "2026-08-01T10:00:00Z"})
	comments.LoadForEvent(ctx, "e1")

	require.NoError(t, comments.Remove(ctx, "5"))
	assert.Empty(t, comments.Records())
	assert.Empty(t, srv.All("comments"))
}

func TestRemoveCommentByNonOwner(t *testing.T) {
	ctx := context.Background()
	comments, srv := newComments(t, session.Static{ID: "2"})
	srv.Seed("comments", authoritytest.Record{"id": int64(5), "eventId": "e1", "userId": 1, "text": "not yours", "createdAt": "2026-08-01T10:00:00Z"})
	comments.LoadForEvent(ctx, "e1")

	err := comments.Remove(ctx, "5")
	assert.ErrorIs(t, err, relation.ErrUnauthorized)
	// The rejection comes from cached ownership data alone.
	assert.Zero(t, srv.Count("DELETE", "comments"), "no delete request may be issued")
	require.Len(t, comments.Records(), 1)
}

func TestRemoveCommentRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	comments, srv := newComments(t, session.Static{ID: "1"})
	srv.Seed("comments", authoritytest.Record{"id": int64(5), "eventId": "e1", "userId": 1, "text": "sticky", "createdAt": "2026-08-01T10:00:00Z"})
	comments.LoadForEvent(ctx, "e1")

	srv.FailNext("DELETE", "comments", http.StatusInternalServerError)
	err := comments.Remove(ctx, "5")
	require.Error(t, err)
	require.Len(t, comments.Records(), 1, "removed record must be restored")
}

func TestRemoveUnknownComment(t *testing.T) {
	ctx := context.Background()
	comments, _ := newComments(t, session.Static{ID: "1"})
	err := comments.Remove(ctx, "404")
	assert.ErrorIs(t, err, relation.ErrNotFound)
}
