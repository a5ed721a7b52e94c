// Package session provides the current-user identity to the stores.
// Authentication itself is an external concern; this package only extracts
// and exposes the identity the rest of the system keys relation records by.
package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"eventhound/internal/models"
)

// ErrNoIdentity indicates the token carried no usable user identity.
var ErrNoIdentity = errors.New("token has no user identity")

// Session exposes the authenticated actor, if any.
type Session interface {
	// UserID returns the current actor's id and whether anyone is
	// authenticated at all.
	UserID() (models.ID, bool)
}

// Static is a fixed identity, used by tests and by callers that already
// resolved the user elsewhere. The zero value is an anonymous session.
type Static struct {
	ID models.ID
}

func (s Static) UserID() (models.ID, bool) {
	return s.ID, !s.ID.IsZero()
}

// Anonymous is a session with no authenticated actor.
func Anonymous() Session { return Static{} }

// FromToken extracts the user identity from a bearer token. The token's
// signature is not verified here: validation belongs to the auth provider,
// and the stores only need a stable actor id to key records by.
func FromToken(token string) (Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	for _, key := range []string{"userId", "sub", "_id"} {
		if v, ok := claims[key]; ok {
			id := models.NewID(v)
			if !id.IsZero() {
				return Static{ID: id}, nil
			}
		}
	}
	return nil, ErrNoIdentity
}
