// Package session keeps per-browser storefront state. The persisted part
// (id, token, user) lives in a Repository; the cart store and drawer flag
// are held in memory and rebuilt from the server after a restart.
package session

import (
	"context"
	"time"

	"github.com/anishff444/nepwears/internal/domain"
)

// Session is the persisted part of a browser session.
type Session struct {
	ID        string       `json:"id"`
	Token     string       `json:"token,omitempty"`
	User      *domain.User `json:"user,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Authenticated reports whether the session carries a token.
func (s *Session) Authenticated() bool {
	return s.Token != ""
}

// Repository persists sessions. Get returns an apperrors NotFound error for
// unknown or expired ids.
type Repository interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by repositories that hold expired sessions until
// asked to drop them. Repositories with native expiry, like redis, do not
// need it.
type Purger interface {
	Purge() int
}
