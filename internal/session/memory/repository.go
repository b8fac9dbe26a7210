// Package memory is an in-process session repository for development and
// single-instance deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anishff444/nepwears/internal/session"
	apperrors "github.com/anishff444/nepwears/pkg/errors"
)

// Repository implements session.Repository with a map.
type Repository struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
	now      func() time.Time
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{
		sessions: make(map[string]session.Session),
		now:      time.Now,
	}
}

// Get returns a copy of the session with id.
func (r *Repository) Get(_ context.Context, id string) (*session.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok || !r.now().Before(s.ExpiresAt) {
		return nil, apperrors.NotFound("session", id)
	}
	return &s, nil
}

// Save stores a copy of s.
func (r *Repository) Save(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	r.sessions[s.ID] = *s
	r.mu.Unlock()
	return nil
}

// Delete removes the session with id.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

var _ session.Purger = (*Repository)(nil)

// Purge drops expired sessions and returns how many were removed.
func (r *Repository) Purge() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for id, s := range r.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
