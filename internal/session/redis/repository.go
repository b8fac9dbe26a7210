// Package redis stores sessions in Redis so they survive restarts and are
// shared between storefront instances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anishff444/nepwears/internal/session"
	apperrors "github.com/anishff444/nepwears/pkg/errors"
)

const keyPrefix = "session:"

// Repository implements session.Repository using Redis.
type Repository struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRepository creates a Redis-backed session repository.
func NewRepository(client redis.UniversalClient) *Repository {
	return &Repository{client: client, now: time.Now}
}

// Get loads the session with id.
func (r *Repository) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("session", id)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// Save writes s with a TTL matching its remaining lifetime.
func (r *Repository) Save(ctx context.Context, s *session.Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, s.ID)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+s.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete removes the session with id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
