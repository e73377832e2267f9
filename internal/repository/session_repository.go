package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/edufy-app/roster-api/internal/models"
	appErrors "github.com/edufy-app/roster-api/pkg/errors"
)

// SessionRepository persists session records in Redis. Records are written
// without a TTL: a session never expires on its own, only logout removes it.
type SessionRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client, prefix string) *SessionRepository {
	return &SessionRepository{client: client, prefix: prefix}
}

func (r *SessionRepository) key(token string) string {
	return r.prefix + token
}

// Save stores the session under the token key, overwriting unconditionally.
func (r *SessionRepository) Save(ctx context.Context, token string, session models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(token), payload, 0).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Find returns the session for the token, or ErrNoSession when absent.
// Absence is an explicit result, never a nil-shaped success.
func (r *SessionRepository) Find(ctx context.Context, token string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
