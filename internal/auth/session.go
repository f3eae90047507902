package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore tracks which session ids are live. A session that is absent
// from the store is treated as revoked or expired regardless of the token
// carrying it.
type SessionStore interface {
	Put(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Active(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore backs session state with Redis. Keys carry the
// session TTL so expired sessions vanish without a sweeper.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Put(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(sessionID), userID, ttl).Err()
}

func (s *redisSessionStore) Active(ctx context.Context, sessionID string) (bool, error) {
	_, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Revoke deletes the session record. Deleting an unknown id is a no-op,
// which makes logout idempotent.
func (s *redisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

func sessionKey(id string) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, id)
}
