package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ruanfs/agenda-posto/internal/utils"
)

const redisKeyPrefix = "sess:"

// RedisStore keeps sessions in Redis with the TTL handled by key expiry,
// which makes session lifetime survive restarts and work across replicas.
// Only the username is stored as the value; the id is the key.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a session store backed by the given Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

// Create registers a new session for username with the given lifetime.
func (s *RedisStore) Create(ctx context.Context, username string, ttl time.Duration) (*Session, error) {
	id, err := utils.NewSessionID()
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+id, username, ttl).Err(); err != nil {
		return nil, err
	}
	return &Session{ID: id, Username: username, ExpiresAt: time.Now().UTC().Add(ttl)}, nil
}

// Get returns the live session for id, or nil when the key has expired or
// never existed.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	username, err := s.rdb.Get(ctx, redisKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ttl, err := s.rdb.TTL(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, Username: username, ExpiresAt: time.Now().UTC().Add(ttl)}, nil
}

// Delete removes the session for id. Deleting a missing session is a no-op.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, redisKeyPrefix+id).Err()
}
