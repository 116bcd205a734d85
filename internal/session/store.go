// Package session implements the server-side admin session store. Sessions
// are keyed by an opaque id carried in a signed cookie; the record here is
// authoritative, so deleting it logs the admin out even if the cookie is
// still floating around. Two backends exist: Redis when available, and an
// in-process map otherwise.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ruanfs/agenda-posto/internal/utils"
)

// Session is the server-side state bound to one logged-in admin.
type Session struct {
	ID        string
	Username  string
	ExpiresAt time.Time
}

// Store persists sessions between requests. Get returns (nil, nil) for a
// session that is missing or expired; errors are reserved for backend
// failures.
type Store interface {
	Create(ctx context.Context, username string, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// NewStore picks the Redis backend when a client is available and falls
// back to the in-memory store otherwise. The fallback keeps a single-node
// deployment working without Redis at the cost of sessions not surviving
// a restart.
func NewStore(rdb *redis.Client) Store {
	if rdb != nil {
		return NewRedisStore(rdb)
	}
	return NewMemoryStore()
}

// MemoryStore keeps sessions in a mutex-guarded map. Expired entries are
// dropped lazily on Get and opportunistically on Create.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore returns an empty in-process session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new session for username with the given lifetime.
func (s *MemoryStore) Create(ctx context.Context, username string, ttl time.Duration) (*Session, error) {
	id, err := utils.NewSessionID()
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:        id,
		Username:  username,
		ExpiresAt: s.now().Add(ttl),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.sessions {
		if !s.now().Before(v.ExpiresAt) {
			delete(s.sessions, k)
		}
	}
	s.sessions[id] = sess
	return sess, nil
}

// Get returns the live session for id, or nil when absent or expired.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, nil
	}
	return sess, nil
}

// Delete removes the session for id. Deleting a missing session is a no-op.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
