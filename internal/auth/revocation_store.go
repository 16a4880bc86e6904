package auth

import (
	"context"
	"sync"
	"time"

	"authsvc/internal/cache"
)

const revokedTokenKeyPrefix = "blacklist:token:"

// RevocationStore is a shared deny-list of token strings revoked before their
// natural expiry. Entries only need to outlive the token itself, so every
// insert carries a TTL.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RedisRevocationStore keeps the deny-list in Redis so it is visible to every
// instance of the service.
type RedisRevocationStore struct {
	cache *cache.Client
}

var _ RevocationStore = (*RedisRevocationStore)(nil)

// NewRedisRevocationStore creates a Redis-backed revocation store.
func NewRedisRevocationStore(cache *cache.Client) *RedisRevocationStore {
	return &RedisRevocationStore{cache: cache}
}

// Revoke marks a token string as revoked until its TTL elapses. Idempotent.
func (s *RedisRevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return s.cache.Set(ctx, revokedTokenKeyPrefix+token, []byte("1"), ttl)
}

// IsRevoked reports deny-list membership.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	data, err := s.cache.Get(ctx, revokedTokenKeyPrefix+token)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}

// MemoryRevocationStore is a process-local revocation store for tests and
// cache-less deployments. Not shared across instances.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

var _ RevocationStore = (*MemoryRevocationStore)(nil)

// NewMemoryRevocationStore creates an empty in-memory revocation store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{revoked: make(map[string]time.Time)}
}

// Revoke marks a token string as revoked until its TTL elapses. Idempotent.
func (s *MemoryRevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports deny-list membership, dropping expired entries on the way.
func (s *MemoryRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.revoked[token]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		s.mu.Lock()
		delete(s.revoked, token)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}
