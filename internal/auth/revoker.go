package auth

import (
	"context"
	"sync"
	"time"

	"github.com/maeshaii/backend-wny/internal/cache"
)

// Revoker keeps the denylist of logged-out token ids.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type cacheRevoker struct {
	cache cache.CacheService
}

// NewCacheRevoker stores revoked ids in the cache until the token would
// have expired anyway.
func NewCacheRevoker(c cache.CacheService) Revoker {
	return &cacheRevoker{cache: c}
}

func (r *cacheRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, cache.RevokedTokenKey(jti), true, ttl)
}

func (r *cacheRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.cache.Exists(ctx, cache.RevokedTokenKey(jti))
}

// MemoryRevoker is an in-process denylist for tests and single-node setups.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

func (r *MemoryRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = r.now().Add(ttl)
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[jti]
	if !ok {
		return false, nil
	}
	if r.now().After(until) {
		delete(r.revoked, jti)
		return false, nil
	}
	return true, nil
}
