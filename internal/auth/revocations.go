package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"job-tracker/internal/shared/telemetry"
)

// Revocations is the deny-list of token ids ended by logout. Entries only
// need to live until the token would have expired anyway.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(tokenID string) bool
}

// MemoryRevocations keeps the deny-list in process.
type MemoryRevocations struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

// NewMemoryRevocations builds an empty deny-list.
func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{items: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tokenID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.items {
		if now.After(exp) {
			delete(m.items, id)
		}
	}
	m.items[tokenID] = until
	return nil
}

func (m *MemoryRevocations) IsRevoked(tokenID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.items[tokenID]
	if !ok {
		return false
	}
	if m.now().After(exp) {
		delete(m.items, tokenID)
		return false
	}
	return true
}

const revokedKeyPrefix = "job-tracker:revoked:"

// RedisRevocations shares the deny-list across API instances. Keys expire
// with the token.
type RedisRevocations struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisRevocations wraps an existing client.
func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client, timeout: 500 * time.Millisecond}
}

func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked fails open when Redis is unreachable; the token signature and
// expiry are still enforced.
func (r *RedisRevocations) IsRevoked(tokenID string) bool {
	if tokenID == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		telemetry.Warn("auth.revocation_lookup_failed", map[string]any{"error": err})
		return false
	}
	return n > 0
}

var (
	_ Revocations = (*MemoryRevocations)(nil)
	_ Revocations = (*RedisRevocations)(nil)
)
