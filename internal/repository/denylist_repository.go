package repository

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const denyKeyPrefix = "deny:access:"

// DenylistRepo records access tokens invalidated by logout so every protected
// request can reject them before their natural expiry. Entries live in Redis
// with a TTL equal to the token's remaining lifetime, which makes the
// denylist visible to all server instances. When Redis is unavailable the
// repo degrades to a process-local set; that protects only the local
// instance, so the fallback is logged.
type DenylistRepo struct {
	RDB *redis.Client // nil when Redis could not be reached at startup

	mu  sync.RWMutex
	mem map[string]time.Time // token -> expiry, fallback only
}

func NewDenylistRepo(rdb *redis.Client) *DenylistRepo {
	if rdb == nil {
		log.Printf("denylist: redis unavailable, using process-local fallback")
	}
	return &DenylistRepo{RDB: rdb, mem: make(map[string]time.Time)}
}

// Add records a token until its expiry. Tokens already past expiry are
// ignored; they fail verification on their own.
func (r *DenylistRepo) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if r.RDB != nil {
		return r.RDB.Set(ctx, denyKeyPrefix+token, 1, ttl).Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mem[token] = expiresAt
	return nil
}

// Contains reports whether the token has been denylisted. Redis errors are
// treated as "not denylisted" so an outage does not lock every caller out of
// the API while the tokens run down their short lifetime.
func (r *DenylistRepo) Contains(ctx context.Context, token string) bool {
	if r.RDB != nil {
		n, err := r.RDB.Exists(ctx, denyKeyPrefix+token).Result()
		if err != nil {
			log.Printf("denylist: redis lookup failed: %v", err)
			return false
		}
		return n > 0
	}
	r.mu.RLock()
	exp, ok := r.mem[token]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		r.mu.Lock()
		delete(r.mem, token)
		r.mu.Unlock()
		return false
	}
	return true
}
