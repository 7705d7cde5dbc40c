package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "jwt:blacklist:"

// TokenBlacklist remembers revoked tokens until their natural expiry. It
// prefers Redis so revocations are shared between instances and falls back
// to process memory when no client is configured.
type TokenBlacklist struct {
	rc *redis.Client

	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewTokenBlacklist returns a blacklist backed by rc, or by memory if rc is nil.
func NewTokenBlacklist(rc *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rc: rc, entries: map[string]time.Time{}, now: time.Now}
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Revoke marks token as unusable until expiresAt.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	key := blacklistKey(token)
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return b.rc.Set(ctx, blacklistKeyPrefix+key, "1", ttl).Err()
	}
	b.mu.Lock()
	b.entries[key] = expiresAt
	b.mu.Unlock()
	return nil
}

// IsRevoked checks if a token was revoked before natural expiration.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	key := blacklistKey(token)
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		n, err := b.rc.Exists(ctx, blacklistKeyPrefix+key).Result()
		if err != nil {
			// fail open: a Redis outage must not lock every user out
			Sugar.Warnf("token blacklist lookup failed: %v", err)
			return false
		}
		return n > 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	expiresAt, ok := b.entries[key]
	if !ok {
		return false
	}
	if b.now().After(expiresAt) {
		delete(b.entries, key)
		return false
	}
	return true
}
