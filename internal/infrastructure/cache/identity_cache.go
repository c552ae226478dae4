package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
)

// IdentityCache remembers verified identities for a bounded time.
// Keys are SHA-256 digests of the token; the raw token is never stored.
type IdentityCache struct {
	lru *expirable.LRU[string, *domain.Identity]
	now func() time.Time
}

// NewIdentityCache creates a cache holding at most size entries for at most ttl each.
func NewIdentityCache(size int, ttl time.Duration) *IdentityCache {
	return &IdentityCache{
		lru: expirable.NewLRU[string, *domain.Identity](size, nil, ttl),
		now: time.Now,
	}
}

// Get returns the identity cached for token. Entries past the token's own
// expiry are dropped even if the cache TTL has not elapsed.
func (c *IdentityCache) Get(token string) (*domain.Identity, bool) {
	key := digest(token)
	identity, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !identity.ExpiresAt.IsZero() && !c.now().Before(identity.ExpiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return identity, true
}

// Add caches the identity for token.
func (c *IdentityCache) Add(token string, identity *domain.Identity) {
	c.lru.Add(digest(token), identity)
}

// Len reports the number of cached entries.
func (c *IdentityCache) Len() int {
	return c.lru.Len()
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
