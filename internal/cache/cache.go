// Package cache holds short-lived token snapshots so repeated audits of
// the same contract do not hammer the data providers. A cache is always
// optional: misses and errors fall through to the gateway.
package cache

import (
	"context"
	"sync"
	"time"

	"blockrover/internal/domain"
)

// DefaultTTL bounds how long a snapshot stays representative. Market
// numbers for fresh tokens go stale in minutes.
const DefaultTTL = 2 * time.Minute

// SnapshotCache stores token snapshots keyed by contract address.
type SnapshotCache interface {
	// Get retrieves a cached snapshot. Returns (nil, nil) on a miss.
	Get(ctx context.Context, addr domain.ContractAddress) (*domain.TokenSnapshot, error)

	// Set stores a snapshot until the configured TTL expires.
	Set(ctx context.Context, snap *domain.TokenSnapshot) error
}

// entry is one cached snapshot with its expiry deadline.
type entry struct {
	snap      domain.TokenSnapshot
	expiresAt time.Time
}

// MemoryCache is an in-process SnapshotCache.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[domain.ContractAddress]entry
	now     func() time.Time
}

// NewMemoryCache creates an in-process cache. A non-positive ttl falls
// back to DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[domain.ContractAddress]entry),
		now:     time.Now,
	}
}

// Get retrieves a cached snapshot, dropping it when expired.
func (c *MemoryCache) Get(_ context.Context, addr domain.ContractAddress) (*domain.TokenSnapshot, error) {
	c.mu.RLock()
	e, ok := c.entries[addr]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, addr)
		c.mu.Unlock()
		return nil, nil
	}
	snap := e.snap
	return &snap, nil
}

// Set stores a snapshot until the TTL expires.
func (c *MemoryCache) Set(_ context.Context, snap *domain.TokenSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snap.Address] = entry{snap: *snap, expiresAt: c.now().Add(c.ttl)}
	return nil
}

var _ SnapshotCache = (*MemoryCache)(nil)
