// internal/engine/dedup.go
package engine

import (
	"sync"
	"time"

	"github.com/aiba-2502/denco-notify/internal/types"
)

/*
 * Event dedup cache.
 *
 * Short-lived cache of event id -> outcome set covering plausible
 * at-least-once redelivery from the upstream telephony collaborator. The
 * engine is the only writer: one write per completed event, read-checked
 * before matching begins. Expired entries sweep lazily on write, so no
 * janitor goroutine is needed for the one-write-per-event workload.
 */

type dedupEntry struct {
	outcomes []types.DeliveryOutcome
	expires  time.Time
}

type dedupCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[types.EventID]dedupEntry
	now     func() time.Time // injectable for tests
}

func newDedupCache(ttl time.Duration) *dedupCache {
	return &dedupCache{
		ttl:     ttl,
		entries: make(map[types.EventID]dedupEntry),
		now:     time.Now,
	}
}

// get returns a copy of the cached outcomes for id, if present and fresh.
// Copy prevents callers from mutating the cached slice.
func (c *dedupCache) get(id types.EventID) ([]types.DeliveryOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}

	out := make([]types.DeliveryOutcome, len(entry.outcomes))
	copy(out, entry.outcomes)
	return out, true
}

// put stores the outcome set for id and sweeps expired entries.
func (c *dedupCache) put(id types.EventID, outcomes []types.DeliveryOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}

	stored := make([]types.DeliveryOutcome, len(outcomes))
	copy(stored, outcomes)
	c.entries[id] = dedupEntry{outcomes: stored, expires: now.Add(c.ttl)}
}
