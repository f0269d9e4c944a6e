package enrichment

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheEntry is one cached enrichment result. Entries are never mutated
// in place; a refresh replaces the entry wholesale.
type CacheEntry struct {
	ExternalID string
	Profile    Profile
	FetchedAt  time.Time
}

// ProfileCache stores enrichment results keyed by external identity.
// Implementations must be safe for concurrent use. Freshness is decided
// by the Enricher against its TTL, so a cache only stores and evicts; it
// never expires entries itself.
//
// The default is a bounded in-memory LRU. A deployment may substitute an
// external store via WithProfileCache without changing the Enricher
// contract.
type ProfileCache interface {
	// Get returns the entry for externalID, if any.
	Get(externalID string) (CacheEntry, bool)

	// Set stores or replaces the entry for entry.ExternalID.
	Set(entry CacheEntry)

	// Remove drops the entry for externalID, if any.
	Remove(externalID string)

	// Clear drops every entry. Intended for tests.
	Clear()
}

// lruProfileCache is the default ProfileCache: a bounded LRU so a burst
// of distinct identities cannot grow memory without limit.
type lruProfileCache struct {
	entries *lru.Cache[string, CacheEntry]
}

func newLRUProfileCache(maxEntries int) (*lruProfileCache, error) {
	entries, err := lru.New[string, CacheEntry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("could not build profile cache: %w", err)
	}
	return &lruProfileCache{entries: entries}, nil
}

func (c *lruProfileCache) Get(externalID string) (CacheEntry, bool) {
	return c.entries.Get(externalID)
}

func (c *lruProfileCache) Set(entry CacheEntry) {
	c.entries.Add(entry.ExternalID, entry)
}

func (c *lruProfileCache) Remove(externalID string) {
	c.entries.Remove(externalID)
}

func (c *lruProfileCache) Clear() {
	c.entries.Purge()
}
