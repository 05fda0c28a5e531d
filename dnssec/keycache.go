package dnssec

import (
	"github.com/hashicorp/golang-lru/v2"
	"github.com/miekg/dns"
	"sync"
	"time"
)

// KeyEntryKind is the tag of the KeyEntry sum type.
type KeyEntryKind uint8

const (
	// KeyEntryGood is a usable DNSKEY set for a zone.
	KeyEntryGood KeyEntryKind = iota
	// KeyEntryNull is a proven insecure delegation: the end of secure space.
	KeyEntryNull
	// KeyEntryBad is a zone whose chain of trust failed to validate.
	KeyEntryBad
)

// KeyEntry is the result of a C8 key-finding walk for one zone: a tagged
// union rather than a record with isGood/isNull/isBad predicates, since the
// three variants carry different fields.
type KeyEntry struct {
	Kind KeyEntryKind

	Zone  string
	Class uint16

	// Good only.
	DNSKEYRRset []dns.RR

	// Null/Bad only.
	Reason string

	insertedAt time.Time
	ttl        time.Duration
}

func goodKeyEntry(zone string, class uint16, rrset []dns.RR, ttl time.Duration) KeyEntry {
	return KeyEntry{Kind: KeyEntryGood, Zone: zone, Class: class, DNSKEYRRset: rrset, ttl: ttl, insertedAt: Clock()}
}

func nullKeyEntry(zone string, class uint16, reason string, ttl time.Duration) KeyEntry {
	return KeyEntry{Kind: KeyEntryNull, Zone: zone, Class: class, Reason: reason, ttl: ttl, insertedAt: Clock()}
}

func badKeyEntry(zone string, class uint16, reason string, ttl time.Duration) KeyEntry {
	return KeyEntry{Kind: KeyEntryBad, Zone: zone, Class: class, Reason: reason, ttl: ttl, insertedAt: Clock()}
}

func (k KeyEntry) expired() bool {
	if k.ttl <= 0 {
		return false
	}
	return Clock().After(k.insertedAt.Add(k.ttl))
}

// KeyCache is a TTL-aware mapping from (name, class) to KeyEntry, optionally
// bounded by an LRU eviction policy on top of TTL expiry.
type KeyCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]KeyEntry
	lru     *lru.Cache[cacheKey, struct{}]

	badTTL time.Duration
	maxTTL time.Duration
}

type cacheKey struct {
	name  string
	class uint16
}

// NewKeyCache builds a cache. maxEntries <= 0 disables the LRU size cap,
// leaving TTL as the only eviction mechanism. badTTL is the TTL applied to
// Bad entries regardless of what the caller requests, throttling
// re-validation of broken zones (default 60s, per spec 4.2).
func NewKeyCache(maxEntries int, badTTL, maxTTL time.Duration) *KeyCache {
	if badTTL <= 0 {
		badTTL = 60 * time.Second
	}
	c := &KeyCache{
		entries: make(map[cacheKey]KeyEntry),
		badTTL:  badTTL,
		maxTTL:  maxTTL,
	}
	if maxEntries > 0 {
		c.lru, _ = lru.NewWithEvict[cacheKey, struct{}](maxEntries, func(key cacheKey, _ struct{}) {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		})
	}
	return c
}

// Find returns the cached entry with the longest name that is equal to or
// an ancestor of name, ignoring expired entries.
func (c *KeyCache) Find(name string, class uint16) (KeyEntry, bool) {
	name = dns.CanonicalName(name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var best KeyEntry
	found := false
	for key, entry := range c.entries {
		if key.class != class || !dns.IsSubDomain(key.name, name) {
			continue
		}
		if entry.expired() {
			continue
		}
		if !found || dns.CompareDomainName(key.name, name) > dns.CompareDomainName(best.Zone, name) {
			best = entry
			found = true
		}
	}
	return best, found
}

// Store inserts or overwrites the entry for (entry.Zone, entry.Class).
func (c *KeyCache) Store(entry KeyEntry) {
	if entry.Kind == KeyEntryBad {
		entry.ttl = c.badTTL
	} else if c.maxTTL > 0 && entry.ttl > c.maxTTL {
		entry.ttl = c.maxTTL
	}

	key := cacheKey{name: dns.CanonicalName(entry.Zone), class: entry.Class}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	if c.lru != nil {
		c.lru.Add(key, struct{}{})
	}
}
