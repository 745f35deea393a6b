package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"
	"time"

	"github.com/moodwire/news-pulse/internal/models"
)

type entry struct {
	key string
	ts  time.Time
}

type labeled struct {
	label models.Sentiment
	ts    time.Time
}

// Cache keeps a fixed-size map from headline hash to classified label.
// Back-to-back ingestion cycles over an unchanged feed hit the cache
// instead of calling the classifier again for the same title.
type Cache struct {
	mu       sync.Mutex
	items    map[string]labeled
	order    []entry
	capacity int
	ttl      time.Duration
}

// New creates a cache with the provided capacity and ttl.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]labeled, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Key hashes a headline into a cache key.
func Key(title string) string {
	sum := sha1.Sum([]byte(title))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached label for a key inside the ttl window.
func (c *Cache) Get(key string) (models.Sentiment, bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.items[key]; ok {
		if now.Sub(item.ts) <= c.ttl {
			return item.label, true
		}
	}
	return "", false
}

// Put records a classified label for a key.
func (c *Cache) Put(key string, label models.Sentiment) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = labeled{label: label, ts: now}
	c.order = append(c.order, entry{key: key, ts: now})
	c.compact(now)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		if item, ok := c.items[oldest.key]; ok {
			if item.ts == oldest.ts {
				delete(c.items, oldest.key)
			}
		}
	}
}
