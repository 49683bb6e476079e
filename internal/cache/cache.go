// Package cache keeps recently fetched link previews in memory so repeated
// lookups of the same cleaned URL skip the network.
package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/linkclean/pkg/models"
)

// DefaultTTL applies when Set is called with a non-positive ttl
const DefaultTTL = 10 * time.Minute

// Cache stores preview results by key.
type Cache interface {
	// Get returns a copy of the cached result and whether it was present and fresh.
	Get(key string) (models.PreviewResult, bool)

	// Set stores result under key for ttl, replacing any previous entry.
	Set(key string, result models.PreviewResult, ttl time.Duration)

	// Delete removes key. Missing keys are ignored.
	Delete(key string)

	// Close stops background cleanup.
	Close()
}

type entry struct {
	key       string
	result    models.PreviewResult
	expiresAt time.Time
}

// MemoryCache is an LRU cache bounded by entry count with per-entry TTL
type MemoryCache struct {
	mu         sync.Mutex
	store      map[string]*list.Element
	lru        *list.List
	maxEntries int
	hits       uint64
	misses     uint64
	cancel     context.CancelFunc
	now        func() time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries previews
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}

	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{
		store:      make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: maxEntries,
		cancel:     cancel,
		now:        time.Now,
	}

	go mc.cleanupExpired(ctx, time.Minute)

	return mc
}

func (mc *MemoryCache) Get(key string) (models.PreviewResult, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		return models.PreviewResult{}, false
	}

	e := element.Value.(*entry)
	if mc.now().After(e.expiresAt) {
		mc.removeElement(element)
		mc.misses++
		return models.PreviewResult{}, false
	}

	mc.lru.MoveToFront(element)
	mc.hits++

	log.Debug().Str("key", key).Msg("Preview cache hit")
	return copyResult(e.result), true
}

func (mc *MemoryCache) Set(key string, result models.PreviewResult, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	e := &entry{key: key, result: copyResult(result), expiresAt: mc.now().Add(ttl)}

	if element, exists := mc.store[key]; exists {
		element.Value = e
		mc.lru.MoveToFront(element)
		return
	}

	for mc.lru.Len() >= mc.maxEntries {
		mc.evictLRU()
	}
	mc.store[key] = mc.lru.PushFront(e)

	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cached preview")
}

func (mc *MemoryCache) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		mc.removeElement(element)
	}
}

func (mc *MemoryCache) Close() {
	mc.cancel()
}

// Len returns the number of stored entries, fresh or not
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lru.Len()
}

// Stats returns hit/miss counters
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	hitRate := 0.0
	if total := mc.hits + mc.misses; total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":  mc.lru.Len(),
		"max":      mc.maxEntries,
		"hits":     mc.hits,
		"misses":   mc.misses,
		"hit_rate": hitRate,
	}
}

// must be called with lock held
func (mc *MemoryCache) evictLRU() {
	element := mc.lru.Back()
	if element == nil {
		return
	}
	log.Debug().Str("key", element.Value.(*entry).key).Msg("Evicted preview (LRU)")
	mc.removeElement(element)
}

// must be called with lock held
func (mc *MemoryCache) removeElement(element *list.Element) {
	mc.lru.Remove(element)
	delete(mc.store, element.Value.(*entry).key)
}

func (mc *MemoryCache) cleanupExpired(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := mc.now()
			var next *list.Element
			for element := mc.lru.Front(); element != nil; element = next {
				next = element.Next()
				if now.After(element.Value.(*entry).expiresAt) {
					mc.removeElement(element)
				}
			}
			mc.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

func copyResult(r models.PreviewResult) models.PreviewResult {
	if r.Record != nil {
		rec := *r.Record
		r.Record = &rec
	}
	return r
}

// Cacheable reports whether a result is worth keeping. Transient failures
// (timeouts, network errors) are retried on the next lookup.
func Cacheable(r models.PreviewResult) bool {
	switch r.Kind {
	case models.ErrorKindTimeout, models.ErrorKindNetworkError:
		return false
	}
	return true
}

// CacheKeyFromURL builds the cache key for a cleaned URL. The fragment never
// reaches the server, so URLs differing only by fragment share an entry.
func CacheKeyFromURL(cleanedURL string) string {
	key, _, _ := strings.Cut(cleanedURL, "#")
	return key
}
