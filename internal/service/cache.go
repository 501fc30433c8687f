package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/loog-project/instrux/internal/store"
	"github.com/loog-project/instrux/pkg/jsonvalue"
)

const (
	cacheSweepEvery  = 10 * time.Second // janitor wake-up
	defaultTTL       = 40 * time.Second // cold entry expires after this
	ttlHitBonus      = 4 * time.Second  // each extra read adds this much TTL
	maxCachedEntries = 10_000
)

// contentEntry is the parsed content of one revision. Revisions are
// immutable, so an entry never goes stale, it only goes cold.
type contentEntry struct {
	value    *jsonvalue.Value
	lastRead int64 // unix-nsec; atomic
	hitCount uint32
}

// contentCache maps revision IDs to parsed content.
type contentCache struct {
	ttl    time.Duration
	mu     sync.RWMutex
	data   map[store.RevisionID]*contentEntry
	stopCh chan struct{}
	once   sync.Once
}

// newContentCache returns a new cache with a janitor that evicts cold entries.
func newContentCache(ttl time.Duration) *contentCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c := &contentCache{
		ttl:    ttl,
		data:   make(map[store.RevisionID]*contentEntry, 256),
		stopCh: make(chan struct{}),
	}
	go c.janitor()
	return c
}

// close stops the janitor and clears the cache.
func (c *contentCache) close() {
	c.once.Do(func() {
		close(c.stopCh)
		c.mu.Lock()
		c.data = nil
		c.mu.Unlock()
	})
}

func (c *contentCache) evictCold(now time.Time) {
	c.mu.Lock()
	for k, e := range c.data {
		age := now.Sub(time.Unix(0, atomic.LoadInt64(&e.lastRead)))
		ttl := c.ttl + time.Duration(atomic.LoadUint32(&e.hitCount))*ttlHitBonus
		if age > ttl {
			delete(c.data, k)
		} else if hc := atomic.LoadUint32(&e.hitCount); hc > 0 {
			// decay so old popularity fades
			atomic.StoreUint32(&e.hitCount, hc/2)
		}
	}
	c.mu.Unlock()
}

func (c *contentCache) janitor() {
	ticker := time.NewTicker(cacheSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			c.evictCold(now)
		case <-c.stopCh:
			return
		}
	}
}

// get returns nil on a miss.
func (c *contentCache) get(id store.RevisionID) *jsonvalue.Value {
	c.mu.RLock()
	entry := c.data[id]
	c.mu.RUnlock()

	if entry == nil {
		return nil
	}

	atomic.AddUint32(&entry.hitCount, 1)
	atomic.StoreInt64(&entry.lastRead, time.Now().UnixNano())
	return entry.value
}

func (c *contentCache) set(id store.RevisionID, v *jsonvalue.Value) {
	entry := &contentEntry{value: v, lastRead: time.Now().UnixNano()}
	c.mu.Lock()
	if c.data != nil && len(c.data) < maxCachedEntries {
		c.data[id] = entry
	}
	c.mu.Unlock()
}

func (c *contentCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
