package dispatch

import (
	"container/list"
	"sync"
	"time"

	"github.com/notifkit/notifkit/pkg/notification"
)

// Eviction reasons passed to the onEvict callback.
const (
	evictReasonSize  = "size"
	evictReasonTTL   = "ttl"
	evictReasonClear = "clear"
)

type cacheEntry struct {
	result     notification.Result
	insertedAt time.Time
}

// resultCache is a bounded expiry cache of terminal results keyed by
// notification identity. Entries age from their insertion time only; reads
// never refresh them. When full, the oldest-inserted entry is evicted first.
// A background sweep removes expired entries so memory is reclaimed even
// without further inserts.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front = oldest inserted, back = newest
	index    map[string]*list.Element
	onEvict  func(id string, reason string)

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// newResultCache starts the sweep goroutine; the cache must be released with
// stop. capacity and ttl are assumed validated by the queue constructor.
func newResultCache(capacity int, ttl, sweepInterval time.Duration, onEvict func(id, reason string)) *resultCache {
	if sweepInterval <= 0 {
		sweepInterval = ttl / 4
	}
	c := &resultCache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		index:    make(map[string]*list.Element),
		onEvict:  onEvict,
		done:     make(chan struct{}),
	}
	c.wg.Add(1)
	go c.sweep(sweepInterval)
	return c
}

// get returns the live entry for id. Entries past their TTL are reported as
// absent even before the sweeper reaps them.
func (c *resultCache) get(id string) (notification.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[id]
	if !ok {
		return notification.Result{}, false
	}
	entry := elem.Value.(*cacheEntry)
	if time.Since(entry.insertedAt) > c.ttl {
		return notification.Result{}, false
	}
	return entry.result, true
}

// set records res under its notification identity, evicting the oldest entry
// when the cache is at capacity. Re-recording an identity counts as a fresh
// insertion.
func (c *resultCache) set(res notification.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if elem, ok := c.index[res.NotificationID]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.result = res
		entry.insertedAt = now
		c.order.MoveToBack(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}
	c.index[res.NotificationID] = c.order.PushBack(&cacheEntry{
		result:     res,
		insertedAt: now,
	})
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *resultCache) clearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range c.index {
		c.notifyEvict(id, evictReasonClear)
	}
	c.order.Init()
	clear(c.index)
}

// evictOldest must be called with the lock held.
func (c *resultCache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	entry := front.Value.(*cacheEntry)
	c.removeElement(front)
	c.notifyEvict(entry.result.NotificationID, evictReasonSize)
}

// removeElement must be called with the lock held.
func (c *resultCache) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.index, elem.Value.(*cacheEntry).result.NotificationID)
}

func (c *resultCache) notifyEvict(id, reason string) {
	if c.onEvict != nil {
		c.onEvict(id, reason)
	}
}

// sweep periodically removes entries older than the TTL. Insertion order is
// age order, so expired entries always form a prefix of the list.
func (c *resultCache) sweep(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *resultCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for front := c.order.Front(); front != nil; front = c.order.Front() {
		entry := front.Value.(*cacheEntry)
		if now.Sub(entry.insertedAt) <= c.ttl {
			return
		}
		c.removeElement(front)
		c.notifyEvict(entry.result.NotificationID, evictReasonTTL)
	}
}

// stop terminates the sweep goroutine. Safe to call more than once.
func (c *resultCache) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}
