// Package cache memoizes Q7,10 results for repeated requests.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"sync"

	"github.com/couchcryptid/lowflow-etl/internal/lowflow"
	"github.com/couchcryptid/lowflow-etl/internal/observability"
)

// Estimator is the computation being memoized.
type Estimator interface {
	Estimate(ctx context.Context, req lowflow.Request) (lowflow.Result, error)
}

// CachedEstimator wraps an Estimator with an in-memory LRU cache keyed by a
// fingerprint of the request. Only successful results are stored.
type CachedEstimator struct {
	inner   Estimator
	cache   *lruCache[lowflow.Result]
	metrics *observability.Metrics
}

// NewCachedEstimator creates a cache decorator holding up to maxEntries results.
func NewCachedEstimator(inner Estimator, maxEntries int, metrics *observability.Metrics) *CachedEstimator {
	return &CachedEstimator{
		inner:   inner,
		cache:   newLRUCache[lowflow.Result](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedEstimator) Estimate(ctx context.Context, req lowflow.Request) (lowflow.Result, error) {
	key := Fingerprint(req)
	if res, ok := c.cache.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return res, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	res, err := c.inner.Estimate(ctx, req)
	if err != nil {
		return res, err
	}
	c.cache.put(key, res)
	return res, nil
}

// Len reports the number of cached results.
func (c *CachedEstimator) Len() int {
	return c.cache.len()
}

// Fingerprint is the hex SHA-256 of the station id, the effective parameters,
// and every observation in input order. Requests that differ only in
// parameters left at their defaults share a fingerprint.
func Fingerprint(req lowflow.Request) string {
	h := sha256.New()
	p := req.Params.WithDefaults()

	writeString(h, req.StationID)
	writeInt(h, int64(p.WindowSize))
	writeString(h, string(p.YearType))
	writeInt(h, int64(p.HydroStartMonth))
	writeInt(h, int64(p.MinYears))
	writeDate(h, p.Start.IsZero(), p.Start.Unix())
	writeDate(h, p.End.IsZero(), p.End.Unix())

	writeInt(h, int64(len(req.Observations)))
	for _, o := range req.Observations {
		writeDate(h, false, o.Date.Unix())
		if o.HasFlow {
			writeInt(h, 1)
			writeInt(h, int64(math.Float64bits(o.Flow)))
		} else {
			writeInt(h, 0)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeString(h hash.Hash, s string) {
	writeInt(h, int64(len(s)))
	h.Write([]byte(s))
}

func writeInt(h hash.Hash, v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}

func writeDate(h hash.Hash, zero bool, unix int64) {
	if zero {
		writeInt(h, math.MinInt64)
		return
	}
	writeInt(h, unix)
}

// lruCache is a thread-safe LRU cache over a doubly linked list.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.unlink(e)
	c.pushFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	if c.maxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.unlink(e)
		c.pushFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.pushFront(e)

	for len(c.entries) > c.maxEntries {
		oldest := c.tail
		c.unlink(oldest)
		delete(c.entries, oldest.key)
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) pushFront(e *entry[V]) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) unlink(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}
