// Package detail caches per-point detail records for the popup. One network
// request is issued per unique (point id, metric mode); repeat lookups are
// served from the cache until a metric-mode switch invalidates it.
package detail

import (
	"context"
	"log"

	"thermal-scene/internal/api"
)

// Source fetches a detail record. Implemented by the api client.
type Source interface {
	FetchDetail(ctx context.Context, id string, mode api.MetricMode) (*api.PointDetail, error)
}

// Key identifies one cache entry.
type Key struct {
	PointID string
	Mode    api.MetricMode
}

// Callback receives a freshly fetched record. Callbacks run on the UI thread
// and must re-validate that the record's id is still the active one before
// touching popup state; the cache is updated either way.
type Callback func(*api.PointDetail)

// Cache holds fetched detail records and coalesces in-flight requests.
// Completions are marshalled through the dispatch function (fyne.Do in the
// application, synchronous in tests), so all fields are touched from one
// logical thread only.
type Cache struct {
	source   Source
	dispatch func(func())

	entries map[Key]*api.PointDetail
	waiting map[Key][]Callback
}

// NewCache creates a cache over a source. dispatch marshals fetch completions
// back onto the UI thread.
func NewCache(source Source, dispatch func(func())) *Cache {
	return &Cache{
		source:   source,
		dispatch: dispatch,
		entries:  make(map[Key]*api.PointDetail),
		waiting:  make(map[Key][]Callback),
	}
}

// Get returns the cached record for a key, if present.
func (c *Cache) Get(id string, mode api.MetricMode) (*api.PointDetail, bool) {
	d, ok := c.entries[Key{PointID: id, Mode: mode}]
	return d, ok
}

// Fetch delivers the record for (id, mode): synchronously from the cache when
// hit, otherwise via one network request shared by every caller that asks
// while it is in flight. Fetch failures are logged and dropped; the caller's
// fallback content simply stays up.
func (c *Cache) Fetch(ctx context.Context, id string, mode api.MetricMode, cb Callback) {
	key := Key{PointID: id, Mode: mode}

	if d, ok := c.entries[key]; ok {
		cb(d)
		return
	}

	if _, inflight := c.waiting[key]; inflight {
		c.waiting[key] = append(c.waiting[key], cb)
		return
	}
	c.waiting[key] = []Callback{cb}

	go func() {
		d, err := c.source.FetchDetail(ctx, id, mode)
		c.dispatch(func() {
			waiters := c.waiting[key]
			delete(c.waiting, key)
			if err != nil {
				log.Printf("Detail: fetch %s (%s): %v", id, mode, err)
				return
			}
			// A stale response still lands in the cache even if the
			// pointer moved on; the waiters decide what is current.
			c.entries[key] = d
			for _, w := range waiters {
				w(d)
			}
		})
	}()
}

// Invalidate drops every cached record. Called on metric-mode switch, the only
// event that invalidates the cache.
func (c *Cache) Invalidate() {
	c.entries = make(map[Key]*api.PointDetail)
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return len(c.entries)
}
