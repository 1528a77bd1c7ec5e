// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides a short-lived memo of REST responses, keyed
// by request URL.
//
// GeoServer's configuration API is chatty: resolving one store by name
// across every workspace fetches the workspace index and then two
// store indexes per workspace, and a caller resolving several names
// in a row would fetch the same documents again each time.  The
// cache holds each successful GET payload for a short time (five
// seconds by default) so that a burst of lookups costs one round trip
// per document.
//
// Invalidation
//
// The cache does not know which documents a write affects.  Callers
// are expected to Clear() the entire cache after every mutating
// request, whatever it touched.  This is coarse, but any finer scheme
// would need to know that, for instance, deleting a layer with
// recurse also changes a store's feature type index.
//
// Expiry uses an injected clock.Clock so that tests can move time
// forward explicitly.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultTTL is how long a response stays valid if New() is given a
// zero TTL.
const DefaultTTL = 5 * time.Second

// entry is a single cached response.
type entry struct {
	key   string
	value []byte
	stamp time.Time
}

// Responses is a time-limited, least-recently-used cache of response
// payloads.  The cache can be safely accessed from multiple
// goroutines.
type Responses struct {
	ttl       time.Duration
	size      int
	clock     clock.Clock
	lock      sync.RWMutex
	evictList *list.List
	index     map[string]*list.Element

	// generation counts calls to Clear(); a fetch that overlaps
	// one is not stored.
	generation uint64
}

// New creates a new response cache.  Entries expire ttl after they
// were stored; a zero ttl means DefaultTTL.  At most size entries are
// kept, evicting the least recently used; zero or negative size means
// no limit.  A nil clk uses the wall clock.
func New(ttl time.Duration, size int, clk clock.Clock) *Responses {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Responses{
		ttl:       ttl,
		size:      size,
		clock:     clk,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// TTL returns the validity period of entries.
func (c *Responses) TTL() time.Duration {
	return c.ttl
}

// Get retrieves a response from the cache.  If it is not present, or
// has expired, calls the fetch function, and if that succeeds, saves
// the result and returns it.  This returns an error only if the item
// is not present and the fetch function returns an error; failed
// fetches are never cached.
//
// The lock is not held while fetch runs, so concurrent callers may
// fetch the same key.  If Clear() is called while a fetch is in
// progress, its result is returned but not stored.
func (c *Responses) Get(key string, fetch func(string) ([]byte, error)) ([]byte, error) {
	// This happens under a writer lock, since we need to move
	// the item to the back of the list if it is present
	c.lock.Lock()
	if element, present := c.index[key]; present {
		e := element.Value.(*entry)
		if c.valid(e) {
			c.evictList.MoveToBack(element)
			c.lock.Unlock()
			return e.value, nil
		}
		c.remove(element)
	}
	generation := c.generation
	c.lock.Unlock()

	value, err := fetch(key)
	if err != nil {
		return nil, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if c.generation == generation {
		if element, present := c.index[key]; present {
			c.remove(element)
		}
		c.add(key, value)
	}
	return value, nil
}

// Peek looks for a valid response in the cache and returns it if
// present.  This runs under a reader lock and does not affect the
// recency of the item.
func (c *Responses) Peek(key string) ([]byte, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if element, present := c.index[key]; present {
		e := element.Value.(*entry)
		if c.valid(e) {
			return e.value, true
		}
	}
	return nil, false
}

// Put stores a response, stamped with the current time, possibly
// evicting something.
func (c *Responses) Put(key string, value []byte) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if element, present := c.index[key]; present {
		c.remove(element)
	}
	c.add(key, value)
}

// Remove takes a single response out of the cache.  It does nothing
// if the key is not present.
func (c *Responses) Remove(key string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if element, present := c.index[key]; present {
		c.remove(element)
	}
}

// Clear empties the cache.
func (c *Responses) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.evictList.Init()
	c.index = make(map[string]*list.Element)
	c.generation++
}

// Len returns the number of stored responses, including any that
// have expired but not yet been dropped.
func (c *Responses) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.index)
}

// valid reports whether e is younger than the TTL.
func (c *Responses) valid(e *entry) bool {
	return c.clock.Now().Sub(e.stamp) < c.ttl
}

// remove is an internal helper, running under the write lock, that
// drops one element.
func (c *Responses) remove(element *list.Element) {
	e := element.Value.(*entry)
	delete(c.index, e.key)
	c.evictList.Remove(element)
}

// add is an internal helper, running under the write lock, that adds a
// new item to the cache.  The key is known to not already exist.
func (c *Responses) add(key string, value []byte) {
	element := c.evictList.PushBack(&entry{
		key:   key,
		value: value,
		stamp: c.clock.Now(),
	})
	c.index[key] = element

	// If this caused the cache to go over size, start evicting items
	for c.size > 0 && len(c.index) > c.size {
		c.remove(c.evictList.Front())
	}
}
