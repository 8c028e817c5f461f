// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package lru

import (
	"github.com/solarisdb/lrukit/golibs/container/iterable"
)

type (
	// Cache is a key-value container with limited capacity and the LRU (Least Recently Used)
	// pull out discipline. Put of a new key into the full cache evicts exactly one entry, the
	// least recently used one. Put and Get make the key the most recently used one.
	//
	// The storage and the recency order are kept by one iterable.Map, so the
	// hash index and the order list never drift apart and all operations are O(1).
	//
	// Cache is not safe for concurrent use. See Synced and Sharded for the
	// concurrent wrappers.
	Cache[K comparable, V any] struct {
		capacity int
		items    *iterable.Map[K, V]
		onEvictF OnEvictF[K, V]
	}

	// OnEvictF is called for the entry pulled out of the cache because of the capacity limit
	OnEvictF[K any, V any] func(k K, v V)
)

// New creates the new Cache. The capacity less than 1 is treated as 1.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return NewWithEvict[K, V](capacity, nil)
}

// NewWithEvict creates the new Cache, which calls onEvictF (if not nil) for every entry
// evicted by Put. The callback is not called for Remove, RemoveAll or Filter.
func NewWithEvict[K comparable, V any](capacity int, onEvictF OnEvictF[K, V]) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	c := new(Cache[K, V])
	c.capacity = capacity
	c.items = iterable.NewMap[K, V]()
	c.onEvictF = onEvictF
	return c
}

// Put stores the value v for the key k and makes k the most recently used key. If k is
// already in the cache, its value is replaced and nothing is evicted. If k is new and the
// cache is full, the least recently used entry is evicted first.
func (c *Cache[K, V]) Put(k K, v V) {
	if c.items.Set(k, v) {
		c.items.MoveToBack(k)
		return
	}

	var (
		ek      K
		ev      V
		evicted bool
	)
	if c.items.Len() >= c.capacity {
		ek, evicted = c.items.First()
		ev, _ = c.items.Get(ek)
		c.items.Remove(ek)
	}
	_ = c.items.Add(k, v)

	if evicted && c.onEvictF != nil {
		c.onEvictF(ek, ev)
	}
}

// Get returns the value for the key k and makes k the most recently used key. The
// second result is false if there is no such key.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	v, ok := c.items.Get(k)
	if ok {
		c.items.MoveToBack(k)
	}
	return v, ok
}

// Peek returns the value for the key k without updating its recency
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	return c.items.Get(k)
}

// Contains returns whether the key k is in the cache, the recency is not updated
func (c *Cache[K, V]) Contains(k K) bool {
	_, ok := c.items.Get(k)
	return ok
}

// Remove deletes the key k and returns its value. The second result is false if there
// was no such key, in this case the cache is not changed.
func (c *Cache[K, V]) Remove(k K) (V, bool) {
	v, ok := c.items.Get(k)
	if ok {
		c.items.Remove(k)
	}
	return v, ok
}

// RemoveAll deletes all the entries from the cache
func (c *Cache[K, V]) RemoveAll() {
	c.items.Clear()
}

// Filter keeps only the entries for which keep returns true. The kept entries stay in
// the same recency order. keep is called from the least to the most recently used entry
// and must not modify the cache.
//
// If keep panics, the panic is propagated and the cache is not changed.
func (c *Cache[K, V]) Filter(keep func(k K, v V) bool) {
	_ = c.FilterE(func(k K, v V) (bool, error) {
		return keep(k, v), nil
	})
}

// FilterE is the same as Filter, but keep may return an error. The first error stops the
// filtering and is returned as is, the cache is not changed in this case.
func (c *Cache[K, V]) FilterE(keep func(k K, v V) (bool, error)) error {
	res := iterable.NewMap[K, V]()
	it := c.items.Iterator()
	defer it.Close()
	for it.HasNext() {
		e, ok := it.Next()
		if !ok {
			continue
		}
		kept, err := keep(e.Key, e.Value)
		if err != nil {
			return err
		}
		if kept {
			_ = res.Add(e.Key, e.Value)
		}
	}
	c.items = res
	return nil
}

// Oldest returns the least recently used entry, which is the next one to be evicted
func (c *Cache[K, V]) Oldest() (K, V, bool) {
	k, ok := c.items.First()
	if !ok {
		return k, *new(V), false
	}
	v, _ := c.items.Get(k)
	return k, v, true
}

// Keys returns the cache keys from the least to the most recently used one
func (c *Cache[K, V]) Keys() []K {
	return c.items.Keys()
}

// Len returns the number of entries in the cache
func (c *Cache[K, V]) Len() int {
	return c.items.Len()
}

// IsEmpty returns true if the cache has no entries
func (c *Cache[K, V]) IsEmpty() bool {
	return c.items.Len() == 0
}

// Cap returns the cache capacity
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}
