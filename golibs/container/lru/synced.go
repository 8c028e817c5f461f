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
	"sync"
)

// Synced is the Cache guarded by a mutex, so it can be shared between goroutines.
// Every call holds the lock for its whole duration, including the Filter callbacks.
type Synced[K comparable, V any] struct {
	lock  sync.Mutex
	cache *Cache[K, V]
}

// NewSynced creates the new Synced cache. The capacity less than 1 is treated as 1.
func NewSynced[K comparable, V any](capacity int) *Synced[K, V] {
	return &Synced[K, V]{cache: New[K, V](capacity)}
}

// NewSyncedWithEvict is the same as NewSynced, but with the eviction callback. The
// callback is called with the lock held, so it must not call the cache.
func NewSyncedWithEvict[K comparable, V any](capacity int, onEvictF OnEvictF[K, V]) *Synced[K, V] {
	return &Synced[K, V]{cache: NewWithEvict[K, V](capacity, onEvictF)}
}

// Put see Cache.Put
func (s *Synced[K, V]) Put(k K, v V) {
	s.lock.Lock()
	s.cache.Put(k, v)
	s.lock.Unlock()
}

// Get see Cache.Get
func (s *Synced[K, V]) Get(k K) (V, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cache.Get(k)
}

// Peek see Cache.Peek
func (s *Synced[K, V]) Peek(k K) (V, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cache.Peek(k)
}

// Contains see Cache.Contains
func (s *Synced[K, V]) Contains(k K) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cache.Contains(k)
}

// Remove see Cache.Remove
func (s *Synced[K, V]) Remove(k K) (V, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cache.Remove(k)
}

// RemoveAll see Cache.RemoveAll
func (s *Synced[K, V]) RemoveAll() {
	s.lock.Lock()
	s.cache.RemoveAll()
	s.lock.Unlock()
}

// Filter see Cache.Filter. keep must not call the cache.
func (s *Synced[K, V]) Filter(keep func(k K, v V) bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cache.Filter(keep)
}

// FilterE see Cache.FilterE. keep must not call the cache.
func (s *Synced[K, V]) FilterE(keep func(k K, v V) (bool, error)) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cache.FilterE(keep)
}

// Keys see Cache.Keys
func (s *Synced[K, V]) Keys() []K {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cache.Keys()
}

// Len see Cache.Len
func (s *Synced[K, V]) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cache.Len()
}

// IsEmpty see Cache.IsEmpty
func (s *Synced[K, V]) IsEmpty() bool {
	return s.Len() == 0
}

// Cap see Cache.Cap
func (s *Synced[K, V]) Cap() int {
	return s.cache.Cap()
}
