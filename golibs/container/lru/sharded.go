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
	"github.com/cespare/xxhash/v2"
)

type (
	// Sharded splits the key space between independent Synced caches, so the goroutines
	// working with different shards do not compete for one lock. The LRU discipline is
	// kept per shard: a Put may evict the least recently used entry of its own shard only.
	Sharded[K comparable, V any] struct {
		shards []*Synced[K, V]
		hashF  HashF[K]
	}

	// HashF returns the hash value for the key
	HashF[K any] func(k K) uint64
)

// StringHash is the HashF for string keys
func StringHash(k string) uint64 {
	return xxhash.Sum64String(k)
}

// NewSharded creates the Sharded cache with the total capacity split between the shards.
// The capacity is clamped to at least 1, and the number of shards is limited by it, so
// every shard holds at least one entry and the shards together hold at most capacity entries.
func NewSharded[K comparable, V any](shards, capacity int, hashF HashF[K]) *Sharded[K, V] {
	capacity = max(1, capacity)
	shards = min(max(1, shards), capacity)
	s := &Sharded[K, V]{shards: make([]*Synced[K, V], shards), hashF: hashF}
	for i := range s.shards {
		perShard := capacity / shards
		if i < capacity%shards {
			perShard++
		}
		s.shards[i] = NewSynced[K, V](perShard)
	}
	return s
}

func (s *Sharded[K, V]) shard(k K) *Synced[K, V] {
	return s.shards[s.hashF(k)%uint64(len(s.shards))]
}

// Put see Cache.Put
func (s *Sharded[K, V]) Put(k K, v V) {
	s.shard(k).Put(k, v)
}

// Get see Cache.Get
func (s *Sharded[K, V]) Get(k K) (V, bool) {
	return s.shard(k).Get(k)
}

// Peek see Cache.Peek
func (s *Sharded[K, V]) Peek(k K) (V, bool) {
	return s.shard(k).Peek(k)
}

// Remove see Cache.Remove
func (s *Sharded[K, V]) Remove(k K) (V, bool) {
	return s.shard(k).Remove(k)
}

// RemoveAll clears every shard
func (s *Sharded[K, V]) RemoveAll() {
	for _, sh := range s.shards {
		sh.RemoveAll()
	}
}

// Filter applies keep to every shard one by one. A panic in keep leaves the
// shards filtered before it changed.
func (s *Sharded[K, V]) Filter(keep func(k K, v V) bool) {
	for _, sh := range s.shards {
		sh.Filter(keep)
	}
}

// Len returns the total number of entries in all the shards
func (s *Sharded[K, V]) Len() int {
	res := 0
	for _, sh := range s.shards {
		res += sh.Len()
	}
	return res
}

// IsEmpty returns true if all the shards are empty
func (s *Sharded[K, V]) IsEmpty() bool {
	return s.Len() == 0
}

// Cap returns the total capacity of all the shards
func (s *Sharded[K, V]) Cap() int {
	res := 0
	for _, sh := range s.shards {
		res += sh.Cap()
	}
	return res
}
