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
	"time"
)

type (
	// ExpirableCache is a LoadingCache which checks whether the value reached its expiration
	// time and re-creates it by calling the createNewF in this case
	ExpirableCache[K comparable, V CacheItem] struct {
		*LoadingCache[K, V]
		nowF func() time.Time
	}

	// ExpirableItem is a helper struct for the ExpirableCache. It allows to
	// keep any value in the cache with an expiration time.
	ExpirableItem[V any] struct {
		Value     V
		ExpiresAt time.Time
	}

	// CacheItem is the interface the ExpirableCache values must implement
	CacheItem interface {
		GetExpiresAt() time.Time
	}
)

// NewExpirableCache creates the new ExpirableCache
func NewExpirableCache[K comparable, V CacheItem](maxSize int, createNewF CreatePoolElemF[K, V], onDeleteF OnDeleteElemF[K, V]) (*ExpirableCache[K, V], error) {
	lc, err := NewLoadingCache[K, V](maxSize, createNewF, onDeleteF)
	if err != nil {
		return nil, err
	}
	return &ExpirableCache[K, V]{LoadingCache: lc, nowF: time.Now}, nil
}

// GetOrCreate returns the not expired value for the key k, creating it if needed
func (ec *ExpirableCache[K, V]) GetOrCreate(k K) (V, error) {
	v, err := ec.LoadingCache.GetOrCreate(k)
	if err != nil {
		return v, err
	}
	if v.GetExpiresAt().Before(ec.nowF()) {
		ec.Remove(k)
		return ec.LoadingCache.GetOrCreate(k)
	}
	return v, nil
}

// NewCacheItem returns the ExpirableItem for the value and its expiration time
func NewCacheItem[V any](value V, expiresAt time.Time) ExpirableItem[V] {
	return ExpirableItem[V]{
		Value:     value,
		ExpiresAt: expiresAt,
	}
}

// GetExpiresAt implements CacheItem
func (i ExpirableItem[V]) GetExpiresAt() time.Time {
	return i.ExpiresAt
}
