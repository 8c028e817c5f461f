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
	"fmt"
	"sync"

	"github.com/solarisdb/lrukit/golibs/errors"
)

type (
	// LoadingCache is a concurrent Cache, which creates the missing elements via the
	// createNewF function provided in NewLoadingCache. Only one createNewF call per key
	// is running at a time, all other callers asking for the same key wait for its result.
	LoadingCache[K comparable, V any] struct {
		lock       sync.Mutex
		cache      *Cache[K, V]
		inflight   map[K]*loadCall
		createNewF CreatePoolElemF[K, V]
		onDeleteF  OnDeleteElemF[K, V]
	}

	// CreatePoolElemF is the function called for creating a value for the key k
	CreatePoolElemF[K any, V any] func(k K) (V, error)

	// OnDeleteElemF is the function called when the element is evicted or removed from the cache
	OnDeleteElemF[K any, V any] func(k K, v V)

	// loadCall is the running createNewF call. The result of the call is not stored
	// if the key was removed while the call was running.
	loadCall struct {
		done    chan struct{}
		removed bool
	}
)

// NewLoadingCache creates the new LoadingCache object. It expects the maximum cache size,
// the create new element function and the optional delete notification function.
func NewLoadingCache[K comparable, V any](maxSize int, createNewF CreatePoolElemF[K, V], onDeleteF OnDeleteElemF[K, V]) (*LoadingCache[K, V], error) {
	if createNewF == nil {
		return nil, fmt.Errorf("NewLoadingCache(): createNewF must not be nil: %w", errors.ErrInvalid)
	}
	lc := new(LoadingCache[K, V])
	lc.cache = NewWithEvict[K, V](maxSize, OnEvictF[K, V](onDeleteF))
	lc.inflight = make(map[K]*loadCall)
	lc.createNewF = createNewF
	lc.onDeleteF = onDeleteF
	return lc, nil
}

// GetOrCreate returns the value for the key k. If the value is not in the cache, it will
// be created by the createNewF function. The error returned by createNewF is returned
// as is and nothing is stored in the cache.
func (lc *LoadingCache[K, V]) GetOrCreate(k K) (V, error) {
	for {
		lc.lock.Lock()
		if v, ok := lc.cache.Get(k); ok {
			lc.lock.Unlock()
			return v, nil
		}
		lcl, watcher := lc.inflight[k]
		if !watcher {
			lcl = &loadCall{done: make(chan struct{})}
			lc.inflight[k] = lcl
		}
		lc.lock.Unlock()

		// another goroutine is creating the value already, wait for it and check again
		if watcher {
			<-lcl.done
			continue
		}
		return lc.create(k, lcl)
	}
}

func (lc *LoadingCache[K, V]) create(k K, lcl *loadCall) (v V, err error) {
	defer func() {
		lc.lock.Lock()
		close(lcl.done)
		delete(lc.inflight, k)
		if err == nil && !lcl.removed {
			lc.cache.Put(k, v)
		}
		lc.lock.Unlock()
	}()
	// preset err, so the value is not stored if createNewF panics
	err = errors.ErrInternal
	return lc.createNewF(k)
}

// Peek returns the value for the key k if it is in the cache. The recency is not changed.
func (lc *LoadingCache[K, V]) Peek(k K) (V, bool) {
	lc.lock.Lock()
	defer lc.lock.Unlock()
	return lc.cache.Peek(k)
}

// Remove deletes the value for the key k. It returns false if there is no such key.
// If the value for k is being created now, the created value is returned to the
// caller of GetOrCreate, but it is not stored, and the waiting callers create it again.
func (lc *LoadingCache[K, V]) Remove(k K) bool {
	lc.lock.Lock()
	defer lc.lock.Unlock()

	if lcl, ok := lc.inflight[k]; ok {
		lcl.removed = true
	}

	v, ok := lc.cache.Remove(k)
	if ok && lc.onDeleteF != nil {
		lc.onDeleteF(k, v)
	}
	return ok
}

// Filter removes all the values for which keep returns false and returns the number of
// removed values. The onDeleteF is called for every removed value.
func (lc *LoadingCache[K, V]) Filter(keep func(k K, v V) bool) int {
	lc.lock.Lock()
	defer lc.lock.Unlock()

	var removed []K
	var values []V
	lc.cache.Filter(func(k K, v V) bool {
		if keep(k, v) {
			return true
		}
		removed = append(removed, k)
		values = append(values, v)
		return false
	})
	if lc.onDeleteF != nil {
		for i, k := range removed {
			lc.onDeleteF(k, values[i])
		}
	}
	return len(removed)
}

// Clear removes all the values from the cache and returns the number of removed ones
func (lc *LoadingCache[K, V]) Clear() int {
	return lc.Filter(func(K, V) bool { return false })
}

// Len returns the number of values in the cache
func (lc *LoadingCache[K, V]) Len() int {
	lc.lock.Lock()
	defer lc.lock.Unlock()
	return lc.cache.Len()
}
