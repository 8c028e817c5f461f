// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kvcache

import (
	"context"
	"fmt"
	"github.com/gobwas/glob"
	"github.com/logrange/linker"
	"github.com/solarisdb/lrukit/golibs/container/iterable"
	"github.com/solarisdb/lrukit/golibs/container/lru"
	"github.com/solarisdb/lrukit/golibs/errors"
	"github.com/solarisdb/lrukit/golibs/kvs"
	"github.com/solarisdb/lrukit/golibs/logging"
	"github.com/solarisdb/lrukit/pkg/ql"
	"time"
)

type (
	// CachedStorage wraps kvs.Storage with the LRU cache of the records.
	// The records are read through the cache, and all the modifications
	// are written to the storage and drop the cached record.
	CachedStorage struct {
		storage kvs.Storage
		cache   *lru.LoadingCache[string, kvs.Record]
		logger  logging.Logger
		nowF    func() time.Time
	}
)

var _ kvs.Storage = (*CachedStorage)(nil)

// NewCachedStorage wraps storage into the cache of the capacity provided
func NewCachedStorage(storage kvs.Storage, capacity int) *CachedStorage {
	cs := &CachedStorage{storage: storage, logger: logging.NewLogger("kvcache.CachedStorage"), nowF: time.Now}
	// the loader is not nil, so NewLoadingCache never fails here. The loaded record is shared
	// by all the callers waiting for the key, so it is read with the background context, and
	// Get checks the caller's context itself.
	cs.cache, _ = lru.NewLoadingCache[string, kvs.Record](capacity, func(key string) (kvs.Record, error) {
		return storage.Get(context.Background(), key)
	}, func(key string, _ kvs.Record) {
		cs.logger.Tracef("the record key=%s is out of the cache", key)
	})
	return cs
}

// Init implements linker.Initializer
func (cs *CachedStorage) Init(ctx context.Context) error {
	if init, ok := cs.storage.(linker.Initializer); ok {
		return init.Init(ctx)
	}
	return nil
}

// Shutdown implements linker.Shutdowner
func (cs *CachedStorage) Shutdown() {
	cs.cache.Clear()
	if shut, ok := cs.storage.(linker.Shutdowner); ok {
		shut.Shutdown()
	}
}

// Create implements kvs.Storage. The writes drop the cached record after the storage
// is updated, the records being loaded at that moment are not cached either.
func (cs *CachedStorage) Create(ctx context.Context, record kvs.Record) (string, error) {
	defer cs.cache.Remove(record.Key)
	return cs.storage.Create(ctx, record)
}

// Get implements kvs.Storage. The not found results are not cached.
func (cs *CachedStorage) Get(ctx context.Context, key string) (kvs.Record, error) {
	if err := ctx.Err(); err != nil {
		return kvs.Record{}, err
	}
	r, err := cs.cache.GetOrCreate(key)
	if err != nil {
		return kvs.Record{}, err
	}
	if r.Expired(cs.nowF()) {
		cs.cache.Remove(key)
		return kvs.Record{}, errors.ErrNotExist
	}
	return r.Copy(), nil
}

// Put implements kvs.Storage
func (cs *CachedStorage) Put(ctx context.Context, record kvs.Record) (kvs.Record, error) {
	defer cs.cache.Remove(record.Key)
	return cs.storage.Put(ctx, record)
}

// Delete implements kvs.Storage
func (cs *CachedStorage) Delete(ctx context.Context, key string) error {
	defer cs.cache.Remove(key)
	return cs.storage.Delete(ctx, key)
}

// ListKeys implements kvs.Storage, the keys are always read from the storage.
func (cs *CachedStorage) ListKeys(ctx context.Context, pattern string) (iterable.Iterator[string], error) {
	return cs.storage.ListKeys(ctx, pattern)
}

// Invalidate drops all the cached records which keys match the glob pattern.
// It returns the number of dropped records.
func (cs *CachedStorage) Invalidate(pattern string) (int, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("could not compile the pattern %q: %w", pattern, errors.ErrInvalid)
	}
	n := cs.cache.Filter(func(k string, _ kvs.Record) bool {
		return !g.Match(k)
	})
	cs.logger.Debugf("invalidated %d records by pattern=%q", n, pattern)
	return n, nil
}

// InvalidateWhere drops all the cached records matching the expression (see ql.EntryDialect),
// the record value is considered as a string. It returns the number of dropped records.
func (cs *CachedStorage) InvalidateWhere(expr string) (int, error) {
	f, err := ql.BuildEntryF(expr)
	if err != nil {
		return 0, err
	}
	n := cs.cache.Filter(func(k string, r kvs.Record) bool {
		return !f(k, string(r.Value))
	})
	cs.logger.Debugf("invalidated %d records where %q", n, expr)
	return n, nil
}

// Cached returns true if the record for the key is in the cache now
func (cs *CachedStorage) Cached(key string) bool {
	_, ok := cs.cache.Peek(key)
	return ok
}

// Len returns the number of the cached records
func (cs *CachedStorage) Len() int {
	return cs.cache.Len()
}
