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
	"github.com/solarisdb/lrukit/golibs/cast"
	"github.com/solarisdb/lrukit/golibs/errors"
	"github.com/solarisdb/lrukit/golibs/kvs"
	"github.com/solarisdb/lrukit/golibs/kvs/inmem"
	"github.com/stretchr/testify/assert"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type (
	countingStorage struct {
		kvs.Storage
		gets     atomic.Int32
		afterGet func(key string)
		inited   bool
		shutdown bool
	}
)

func (cs *countingStorage) Get(ctx context.Context, key string) (kvs.Record, error) {
	cs.gets.Add(1)
	r, err := cs.Storage.Get(ctx, key)
	if cs.afterGet != nil {
		cs.afterGet(key)
	}
	return r, err
}

func (cs *countingStorage) Init(ctx context.Context) error {
	cs.inited = true
	return nil
}

func (cs *countingStorage) Shutdown() {
	cs.shutdown = true
}

func TestCachedStorage_GetReadThrough(t *testing.T) {
	s, cs := newCachedStorage(10)
	ctx := context.Background()
	r, err := cs.Put(ctx, kvs.Record{Key: "a", Value: []byte("1")})
	assert.Nil(t, err)

	r1, err := cs.Get(ctx, "a")
	assert.Nil(t, err)
	assert.Equal(t, r, r1)
	r1, err = cs.Get(ctx, "a")
	assert.Nil(t, err)
	assert.Equal(t, r, r1)
	assert.Equal(t, int32(1), s.gets.Load())
	assert.True(t, cs.Cached("a"))

	r1.Value[0] = 'x'
	r1, err = cs.Get(ctx, "a")
	assert.Nil(t, err)
	assert.Equal(t, "1", string(r1.Value))
}

func TestCachedStorage_NotFoundIsNotCached(t *testing.T) {
	s, cs := newCachedStorage(10)
	ctx := context.Background()
	_, err := cs.Get(ctx, "a")
	assert.Equal(t, errors.ErrNotExist, err)
	assert.False(t, cs.Cached("a"))
	assert.Equal(t, 0, cs.Len())

	_, err = s.Storage.Create(ctx, kvs.Record{Key: "a", Value: []byte("1")})
	assert.Nil(t, err)
	r, err := cs.Get(ctx, "a")
	assert.Nil(t, err)
	assert.Equal(t, "1", string(r.Value))
	assert.Equal(t, int32(2), s.gets.Load())
}

func TestCachedStorage_WritesDropTheKey(t *testing.T) {
	_, cs := newCachedStorage(10)
	ctx := context.Background()
	_, err := cs.Create(ctx, kvs.Record{Key: "a", Value: []byte("1")})
	assert.Nil(t, err)
	_, err = cs.Get(ctx, "a")
	assert.Nil(t, err)
	assert.True(t, cs.Cached("a"))

	_, err = cs.Put(ctx, kvs.Record{Key: "a", Value: []byte("2")})
	assert.Nil(t, err)
	assert.False(t, cs.Cached("a"))
	r, err := cs.Get(ctx, "a")
	assert.Nil(t, err)
	assert.Equal(t, "2", string(r.Value))

	_, err = cs.Create(ctx, kvs.Record{Key: "a"})
	assert.Equal(t, errors.ErrExist, err)
	assert.False(t, cs.Cached("a"))

	_, err = cs.Get(ctx, "a")
	assert.Nil(t, err)
	assert.Nil(t, cs.Delete(ctx, "a"))
	assert.False(t, cs.Cached("a"))
	_, err = cs.Get(ctx, "a")
	assert.Equal(t, errors.ErrNotExist, err)
}

func TestCachedStorage_PutDuringLoad(t *testing.T) {
	s, cs := newCachedStorage(10)
	ctx := context.Background()
	_, err := cs.Put(ctx, kvs.Record{Key: "a", Value: []byte("1")})
	assert.Nil(t, err)

	read := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s.afterGet = func(string) {
		once.Do(func() {
			close(read)
			<-release
		})
	}

	done := make(chan string)
	go func() {
		r, _ := cs.Get(ctx, "a")
		done <- string(r.Value)
	}()
	// the loader has read the old value and is not finished yet
	<-read
	_, err = cs.Put(ctx, kvs.Record{Key: "a", Value: []byte("2")})
	assert.Nil(t, err)
	close(release)

	assert.Equal(t, "1", <-done)
	assert.False(t, cs.Cached("a"))
	r, err := cs.Get(ctx, "a")
	assert.Nil(t, err)
	assert.Equal(t, "2", string(r.Value))
	assert.True(t, cs.Cached("a"))
}

func TestCachedStorage_Capacity(t *testing.T) {
	s, cs := newCachedStorage(2)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		_, err := cs.Put(ctx, kvs.Record{Key: k})
		assert.Nil(t, err)
		_, err = cs.Get(ctx, k)
		assert.Nil(t, err)
	}
	assert.Equal(t, 2, cs.Len())
	assert.False(t, cs.Cached("a"))
	assert.True(t, cs.Cached("b"))
	assert.True(t, cs.Cached("c"))
	assert.Equal(t, int32(3), s.gets.Load())
}

func TestCachedStorage_Expired(t *testing.T) {
	_, cs := newCachedStorage(10)
	ctx := context.Background()
	now := time.Now()
	_, err := cs.Put(ctx, kvs.Record{Key: "a", ExpiresAt: cast.Ptr(now.Add(time.Minute))})
	assert.Nil(t, err)
	_, err = cs.Get(ctx, "a")
	assert.Nil(t, err)

	cs.nowF = func() time.Time { return now.Add(time.Hour) }
	_, err = cs.Get(ctx, "a")
	assert.Equal(t, errors.ErrNotExist, err)
	assert.False(t, cs.Cached("a"))
}

func TestCachedStorage_Invalidate(t *testing.T) {
	_, cs := newCachedStorage(10)
	ctx := context.Background()
	for _, k := range []string{"user:1", "user:2", "group:1"} {
		_, err := cs.Put(ctx, kvs.Record{Key: k, Value: []byte(k)})
		assert.Nil(t, err)
		_, err = cs.Get(ctx, k)
		assert.Nil(t, err)
	}

	n, err := cs.Invalidate("user:*")
	assert.Nil(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, cs.Cached("group:1"))
	assert.Equal(t, 1, cs.Len())

	_, err = cs.Invalidate("[")
	assert.True(t, errors.Is(err, errors.ErrInvalid))

	r, err := cs.Get(ctx, "user:1")
	assert.Nil(t, err)
	assert.Equal(t, "user:1", string(r.Value))
}

func TestCachedStorage_InvalidateWhere(t *testing.T) {
	_, cs := newCachedStorage(10)
	ctx := context.Background()
	for k, v := range map[string]string{"a": "10", "b": "200", "c": "3000"} {
		_, err := cs.Put(ctx, kvs.Record{Key: k, Value: []byte(v)})
		assert.Nil(t, err)
		_, err = cs.Get(ctx, k)
		assert.Nil(t, err)
	}

	n, err := cs.InvalidateWhere("value > 100 and key != 'c'")
	assert.Nil(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, cs.Cached("b"))
	assert.True(t, cs.Cached("a"))
	assert.True(t, cs.Cached("c"))

	_, err = cs.InvalidateWhere("value >")
	assert.True(t, errors.Is(err, errors.ErrInvalid))
	assert.Equal(t, 2, cs.Len())
}

func TestCachedStorage_ListKeys(t *testing.T) {
	_, cs := newCachedStorage(10)
	ctx := context.Background()
	_, err := cs.Put(ctx, kvs.Record{Key: "a"})
	assert.Nil(t, err)
	it, err := cs.ListKeys(ctx, "*")
	assert.Nil(t, err)
	assert.True(t, it.HasNext())
	k, _ := it.Next()
	assert.Equal(t, "a", k)
	assert.Nil(t, it.Close())
}

func TestCachedStorage_Lifecycle(t *testing.T) {
	s, cs := newCachedStorage(10)
	assert.Nil(t, cs.Init(context.Background()))
	assert.True(t, s.inited)
	cs.Shutdown()
	assert.True(t, s.shutdown)

	cs = NewCachedStorage(inmem.New(), 1)
	assert.Nil(t, cs.Init(context.Background()))
	cs.Shutdown()
}

func newCachedStorage(capacity int) (*countingStorage, *CachedStorage) {
	s := &countingStorage{Storage: inmem.New()}
	return s, NewCachedStorage(s, capacity)
}
