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

package redis

import (
	"context"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/solarisdb/lrukit/golibs/cast"
	"github.com/solarisdb/lrukit/golibs/container/iterable"
	"github.com/solarisdb/lrukit/golibs/errors"
	"github.com/solarisdb/lrukit/golibs/kvs"
	"github.com/solarisdb/lrukit/golibs/logging"
	"github.com/solarisdb/lrukit/golibs/ulidutils"
	"time"
)

type (
	// Storage is the kvs.Storage backed by a redis server
	Storage struct {
		rdb    *redis.Client
		logger logging.Logger
	}

	keysIterator struct {
		ctx context.Context
		si  *redis.ScanIterator
		val *string
	}
)

var _ kvs.Storage = (*Storage)(nil)

// New returns the new Storage connected to the redis server by opts
func New(opts *redis.Options) *Storage {
	return &Storage{rdb: redis.NewClient(opts), logger: logging.NewLogger("redis.Storage")}
}

// Init implements linker.Initializer. It checks that the server is reachable.
func (s *Storage) Init(ctx context.Context) error {
	s.logger.Infof("Initializing with addr=%s", s.rdb.Options().Addr)
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s failed: %w", s.rdb.Options().Addr, err)
	}
	return nil
}

// Shutdown implements linker.Shutdowner
func (s *Storage) Shutdown() {
	s.logger.Infof("Shutting down...")
	_ = s.rdb.Close()
}

func (s *Storage) Create(ctx context.Context, record kvs.Record) (string, error) {
	record.Version = ulidutils.NewID()
	buf := rec2db(&record)
	ok, err := s.rdb.SetNX(ctx, rKey(record.Key), buf, expiration(record.ExpiresAt, time.Now())).Result()
	if err != nil {
		return "", checkErr(err)
	}
	if !ok {
		// the record may be gone already, so the version is empty then
		if r, err := s.Get(ctx, record.Key); err == nil {
			return r.Version, errors.ErrExist
		}
		return "", errors.ErrExist
	}
	return record.Version, nil
}

func (s *Storage) Get(ctx context.Context, key string) (kvs.Record, error) {
	val, err := s.rdb.Get(ctx, rKey(key)).Result()
	if err != nil {
		return kvs.Record{}, checkErr(err)
	}

	r, err := db2rec(cast.StringToByteArray(val))
	if err != nil {
		s.logger.Warnf("could not read the record for key=%s: %v", key, err)
		return kvs.Record{}, err
	}
	r.Key = key
	return r, nil
}

func (s *Storage) Put(ctx context.Context, record kvs.Record) (kvs.Record, error) {
	record.Version = ulidutils.NewID()
	buf := rec2db(&record)
	_, err := s.rdb.Set(ctx, rKey(record.Key), buf, expiration(record.ExpiresAt, time.Now())).Result()
	return record, checkErr(err)
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	cnt, err := s.rdb.Del(ctx, rKey(key)).Result()
	if err != nil {
		return checkErr(err)
	}
	if cnt == 0 {
		return errors.ErrNotExist
	}
	return nil
}

// ListKeys allows to read the keys by the pattern provided. The redis glob syntax
// is used for the pattern.
func (s *Storage) ListKeys(ctx context.Context, pattern string) (iterable.Iterator[string], error) {
	si := s.rdb.Scan(ctx, 0, rKey(pattern), 1000).Iterator()
	return &keysIterator{ctx: ctx, si: si}, nil
}

func checkErr(err error) error {
	if err == nil {
		return nil
	}
	if err == redis.Nil {
		return errors.ErrNotExist
	}
	return err
}

func expiration(eat *time.Time, curT time.Time) time.Duration {
	expiration := time.Duration(0)
	if eat != nil {
		expiration = (*eat).Sub(curT)
		if expiration < time.Millisecond {
			expiration = time.Millisecond
		}
	}
	return expiration
}

func rKey(key string) string {
	for len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	return fmt.Sprintf("/kvs/%s", key)
}

func key(rKey string) string {
	if len(rKey) > 5 {
		return rKey[5:]
	}
	return ""
}

var _ iterable.Iterator[string] = (*keysIterator)(nil)

func (k *keysIterator) HasNext() bool {
	if k.si == nil {
		return false
	}
	if k.val == nil && k.si.Next(k.ctx) {
		k.val = cast.Ptr(key(k.si.Val()))
	}
	return k.val != nil
}

func (k *keysIterator) Next() (string, bool) {
	if k.HasNext() {
		res := *k.val
		k.val = nil
		return res, true
	}
	return "", false
}

func (k *keysIterator) Close() error {
	var err error
	if k.si != nil {
		err = k.si.Err()
	}
	k.si = nil
	k.val = nil
	return err
}
