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

package inmem

import (
	"context"
	"fmt"
	"github.com/gobwas/glob"
	"github.com/solarisdb/lrukit/golibs/container/iterable"
	"github.com/solarisdb/lrukit/golibs/errors"
	"github.com/solarisdb/lrukit/golibs/kvs"
	"github.com/solarisdb/lrukit/golibs/ulidutils"
	"sort"
	"sync"
	"time"
)

type (
	service struct {
		lock sync.Mutex
		recs map[string]kvs.Record
		nowF func() time.Time
	}
)

// New returns new kvs.Storage in memory
func New() kvs.Storage {
	res := new(service)
	res.recs = make(map[string]kvs.Record)
	res.nowF = time.Now
	return res
}

func (s *service) Create(ctx context.Context, record kvs.Record) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if r, ok := s.get(record.Key); ok {
		return r.Version, errors.ErrExist
	}
	record = record.Copy()
	record.Version = ulidutils.NewID()
	s.recs[record.Key] = record
	return record.Version, nil
}

func (s *service) Get(ctx context.Context, key string) (kvs.Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if ctx.Err() != nil {
		return kvs.Record{}, ctx.Err()
	}
	r, ok := s.get(key)
	if !ok {
		return kvs.Record{}, errors.ErrNotExist
	}
	return r.Copy(), nil
}

func (s *service) Put(ctx context.Context, record kvs.Record) (kvs.Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if ctx.Err() != nil {
		return kvs.Record{}, ctx.Err()
	}
	record = record.Copy()
	record.Version = ulidutils.NewID()
	s.recs[record.Key] = record
	return record.Copy(), nil
}

func (s *service) Delete(ctx context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if _, ok := s.get(key); !ok {
		return errors.ErrNotExist
	}
	delete(s.recs, key)
	return nil
}

// ListKeys returns the keys matching the pattern in the lexicographical order.
func (s *service) ListKeys(ctx context.Context, pattern string) (iterable.Iterator[string], error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("could not compile the pattern %q: %w", pattern, errors.ErrInvalid)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	res := []string{}
	now := s.nowF()
	for k, r := range s.recs {
		if r.Expired(now) {
			delete(s.recs, k)
			continue
		}
		if g.Match(k) {
			res = append(res, k)
		}
	}
	sort.Strings(res)
	return iterable.WrapSlice(res), nil
}

// get returns the record by key, the expired record is removed. Must be called under the lock.
func (s *service) get(key string) (kvs.Record, bool) {
	r, ok := s.recs[key]
	if !ok {
		return kvs.Record{}, false
	}
	if r.Expired(s.nowF()) {
		delete(s.recs, key)
		return kvs.Record{}, false
	}
	return r, true
}
