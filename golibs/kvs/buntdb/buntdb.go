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

package buntdb

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/solarisdb/lrukit/golibs/cast"
	"github.com/solarisdb/lrukit/golibs/container/iterable"
	"github.com/solarisdb/lrukit/golibs/errors"
	"github.com/solarisdb/lrukit/golibs/kvs"
	"github.com/solarisdb/lrukit/golibs/logging"
	"github.com/solarisdb/lrukit/golibs/ulidutils"
	"github.com/tidwall/buntdb"
	"time"
)

type (
	// Config specifies configuration for the records storage
	// based on BuntDB https://github.com/tidwall/buntdb
	Config struct {
		// DBFilePath specifies path to the DB file
		// if empty the in-mem version is used
		DBFilePath string
	}

	// Storage implements kvs.Storage on top of BuntDB. The record expiration
	// is handled by the BuntDB TTL.
	Storage struct {
		cfg    *Config
		db     *buntdb.DB
		logger logging.Logger
		nowF   func() time.Time
	}

	entry struct {
		Value     []byte     `json:"value,omitempty"`
		Version   string     `json:"version"`
		ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	}
)

var _ kvs.Storage = (*Storage)(nil)

// NewStorage creates new records storage based on BuntDB
func NewStorage(cfg Config) *Storage {
	return &Storage{cfg: &cfg, nowF: time.Now, logger: logging.NewLogger("buntdb.Storage")}
}

// Init implements linker.Initializer
func (s *Storage) Init(ctx context.Context) error {
	path := s.cfg.DBFilePath
	if len(path) == 0 {
		path = ":memory:"
	}
	s.logger.Infof("Initializing with dbFilePath=%s", path)

	var err error
	s.db, err = buntdb.Open(path)
	if err != nil {
		return fmt.Errorf("buntdb.Open(%s) failed: %w", path, err)
	}
	return nil
}

// Shutdown implements linker.Shutdowner
func (s *Storage) Shutdown() {
	s.logger.Infof("Shutting down...")
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Create implements kvs.Storage
func (s *Storage) Create(ctx context.Context, record kvs.Record) (string, error) {
	tx, err := s.beginTx(true)
	if err != nil {
		return "", err
	}
	defer mustRollback(tx)

	if e, err := s.getEntry(tx, record.Key); err == nil {
		return e.Version, errors.ErrExist
	} else if !errors.Is(err, errors.ErrNotExist) {
		return "", err
	}

	e := toEntry(record)
	if err := s.setEntry(tx, record.Key, e); err != nil {
		return "", err
	}
	mustCommit(tx)
	return e.Version, nil
}

// Get implements kvs.Storage
func (s *Storage) Get(ctx context.Context, key string) (kvs.Record, error) {
	tx, err := s.beginTx(false)
	if err != nil {
		return kvs.Record{}, err
	}
	defer mustRollback(tx)

	e, err := s.getEntry(tx, key)
	if err != nil {
		return kvs.Record{}, err
	}
	return toRecord(key, e), nil
}

// Put implements kvs.Storage
func (s *Storage) Put(ctx context.Context, record kvs.Record) (kvs.Record, error) {
	tx, err := s.beginTx(true)
	if err != nil {
		return kvs.Record{}, err
	}
	defer mustRollback(tx)

	e := toEntry(record)
	if err := s.setEntry(tx, record.Key, e); err != nil {
		return kvs.Record{}, err
	}
	mustCommit(tx)
	return toRecord(record.Key, e), nil
}

// Delete implements kvs.Storage
func (s *Storage) Delete(ctx context.Context, key string) error {
	tx, err := s.beginTx(true)
	if err != nil {
		return err
	}
	defer mustRollback(tx)

	if _, err := s.getEntry(tx, key); err != nil {
		return err
	}
	if _, err := tx.Delete(key); err != nil {
		return fmt.Errorf("tx.Delete(%s) failed: %w", key, err)
	}
	mustCommit(tx)
	return nil
}

// ListKeys implements kvs.Storage. The keys are returned in ascending order,
// the pattern supports '*' and '?' wildcards.
func (s *Storage) ListKeys(ctx context.Context, pattern string) (iterable.Iterator[string], error) {
	tx, err := s.beginTx(false)
	if err != nil {
		return nil, err
	}
	defer mustRollback(tx)

	now := s.nowF()
	res := []string{}
	err = tx.AscendKeys(pattern, func(k, v string) bool {
		if e, err := unmarshal(v); err == nil && !e.expired(now) {
			res = append(res, k)
		}
		return ctx.Err() == nil
	})
	if err != nil {
		return nil, fmt.Errorf("tx.AscendKeys(%s) failed: %w", pattern, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return iterable.WrapSlice(res), nil
}

func (s *Storage) beginTx(writable bool) (*buntdb.Tx, error) {
	if s.db == nil {
		return nil, fmt.Errorf("the storage is not initialized: %w", errors.ErrClosed)
	}
	tx, err := s.db.Begin(writable)
	if errors.Is(err, buntdb.ErrDatabaseClosed) {
		return nil, fmt.Errorf("the storage is shut down: %w", errors.ErrClosed)
	}
	if err != nil {
		return nil, fmt.Errorf("db.Begin(%t) failed: %w", writable, err)
	}
	return tx, nil
}

func mustCommit(tx *buntdb.Tx) {
	if err := tx.Commit(); err != nil {
		panic(fmt.Errorf("mustCommit() failed: %v", err))
	}
}

func mustRollback(tx *buntdb.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, buntdb.ErrTxClosed) {
		panic(fmt.Errorf("mustRollback() failed: %v", err))
	}
}

func (s *Storage) getEntry(tx *buntdb.Tx, key string) (*entry, error) {
	val, err := tx.Get(key)
	if err != nil && errors.Is(err, buntdb.ErrNotFound) {
		return nil, errors.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("tx.Get(%s) failed: %w", key, err)
	}
	e, err := unmarshal(val)
	if err != nil {
		return nil, err
	}
	if e.expired(s.nowF()) {
		return nil, errors.ErrNotExist
	}
	return e, nil
}

func (s *Storage) setEntry(tx *buntdb.Tx, key string, e *entry) error {
	var opts *buntdb.SetOptions
	if e.ExpiresAt != nil {
		ttl := e.ExpiresAt.Sub(s.nowF())
		if ttl < time.Millisecond {
			ttl = time.Millisecond
		}
		opts = &buntdb.SetOptions{Expires: true, TTL: ttl}
	}
	val := mustMarshal(e)
	if _, _, err := tx.Set(key, val, opts); err != nil {
		return fmt.Errorf("tx.Set(%s, %s) failed: %w", key, val, err)
	}
	return nil
}

func (e *entry) expired(now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}

func mustMarshal(e *entry) string {
	bytes, err := json.Marshal(e)
	if err != nil {
		panic(fmt.Errorf("mustMarshal() failed: %v", err))
	}
	return cast.ByteArrayToString(bytes)
}

func unmarshal(val string) (*entry, error) {
	e := new(entry)
	if err := json.Unmarshal(cast.StringToByteArray(val), e); err != nil {
		return nil, fmt.Errorf("could not unmarshal entry: %v: %w", err, errors.ErrDataLoss)
	}
	return e, nil
}

func toEntry(r kvs.Record) *entry {
	r = r.Copy()
	return &entry{Value: r.Value, Version: ulidutils.NewID(), ExpiresAt: r.ExpiresAt}
}

func toRecord(key string, e *entry) kvs.Record {
	return kvs.Record{Key: key, Value: e.Value, Version: e.Version, ExpiresAt: e.ExpiresAt}
}
