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

package session

import (
	"context"
	"fmt"
	lctx "github.com/solarisdb/lrukit/golibs/context"
	"github.com/solarisdb/lrukit/golibs/container/lru"
	"github.com/solarisdb/lrukit/golibs/errors"
	"github.com/solarisdb/lrukit/golibs/logging"
	"github.com/solarisdb/lrukit/golibs/ulidutils"
	"maps"
	"sync"
	"time"
)

type (
	// Session is a user session kept by the Store
	Session struct {
		// ID is the session identifier (ULID)
		ID string
		// CSRFToken is the token generated for the session (UUID)
		CSRFToken string
		CreatedAt time.Time
		LastSeen  time.Time
		// Data contains the session attributes
		Data map[string]string
	}

	// Store keeps the most recently used sessions in memory. When the number of
	// sessions reaches the capacity, the least recently used one is dropped.
	// Store is safe for concurrent use.
	Store struct {
		// lock guards the sessions fields, the cache is synchronized itself
		lock   sync.Mutex
		cache  *lru.Synced[string, *Session]
		logger logging.Logger
		nowF   func() time.Time
	}
)

// NewStore returns the new Store for the maximum number of sessions provided
func NewStore(capacity int) *Store {
	s := &Store{logger: logging.NewLogger("session.Store"), nowF: time.Now}
	s.cache = lru.NewSyncedWithEvict[string, *Session](capacity, func(id string, _ *Session) {
		s.logger.Debugf("session %s is evicted", id)
	})
	return s
}

// Create creates the new session with the data provided and returns its copy
func (s *Store) Create(data map[string]string) Session {
	now := s.nowF()
	ss := &Session{
		ID:        ulidutils.NewID(),
		CSRFToken: ulidutils.NewUUID().String(),
		CreatedAt: now,
		LastSeen:  now,
		Data:      maps.Clone(data),
	}
	if ss.Data == nil {
		ss.Data = map[string]string{}
	}
	s.cache.Put(ss.ID, ss)
	return ss.copy()
}

// Get returns the session by its ID, it refreshes the session LastSeen time.
// ErrNotExist is returned if there is no such session.
func (s *Store) Get(id string) (Session, error) {
	ss, ok := s.cache.Get(id)
	if !ok {
		return Session{}, fmt.Errorf("session %s: %w", id, errors.ErrNotExist)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	ss.LastSeen = s.nowF()
	return ss.copy(), nil
}

// Delete removes the session by its ID, returns ErrNotExist if there is no such session.
func (s *Store) Delete(id string) error {
	if _, ok := s.cache.Remove(id); !ok {
		return fmt.Errorf("session %s: %w", id, errors.ErrNotExist)
	}
	return nil
}

// PurgeIdle removes the sessions which were not seen during the idle duration.
// It returns the number of removed sessions.
func (s *Store) PurgeIdle(idle time.Duration) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	before := s.cache.Len()
	deadline := s.nowF().Add(-idle)
	s.cache.Filter(func(_ string, ss *Session) bool {
		return !ss.LastSeen.Before(deadline)
	})
	n := before - s.cache.Len()
	if n > 0 {
		s.logger.Infof("purged %d idle sessions", n)
	}
	return n
}

// RunPurger calls PurgeIdle(idle) every period until the ctx is closed. It blocks
// the caller, so it is usually run in a separate goroutine.
func (s *Store) RunPurger(ctx context.Context, period, idle time.Duration) {
	s.logger.Infof("purging sessions idle for %s every %s", idle, period)
	defer s.logger.Infof("purger is stopped")
	for lctx.Sleep(ctx, period) == nil {
		s.PurgeIdle(idle)
	}
}

// Len returns the number of sessions in the store
func (s *Store) Len() int {
	return s.cache.Len()
}

func (ss *Session) copy() Session {
	res := *ss
	res.Data = maps.Clone(ss.Data)
	return res
}
