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

/*
kvs package contains interfaces and structures for working with a key-value storage.
The records of a storage may be cached in memory (see pkg/kvcache), so the storage
is the source of truth, and the cache keeps the recently used records only.
*/

package kvs

import (
	"context"
	"github.com/solarisdb/lrukit/golibs/cast"
	"github.com/solarisdb/lrukit/golibs/container/iterable"
	"time"
)

type (

	// A record that can be stored in a storage
	Record struct {
		// Key is a key for the record
		Key string
		// Value is a value for the record
		Value []byte

		// A version that identifies the record. It is managed by the Storage, and
		// it is ignored in Create and update operations
		Version string

		// ExpiresAt indicate the record expiration time. If it is not provided
		// the record doesn't have the expiration time
		ExpiresAt *time.Time
	}

	// Storage interface defines some operations over the record storage.
	Storage interface {
		// Create adds a new record into the storage. It returns existing record version with
		// ErrExist error if it already exists in the storage.
		// Create returns version of the new record with error=nil
		Create(ctx context.Context, record Record) (string, error)

		// Get retrieves the record by its key. ErrNotExist is returned if the key
		// is not found in the storage
		Get(ctx context.Context, key string) (Record, error)

		// Put replaces the record if it exists and write the new one if it doesn't
		// The record version will be updated automatically
		Put(ctx context.Context, record Record) (Record, error)

		// Delete removes the record from the storage by its key. It returns
		// an error if the operation was not successful:
		//   ErrNotExist - indicates that the record does not exist
		Delete(ctx context.Context, key string) error

		// ListKeys allows to read the keys by the pattern provided. The pattern is a glob-alike
		// matcher (not a regexp). For the pattern matching please refer to the
		// Glob library doc https://github.com/gobwas/glob
		ListKeys(ctx context.Context, pattern string) (iterable.Iterator[string], error)
	}
)

// Copy returns copy of the record r
func (r Record) Copy() Record {
	var res Record
	res.Key = r.Key

	if r.Value != nil {
		res.Value = make([]byte, len(r.Value))
		copy(res.Value, r.Value)
	}
	res.Version = r.Version
	if r.ExpiresAt != nil {
		res.ExpiresAt = cast.Ptr(*r.ExpiresAt)
	}
	return res
}

// Expired returns true if the record has the expiration time, and it is before now
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}
