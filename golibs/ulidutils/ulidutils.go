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
package ulidutils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// New returns new ulid.ULID.
func New() ulid.ULID {
	return ulid.Make()
}

// NewUUID returns new ulid.ULID converted to uuid.UUID.
func NewUUID() uuid.UUID {
	return uuid.UUID(New())
}

// NewID returns new ulid.ULID in string format. An ID returned earlier is
// lexicographically less than the ID returned after it.
func NewID() string {
	return New().String()
}

// Time returns the creation time encoded in the ULID string id
func Time(id string) (time.Time, error) {
	uID, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse ULID=%q: %w", id, err)
	}
	return ulid.Time(uID.Time()), nil
}
