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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	prev := NewID()
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.NotEqual(t, prev, id)
		prev = id
	}
}

func TestTime(t *testing.T) {
	start := time.Now().Add(-time.Millisecond)
	tm, err := Time(NewID())
	assert.Nil(t, err)
	assert.False(t, tm.Before(start.Truncate(time.Millisecond)))

	_, err = Time("invalid")
	assert.NotNil(t, err)
}

func TestNewUUID(t *testing.T) {
	assert.Equal(t, 16, len(NewUUID()))
	assert.NotEqual(t, NewUUID().String(), NewUUID().String())
}
