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
package iterable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapSlice(t *testing.T) {
	it := WrapSlice[int](nil)
	assert.False(t, it.HasNext())
	i, ok := it.Next()
	assert.Equal(t, 0, i)
	assert.False(t, ok)

	it = WrapSlice([]int{})
	assert.False(t, it.HasNext())
	i, ok = it.Next()
	assert.Equal(t, 0, i)
	assert.False(t, ok)
}

func TestSliceIterator_Next(t *testing.T) {
	s := []string{"aa", "bb", "cc"}
	it := WrapSlice(s)
	for _, v := range s {
		assert.True(t, it.HasNext())
		v1, ok := it.Next()
		assert.True(t, ok)
		assert.Equal(t, v, v1)
	}
	assert.False(t, it.HasNext())
	assert.Nil(t, it.Close())
	assert.False(t, it.HasNext())
}

func TestCollect(t *testing.T) {
	res, err := Collect(WrapSlice([]int{3, 1, 2}))
	assert.Nil(t, err)
	assert.Equal(t, []int{3, 1, 2}, res)

	res, err = Collect[int](&EmptyIterator[int]{})
	assert.Nil(t, err)
	assert.Nil(t, res)
}
