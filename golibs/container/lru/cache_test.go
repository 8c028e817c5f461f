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
package lru

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func BenchmarkCache_Get_NoMisses(b *testing.B) {
	c := New[string, string](1)
	c.Put("aa", "bb")
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c.Get("aa")
	}
}

func BenchmarkCache_Put_Misses(b *testing.B) {
	c := New[int, int](1000)
	// 1000 elements in the cache, only 1/3 of the keys fit
	rnd := rand.New(rand.NewSource(time.Now().UnixMicro()))
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		k := rnd.Intn(3000)
		if _, ok := c.Get(k); !ok {
			c.Put(k, k)
		}
	}
}

func TestNew(t *testing.T) {
	c := New[string, string](10)
	assert.Equal(t, 10, c.Cap())
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.IsEmpty())

	assert.Equal(t, 1, New[string, string](0).Cap())
	assert.Equal(t, 1, New[string, string](-100).Cap())
}

func TestCache_EvictsOldest(t *testing.T) {
	c := New[string, string](2)
	c.Put("A", "one")
	c.Put("B", "two")
	c.Put("C", "three")

	_, ok := c.Get("A")
	assert.False(t, ok)
	v, ok := c.Get("B")
	assert.True(t, ok)
	assert.Equal(t, "two", v)
	v, ok = c.Get("C")
	assert.True(t, ok)
	assert.Equal(t, "three", v)
	assert.Equal(t, 2, c.Len())
	checkInvariants(t, c)
}

func TestCache_PutExisting(t *testing.T) {
	c := New[string, string](2)
	c.Put("A", "one")
	c.Put("A", "two")
	v, ok := c.Get("A")
	assert.True(t, ok)
	assert.Equal(t, "two", v)
	assert.Equal(t, 1, c.Len())

	// update at capacity does not evict, but refreshes the key
	evicted := 0
	ci := NewWithEvict[string, int](2, func(k string, v int) { evicted++ })
	ci.Put("A", 1)
	ci.Put("B", 2)
	ci.Put("A", 10)
	assert.Equal(t, 0, evicted)
	assert.Equal(t, 2, ci.Len())
	assert.Equal(t, []string{"B", "A"}, ci.Keys())

	ci.Put("C", 3)
	assert.Equal(t, 1, evicted)
	assert.False(t, ci.Contains("B"))
	assert.Equal(t, []string{"A", "C"}, ci.Keys())
	checkInvariants(t, ci)
}

func TestCache_GetRefreshes(t *testing.T) {
	c := New[string, int](2)
	c.Put("A", 1)
	c.Put("B", 2)
	c.Get("A")
	c.Put("C", 3)

	v, ok := c.Get("A")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = c.Get("B")
	assert.False(t, ok)
	v, ok = c.Get("C")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	checkInvariants(t, c)
}

func TestCache_Remove(t *testing.T) {
	c := New[string, int](3)
	c.Put("one", 1)
	c.Put("two", 2)

	v, ok := c.Remove("one")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = c.Get("one")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Put("three", 3)
	before := c.Keys()
	v, ok = c.Remove("absent")
	assert.False(t, ok)
	assert.Equal(t, 0, v)
	assert.Equal(t, before, c.Keys())
	assert.Equal(t, 2, c.Len())
	checkInvariants(t, c)
}

func TestCache_RemoveFromMiddle(t *testing.T) {
	c := New[int, int](5)
	for i := 0; i < 5; i++ {
		c.Put(i, i)
	}
	c.Remove(2)
	assert.Equal(t, []int{0, 1, 3, 4}, c.Keys())
	c.Put(5, 5)
	c.Put(6, 6)
	assert.Equal(t, []int{1, 3, 4, 5, 6}, c.Keys())
	checkInvariants(t, c)
}

func TestCache_RemoveAll(t *testing.T) {
	evicted := 0
	c := NewWithEvict[int, int](3, func(k, v int) { evicted++ })
	for i := 0; i < 3; i++ {
		c.Put(i, i)
	}
	c.RemoveAll()
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.Keys())
	assert.Equal(t, 0, evicted)

	c.Put(10, 10)
	assert.Equal(t, []int{10}, c.Keys())
	checkInvariants(t, c)
}

func TestCache_Filter(t *testing.T) {
	c := New[string, int](5)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Put("d", 4)
	c.Get("b")

	c.Filter(func(k string, v int) bool { return v%2 == 0 })
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Contains("a"))
	assert.False(t, c.Contains("c"))
	assert.Equal(t, []string{"d", "b"}, c.Keys())
	checkInvariants(t, c)

	c.Filter(func(k string, v int) bool { return false })
	assert.True(t, c.IsEmpty())
	checkInvariants(t, c)
}

func TestCache_FilterPanic(t *testing.T) {
	c := New[int, int](5)
	for i := 0; i < 5; i++ {
		c.Put(i, i)
	}
	assert.PanicsWithValue(t, "boom", func() {
		c.Filter(func(k, v int) bool {
			if k == 3 {
				panic("boom")
			}
			return k%2 == 0
		})
	})
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, c.Keys())
	checkInvariants(t, c)

	// the cache is still usable
	c.Put(5, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, c.Keys())
}

func TestCache_FilterE(t *testing.T) {
	c := New[int, int](5)
	for i := 0; i < 5; i++ {
		c.Put(i, i)
	}
	errStop := fmt.Errorf("stop")
	err := c.FilterE(func(k, v int) (bool, error) {
		if k == 4 {
			return false, errStop
		}
		return false, nil
	})
	assert.Equal(t, errStop, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, c.Keys())

	err = c.FilterE(func(k, v int) (bool, error) { return k > 2, nil })
	assert.Nil(t, err)
	assert.Equal(t, []int{3, 4}, c.Keys())
	checkInvariants(t, c)
}

func TestCache_Clamping(t *testing.T) {
	for _, capacity := range []int{0, -1, 1} {
		c := New[string, int](capacity)
		c.Put("x", 1)
		assert.Equal(t, 1, c.Len())
		c.Put("y", 2)
		assert.Equal(t, 1, c.Len())
		_, ok := c.Get("x")
		assert.False(t, ok)
		v, ok := c.Get("y")
		assert.True(t, ok)
		assert.Equal(t, 2, v)
	}
}

func TestCache_PeekContainsOldest(t *testing.T) {
	c := New[string, int](3)
	_, _, ok := c.Oldest()
	assert.False(t, ok)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	v, ok := c.Peek("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("z"))
	// neither Peek nor Contains touches the order
	k, v, ok := c.Oldest()
	assert.True(t, ok)
	assert.Equal(t, "a", k)
	assert.Equal(t, 1, v)

	c.Put("d", 4)
	assert.False(t, c.Contains("a"))
	assert.Equal(t, []string{"b", "c", "d"}, c.Keys())
}

func TestCache_OnEvict(t *testing.T) {
	var evicted []int
	c := NewWithEvict[int, int](10, func(k, v int) {
		evicted = append(evicted, v)
	})
	for i := 0; i < 20; i++ {
		c.Put(i, i*10)
	}
	assert.Equal(t, 10, c.Len())
	assert.Equal(t, 10, len(evicted))
	for i := 0; i < 10; i++ {
		assert.Equal(t, i*10, evicted[i])
	}
	c.Remove(15)
	c.Filter(func(k, v int) bool { return k != 16 })
	assert.Equal(t, 10, len(evicted))
}

func TestCache_LRUProperty(t *testing.T) {
	const capacity = 5
	c := New[int, int](capacity)
	for i := 0; i < capacity; i++ {
		c.Put(i, i)
	}
	// touch all but one key in a random order, the untouched one must go
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	victim := rnd.Intn(capacity)
	for _, k := range rnd.Perm(capacity) {
		if k != victim {
			c.Get(k)
		}
	}
	c.Put(capacity, capacity)
	assert.False(t, c.Contains(victim))
	assert.Equal(t, capacity, c.Len())
}

func TestCache_RandomOps(t *testing.T) {
	const capacity = 7
	c := New[int, int](capacity)
	var order []int
	vals := map[int]int{}
	touch := func(k int) {
		order = slices.DeleteFunc(order, func(k1 int) bool { return k1 == k })
		order = append(order, k)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < 10000; i++ {
		k := rnd.Intn(15)
		switch rnd.Intn(6) {
		case 0, 1:
			c.Put(k, i)
			if _, ok := vals[k]; !ok && len(order) == capacity {
				delete(vals, order[0])
				order = order[1:]
			}
			vals[k] = i
			touch(k)
		case 2:
			v, ok := c.Get(k)
			v1, ok1 := vals[k]
			assert.Equal(t, ok1, ok)
			assert.Equal(t, v1, v)
			if ok {
				touch(k)
			}
		case 3:
			v, ok := c.Remove(k)
			v1, ok1 := vals[k]
			assert.Equal(t, ok1, ok)
			assert.Equal(t, v1, v)
			delete(vals, k)
			order = slices.DeleteFunc(order, func(k1 int) bool { return k1 == k })
		case 4:
			c.Filter(func(k1, v1 int) bool { return k1 != k })
			delete(vals, k)
			order = slices.DeleteFunc(order, func(k1 int) bool { return k1 == k })
		case 5:
			if rnd.Intn(50) == 0 {
				c.RemoveAll()
				vals = map[int]int{}
				order = nil
			}
		}
		assert.LessOrEqual(t, c.Len(), capacity)
		assert.Equal(t, len(order), c.Len())
		if len(order) > 0 {
			assert.Equal(t, order, c.Keys())
		}
	}
	checkInvariants(t, c)
}

func checkInvariants[K comparable, V any](t *testing.T, c *Cache[K, V]) {
	keys := c.Keys()
	assert.Equal(t, c.Len(), len(keys))
	assert.LessOrEqual(t, c.Len(), c.Cap())
	seen := map[K]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %v", k)
		seen[k] = true
		assert.True(t, c.Contains(k))
	}
}
