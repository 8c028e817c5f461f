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
	"fmt"
	"sync"
)

type (
	// Map is a hash map which keeps its keys in a doubly-linked list in the order they were
	// added (or moved to the back) into the map. Lookups go through the hash index, so Get,
	// Add, Remove and MoveToBack are O(1). The Iterator walks the keys from the oldest (front)
	// to the newest (back). It is safe to remove and add elements while an iterator exists.
	//
	// Map is not safe for concurrent use.
	Map[K comparable, V any] struct {
		vals map[K]*rlItem[K, V]
		head *rlItem[K, V]
		last *rlItem[K, V]
		pool sync.Pool
	}

	// MapEntry is a record in the Map, which contains Key and the Value for the record
	MapEntry[K comparable, V any] struct {
		Key   K
		Value V
	}

	mapIterator[K comparable, V any] struct {
		im  *Map[K, V]
		ptr *rlItem[K, V]
	}

	// rlItem is the list node. The list always ends with a sentinel node in the rlLast state.
	// A node removed while an iterator points to it stays linked in the rlDeleted state
	// until the last iterator moves away.
	rlItem[K comparable, V any] struct {
		state  int
		prev   *rlItem[K, V]
		next   *rlItem[K, V]
		refCnt int
		key    K
		val    V
	}
)

const (
	rlLast = iota
	rlOk
	rlDeleted
)

// NewMap creates the new instance of Map[K, V]
func NewMap[K comparable, V any]() *Map[K, V] {
	im := new(Map[K, V])
	im.vals = make(map[K]*rlItem[K, V])
	sentinel := &rlItem[K, V]{state: rlLast}
	im.head, im.last = sentinel, sentinel
	im.pool = sync.Pool{New: func() any { return &rlItem[K, V]{} }}
	return im
}

// Iterator returns an Iterator over the map entries from the front to the back.
// The iterator must be closed after usage.
func (im *Map[K, V]) Iterator() Iterator[MapEntry[K, V]] {
	im.head.refCnt++
	return &mapIterator[K, V]{im: im, ptr: im.head}
}

// Add puts the new key-value pair to the back of the map. It returns an error if the
// key already exists in the map.
func (im *Map[K, V]) Add(k K, v V) error {
	if _, ok := im.vals[k]; ok {
		return fmt.Errorf("the Map already has value for the key=%v", k)
	}
	rliNew := im.pool.Get().(*rlItem[K, V])
	im.last = im.last.putVal(k, v, rliNew)
	im.vals[k] = im.last.prev
	return nil
}

// Set replaces the value for the existing key k without changing its position.
// Returns false if the key is not in the map.
func (im *Map[K, V]) Set(k K, v V) bool {
	rli, ok := im.vals[k]
	if !ok {
		return false
	}
	rli.val = v
	return true
}

// MoveToBack moves the key k to the back of the map. The relative order of the other
// keys is not changed. Returns false if the key is not in the map.
func (im *Map[K, V]) MoveToBack(k K) bool {
	rli, ok := im.vals[k]
	if !ok {
		return false
	}
	if rli.next == im.last {
		// already the newest one
		return true
	}
	v := rli.val
	im.Remove(k)
	_ = im.Add(k, v)
	return true
}

// Get returns the value by its key
func (im *Map[K, V]) Get(k K) (V, bool) {
	if rli, ok := im.vals[k]; ok {
		return rli.val, true
	}
	return *new(V), false
}

// Remove removes the value by its key
func (im *Map[K, V]) Remove(k K) {
	if rli, ok := im.vals[k]; ok {
		head := rli.delete()
		if head != nil {
			im.head = head
		}
		if rli.refCnt == 0 {
			im.pool.Put(rli)
		}
		delete(im.vals, k)
	}
}

// Clear removes all the elements from the map. Existing iterators stay valid and
// will not return the removed elements.
func (im *Map[K, V]) Clear() {
	for k := range im.vals {
		im.Remove(k)
	}
}

// Len returns current map size
func (im *Map[K, V]) Len() int {
	return len(im.vals)
}

// Keys returns the map keys from the front to the back, or nil if the map is empty
func (im *Map[K, V]) Keys() []K {
	if len(im.vals) == 0 {
		return nil
	}
	res := make([]K, 0, len(im.vals))
	for p := im.head; p.state != rlLast; p = p.next {
		if p.state == rlOk {
			res = append(res, p.key)
		}
	}
	return res
}

// First returns the front key and whether the key exists or not
func (im *Map[K, V]) First() (K, bool) {
	it := im.Iterator()
	defer it.Close()
	e, res := it.Next()
	return e.Key, res
}

func (im *Map[K, V]) getValue(p *rlItem[K, V]) *rlItem[K, V] {
	if p.state == rlDeleted {
		p = im.next(p)
	}
	return p
}

func (im *Map[K, V]) release(p *rlItem[K, V]) {
	p.refCnt--
	if p.state == rlDeleted {
		head := p.delete()
		if head != nil {
			im.head = head
		}
		if p.refCnt == 0 {
			im.pool.Put(p)
		}
	}
}

func (im *Map[K, V]) next(p *rlItem[K, V]) *rlItem[K, V] {
	for {
		if p.state == rlLast {
			return p
		}
		p.refCnt--
		if p.state == rlDeleted && p.refCnt <= 0 {
			np := p.next
			head := p.delete()
			if head != nil {
				im.head = head
			}
			im.pool.Put(p)
			p = np
			p.refCnt++
		} else {
			p = p.next
			p.refCnt++
		}
		if p.state != rlDeleted {
			break
		}
	}
	return p
}

// delete unlinks the element and returns the new head if it is changed, otherwise it returns nil.
// If an iterator refers to the element, it is only marked as deleted.
func (rli *rlItem[K, V]) delete() *rlItem[K, V] {
	if rli.state == rlLast {
		return nil
	}
	rli.val = *new(V)
	if rli.refCnt == 0 {
		rli.state = rlDeleted
		if rli.prev != nil {
			rli.prev.next = rli.next
			rli.next.prev = rli.prev
			rli.next, rli.prev = nil, nil
			return nil
		}
		rli.next.prev = nil
		head := rli.next
		rli.next = nil
		return head
	}
	rli.state = rlDeleted
	return nil
}

func (rli *rlItem[K, V]) putVal(k K, v V, rliNew *rlItem[K, V]) *rlItem[K, V] {
	if rli.state != rlLast {
		panic("only last element can be used for adding new value")
	}
	rliNew.prev = rli
	rliNew.next = nil
	rliNew.state = rlLast
	rliNew.refCnt = 0
	rliNew.key, rliNew.val = *new(K), *new(V)
	rli.next = rliNew
	rli.state = rlOk
	rli.key = k
	rli.val = v
	return rli.next
}

// HasNext returns true if the map contains next element for the iterator. Please see Next() function
func (it *mapIterator[K, V]) HasNext() bool {
	it.ptr = it.im.getValue(it.ptr)
	return it.ptr.state != rlLast
}

// Next returns the next element and shifts the iterator to next one if it exists.
// It returns default values for K and V types if the next element does not exist.
func (it *mapIterator[K, V]) Next() (MapEntry[K, V], bool) {
	it.ptr = it.im.getValue(it.ptr)
	has := it.ptr.state != rlLast
	k, v := it.ptr.key, it.ptr.val
	it.ptr = it.im.next(it.ptr)
	return MapEntry[K, V]{k, v}, has
}

// Close releases the iterator. The iterator object must not be used after the call.
func (it *mapIterator[K, V]) Close() error {
	if it.ptr == nil {
		return nil
	}
	it.im.release(it.ptr)
	it.ptr = nil
	return nil
}
