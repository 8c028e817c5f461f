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

// Iterator walks over the elements of a collection: the Map entries in the LRU order,
// a Slice, or the keys listed by a kvs.Storage.
//
//	defer it.Close()
//	for it.HasNext() {
//		v, ok := it.Next()
//		...
//	}
type Iterator[V any] interface {
	// HasNext returns true if there is an element to be returned by Next
	HasNext() bool

	// Next returns the current element and moves to the following one. It returns
	// false if there is nothing to return. That may happen after HasNext returned
	// true, when the collection was changed in between, so the result must be checked.
	Next() (V, bool)

	// Close releases the iterator. It must be called for every iterator, the Map
	// holds a reference to the current entry until then.
	Close() error
}

// EmptyIterator never returns an element
type EmptyIterator[V any] struct{}

var _ Iterator[int] = (*EmptyIterator[int])(nil)

func (ei *EmptyIterator[V]) HasNext() bool {
	return false
}

func (ei *EmptyIterator[V]) Next() (V, bool) {
	var v V
	return v, false
}

func (ei *EmptyIterator[V]) Close() error {
	return nil
}
