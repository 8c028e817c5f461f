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
Package lru contains the containers with limited size capacity and LRU
(Least Recently Used) pull out discipline. The containers use golang generics,
so they can be instantiated for different key and value types.

Cache is the basic single-goroutine container. Its capacity is fixed at the
construction time, a capacity less than 1 is silently treated as 1. Put of a new
key into the full Cache evicts exactly one entry, the least recently used one,
while Put of an existing key only replaces the value. Get and Put make the key the
most recently used one.

Synced and Sharded wrap the Cache for concurrent use. LoadingCache and
ExpirableCache create missing values on demand.
*/
package lru
