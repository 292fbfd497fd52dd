// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package hash

import (
	"fmt"
	"strings"
)

// Map defines a generic hashmap which remembers the order in which keys were
// first inserted.  Entries are stored densely, such that each key has a stable
// index which can be used to access it directly.  This is a true hashtable in
// that collisions are handled gracefully using buckets, rather than simply
// discarding them.
type Map[K Hasher[K], V any] struct {
	// buckets map hashcodes to the indices of their keys.
	buckets map[uint64][]uint
	// keys in insertion order
	keys []K
	// values in insertion order
	values []V
}

// NewMap creates a new Map with a given underlying capacity.
func NewMap[K Hasher[K], V any](size uint) *Map[K, V] {
	return &Map[K, V]{
		buckets: make(map[uint64][]uint, size),
		keys:    make([]K, 0, size),
		values:  make([]V, 0, size),
	}
}

// Size returns the number of unique keys stored in this Map.
func (p *Map[K, V]) Size() uint {
	return uint(len(p.keys))
}

// Insert a new item into this map, returning true if it was already contained
// and false otherwise.  When the key is already contained its value is
// replaced, but its index is unchanged.
func (p *Map[K, V]) Insert(key K, value V) bool {
	if i, ok := p.Find(key); ok {
		p.values[i] = value
		return true
	}
	//
	hash := key.Hash()
	p.buckets[hash] = append(p.buckets[hash], uint(len(p.keys)))
	p.keys = append(p.keys, key)
	p.values = append(p.values, value)
	// Item not present
	return false
}

// Find returns the insertion index of a given key, or false if it is not
// contained.
func (p *Map[K, V]) Find(key K) (uint, bool) {
	for _, i := range p.buckets[key.Hash()] {
		if key.Equals(p.keys[i]) {
			return i, true
		}
	}
	//
	return 0, false
}

// ContainsKey checks whether the given item is contained within this map, or not.
func (p *Map[K, V]) ContainsKey(key K) bool {
	_, ok := p.Find(key)
	return ok
}

// Get item from map, or return false otherwise.
func (p *Map[K, V]) Get(key K) (V, bool) {
	var empty V
	//
	if i, ok := p.Find(key); ok {
		return p.values[i], true
	}
	//
	return empty, false
}

// Key returns the key at the given insertion index.
func (p *Map[K, V]) Key(index uint) K {
	return p.keys[index]
}

// Value returns the value at the given insertion index.
func (p *Map[K, V]) Value(index uint) V {
	return p.values[index]
}

// Ref returns a pointer to the value at the given insertion index.  The pointer
// is invalidated by any subsequent insertion.
func (p *Map[K, V]) Ref(index uint) *V {
	return &p.values[index]
}

// Keys returns the keys of this map in insertion order.  The returned slice
// must not be modified.
func (p *Map[K, V]) Keys() []K {
	return p.keys
}

// Values returns the values of this map in insertion order.  The returned
// slice must not be modified.
func (p *Map[K, V]) Values() []V {
	return p.values
}

// Pop removes the most recently inserted entry from this map.
func (p *Map[K, V]) Pop() (K, V) {
	if len(p.keys) == 0 {
		panic("cannot pop from empty map")
	}
	//
	var (
		n     = len(p.keys) - 1
		key   = p.keys[n]
		value = p.values[n]
		hash  = key.Hash()
	)
	// Remove from bucket
	bucket := p.buckets[hash]
	for i, j := range bucket {
		if j == uint(n) {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	//
	if len(bucket) == 0 {
		delete(p.buckets, hash)
	} else {
		p.buckets[hash] = bucket
	}
	//
	p.keys = p.keys[:n]
	p.values = p.values[:n]
	//
	return key, value
}

func (p *Map[K, V]) String() string {
	var r strings.Builder
	// Write opening brace
	r.WriteString("{")
	//
	for i, k := range p.keys {
		if i != 0 {
			r.WriteString(",")
		}

		r.WriteString(fmt.Sprintf("%v:=%v", any(k), any(p.values[i])))
	}
	// Write closing brace
	r.WriteString("}")
	// Done
	return r.String()
}
