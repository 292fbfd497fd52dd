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
	"math/rand/v2"
	"testing"
)

func Test_HashMap_01(t *testing.T) {
	items := []uint{1, 2, 3, 4, 3, 2, 1}
	check_HashMap(t, items)
}

func Test_HashMap_02(t *testing.T) {
	items := generateRandomUints(10, 32)
	check_HashMap(t, items)
}

func Test_HashMap_03(t *testing.T) {
	items := generateRandomUints(100, 32)
	check_HashMap(t, items)
}

func Test_HashMap_04(t *testing.T) {
	items := generateRandomUints(1000, 32)
	check_HashMap(t, items)
}

func Test_HashMap_05(t *testing.T) {
	items := generateRandomUints(100000, 32)
	check_HashMap(t, items)
}

func Test_HashMap_06(t *testing.T) {
	items := generateRandomUints(1000, 8)
	check_HashMapPop(t, items)
}

func Test_HashMap_07(t *testing.T) {
	// Colliding keys
	hmap := NewMap[collidingKey, uint](0)
	//
	for i := range uint(10) {
		hmap.Insert(collidingKey{i}, i*i)
	}
	//
	if hmap.Size() != 10 {
		t.Errorf("expected 10 items, got %d", hmap.Size())
	}
	//
	for i := range uint(10) {
		if v, ok := hmap.Get(collidingKey{i}); !ok || v != i*i {
			t.Errorf("expected %d=>%d, got %d", i, i*i, v)
		}
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_HashMap(t *testing.T, items []uint) {
	gmap := initGoMap(items)
	hmap := NewMap[testKey, uint](0)
	// Insert items
	for _, key := range items {
		val := gmap[key]
		hmap.Insert(testKey{key}, val)
	}
	// Sanity check number of unique items
	if hmap.Size() != uint(len(gmap)) {
		t.Errorf("expected %d items, got %d: %s", len(gmap), hmap.Size(), hmap.String())
	}
	// Sanity check containership
	for key, val := range gmap {
		if !hmap.ContainsKey(testKey{key}) {
			t.Errorf("missing key %d: %s", key, hmap.String())
		} else if v, ok := hmap.Get(testKey{key}); !ok {
			t.Errorf("missing item %d=>%d: %s", key, val, hmap.String())
		} else if v != val {
			t.Errorf("expecting %d=>%d, got %d=>%d: %s", key, val, key, v, hmap.String())
		}
	}
	// Sanity check insertion order
	seen := make(map[uint]bool)
	index := uint(0)
	//
	for _, key := range items {
		if seen[key] {
			continue
		}
		//
		seen[key] = true
		//
		if hmap.Key(index).value != key {
			t.Errorf("expected key %d at index %d, got %d", key, index, hmap.Key(index).value)
		}
		//
		index++
	}
}

func check_HashMapPop(t *testing.T, items []uint) {
	hmap := NewMap[testKey, uint](0)
	//
	for _, key := range items {
		hmap.Insert(testKey{key}, key)
	}
	//
	for hmap.Size() > 0 {
		n := hmap.Size() - 1
		expected := hmap.Key(n)
		key, val := hmap.Pop()
		//
		if key != expected || val != key.value {
			t.Errorf("expected %d, got %d=>%d", expected.value, key.value, val)
		} else if hmap.ContainsKey(key) {
			t.Errorf("popped key %d still present", key.value)
		}
	}
}

func initGoMap(items []uint) map[uint]uint {
	gmap := make(map[uint]uint)
	//
	for _, v := range items {
		if w, ok := gmap[v]; ok {
			gmap[v] = w + 1
		} else {
			gmap[v] = 1
		}
	}
	//
	return gmap
}

func generateRandomUints(n uint, m uint) []uint {
	items := make([]uint, n)
	//
	for i := range items {
		items[i] = rand.UintN(m)
	}
	//
	return items
}

type testKey struct {
	value uint
}

func (p testKey) Equals(other testKey) bool {
	return p.value == other.value
}

func (p testKey) Hash() uint64 {
	return uint64(p.value)
}

type collidingKey struct {
	value uint
}

func (p collidingKey) Equals(other collidingKey) bool {
	return p.value == other.value
}

func (p collidingKey) Hash() uint64 {
	return 0
}
