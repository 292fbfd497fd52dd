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
package record

import (
	"fmt"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/util/collection/hash"
)

// Shard splits a record into one or more shards, each of which holds at most
// size entries of any given table.  Entries with zero multiplicity are
// dropped.  Entrypoint calls are all held by the first shard.  Every shard
// retains this record as its parent, and a record which fits within a single
// shard yields exactly one shard.
func (p *QueryRecord) Shard(size uint) []*QueryRecord {
	if size == 0 {
		panic("shard size must be positive")
	}
	//
	var (
		funcs   = make([][]uint, len(p.funcs))
		memory  = make([][]uint, len(p.memory))
		hashes  = make([][]uint, len(p.hashes))
		nshards = uint(1)
	)
	// Determine the surviving entries of each table
	for i, t := range p.funcs {
		funcs[i] = nonzero(t.Values(), func(r QueryResult) uint32 { return r.Multiplicity })
		nshards = max(nshards, chunks(uint(len(funcs[i])), size))
	}
	//
	for i, t := range p.memory {
		memory[i] = nonzero(t.Values(), func(r MemResult) uint32 { return r.Multiplicity })
		nshards = max(nshards, chunks(uint(len(memory[i])), size))
	}
	//
	for i, t := range p.hashes {
		hashes[i] = nonzero(t.Values(), func(r HashResult) uint32 { return r.Multiplicity })
		nshards = max(nshards, chunks(uint(len(hashes[i])), size))
	}
	//
	shards := make([]*QueryRecord, nshards)
	//
	for s := range nshards {
		var (
			shard  = New(p.top)
			lo, hi = s * size, (s + 1) * size
		)
		//
		shard.parent = p.root()
		shard.index = s
		//
		for i, t := range p.funcs {
			for _, j := range window(funcs[i], lo, hi) {
				shard.insertResult(uint(i), t.Key(j), t.Value(j))
			}
		}
		//
		for i, t := range p.memory {
			for _, j := range window(memory[i], lo, hi) {
				shard.insertMemory(uint(i), t.Key(j), t.Value(j))
			}
		}
		//
		for i, t := range p.hashes {
			for _, j := range window(hashes[i], lo, hi) {
				shard.hashes[i].Insert(t.Key(j), t.Value(j))
			}
		}
		//
		if s == 0 {
			shard.entries = append(shard.entries, p.entries...)
		}
		//
		shards[s] = shard
	}
	//
	return shards
}

// Append moves every entry with nonzero multiplicity from another record into
// this one, emptying the other record.  Entries present in both have their
// multiplicities summed, and must agree on their results.
func (p *QueryRecord) Append(other *QueryRecord) {
	if other.top != p.top {
		panic("cannot append records of different toplevels")
	}
	// Drain from the last table
	for i := len(other.funcs) - 1; i >= 0; i-- {
		var (
			src = other.funcs[i]
			dst = p.funcs[i]
		)
		//
		for j, res := range src.Values() {
			if res.Multiplicity == 0 {
				continue
			} else if k, ok := dst.Find(src.Key(uint(j))); ok {
				existing := dst.Ref(k)
				//
				if !existing.Output.Equals(res.Output) {
					panic(fmt.Sprintf("conflicting outputs for %s%s", p.top.At(uint(i)).Name, src.Key(uint(j))))
				}
				//
				existing.Multiplicity += res.Multiplicity
			} else {
				p.insertResult(uint(i), src.Key(uint(j)), res)
			}
		}
		//
		other.funcs[i] = hash.NewMap[field.Tuple, QueryResult](0)
		//
		if other.inverses[i] != nil {
			other.inverses[i] = hash.NewMap[field.Tuple, field.Tuple](0)
		}
	}
	//
	for i := len(other.memory) - 1; i >= 0; i-- {
		src, dst := other.memory[i], p.memory[i]
		//
		for j, res := range src.Values() {
			if res.Multiplicity == 0 {
				continue
			} else if k, ok := dst.Find(src.Key(uint(j))); ok {
				existing := dst.Ref(k)
				//
				if existing.Pointer != res.Pointer {
					panic(fmt.Sprintf("conflicting pointers for %s", src.Key(uint(j))))
				}
				//
				existing.Multiplicity += res.Multiplicity
			} else {
				p.insertMemory(uint(i), src.Key(uint(j)), res)
			}
		}
		//
		other.memory[i] = hash.NewMap[field.Tuple, MemResult](0)
		other.pointers[i] = 0
	}
	//
	for i := len(other.hashes) - 1; i >= 0; i-- {
		src, dst := other.hashes[i], p.hashes[i]
		//
		for j, res := range src.Values() {
			if res.Multiplicity == 0 {
				continue
			} else if k, ok := dst.Find(src.Key(uint(j))); ok {
				existing := dst.Ref(k)
				//
				if !existing.Image.Equals(res.Image) {
					panic(fmt.Sprintf("conflicting images for %s", src.Key(uint(j))))
				}
				//
				existing.Multiplicity += res.Multiplicity
			} else {
				dst.Insert(src.Key(uint(j)), res)
			}
		}
		//
		other.hashes[i] = hash.NewMap[field.Tuple, HashResult](0)
	}
	//
	p.entries = append(p.entries, other.entries...)
	other.entries = nil
}

// Merge combines a set of records (e.g. the shards of some record) into a
// single record.  The given records are emptied.
func Merge(records []*QueryRecord) *QueryRecord {
	if len(records) == 0 {
		panic("cannot merge zero records")
	}
	//
	merged := New(records[0].top)
	//
	for _, r := range records {
		merged.Append(r)
	}
	//
	return merged
}

func (p *QueryRecord) root() *QueryRecord {
	if p.parent == nil {
		return p
	}
	//
	return p.parent.root()
}

// Indices of those entries with nonzero multiplicity.
func nonzero[T any](values []T, mult func(T) uint32) []uint {
	var indices []uint
	//
	for i, v := range values {
		if mult(v) != 0 {
			indices = append(indices, uint(i))
		}
	}
	//
	return indices
}

func chunks(n uint, size uint) uint {
	return (n + size - 1) / size
}

func window(indices []uint, lo uint, hi uint) []uint {
	n := uint(len(indices))
	//
	if lo >= n {
		return nil
	}
	//
	return indices[lo:min(hi, n)]
}
