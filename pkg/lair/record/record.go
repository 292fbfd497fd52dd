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
	"github.com/consensys/go-lair/pkg/lair/toplevel"
	"github.com/consensys/go-lair/pkg/util/collection/hash"
)

// QueryResult is the memoized outcome of a call.
type QueryResult struct {
	Output field.Tuple
	// Number of times this call was made
	Multiplicity uint32
}

// MemResult records the location of a stored tuple.
type MemResult struct {
	// Pointers are 1-based insertion indices into their memory table.
	Pointer uint32
	// Number of times this tuple was stored or loaded
	Multiplicity uint32
}

// HashResult is the memoized image of a preimage.
type HashResult struct {
	Image field.Tuple
	// Number of times this preimage was hashed
	Multiplicity uint32
}

// Entry records a call made from outside the program, whose arguments and
// outputs are public.
type Entry struct {
	Func   uint
	Args   field.Tuple
	Output field.Tuple
}

// FuncTable maps the arguments of each call to a function to its result.
type FuncTable = hash.Map[field.Tuple, QueryResult]

// MemTable maps each stored tuple to its location.
type MemTable = hash.Map[field.Tuple, MemResult]

// HashTable maps each hashed preimage to its image.
type HashTable = hash.Map[field.Tuple, HashResult]

// QueryRecord is the ledger of an execution.  It memoizes every call made to
// every function along with the number of times it was made, and likewise for
// memory accesses and hashes.  A record is written by a single execution and
// is then read-only, at which point it is safe to share between goroutines.
//
// A record may also be a shard of a larger record, holding a bounded subset of
// its entries.  Shards retain a reference to the record they were split from,
// which is consulted for values not held in the shard itself (e.g. the output
// of a call whose entry lives in a different shard).
type QueryRecord struct {
	top   *toplevel.Toplevel
	funcs []*FuncTable
	// Maps outputs back to arguments (invertible functions only)
	inverses []*hash.Map[field.Tuple, field.Tuple]
	memory   []*MemTable
	// Largest pointer assigned in each memory table
	pointers []uint32
	hashes   []*HashTable
	entries  []Entry
	// Record from which this shard was split (or nil)
	parent *QueryRecord
	// Index of this shard
	index uint
}

// New constructs an empty record for a given toplevel.
func New(top *toplevel.Toplevel) *QueryRecord {
	var (
		nFuncs = top.Len()
		rec    = &QueryRecord{
			top:      top,
			funcs:    make([]*FuncTable, nFuncs),
			inverses: make([]*hash.Map[field.Tuple, field.Tuple], nFuncs),
			memory:   make([]*MemTable, len(top.MemoryArities())),
			pointers: make([]uint32, len(top.MemoryArities())),
			hashes:   make([]*HashTable, len(top.HashArities())),
		}
	)
	//
	for i, fn := range top.Functions() {
		rec.funcs[i] = hash.NewMap[field.Tuple, QueryResult](0)
		//
		if fn.Invertible {
			rec.inverses[i] = hash.NewMap[field.Tuple, field.Tuple](0)
		}
	}
	//
	for i := range rec.memory {
		rec.memory[i] = hash.NewMap[field.Tuple, MemResult](0)
	}
	//
	for i := range rec.hashes {
		rec.hashes[i] = hash.NewMap[field.Tuple, HashResult](0)
	}
	//
	return rec
}

// Toplevel returns the toplevel this record was made for.
func (p *QueryRecord) Toplevel() *toplevel.Toplevel {
	return p.top
}

// Index returns the index of this shard, which is 0 for a record which was not
// split from another.
func (p *QueryRecord) Index() uint {
	return p.index
}

// Parent returns the record this shard was split from, or nil.
func (p *QueryRecord) Parent() *QueryRecord {
	return p.parent
}

// Queries returns the memo table of a given function.  The table must not be
// modified.
func (p *QueryRecord) Queries(fn uint) *FuncTable {
	return p.funcs[fn]
}

// Memory returns the memory table with a given index.  The table must not be
// modified.
func (p *QueryRecord) Memory(table uint) *MemTable {
	return p.memory[table]
}

// Hashes returns the hash table with a given index.  The table must not be
// modified.
func (p *QueryRecord) Hashes(table uint) *HashTable {
	return p.hashes[table]
}

// Entries returns the calls made from outside the program, in order.
func (p *QueryRecord) Entries() []Entry {
	return p.entries
}

// AddEntry records a call made from outside the program.
func (p *QueryRecord) AddEntry(fn uint, args field.Tuple, output field.Tuple) {
	p.entries = append(p.entries, Entry{fn, args.Clone(), output.Clone()})
}

// Query looks up a memoized call.  If found, its multiplicity is incremented
// and its output returned.
func (p *QueryRecord) Query(fn uint, args field.Tuple) (field.Tuple, bool) {
	if i, ok := p.funcs[fn].Find(args); ok {
		res := p.funcs[fn].Ref(i)
		res.Multiplicity++
		//
		return res.Output, true
	}
	//
	return nil, false
}

// InsertResult memoizes a new call with multiplicity one.  Calls are
// write-once, hence this panics if the call is already recorded.
func (p *QueryRecord) InsertResult(fn uint, args field.Tuple, output field.Tuple) {
	p.insertResult(fn, args, QueryResult{output, 1})
}

func (p *QueryRecord) insertResult(fn uint, args field.Tuple, res QueryResult) {
	if p.funcs[fn].Insert(args, res) {
		panic(fmt.Sprintf("call %s%s already recorded", p.top.At(fn).Name, args.String()))
	}
	//
	if inverse := p.inverses[fn]; inverse != nil {
		inverse.Insert(res.Output, args)
	}
}

// QueryPreimage looks up the arguments of a recorded call to an invertible
// function which produced a given output.  If found, the multiplicity of that
// call is incremented, since the lookup is justified by the call itself.
func (p *QueryRecord) QueryPreimage(fn uint, output field.Tuple) (field.Tuple, bool) {
	if p.inverses[fn] == nil {
		panic(fmt.Sprintf("%s is not invertible", p.top.At(fn).Name))
	}
	//
	args, ok := p.inverses[fn].Get(output)
	//
	if !ok {
		return nil, false
	} else if _, ok = p.Query(fn, args); !ok {
		panic(fmt.Sprintf("inverse of %s%s has no forward call", p.top.At(fn).Name, output.String()))
	}
	//
	return args, true
}

// InjectQueries seeds a record with precomputed calls to a given function,
// each with multiplicity zero.  Calls which are already recorded are left as
// is.
func (p *QueryRecord) InjectQueries(fn uint, args []field.Tuple, outputs []field.Tuple) {
	if len(args) != len(outputs) {
		panic("mismatched injected queries")
	}
	//
	for i := range args {
		if !p.funcs[fn].ContainsKey(args[i]) {
			p.insertResult(fn, args[i].Clone(), QueryResult{outputs[i].Clone(), 0})
		}
	}
}

// Store writes a tuple into memory and returns a pointer to it.  Storing the
// same tuple twice returns the same pointer.  New pointers follow the largest
// pointer assigned so far, since merged records can hold gaps.
func (p *QueryRecord) Store(args field.Tuple) field.Element {
	var (
		t     = p.memIndex(uint(len(args)))
		table = p.memory[t]
	)
	//
	if i, ok := table.Find(args); ok {
		res := table.Ref(i)
		res.Multiplicity++
		//
		return field.Uint64(uint64(res.Pointer))
	}
	//
	ptr := p.pointers[t] + 1
	p.insertMemory(t, args.Clone(), MemResult{ptr, 1})
	//
	return field.Uint64(uint64(ptr))
}

func (p *QueryRecord) insertMemory(table uint, args field.Tuple, res MemResult) {
	p.memory[table].Insert(args, res)
	p.pointers[table] = max(p.pointers[table], res.Pointer)
}

// Load reads the tuple of a given arity identified by a pointer, incrementing
// its multiplicity.  This panics if the pointer is unassigned.
func (p *QueryRecord) Load(arity uint, ptr field.Element) field.Tuple {
	table := p.memTable(arity)
	i := findPointer(table, ptr)
	res := table.Ref(i)
	res.Multiplicity++
	//
	return table.Key(i)
}

// Assigned determines whether a pointer identifies a tuple of a given arity.
func (p *QueryRecord) Assigned(arity uint, ptr field.Element) bool {
	t, ok := p.top.MemoryTable(arity)
	//
	if !ok {
		return false
	}
	//
	_, ok = locate(p.memory[t], ptr)
	//
	return ok
}

func (p *QueryRecord) memTable(arity uint) *MemTable {
	return p.memory[p.memIndex(arity)]
}

func (p *QueryRecord) memIndex(arity uint) uint {
	if t, ok := p.top.MemoryTable(arity); ok {
		return t
	}
	//
	panic(fmt.Sprintf("no memory table of arity %d", arity))
}

// Locate a pointer within a memory table.  Pointers are normally insertion
// indices, but merged records can hold gaps.
func locate(table *MemTable, ptr field.Element) (uint, bool) {
	var (
		val = ptr.Uint64()
		i   = uint(val - 1)
	)
	//
	if val > 0 && i < table.Size() && uint64(table.Value(i).Pointer) == val {
		return i, true
	}
	//
	for j, v := range table.Values() {
		if uint64(v.Pointer) == val {
			return uint(j), true
		}
	}
	//
	return 0, false
}

func findPointer(table *MemTable, ptr field.Element) uint {
	if i, ok := locate(table, ptr); ok {
		return i
	}
	//
	panic(fmt.Sprintf("unassigned pointer %s", ptr))
}

// Hash computes the image of a preimage, memoizing it.
func (p *QueryRecord) Hash(preimage field.Tuple) field.Tuple {
	table := p.hashTable(uint(len(preimage)))
	//
	if i, ok := table.Find(preimage); ok {
		res := table.Ref(i)
		res.Multiplicity++
		//
		return res.Image
	}
	//
	image := p.top.Hasher().Hash(preimage)
	table.Insert(preimage.Clone(), HashResult{image, 1})
	//
	return image
}

func (p *QueryRecord) hashTable(arity uint) *HashTable {
	if t, ok := p.top.HashTable(arity); ok {
		return p.hashes[t]
	}
	//
	panic(fmt.Sprintf("no hash table of arity %d", arity))
}

// ResetMultiplicities zeroes every multiplicity, whilst keeping every memoized
// result.  This allows an execution to be replayed to count calls, without
// recomputing their outputs.
func (p *QueryRecord) ResetMultiplicities() {
	for _, table := range p.funcs {
		for i := range table.Size() {
			table.Ref(i).Multiplicity = 0
		}
	}
	//
	for _, table := range p.memory {
		for i := range table.Size() {
			table.Ref(i).Multiplicity = 0
		}
	}
	//
	for _, table := range p.hashes {
		for i := range table.Size() {
			table.Ref(i).Multiplicity = 0
		}
	}
	//
	p.entries = nil
}

// Included determines whether a given function has at least one call with
// nonzero multiplicity in this record.
func (p *QueryRecord) Included(fn uint) bool {
	for _, res := range p.funcs[fn].Values() {
		if res.Multiplicity > 0 {
			return true
		}
	}
	//
	return false
}
