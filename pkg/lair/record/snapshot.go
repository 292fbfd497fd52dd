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
	"errors"
	"fmt"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
)

// Snapshot is a flat representation of a record, suitable for encoding.  Field
// elements are held in their canonical form.
type Snapshot struct {
	// Names of functions in the toplevel, in order
	Functions []string
	// Hasher of the toplevel
	Hasher  string
	Funcs   [][]FuncEntry
	Memory  [][]MemEntry
	Hashes  [][]HashEntry
	Entries []EntryPoint
}

// FuncEntry is a single recorded call.
type FuncEntry struct {
	Args         []uint32
	Output       []uint32
	Multiplicity uint32
}

// MemEntry is a single stored tuple.
type MemEntry struct {
	Args         []uint32
	Pointer      uint32
	Multiplicity uint32
}

// HashEntry is a single hashed preimage.
type HashEntry struct {
	Preimage     []uint32
	Image        []uint32
	Multiplicity uint32
}

// EntryPoint is a single public call.
type EntryPoint struct {
	Func   uint32
	Args   []uint32
	Output []uint32
}

// Snapshot flattens this record.
func (p *QueryRecord) Snapshot() *Snapshot {
	snap := &Snapshot{
		Hasher: p.top.Hasher().Name(),
		Funcs:  make([][]FuncEntry, len(p.funcs)),
		Memory: make([][]MemEntry, len(p.memory)),
		Hashes: make([][]HashEntry, len(p.hashes)),
	}
	//
	for i, t := range p.funcs {
		snap.Functions = append(snap.Functions, p.top.At(uint(i)).Name)
		//
		for j, args := range t.Keys() {
			res := t.Value(uint(j))
			snap.Funcs[i] = append(snap.Funcs[i], FuncEntry{flatten(args), flatten(res.Output), res.Multiplicity})
		}
	}
	//
	for i, t := range p.memory {
		for j, res := range t.Values() {
			snap.Memory[i] = append(snap.Memory[i], MemEntry{flatten(t.Key(uint(j))), res.Pointer, res.Multiplicity})
		}
	}
	//
	for i, t := range p.hashes {
		for j, res := range t.Values() {
			snap.Hashes[i] = append(snap.Hashes[i], HashEntry{flatten(t.Key(uint(j))), flatten(res.Image), res.Multiplicity})
		}
	}
	//
	for _, e := range p.entries {
		snap.Entries = append(snap.Entries, EntryPoint{uint32(e.Func), flatten(e.Args), flatten(e.Output)})
	}
	//
	return snap
}

// Restore reconstructs a record from a snapshot taken against a given
// toplevel.  This fails if the snapshot does not match the toplevel.
func Restore(top *toplevel.Toplevel, snap *Snapshot) (*QueryRecord, error) {
	var rec = New(top)
	//
	if snap.Hasher != top.Hasher().Name() {
		return nil, fmt.Errorf("record uses hasher %s, not %s", snap.Hasher, top.Hasher().Name())
	} else if uint(len(snap.Functions)) != top.Len() || len(snap.Funcs) != len(snap.Functions) {
		return nil, errors.New("record does not match program functions")
	} else if len(snap.Memory) != len(rec.memory) || len(snap.Hashes) != len(rec.hashes) {
		return nil, errors.New("record does not match program tables")
	}
	//
	for i, name := range snap.Functions {
		fn := top.At(uint(i))
		//
		if fn.Name != name {
			return nil, fmt.Errorf("record function %s does not match %s", name, fn.Name)
		}
		//
		for _, e := range snap.Funcs[i] {
			if uint(len(e.Args)) != fn.InputSize || uint(len(e.Output)) != fn.OutputSize {
				return nil, fmt.Errorf("malformed call to %s", name)
			} else if rec.funcs[i].ContainsKey(expand(e.Args)) {
				return nil, fmt.Errorf("duplicate call to %s", name)
			}
			//
			rec.insertResult(uint(i), expand(e.Args), QueryResult{expand(e.Output), e.Multiplicity})
		}
	}
	//
	for i, entries := range snap.Memory {
		var (
			arity    = top.MemoryArities()[i]
			assigned = make(map[uint32]bool, len(entries))
		)
		//
		for _, e := range entries {
			args := expand(e.Args)
			//
			if uint(len(e.Args)) != arity {
				return nil, fmt.Errorf("malformed tuple in memory of arity %d", arity)
			} else if e.Pointer == 0 || assigned[e.Pointer] {
				return nil, fmt.Errorf("invalid pointer %d in memory of arity %d", e.Pointer, arity)
			} else if rec.memory[i].ContainsKey(args) {
				return nil, fmt.Errorf("duplicate tuple %s in memory of arity %d", args, arity)
			}
			//
			assigned[e.Pointer] = true
			rec.insertMemory(uint(i), args, MemResult{e.Pointer, e.Multiplicity})
		}
	}
	//
	for i, entries := range snap.Hashes {
		arity := top.HashArities()[i]
		//
		for _, e := range entries {
			preimage := expand(e.Preimage)
			//
			if uint(len(e.Preimage)) != arity || uint(len(e.Image)) != top.Hasher().ImageSize() {
				return nil, fmt.Errorf("malformed hash of arity %d", arity)
			} else if rec.hashes[i].ContainsKey(preimage) {
				return nil, fmt.Errorf("duplicate hash %s", preimage)
			}
			//
			rec.hashes[i].Insert(preimage, HashResult{expand(e.Image), e.Multiplicity})
		}
	}
	//
	for _, e := range snap.Entries {
		if uint(e.Func) >= top.Len() {
			return nil, fmt.Errorf("unknown entrypoint function %d", e.Func)
		}
		//
		fn := top.At(uint(e.Func))
		//
		if uint(len(e.Args)) != fn.InputSize || uint(len(e.Output)) != fn.OutputSize {
			return nil, fmt.Errorf("malformed entrypoint call to %s", fn.Name)
		}
		//
		rec.AddEntry(uint(e.Func), expand(e.Args), expand(e.Output))
	}
	//
	return rec, nil
}

func flatten(tuple field.Tuple) []uint32 {
	vals := make([]uint32, len(tuple))
	//
	for i, v := range tuple {
		vals[i] = uint32(v.Uint64())
	}
	//
	return vals
}

func expand(vals []uint32) field.Tuple {
	tuple := make(field.Tuple, len(vals))
	//
	for i, v := range vals {
		tuple[i] = field.Uint64(uint64(v))
	}
	//
	return tuple
}
