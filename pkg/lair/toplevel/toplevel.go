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
package toplevel

import (
	"slices"

	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/hasher"
)

// Toplevel is an immutable registry of linked functions.  Functions are held
// in declaration order, such that a function's index is its position in the
// registry.
type Toplevel struct {
	funcs []*bytecode.Func
	// Maps function names to their indices
	names map[string]uint
	// Hasher used by hash operations
	hasher hasher.Hasher
	// Distinct arities of memory tuples (sorted)
	memArities []uint
	// Distinct arities of hash preimages (sorted)
	hashArities []uint
}

func newToplevel(funcs []*bytecode.Func, hasher hasher.Hasher) *Toplevel {
	var (
		names = make(map[string]uint, len(funcs))
		mem   []uint
		hash  []uint
	)
	//
	for _, f := range funcs {
		names[f.Name] = f.Index
		//
		visitOps(&f.Body, func(op bytecode.Op) {
			switch op := op.(type) {
			case *bytecode.Store:
				mem = append(mem, uint(len(op.Args)))
			case *bytecode.Load:
				mem = append(mem, op.Arity)
			case *bytecode.Hash:
				hash = append(hash, uint(len(op.Args)))
			}
		})
	}
	//
	slices.Sort(mem)
	slices.Sort(hash)
	//
	return &Toplevel{funcs, names, hasher, slices.Compact(mem), slices.Compact(hash)}
}

// Len returns the number of functions in this toplevel.
func (p *Toplevel) Len() uint {
	return uint(len(p.funcs))
}

// Get returns the function with the given name, or false if no such function
// exists.
func (p *Toplevel) Get(name string) (*bytecode.Func, bool) {
	if index, ok := p.names[name]; ok {
		return p.funcs[index], true
	}
	//
	return nil, false
}

// At returns the function with the given index.
func (p *Toplevel) At(index uint) *bytecode.Func {
	return p.funcs[index]
}

// Functions returns all functions in index order.  The returned slice must not
// be modified.
func (p *Toplevel) Functions() []*bytecode.Func {
	return p.funcs
}

// Hasher returns the hasher used by hash operations.
func (p *Toplevel) Hasher() hasher.Hasher {
	return p.hasher
}

// MemoryArities returns the distinct arities of tuples stored or loaded by any
// function, in increasing order.  Each arity has its own memory table.
func (p *Toplevel) MemoryArities() []uint {
	return p.memArities
}

// MemoryTable returns the index of the memory table holding tuples of a given
// arity.
func (p *Toplevel) MemoryTable(arity uint) (uint, bool) {
	i, ok := slices.BinarySearch(p.memArities, arity)
	return uint(i), ok
}

// HashArities returns the distinct sizes of preimages hashed by any function,
// in increasing order.  Each size has its own hash table.
func (p *Toplevel) HashArities() []uint {
	return p.hashArities
}

// HashTable returns the index of the hash table holding preimages of a given
// size.
func (p *Toplevel) HashTable(arity uint) (uint, bool) {
	i, ok := slices.BinarySearch(p.hashArities, arity)
	return uint(i), ok
}

func visitOps(block *bytecode.Block, fn func(bytecode.Op)) {
	for _, op := range block.Ops {
		fn(op)
	}
	//
	for _, b := range block.Ctrl.Blocks() {
		visitOps(b, fn)
	}
}
