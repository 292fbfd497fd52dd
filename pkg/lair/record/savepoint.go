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
	"slices"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/util/collection/hash"
)

// Savepoint captures the state of a record, such that any changes made after
// it was taken can be rolled back.
type Savepoint struct {
	funcs    [][]QueryResult
	memory   [][]MemResult
	hashes   [][]HashResult
	pointers []uint32
	entries  uint
}

// Savepoint captures the current state of this record.  This takes time
// proportional to the size of the record.
func (p *QueryRecord) Savepoint() *Savepoint {
	sp := &Savepoint{
		funcs:    make([][]QueryResult, len(p.funcs)),
		memory:   make([][]MemResult, len(p.memory)),
		hashes:   make([][]HashResult, len(p.hashes)),
		pointers: slices.Clone(p.pointers),
		entries:  uint(len(p.entries)),
	}
	//
	for i, t := range p.funcs {
		sp.funcs[i] = slices.Clone(t.Values())
	}
	//
	for i, t := range p.memory {
		sp.memory[i] = slices.Clone(t.Values())
	}
	//
	for i, t := range p.hashes {
		sp.hashes[i] = slices.Clone(t.Values())
	}
	//
	return sp
}

// Rollback restores this record to the state captured by a given savepoint.
// Entries inserted since are removed, and every multiplicity is restored.
// The savepoint must have been taken from this record, and nothing may have
// been removed from the record since.
func (p *QueryRecord) Rollback(sp *Savepoint) {
	for i, t := range p.funcs {
		restore(t, sp.funcs[i])
		// Rebuild inverse, since later calls may have overwritten it
		if inverse := p.inverses[i]; inverse != nil {
			p.inverses[i] = hash.NewMap[field.Tuple, field.Tuple](t.Size())
			//
			for j, res := range t.Values() {
				p.inverses[i].Insert(res.Output, t.Key(uint(j)))
			}
		}
	}
	//
	for i, t := range p.memory {
		restore(t, sp.memory[i])
	}
	//
	for i, t := range p.hashes {
		restore(t, sp.hashes[i])
	}
	//
	copy(p.pointers, sp.pointers)
	p.entries = p.entries[:sp.entries]
}

func restore[V any](table *hash.Map[field.Tuple, V], saved []V) {
	for table.Size() > uint(len(saved)) {
		table.Pop()
	}
	//
	for i, v := range saved {
		*table.Ref(uint(i)) = v
	}
}
