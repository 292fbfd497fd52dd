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
package trace

import (
	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/record"
)

// Memory generates the trace of a memory table, where each row holds the
// multiplicity of a stored tuple, followed by its pointer and the tuple
// itself.
func Memory(rec *record.QueryRecord, table uint) *Matrix {
	var (
		mem    = rec.Memory(table)
		arity  = rec.Toplevel().MemoryArities()[table]
		rows   = nonzero(mem.Values(), func(r record.MemResult) uint32 { return r.Multiplicity })
		matrix = NewMatrix(2+arity, Height(uint(len(rows))))
	)
	//
	for i, j := range rows {
		row := matrix.Row(uint(i))
		res := mem.Value(j)
		row[0] = field.Uint64(uint64(res.Multiplicity))
		row[1] = field.Uint64(uint64(res.Pointer))
		copy(row[2:], mem.Key(j))
	}
	//
	return matrix
}

// Hash generates the trace of a hash table, where each row holds the
// multiplicity of a hashed preimage, followed by the preimage and its image.
func Hash(rec *record.QueryRecord, table uint) *Matrix {
	var (
		hashes = rec.Hashes(table)
		arity  = rec.Toplevel().HashArities()[table]
		size   = rec.Toplevel().Hasher().ImageSize()
		rows   = nonzero(hashes.Values(), func(r record.HashResult) uint32 { return r.Multiplicity })
		matrix = NewMatrix(1+arity+size, Height(uint(len(rows))))
	)
	//
	for i, j := range rows {
		row := matrix.Row(uint(i))
		res := hashes.Value(j)
		row[0] = field.Uint64(uint64(res.Multiplicity))
		copy(row[1:], hashes.Key(j))
		copy(row[1+arity:], res.Image)
	}
	//
	return matrix
}

// Entrypoint generates the trace of the public calls made to a function, where
// each row holds the inputs and outputs of a call, followed by a flag
// indicating the row is not padding.
func Entrypoint(rec *record.QueryRecord, fn *bytecode.Func) *Matrix {
	var entries []record.Entry
	//
	for _, e := range rec.Entries() {
		if e.Func == fn.Index {
			entries = append(entries, e)
		}
	}
	//
	matrix := NewMatrix(fn.InputSize+fn.OutputSize+1, Height(uint(len(entries))))
	//
	for i, e := range entries {
		row := matrix.Row(uint(i))
		copy(row, e.Args)
		copy(row[fn.InputSize:], e.Output)
		row[fn.InputSize+fn.OutputSize] = field.One()
	}
	//
	return matrix
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
