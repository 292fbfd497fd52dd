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
package air

import "fmt"

// RelationKind identifies the kind of interaction a lookup participates in.
type RelationKind uint8

const (
	// CALL relates the inputs and outputs of a function call.
	CALL RelationKind = iota
	// MEMORY relates a pointer with the tuple stored at it.
	MEMORY
	// HASH relates a preimage with its image.
	HASH
)

// Relation identifies a lookup relation.  For calls, the index is that of the
// function in question.  For memory and hashes, the index is the arity of the
// tuple (or preimage).
type Relation struct {
	Kind  RelationKind
	Index uint
}

// CallRelation constructs the relation for calls to a given function.
func CallRelation(fn uint) Relation {
	return Relation{CALL, fn}
}

// MemoryRelation constructs the relation for memory tuples of a given arity.
func MemoryRelation(arity uint) Relation {
	return Relation{MEMORY, arity}
}

// HashRelation constructs the relation for hashes of a given preimage arity.
func HashRelation(arity uint) Relation {
	return Relation{HASH, arity}
}

func (p Relation) String() string {
	switch p.Kind {
	case CALL:
		return fmt.Sprintf("call%d", p.Index)
	case MEMORY:
		return fmt.Sprintf("mem%d", p.Index)
	case HASH:
		return fmt.Sprintf("hash%d", p.Index)
	}
	//
	panic("unknown relation kind")
}

// Builder accumulates the constraints of a chip, along with its lookup
// interactions.  A chip requires a tuple from a relation when it consumes it
// (e.g. by making a call), and provides a tuple when it produces it (e.g. by
// answering a call).  The interactions across all chips of a machine are
// balanced when, for every tuple, the total weight required matches the total
// multiplicity provided.
type Builder interface {
	// Column returns an expression for a given column of the current row.
	Column(index uint) Expr
	// AssertZero requires that a given expression evaluates to zero on every
	// row.
	AssertZero(Expr)
	// Require a tuple from a relation with a given weight.
	Require(rel Relation, weight Expr, values []Expr)
	// Provide a tuple to a relation with a given multiplicity.
	Provide(rel Relation, mult Expr, values []Expr)
}

// AssertBool requires that a given expression evaluates to either zero or one.
func AssertBool(builder Builder, e Expr) {
	builder.AssertZero(e.Mul(e.Sub(NewConst64(1))))
}

// Columns returns expressions for n consecutive columns starting from a given
// column.
func Columns(builder Builder, start, n uint) []Expr {
	exprs := make([]Expr, n)
	//
	for i := range n {
		exprs[i] = builder.Column(start + i)
	}
	//
	return exprs
}
