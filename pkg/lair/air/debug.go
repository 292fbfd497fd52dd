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

import (
	"fmt"
	"slices"

	"github.com/consensys/go-lair/pkg/field"
)

// Matrix provides row-wise access to a trace.
type Matrix interface {
	Height() uint
	Row(row uint) []field.Element
}

// Failure describes a constraint which does not hold on some row of a chip.
type Failure struct {
	Chip       string
	Row        uint
	Constraint string
}

func (p Failure) Error() string {
	return fmt.Sprintf("constraint %s failed in %s (row %d)", p.Constraint, p.Chip, p.Row)
}

// Lookups accumulates the net weight of every tuple over all lookup
// interactions.  Provided tuples add their multiplicity, whilst required
// tuples subtract their weight.
type Lookups struct {
	sums map[string]field.Element
}

// NewLookups constructs an empty lookup accumulator.
func NewLookups() *Lookups {
	return &Lookups{make(map[string]field.Element)}
}

func (p *Lookups) add(rel Relation, values field.Tuple, weight field.Element) {
	if weight.IsZero() {
		return
	}
	//
	key := fmt.Sprintf("%s%s", rel.String(), values.String())
	p.sums[key] = p.sums[key].Add(weight)
}

// Merge the interactions of another accumulator into this one.
func (p *Lookups) Merge(other *Lookups) {
	for key, sum := range other.sums {
		p.sums[key] = p.sums[key].Add(sum)
	}
}

// Unbalanced returns every tuple whose net weight is nonzero, in sorted order,
// along with its net weight.
func (p *Lookups) Unbalanced() []string {
	var res []string
	//
	for key, sum := range p.sums {
		if !sum.IsZero() {
			res = append(res, fmt.Sprintf("%s: %s", key, sum.String()))
		}
	}
	//
	slices.Sort(res)
	//
	return res
}

// DebugBuilder evaluates constraints concretely over the rows of a trace,
// recording those which fail.  Lookup interactions are evaluated and
// accumulated, such that their balance can be checked once all chips are
// evaluated.
type DebugBuilder struct {
	chip     string
	index    uint
	row      []field.Element
	failures []Failure
	lookups  *Lookups
}

// NewDebugBuilder constructs a debug builder for a named chip, accumulating
// interactions into a given set of lookups.
func NewDebugBuilder(chip string, lookups *Lookups) *DebugBuilder {
	return &DebugBuilder{chip: chip, lookups: lookups}
}

// Seek moves this builder to a given row.
func (p *DebugBuilder) Seek(index uint, row []field.Element) {
	p.index = index
	p.row = row
}

// Failures returns the constraint failures observed so far.
func (p *DebugBuilder) Failures() []Failure {
	return p.failures
}

// Column implementation for the Builder interface.
func (p *DebugBuilder) Column(index uint) Expr {
	return NewColumnAccess(index)
}

// AssertZero implementation for the Builder interface.
func (p *DebugBuilder) AssertZero(e Expr) {
	if val := e.EvalAt(p.row); !val.IsZero() {
		p.failures = append(p.failures, Failure{p.chip, p.index, e.String()})
	}
}

// Require implementation for the Builder interface.
func (p *DebugBuilder) Require(rel Relation, weight Expr, values []Expr) {
	p.lookups.add(rel, p.evaluate(values), weight.EvalAt(p.row).Neg())
}

// Provide implementation for the Builder interface.
func (p *DebugBuilder) Provide(rel Relation, mult Expr, values []Expr) {
	p.lookups.add(rel, p.evaluate(values), mult.EvalAt(p.row))
}

func (p *DebugBuilder) evaluate(exprs []Expr) field.Tuple {
	vals := make(field.Tuple, len(exprs))
	//
	for i, e := range exprs {
		vals[i] = e.EvalAt(p.row)
	}
	//
	return vals
}

// Check evaluates the constraints of a chip on every row of its trace, returning
// any failures.  Interactions are accumulated into the given lookups.
func Check(chip string, trace Matrix, eval func(Builder), lookups *Lookups) []Failure {
	builder := NewDebugBuilder(chip, lookups)
	//
	for i := range trace.Height() {
		builder.Seek(i, trace.Row(i))
		eval(builder)
	}
	//
	return builder.Failures()
}
