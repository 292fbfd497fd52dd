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
	"io"
	"strings"
)

// Interaction is a lookup interaction captured symbolically.
type Interaction struct {
	Relation Relation
	// Indicates whether the tuple is provided (or required)
	Provide bool
	// Weight or multiplicity
	Weight Expr
	Values []Expr
}

func (p Interaction) String() string {
	var (
		builder strings.Builder
		kind    = "require"
	)
	//
	if p.Provide {
		kind = "provide"
	}
	//
	builder.WriteString(fmt.Sprintf("(%s %s %s", kind, p.Relation.String(), p.Weight.String()))
	//
	for _, v := range p.Values {
		builder.WriteString(" ")
		builder.WriteString(v.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// SymbolicBuilder captures the constraints and interactions of a chip as
// expressions.
type SymbolicBuilder struct {
	Constraints  []Expr
	Interactions []Interaction
}

// Column implementation for the Builder interface.
func (p *SymbolicBuilder) Column(index uint) Expr {
	return NewColumnAccess(index)
}

// AssertZero implementation for the Builder interface.  Constraints which fold
// to zero are trivially satisfied and, hence, are dropped.
func (p *SymbolicBuilder) AssertZero(e Expr) {
	if c := e.AsConstant(); c != nil && c.IsZero() {
		return
	}
	//
	p.Constraints = append(p.Constraints, e)
}

// Require implementation for the Builder interface.
func (p *SymbolicBuilder) Require(rel Relation, weight Expr, values []Expr) {
	p.Interactions = append(p.Interactions, Interaction{rel, false, weight, values})
}

// Provide implementation for the Builder interface.
func (p *SymbolicBuilder) Provide(rel Relation, mult Expr, values []Expr) {
	p.Interactions = append(p.Interactions, Interaction{rel, true, mult, values})
}

// Degree returns the maximum degree of any constraint.
func (p *SymbolicBuilder) Degree() uint {
	return maxDegree(p.Constraints)
}

// Write a human-readable form of the captured constraints and interactions,
// using the given column names.
func (p *SymbolicBuilder) Write(out io.Writer, names []string) error {
	for _, c := range p.Constraints {
		if _, err := fmt.Fprintf(out, "(assert-zero %s)\n", rename(c.String(), names)); err != nil {
			return err
		}
	}
	//
	for _, i := range p.Interactions {
		if _, err := fmt.Fprintln(out, rename(i.String(), names)); err != nil {
			return err
		}
	}
	//
	return nil
}

// Replace column references (e.g. #3) with their names.  References are
// replaced from the highest index down, so that #1 does not clobber #12.
func rename(str string, names []string) string {
	for i := len(names) - 1; i >= 0; i-- {
		str = strings.ReplaceAll(str, fmt.Sprintf("#%d", i), names[i])
	}
	//
	return str
}
