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
	"strings"

	"github.com/consensys/go-lair/pkg/field"
)

// Expr represents an arithmetic expression over the columns of a single trace
// row.  Expressions are built from column accesses and constants using sums,
// differences and products.  Constant subexpressions are folded as they are
// built, such that an expression over constants is itself a constant.
type Expr interface {
	// Add two expressions together, producing a third.
	Add(Expr) Expr
	// Subtract one expression from another
	Sub(Expr) Expr
	// Multiply two expressions together, producing a third.
	Mul(Expr) Expr
	// EvalAt evaluates this expression on a given row.
	EvalAt(row []field.Element) field.Element
	// Degree returns the (polynomial) degree of this expression.
	Degree() uint
	// AsConstant determines whether or not this is a constant expression.  If
	// so, the constant is returned; otherwise, nil is returned.
	AsConstant() *field.Element
	// String returns a human-readable form of this expression.
	String() string
}

// ============================================================================
// Addition
// ============================================================================

// Add represents the sum over zero or more expressions.
type Add struct{ Args []Expr }

// Add two expressions together, producing a third.
func (p *Add) Add(other Expr) Expr { return sum(p, other) }

// Sub (subtract) one expression from another.
func (p *Add) Sub(other Expr) Expr { return difference(p, other) }

// Mul (multiply) two expressions together, producing a third.
func (p *Add) Mul(other Expr) Expr { return product(p, other) }

// EvalAt implementation for the Expr interface.
func (p *Add) EvalAt(row []field.Element) field.Element {
	val := p.Args[0].EvalAt(row)
	//
	for _, arg := range p.Args[1:] {
		val = val.Add(arg.EvalAt(row))
	}
	//
	return val
}

// Degree implementation for the Expr interface.
func (p *Add) Degree() uint { return maxDegree(p.Args) }

// AsConstant implementation for the Expr interface.
func (p *Add) AsConstant() *field.Element { return nil }

func (p *Add) String() string { return naryString("+", p.Args) }

// ============================================================================
// Subtraction
// ============================================================================

// Sub represents the subtraction over zero or more expressions.
type Sub struct{ Args []Expr }

// Add two expressions together, producing a third.
func (p *Sub) Add(other Expr) Expr { return sum(p, other) }

// Sub (subtract) one expression from another.
func (p *Sub) Sub(other Expr) Expr { return difference(p, other) }

// Mul (multiply) two expressions together, producing a third.
func (p *Sub) Mul(other Expr) Expr { return product(p, other) }

// EvalAt implementation for the Expr interface.
func (p *Sub) EvalAt(row []field.Element) field.Element {
	val := p.Args[0].EvalAt(row)
	//
	for _, arg := range p.Args[1:] {
		val = val.Sub(arg.EvalAt(row))
	}
	//
	return val
}

// Degree implementation for the Expr interface.
func (p *Sub) Degree() uint { return maxDegree(p.Args) }

// AsConstant implementation for the Expr interface.
func (p *Sub) AsConstant() *field.Element { return nil }

func (p *Sub) String() string { return naryString("-", p.Args) }

// ============================================================================
// Multiplication
// ============================================================================

// Mul represents the product over zero or more expressions.
type Mul struct{ Args []Expr }

// Add two expressions together, producing a third.
func (p *Mul) Add(other Expr) Expr { return sum(p, other) }

// Sub (subtract) one expression from another.
func (p *Mul) Sub(other Expr) Expr { return difference(p, other) }

// Mul (multiply) two expressions together, producing a third.
func (p *Mul) Mul(other Expr) Expr { return product(p, other) }

// EvalAt implementation for the Expr interface.
func (p *Mul) EvalAt(row []field.Element) field.Element {
	val := p.Args[0].EvalAt(row)
	//
	for _, arg := range p.Args[1:] {
		// Can short-circuit evaluation?
		if val.IsZero() {
			break
		}
		//
		val = val.Mul(arg.EvalAt(row))
	}
	//
	return val
}

// Degree implementation for the Expr interface.
func (p *Mul) Degree() uint {
	var deg uint
	//
	for _, arg := range p.Args {
		deg += arg.Degree()
	}
	//
	return deg
}

// AsConstant implementation for the Expr interface.
func (p *Mul) AsConstant() *field.Element { return nil }

func (p *Mul) String() string { return naryString("*", p.Args) }

// ============================================================================
// Constant
// ============================================================================

// Constant represents a constant value within an expression.
type Constant struct{ Value field.Element }

// NewConst construct an expression representing a given constant.
func NewConst(val field.Element) Expr {
	return &Constant{val}
}

// NewConst64 construct an expression representing a given constant from a
// uint64.
func NewConst64(val uint64) Expr {
	return &Constant{field.Uint64(val)}
}

// Add two expressions together, producing a third.
func (p *Constant) Add(other Expr) Expr { return sum(p, other) }

// Sub (subtract) one expression from another.
func (p *Constant) Sub(other Expr) Expr { return difference(p, other) }

// Mul (multiply) two expressions together, producing a third.
func (p *Constant) Mul(other Expr) Expr { return product(p, other) }

// EvalAt implementation for the Expr interface.
func (p *Constant) EvalAt(row []field.Element) field.Element { return p.Value }

// Degree implementation for the Expr interface.
func (p *Constant) Degree() uint { return 0 }

// AsConstant implementation for the Expr interface.
func (p *Constant) AsConstant() *field.Element { return &p.Value }

func (p *Constant) String() string { return p.Value.String() }

// ============================================================================
// Column Access
// ============================================================================

// ColumnAccess represents reading the value held at a given column of the
// current row.
type ColumnAccess struct {
	Column uint
}

// NewColumnAccess constructs an expression representing the value of a given
// column on the current row.
func NewColumnAccess(column uint) *ColumnAccess {
	return &ColumnAccess{column}
}

// Add two expressions together, producing a third.
func (p *ColumnAccess) Add(other Expr) Expr { return sum(p, other) }

// Sub (subtract) one expression from another.
func (p *ColumnAccess) Sub(other Expr) Expr { return difference(p, other) }

// Mul (multiply) two expressions together, producing a third.
func (p *ColumnAccess) Mul(other Expr) Expr { return product(p, other) }

// EvalAt implementation for the Expr interface.
func (p *ColumnAccess) EvalAt(row []field.Element) field.Element { return row[p.Column] }

// Degree implementation for the Expr interface.
func (p *ColumnAccess) Degree() uint { return 1 }

// AsConstant implementation for the Expr interface.
func (p *ColumnAccess) AsConstant() *field.Element { return nil }

func (p *ColumnAccess) String() string { return fmt.Sprintf("#%d", p.Column) }

// ============================================================================
// Helpers
// ============================================================================

// Sum returns the sum of zero or more expressions.
func Sum(exprs ...Expr) Expr {
	var res = NewConst(field.Zero())
	//
	for _, e := range exprs {
		res = res.Add(e)
	}
	//
	return res
}

func sum(left, right Expr) Expr {
	l, r := left.AsConstant(), right.AsConstant()
	//
	switch {
	case l != nil && r != nil:
		return NewConst(l.Add(*r))
	case l != nil && l.IsZero():
		return right
	case r != nil && r.IsZero():
		return left
	}
	//
	return &Add{[]Expr{left, right}}
}

func difference(left, right Expr) Expr {
	l, r := left.AsConstant(), right.AsConstant()
	//
	switch {
	case l != nil && r != nil:
		return NewConst(l.Sub(*r))
	case r != nil && r.IsZero():
		return left
	}
	//
	return &Sub{[]Expr{left, right}}
}

func product(left, right Expr) Expr {
	l, r := left.AsConstant(), right.AsConstant()
	//
	switch {
	case l != nil && r != nil:
		return NewConst(l.Mul(*r))
	case (l != nil && l.IsZero()) || (r != nil && r.IsZero()):
		return NewConst(field.Zero())
	case l != nil && l.IsOne():
		return right
	case r != nil && r.IsOne():
		return left
	}
	//
	return &Mul{[]Expr{left, right}}
}

func maxDegree(exprs []Expr) uint {
	var deg uint
	//
	for _, e := range exprs {
		deg = max(deg, e.Degree())
	}
	//
	return deg
}

func naryString(operator string, exprs []Expr) string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	builder.WriteString(operator)
	//
	for _, e := range exprs {
		builder.WriteString(" ")
		builder.WriteString(e.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
