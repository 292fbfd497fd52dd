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
package bytecode

import (
	"fmt"

	"github.com/consensys/go-lair/pkg/field"
)

// Op represents an operation within a block.  An operation reads zero or more
// values from the frame's value list and appends zero or more new ones.
type Op interface {
	// Uses returns the value-list positions read by this operation.
	Uses() []uint
	// Provide human readable form of operation
	String() string
}

// Const appends a constant value.
type Const struct {
	Value field.Element
}

// Add appends the sum of two values.
type Add struct {
	Left, Right uint
}

// Sub appends the difference of two values.
type Sub struct {
	Left, Right uint
}

// Mul appends the product of two values.
type Mul struct {
	Left, Right uint
}

// Inv appends the multiplicative inverse of a value, where the inverse of zero
// is zero.
type Inv struct {
	Arg uint
}

// Not appends 1 if a value is zero, and 0 otherwise.
type Not struct {
	Arg uint
}

// Call appends the outputs of a call to the function with the given index.
type Call struct {
	Func uint
	Args []uint
}

// PreImg appends the inputs of a previously recorded call to the (invertible)
// function with the given index, which produced the given outputs.
type PreImg struct {
	Func uint
	Outs []uint
}

// Store writes a tuple into memory and appends a pointer to it.
type Store struct {
	Args []uint
}

// Load reads a tuple of the given arity from the memory location identified by
// a pointer, appending its values.
type Load struct {
	Arity uint
	Ptr   uint
}

// Hash appends the image of a preimage under the toplevel's hasher.
type Hash struct {
	Args []uint
}

// AssertEq asserts two tuples of values are equal.
type AssertEq struct {
	Left, Right []uint
}

// AssertNe asserts two tuples of values differ in at least one position.
type AssertNe struct {
	Left, Right []uint
}

// Debug prints a message and has no other effect.
type Debug struct {
	Message string
}

// Uses implementation for Op interface
func (p *Const) Uses() []uint { return nil }

// Uses implementation for Op interface
func (p *Add) Uses() []uint { return []uint{p.Left, p.Right} }

// Uses implementation for Op interface
func (p *Sub) Uses() []uint { return []uint{p.Left, p.Right} }

// Uses implementation for Op interface
func (p *Mul) Uses() []uint { return []uint{p.Left, p.Right} }

// Uses implementation for Op interface
func (p *Inv) Uses() []uint { return []uint{p.Arg} }

// Uses implementation for Op interface
func (p *Not) Uses() []uint { return []uint{p.Arg} }

// Uses implementation for Op interface
func (p *Call) Uses() []uint { return p.Args }

// Uses implementation for Op interface
func (p *PreImg) Uses() []uint { return p.Outs }

// Uses implementation for Op interface
func (p *Store) Uses() []uint { return p.Args }

// Uses implementation for Op interface
func (p *Load) Uses() []uint { return []uint{p.Ptr} }

// Uses implementation for Op interface
func (p *Hash) Uses() []uint { return p.Args }

// Uses implementation for Op interface
func (p *AssertEq) Uses() []uint { return append(append([]uint(nil), p.Left...), p.Right...) }

// Uses implementation for Op interface
func (p *AssertNe) Uses() []uint { return append(append([]uint(nil), p.Left...), p.Right...) }

// Uses implementation for Op interface
func (p *Debug) Uses() []uint { return nil }

func (p *Const) String() string { return fmt.Sprintf("const %s", p.Value.String()) }

func (p *Add) String() string { return fmt.Sprintf("add $%d $%d", p.Left, p.Right) }

func (p *Sub) String() string { return fmt.Sprintf("sub $%d $%d", p.Left, p.Right) }

func (p *Mul) String() string { return fmt.Sprintf("mul $%d $%d", p.Left, p.Right) }

func (p *Inv) String() string { return fmt.Sprintf("inv $%d", p.Arg) }

func (p *Not) String() string { return fmt.Sprintf("not $%d", p.Arg) }

func (p *Call) String() string { return fmt.Sprintf("call #%d%s", p.Func, varsToString(p.Args)) }

func (p *PreImg) String() string { return fmt.Sprintf("preimg #%d%s", p.Func, varsToString(p.Outs)) }

func (p *Store) String() string { return fmt.Sprintf("store%s", varsToString(p.Args)) }

func (p *Load) String() string { return fmt.Sprintf("load %d $%d", p.Arity, p.Ptr) }

func (p *Hash) String() string { return fmt.Sprintf("hash%s", varsToString(p.Args)) }

func (p *AssertEq) String() string {
	return fmt.Sprintf("assert-eq [%s] [%s]", listToString(p.Left), listToString(p.Right))
}

func (p *AssertNe) String() string {
	return fmt.Sprintf("assert-ne [%s] [%s]", listToString(p.Left), listToString(p.Right))
}

func (p *Debug) String() string { return fmt.Sprintf("debug %s", p.Message) }
