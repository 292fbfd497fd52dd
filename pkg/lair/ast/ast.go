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
package ast

import "github.com/consensys/go-lair/pkg/field"

// Func is an unlinked function definition.  Functions and local values are
// referred to by name.  Local names beginning with an underscore are ignored,
// meaning they need not be used.
type Func struct {
	Name       string
	Inputs     []string
	OutputSize uint
	Invertible bool
	Body       Block
}

// Block is a sequence of statements terminated by a control.
type Block struct {
	Ops  []Op
	Ctrl Ctrl
}

// Op is an unlinked operation.  Operations bind zero or more new names.
type Op interface {
	isOp()
}

// Ctrl is an unlinked control.
type Ctrl interface {
	isCtrl()
}

// IsIgnored determines whether a given local name is exempt from the usage
// check.
func IsIgnored(name string) bool {
	return len(name) > 0 && name[0] == '_'
}

// Const binds a constant.
type Const struct {
	Target string
	Value  field.Element
}

// Binary binds the result of a binary arithmetic operation.
type Binary struct {
	Kind        BinaryKind
	Target      string
	Left, Right string
}

// BinaryKind identifies an arithmetic operation.
type BinaryKind uint8

const (
	// ADD is field addition
	ADD BinaryKind = iota
	// SUB is field subtraction
	SUB
	// MUL is field multiplication
	MUL
	// DIV is field division (multiplication by the inverse).
	DIV
)

// Unary binds the result of a unary operation.
type Unary struct {
	Kind   UnaryKind
	Target string
	Arg    string
}

// UnaryKind identifies a unary operation.
type UnaryKind uint8

const (
	// INV is the multiplicative inverse (0 for 0)
	INV UnaryKind = iota
	// NOT is 1 for 0 and 0 otherwise.
	NOT
)

// Call binds the outputs of a call to a named function.
type Call struct {
	Targets []string
	Func    string
	Args    []string
}

// PreImg binds the inputs of a previous call to a named invertible function
// which produced the given outputs.
type PreImg struct {
	Targets []string
	Func    string
	Outs    []string
}

// Store binds a pointer to a newly stored tuple.
type Store struct {
	Target string
	Args   []string
}

// Load binds the values of the tuple identified by a pointer.
type Load struct {
	Targets []string
	Arity   uint
	Ptr     string
}

// Hash binds the image of a preimage.
type Hash struct {
	Targets []string
	Args    []string
}

// Assert checks two tuples for equality or disequality.
type Assert struct {
	Equal       bool
	Left, Right []string
}

// Debug prints a message.
type Debug struct {
	Message string
}

// Return emits the given names as outputs.
type Return struct {
	Vars []string
}

// If branches on one or more names, taking True when any is nonzero.  Many
// indicates the conditions were given as a tuple, even if only one.
type If struct {
	Conds       []string
	Many        bool
	True, False Block
}

// Match branches on one or more names matching constant tuples.  Many
// indicates the names were given as a tuple, even if only one.
type Match struct {
	Vars    []string
	Many    bool
	Cases   []Case
	Default *Block
}

// Case of a Match.
type Case struct {
	Values field.Tuple
	Block  Block
}

func (*Const) isOp()  {}
func (*Binary) isOp() {}
func (*Unary) isOp()  {}
func (*Call) isOp()   {}
func (*PreImg) isOp() {}
func (*Store) isOp()  {}
func (*Load) isOp()   {}
func (*Hash) isOp()   {}
func (*Assert) isOp() {}
func (*Debug) isOp()  {}

func (*Return) isCtrl() {}
func (*If) isCtrl()     {}
func (*Match) isCtrl()  {}
