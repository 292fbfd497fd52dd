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
	"fmt"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/ast"
	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/hasher"
)

// LinkError describes a static fault found in a function definition.
type LinkError struct {
	// Name of the function in which the error arose
	Func string
	// Error message being reported
	Msg string
}

// Error implements the error interface.
func (p LinkError) Error() string {
	return fmt.Sprintf("%s: %s", p.Func, p.Msg)
}

// Link a set of function definitions into a toplevel.  Every function name is
// resolved to an index, and every local name to a value-list position.
// Linking also checks that every bound name (other than those beginning with
// an underscore) is used, that calls and returns agree with the declared
// arities, and that match cases are distinct.  All errors found are reported
// together, in which case no toplevel is returned.
func Link(decls []ast.Func, hasher hasher.Hasher) (*Toplevel, []LinkError) {
	var (
		names  = make(map[string]uint, len(decls))
		funcs  = make([]*bytecode.Func, len(decls))
		errors []LinkError
	)
	// Index all declarations
	for i, decl := range decls {
		if _, ok := names[decl.Name]; ok {
			errors = append(errors, LinkError{decl.Name, "duplicate function"})
		} else {
			names[decl.Name] = uint(i)
		}
	}
	// Link each function in turn
	for i := range decls {
		linker := funcLinker{decls: decls, names: names, hasher: hasher, decl: &decls[i]}
		funcs[i] = linker.link(uint(i))
		errors = append(errors, linker.errors...)
	}
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	return newToplevel(funcs, hasher), nil
}

// Binding of a local name to a value-list position.
type binding struct {
	name  string
	index uint
	// Index into the usage table
	usage uint
}

// usage records whether a given binding was ever read.
type usage struct {
	name string
	used bool
}

// funcLinker is responsible for linking a single function.
type funcLinker struct {
	decls  []ast.Func
	names  map[string]uint
	hasher hasher.Hasher
	decl   *ast.Func
	// Bindings currently in scope, innermost last.
	bindings []binding
	// Every binding made in this function
	usages []usage
	// Number of values in the value list
	values uint
	// Number of returns allocated so far
	returns uint
	errors  []LinkError
}

func (p *funcLinker) link(index uint) *bytecode.Func {
	for _, input := range p.decl.Inputs {
		p.bind(input)
	}
	//
	body := p.linkBlock(&p.decl.Body)
	// Check all bindings were used
	for _, u := range p.usages {
		if !u.used && !ast.IsIgnored(u.name) {
			p.error("variable %s is never used", u.name)
		}
	}
	//
	return &bytecode.Func{
		Name:       p.decl.Name,
		Index:      index,
		InputSize:  uint(len(p.decl.Inputs)),
		OutputSize: p.decl.OutputSize,
		Invertible: p.decl.Invertible,
		Returns:    p.returns,
		Body:       body,
	}
}

func (p *funcLinker) error(format string, args ...any) {
	p.errors = append(p.errors, LinkError{p.decl.Name, fmt.Sprintf(format, args...)})
}

// Bind a name to the next value-list position.
func (p *funcLinker) bind(name string) {
	p.bindings = append(p.bindings, binding{name, p.values, uint(len(p.usages))})
	p.usages = append(p.usages, usage{name, false})
	p.values++
}

// Allocate an anonymous value-list position.
func (p *funcLinker) fresh() uint {
	p.values++
	return p.values - 1
}

// Resolve a name to its value-list position, marking it as used.
func (p *funcLinker) lookup(name string) uint {
	for i := len(p.bindings) - 1; i >= 0; i-- {
		if b := p.bindings[i]; b.name == name {
			p.usages[b.usage].used = true
			return b.index
		}
	}
	//
	p.error("unbound variable %s", name)
	//
	return 0
}

func (p *funcLinker) lookupAll(names []string) []uint {
	vars := make([]uint, len(names))
	//
	for i, n := range names {
		vars[i] = p.lookup(n)
	}
	//
	return vars
}

// Resolve a function name, reporting an error if it does not exist.
func (p *funcLinker) callee(name string) (*ast.Func, uint, bool) {
	if index, ok := p.names[name]; ok {
		return &p.decls[index], index, true
	}
	//
	p.error("unknown function %s", name)
	//
	return nil, 0, false
}

// Link a block within its own scope, such that bindings made inside it are not
// visible afterwards.
func (p *funcLinker) linkBlock(block *ast.Block) bytecode.Block {
	var (
		nBindings = len(p.bindings)
		nValues   = p.values
		linked    = bytecode.Block{ReturnLo: p.returns}
	)
	//
	for _, op := range block.Ops {
		linked.Ops = append(linked.Ops, p.linkOp(op)...)
	}
	//
	linked.Ctrl = p.linkCtrl(block.Ctrl)
	linked.ReturnHi = p.returns
	// Restore scope
	p.bindings = p.bindings[:nBindings]
	p.values = nValues
	//
	return linked
}

func (p *funcLinker) linkOp(op ast.Op) []bytecode.Op {
	switch op := op.(type) {
	case *ast.Const:
		p.bind(op.Target)
		return []bytecode.Op{&bytecode.Const{Value: op.Value}}
	case *ast.Binary:
		return p.linkBinary(op)
	case *ast.Unary:
		var linked bytecode.Op
		//
		arg := p.lookup(op.Arg)
		//
		if op.Kind == ast.INV {
			linked = &bytecode.Inv{Arg: arg}
		} else {
			linked = &bytecode.Not{Arg: arg}
		}
		//
		p.bind(op.Target)
		//
		return []bytecode.Op{linked}
	case *ast.Call:
		args := p.lookupAll(op.Args)
		index, _ := p.checkCall(op.Func, len(op.Args), len(op.Targets), false)
		p.bindAll(op.Targets)
		//
		return []bytecode.Op{&bytecode.Call{Func: index, Args: args}}
	case *ast.PreImg:
		outs := p.lookupAll(op.Outs)
		index, _ := p.checkCall(op.Func, len(op.Outs), len(op.Targets), true)
		p.bindAll(op.Targets)
		//
		return []bytecode.Op{&bytecode.PreImg{Func: index, Outs: outs}}
	case *ast.Store:
		if len(op.Args) == 0 {
			p.error("store requires at least one value")
		}
		//
		args := p.lookupAll(op.Args)
		p.bind(op.Target)
		//
		return []bytecode.Op{&bytecode.Store{Args: args}}
	case *ast.Load:
		if op.Arity == 0 {
			p.error("load requires a nonzero arity")
		} else if uint(len(op.Targets)) != op.Arity {
			p.error("load of arity %d binds %d values", op.Arity, len(op.Targets))
		}
		//
		ptr := p.lookup(op.Ptr)
		p.bindAll(op.Targets)
		//
		return []bytecode.Op{&bytecode.Load{Arity: op.Arity, Ptr: ptr}}
	case *ast.Hash:
		if len(op.Args) == 0 {
			p.error("hash requires at least one value")
		} else if uint(len(op.Targets)) != p.hasher.ImageSize() {
			p.error("hash binds %d values, but images have size %d", len(op.Targets), p.hasher.ImageSize())
		}
		//
		args := p.lookupAll(op.Args)
		p.bindAll(op.Targets)
		//
		return []bytecode.Op{&bytecode.Hash{Args: args}}
	case *ast.Assert:
		if len(op.Left) != len(op.Right) {
			p.error("assertion compares %d values against %d", len(op.Left), len(op.Right))
		} else if len(op.Left) == 0 {
			p.error("assertion requires at least one value")
		}
		//
		left, right := p.lookupAll(op.Left), p.lookupAll(op.Right)
		//
		if op.Equal {
			return []bytecode.Op{&bytecode.AssertEq{Left: left, Right: right}}
		}
		//
		return []bytecode.Op{&bytecode.AssertNe{Left: left, Right: right}}
	case *ast.Debug:
		return []bytecode.Op{&bytecode.Debug{Message: op.Message}}
	default:
		p.error("unknown operation %T", op)
		return nil
	}
}

func (p *funcLinker) linkBinary(op *ast.Binary) []bytecode.Op {
	var (
		left  = p.lookup(op.Left)
		right = p.lookup(op.Right)
		ops   []bytecode.Op
	)
	//
	switch op.Kind {
	case ast.ADD:
		ops = []bytecode.Op{&bytecode.Add{Left: left, Right: right}}
	case ast.SUB:
		ops = []bytecode.Op{&bytecode.Sub{Left: left, Right: right}}
	case ast.MUL:
		ops = []bytecode.Op{&bytecode.Mul{Left: left, Right: right}}
	case ast.DIV:
		// x / y is x * y⁻¹
		inv := p.fresh()
		ops = []bytecode.Op{&bytecode.Inv{Arg: right}, &bytecode.Mul{Left: left, Right: inv}}
	}
	//
	p.bind(op.Target)
	//
	return ops
}

// Check a call (or preimage lookup) of a named function has the expected
// number of arguments and bindings.
func (p *funcLinker) checkCall(name string, nargs int, ntargets int, inverse bool) (uint, bool) {
	callee, index, ok := p.callee(name)
	//
	if !ok {
		return 0, false
	}
	//
	var (
		inputs  = len(callee.Inputs)
		outputs = int(callee.OutputSize)
	)
	//
	if inverse {
		if !callee.Invertible {
			p.error("preimage of %s, which is not invertible", name)
			return index, false
		}
		// Preimages map outputs back to inputs
		inputs, outputs = outputs, inputs
	}
	//
	if nargs != inputs {
		p.error("%s expects %d arguments, found %d", name, inputs, nargs)
		return index, false
	} else if ntargets != outputs {
		p.error("%s returns %d values, but %d are bound", name, outputs, ntargets)
		return index, false
	}
	//
	return index, true
}

func (p *funcLinker) bindAll(names []string) {
	for _, n := range names {
		p.bind(n)
	}
}

func (p *funcLinker) linkCtrl(ctrl ast.Ctrl) bytecode.Ctrl {
	switch ctrl := ctrl.(type) {
	case *ast.Return:
		if uint(len(ctrl.Vars)) != p.decl.OutputSize {
			p.error("return of %d values, but output size is %d", len(ctrl.Vars), p.decl.OutputSize)
		}
		//
		vars := p.lookupAll(ctrl.Vars)
		p.returns++
		//
		return &bytecode.Return{Ident: p.returns - 1, Vars: vars}
	case *ast.If:
		conds := p.lookupAll(ctrl.Conds)
		tBlock := p.linkBlock(&ctrl.True)
		fBlock := p.linkBlock(&ctrl.False)
		//
		if !p.checkBranch("if", len(conds), ctrl.Many) || ctrl.Many {
			return &bytecode.IfMany{Conds: conds, True: &tBlock, False: &fBlock}
		}
		//
		return &bytecode.If{Cond: conds[0], True: &tBlock, False: &fBlock}
	case *ast.Match:
		return p.linkMatch(ctrl)
	case nil:
		p.error("block has no control")
	default:
		p.error("unknown control %T", ctrl)
	}
	// Placeholder, since linking has failed
	return &bytecode.Return{}
}

// Check a branch on n values is well formed, where a branch not on a tuple
// must be on exactly one value.
func (p *funcLinker) checkBranch(kind string, n int, many bool) bool {
	if n == 0 {
		p.error("%s on no values", kind)
		return false
	} else if !many && n != 1 {
		p.error("%s on %d values must be on a tuple", kind, n)
		return false
	}
	//
	return true
}

func (p *funcLinker) linkMatch(ctrl *ast.Match) bytecode.Ctrl {
	var (
		vars  = p.lookupAll(ctrl.Vars)
		cases = make([]bytecode.ManyCase, len(ctrl.Cases))
		deflt *bytecode.Block
	)
	//
	for i, c := range ctrl.Cases {
		if len(c.Values) != len(vars) {
			p.error("match case %s has %d values, expected %d", c.Values, len(c.Values), len(vars))
		}
		//
		for _, d := range ctrl.Cases[:i] {
			if c.Values.Equals(d.Values) {
				p.error("duplicate match case %s", c.Values)
			}
		}
		//
		block := p.linkBlock(&ctrl.Cases[i].Block)
		cases[i] = bytecode.ManyCase{Values: c.Values, Block: &block}
	}
	//
	if ctrl.Default != nil {
		block := p.linkBlock(ctrl.Default)
		deflt = &block
	}
	//
	if !p.checkBranch("match", len(vars), ctrl.Many) || ctrl.Many {
		return &bytecode.MatchMany{Vars: vars, Cases: cases, Default: deflt}
	}
	//
	single := make([]bytecode.Case, len(cases))
	//
	for i, c := range cases {
		single[i] = bytecode.Case{Value: firstOrZero(c.Values), Block: c.Block}
	}
	//
	return &bytecode.Match{Var: vars[0], Cases: single, Default: deflt}
}

func firstOrZero(values field.Tuple) field.Element {
	if len(values) == 0 {
		return field.Zero()
	}
	//
	return values[0]
}
