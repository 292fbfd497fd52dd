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

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/layout"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
)

// EvalFunc generates the constraints and lookup interactions for the chip of a
// given function.  The body of the function is walked once, such that every
// path through it is constrained under the selector of that path.  Columns are
// consumed in the same order as they are filled during trace generation.
func EvalFunc(top *toplevel.Toplevel, fn *bytecode.Func, width layout.Width, builder Builder) {
	var (
		inputs  = Columns(builder, 0, width.Input)
		outputs = Columns(builder, width.OutputOffset(), width.Output)
		mult    = builder.Column(width.AuxOffset())
		sels    = Columns(builder, width.SelOffset(), width.Sel)
		active  = Sum(sels...)
		one     = NewConst64(1)
	)
	// Selectors are boolean and mutually exclusive
	for _, sel := range sels {
		AssertBool(builder, sel)
	}
	//
	AssertBool(builder, active)
	// Padding rows have no multiplicity
	builder.AssertZero(one.Sub(active).Mul(mult))
	// Answer every recorded call
	builder.Provide(CallRelation(fn.Index), mult, append(append([]Expr(nil), inputs...), outputs...))
	//
	eval := funcEval{top, fn, width, builder, inputs, layout.NewDegrees(fn.InputSize), sels, outputs, 1}
	eval.block(&fn.Body)
}

type funcEval struct {
	top     *toplevel.Toplevel
	fn      *bytecode.Func
	width   layout.Width
	builder Builder
	values  []Expr
	degrees *layout.Degrees
	sels    []Expr
	outputs []Expr
	// Next auxiliary column to consume
	next uint
}

// Consume the next n auxiliary columns.
func (p *funcEval) aux(n uint) []Expr {
	exprs := Columns(p.builder, p.width.AuxOffset()+p.next, n)
	p.next += n
	//
	return exprs
}

// Push a value, along with its degree.
func (p *funcEval) value(e Expr, deg layout.Degree) {
	p.values = append(p.values, e)
	p.degrees.Push(deg)
}

// Push values which are held in auxiliary columns.
func (p *funcEval) columns(exprs []Expr) {
	for _, e := range exprs {
		p.value(e, 1)
	}
}

func (p *funcEval) gather(vars []uint) []Expr {
	exprs := make([]Expr, len(vars))
	//
	for i, v := range vars {
		exprs[i] = p.values[v]
	}
	//
	return exprs
}

// Selector of a block, which is the sum of selectors for every return
// reachable from it.
func (p *funcEval) selector(block *bytecode.Block) Expr {
	return Sum(p.sels[block.ReturnLo:block.ReturnHi]...)
}

// Evaluate a block, restoring the value list and column cursor afterwards.
func (p *funcEval) block(block *bytecode.Block) {
	var (
		mark = len(p.values)
		next = p.next
		sel  = p.selector(block)
	)
	//
	for _, op := range block.Ops {
		p.op(op, sel)
	}
	//
	p.ctrl(block.Ctrl)
	//
	p.values = p.values[:mark]
	p.degrees.Truncate(uint(mark))
	p.next = next
}

func (p *funcEval) op(op bytecode.Op, sel Expr) {
	var one = NewConst64(1)
	//
	switch op := op.(type) {
	case *bytecode.Const:
		p.value(NewConst(op.Value), 0)
	case *bytecode.Add:
		deg := max(p.degrees.At(op.Left), p.degrees.At(op.Right))
		p.value(p.values[op.Left].Add(p.values[op.Right]), deg)
	case *bytecode.Sub:
		deg := max(p.degrees.At(op.Left), p.degrees.At(op.Right))
		p.value(p.values[op.Left].Sub(p.values[op.Right]), deg)
	case *bytecode.Mul:
		var (
			a, b      = p.values[op.Left], p.values[op.Right]
			deg, cols = layout.Mul(p.degrees.At(op.Left), p.degrees.At(op.Right))
		)
		//
		if cols == 0 {
			p.value(a.Mul(b), deg)
			return
		}
		//
		c := p.aux(1)[0]
		p.builder.AssertZero(sel.Mul(a.Mul(b).Sub(c)))
		p.value(c, deg)
	case *bytecode.Inv:
		var (
			a         = p.values[op.Arg]
			deg, cols = layout.Inv(p.degrees.At(op.Arg))
		)
		//
		if cols == 0 {
			p.value(NewConst(constant(a).Inverse()), deg)
			return
		}
		// Either a = c = 0, or a * c = 1
		c := p.aux(1)[0]
		p.builder.AssertZero(sel.Mul(a).Mul(a.Mul(c).Sub(one)))
		p.builder.AssertZero(sel.Mul(c).Mul(a.Mul(c).Sub(one)))
		p.value(c, deg)
	case *bytecode.Not:
		var (
			a         = p.values[op.Arg]
			deg, cols = layout.Not(p.degrees.At(op.Arg))
		)
		//
		if cols == 0 {
			val := field.Zero()
			if constant(a).IsZero() {
				val = field.One()
			}
			//
			p.value(NewConst(val), deg)
			//
			return
		}
		// Result r, followed by inverse witness w
		rw := p.aux(2)
		r, w := rw[0], rw[1]
		p.builder.AssertZero(sel.Mul(a.Mul(w).Add(r).Sub(one)))
		p.builder.AssertZero(sel.Mul(a).Mul(r))
		p.value(r, deg)
	case *bytecode.Call:
		var (
			callee = p.top.At(op.Func)
			outs   = p.aux(callee.OutputSize)
		)
		//
		p.builder.Require(CallRelation(op.Func), sel, append(p.gather(op.Args), outs...))
		p.columns(outs)
	case *bytecode.PreImg:
		var (
			callee = p.top.At(op.Func)
			ins    = p.aux(callee.InputSize)
		)
		//
		p.builder.Require(CallRelation(op.Func), sel, append(ins, p.gather(op.Outs)...))
		p.columns(ins)
	case *bytecode.Store:
		ptr := p.aux(1)
		p.builder.Require(MemoryRelation(uint(len(op.Args))), sel, append(ptr, p.gather(op.Args)...))
		p.columns(ptr)
	case *bytecode.Load:
		vals := p.aux(op.Arity)
		p.builder.Require(MemoryRelation(op.Arity), sel, append([]Expr{p.values[op.Ptr]}, vals...))
		p.columns(vals)
	case *bytecode.Hash:
		img := p.aux(p.top.Hasher().ImageSize())
		p.builder.Require(HashRelation(uint(len(op.Args))), sel, append(p.gather(op.Args), img...))
		p.columns(img)
	case *bytecode.AssertEq:
		for i := range op.Left {
			p.builder.AssertZero(sel.Mul(p.values[op.Left[i]].Sub(p.values[op.Right[i]])))
		}
	case *bytecode.AssertNe:
		var (
			left  = p.gather(op.Left)
			right = p.gather(op.Right)
			ws    = p.aux(uint(len(left)))
		)
		//
		p.builder.AssertZero(sel.Mul(weighted(left, right, ws).Sub(one)))
	case *bytecode.Debug:
		return
	default:
		panic(fmt.Sprintf("unknown operation %T", op))
	}
}

func (p *funcEval) ctrl(ctrl bytecode.Ctrl) {
	var one = NewConst64(1)
	//
	switch c := ctrl.(type) {
	case *bytecode.Return:
		sel := p.sels[c.Ident]
		//
		for i, v := range c.Vars {
			p.builder.AssertZero(sel.Mul(p.outputs[i].Sub(p.values[v])))
		}
	case *bytecode.If:
		var (
			b    = p.values[c.Cond]
			t, f = p.selector(c.True), p.selector(c.False)
			next = p.next
		)
		// Condition is invertible
		w := p.aux(1)[0]
		p.builder.AssertZero(t.Mul(b.Mul(w).Sub(one)))
		p.block(c.True)
		p.next = next
		// Condition is zero
		p.builder.AssertZero(f.Mul(b))
		p.block(c.False)
	case *bytecode.IfMany:
		var (
			bs   = p.gather(c.Conds)
			t, f = p.selector(c.True), p.selector(c.False)
			next = p.next
			ws   = p.aux(uint(len(bs)))
		)
		// Some condition is invertible
		p.builder.AssertZero(t.Mul(weighted(bs, nil, ws).Sub(one)))
		p.block(c.True)
		p.next = next
		// Every condition is zero
		for _, b := range bs {
			p.builder.AssertZero(f.Mul(b))
		}
		//
		p.block(c.False)
	case *bytecode.Match:
		v := p.values[c.Var]
		//
		for _, k := range c.Cases {
			s := p.selector(k.Block)
			p.builder.AssertZero(s.Mul(v.Sub(NewConst(k.Value))))
			p.block(k.Block)
		}
		//
		if c.Default != nil {
			var (
				s    = p.selector(c.Default)
				next = p.next
			)
			// Value differs from every case
			for _, k := range c.Cases {
				w := p.aux(1)[0]
				p.builder.AssertZero(s.Mul(v.Sub(NewConst(k.Value)).Mul(w).Sub(one)))
			}
			//
			p.block(c.Default)
			p.next = next
		}
	case *bytecode.MatchMany:
		vs := p.gather(c.Vars)
		//
		for _, k := range c.Cases {
			s := p.selector(k.Block)
			//
			for i, v := range vs {
				p.builder.AssertZero(s.Mul(v.Sub(NewConst(k.Values[i]))))
			}
			//
			p.block(k.Block)
		}
		//
		if c.Default != nil {
			var (
				s    = p.selector(c.Default)
				next = p.next
			)
			// Values differ from every case
			for _, k := range c.Cases {
				ws := p.aux(uint(len(vs)))
				p.builder.AssertZero(s.Mul(weighted(vs, constants(k.Values), ws).Sub(one)))
			}
			//
			p.block(c.Default)
			p.next = next
		}
	default:
		panic(fmt.Sprintf("unknown control %T", ctrl))
	}
}

// Compute the sum of differences between two tuples weighted by witnesses.
// When right is nil, it is treated as a tuple of zeros.
func weighted(left, right, ws []Expr) Expr {
	var res = NewConst(field.Zero())
	//
	for i, l := range left {
		if right != nil {
			l = l.Sub(right[i])
		}
		//
		res = res.Add(l.Mul(ws[i]))
	}
	//
	return res
}

func constants(vals field.Tuple) []Expr {
	exprs := make([]Expr, len(vals))
	//
	for i, v := range vals {
		exprs[i] = NewConst(v)
	}
	//
	return exprs
}

// Values of degree zero are always folded into constants.
func constant(e Expr) field.Element {
	if c := e.AsConstant(); c != nil {
		return *c
	}
	//
	panic(fmt.Sprintf("expected constant, found %s", e.String()))
}
