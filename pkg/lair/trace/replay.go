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
	"fmt"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/layout"
	"github.com/consensys/go-lair/pkg/lair/record"
)

// replay re-executes a function body for a single row.  Calls, memory accesses
// and hashes are not executed but, instead, are looked up in the record.  The
// degree of every value is tracked, since this determines which operations
// occupy auxiliary columns.
type replay struct {
	rec     *record.QueryRecord
	values  []field.Element
	degrees *layout.Degrees
	// Auxiliary columns of the row
	aux []field.Element
	// Selector columns of the row
	sel []field.Element
	// Next auxiliary column to fill
	next uint
}

func (p *replay) push(vals ...field.Element) {
	copy(p.aux[p.next:], vals)
	p.next += uint(len(vals))
}

// Push a value, along with its degree.
func (p *replay) value(val field.Element, deg layout.Degree) {
	p.values = append(p.values, val)
	p.degrees.Push(deg)
}

// Push values which are held in auxiliary columns.
func (p *replay) columns(vals field.Tuple) {
	p.push(vals...)
	//
	for _, v := range vals {
		p.value(v, 1)
	}
}

func (p *replay) gather(vars []uint) field.Tuple {
	tuple := make(field.Tuple, len(vars))
	//
	for i, v := range vars {
		tuple[i] = p.values[v]
	}
	//
	return tuple
}

func (p *replay) block(fn *bytecode.Func, block *bytecode.Block) {
	for _, op := range block.Ops {
		p.op(op)
	}
	//
	p.ctrl(fn, block.Ctrl)
}

func (p *replay) op(op bytecode.Op) {
	switch op := op.(type) {
	case *bytecode.Const:
		p.value(op.Value, 0)
	case *bytecode.Add:
		p.value(p.values[op.Left].Add(p.values[op.Right]), max(p.degrees.At(op.Left), p.degrees.At(op.Right)))
	case *bytecode.Sub:
		p.value(p.values[op.Left].Sub(p.values[op.Right]), max(p.degrees.At(op.Left), p.degrees.At(op.Right)))
	case *bytecode.Mul:
		val := p.values[op.Left].Mul(p.values[op.Right])
		deg, cols := layout.Mul(p.degrees.At(op.Left), p.degrees.At(op.Right))
		//
		if cols > 0 {
			p.push(val)
		}
		//
		p.value(val, deg)
	case *bytecode.Inv:
		val := p.values[op.Arg].Inverse()
		deg, cols := layout.Inv(p.degrees.At(op.Arg))
		//
		if cols > 0 {
			p.push(val)
		}
		//
		p.value(val, deg)
	case *bytecode.Not:
		var (
			arg       = p.values[op.Arg]
			val       = field.Zero()
			deg, cols = layout.Not(p.degrees.At(op.Arg))
		)
		//
		if arg.IsZero() {
			val = field.One()
		}
		// Result, followed by inverse witness
		if cols > 0 {
			p.push(val, arg.Inverse())
		}
		//
		p.value(val, deg)
	case *bytecode.Call:
		p.columns(p.rec.CallOutput(op.Func, p.gather(op.Args)))
	case *bytecode.PreImg:
		p.columns(p.rec.Preimage(op.Func, p.gather(op.Outs)))
	case *bytecode.Store:
		p.columns(field.Tuple{p.rec.Pointer(p.gather(op.Args))})
	case *bytecode.Load:
		p.columns(p.rec.Loaded(op.Arity, p.values[op.Ptr]))
	case *bytecode.Hash:
		p.columns(p.rec.Image(p.gather(op.Args)))
	case *bytecode.AssertNe:
		p.push(witnesses(p.gather(op.Left), p.gather(op.Right))...)
	case *bytecode.AssertEq, *bytecode.Debug:
		return
	default:
		panic(fmt.Sprintf("unknown operation %T", op))
	}
}

func (p *replay) ctrl(fn *bytecode.Func, ctrl bytecode.Ctrl) {
	switch c := ctrl.(type) {
	case *bytecode.Return:
		p.sel[c.Ident] = field.One()
	case *bytecode.If:
		if b := p.values[c.Cond]; !b.IsZero() {
			p.push(b.Inverse())
			p.block(fn, c.True)
		} else {
			p.block(fn, c.False)
		}
	case *bytecode.IfMany:
		conds := p.gather(c.Conds)
		zeros := make(field.Tuple, len(conds))
		//
		if !conds.Equals(zeros) {
			p.push(witnesses(conds, zeros)...)
			p.block(fn, c.True)
		} else {
			p.block(fn, c.False)
		}
	case *bytecode.Match:
		v := p.values[c.Var]
		//
		for _, k := range c.Cases {
			if k.Value == v {
				p.block(fn, k.Block)
				return
			}
		}
		//
		if c.Default == nil {
			panic(fmt.Sprintf("no case of %s matches %s", fn.Name, v))
		}
		// Witness v differs from every case
		ws := make([]field.Element, len(c.Cases))
		//
		for i, k := range c.Cases {
			ws[i] = v.Sub(k.Value)
		}
		//
		field.BatchInvert(ws)
		p.push(ws...)
		//
		p.block(fn, c.Default)
	case *bytecode.MatchMany:
		vs := p.gather(c.Vars)
		//
		for _, k := range c.Cases {
			if k.Values.Equals(vs) {
				p.block(fn, k.Block)
				return
			}
		}
		//
		if c.Default == nil {
			panic(fmt.Sprintf("no case of %s matches %s", fn.Name, vs))
		}
		//
		for _, k := range c.Cases {
			p.push(witnesses(vs, k.Values)...)
		}
		//
		p.block(fn, c.Default)
	default:
		panic(fmt.Sprintf("unknown control %T", ctrl))
	}
}

// Construct the witness that two (distinct) tuples differ.  The first
// differing position holds the inverse of its difference, whilst every other
// position holds zero.  Hence, the sum of differences weighted by witnesses is
// one.
func witnesses(left, right field.Tuple) []field.Element {
	ws := make([]field.Element, len(left))
	//
	for i := range left {
		if d := left[i].Sub(right[i]); !d.IsZero() {
			ws[i] = d.Inverse()
			break
		}
	}
	//
	return ws
}
