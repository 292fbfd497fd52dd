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
package layout

import (
	"fmt"

	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
)

// Width determines how many trace columns a function requires, split into
// zones.  Every row of a function's trace is laid out as its inputs, followed
// by its outputs, then its auxiliary columns and finally its selectors.  The
// first auxiliary column always holds the row's multiplicity.
type Width struct {
	Input  uint
	Output uint
	Aux    uint
	Sel    uint
}

// Total returns the total number of columns.
func (w Width) Total() uint {
	return w.Input + w.Output + w.Aux + w.Sel
}

// OutputOffset returns the index of the first output column.
func (w Width) OutputOffset() uint {
	return w.Input
}

// AuxOffset returns the index of the first auxiliary column, which holds the
// multiplicity.
func (w Width) AuxOffset() uint {
	return w.Input + w.Output
}

// SelOffset returns the index of the first selector column.
func (w Width) SelOffset() uint {
	return w.Input + w.Output + w.Aux
}

func (w Width) String() string {
	return fmt.Sprintf("{input: %d, output: %d, aux: %d, sel: %d}", w.Input, w.Output, w.Aux, w.Sel)
}

// Of computes the width of a given function.  This is a static property of the
// bytecode, such that recursive calls share the width of their callee.
func Of(top *toplevel.Toplevel, fn *bytecode.Func) Width {
	var (
		degrees = NewDegrees(fn.InputSize)
		// Multiplicity
		aux = uint(1)
	)
	//
	aux = blockAux(top, &fn.Body, degrees, aux)
	//
	return Width{fn.InputSize, fn.OutputSize, aux, fn.Returns}
}

// Compute the number of auxiliary columns used once a block completes,
// starting from a given number.
func blockAux(top *toplevel.Toplevel, block *bytecode.Block, degrees *Degrees, aux uint) uint {
	var mark = degrees.Len()
	//
	for _, op := range block.Ops {
		aux += opAux(top, op, degrees)
	}
	//
	aux = ctrlAux(top, block.Ctrl, degrees, aux)
	degrees.Truncate(mark)
	//
	return aux
}

func opAux(top *toplevel.Toplevel, op bytecode.Op, degrees *Degrees) uint {
	switch op := op.(type) {
	case *bytecode.Const:
		degrees.Push(0)
	case *bytecode.Add:
		degrees.Push(max(degrees.At(op.Left), degrees.At(op.Right)))
	case *bytecode.Sub:
		degrees.Push(max(degrees.At(op.Left), degrees.At(op.Right)))
	case *bytecode.Mul:
		deg, cols := Mul(degrees.At(op.Left), degrees.At(op.Right))
		degrees.Push(deg)
		//
		return cols
	case *bytecode.Inv:
		deg, cols := Inv(degrees.At(op.Arg))
		degrees.Push(deg)
		//
		return cols
	case *bytecode.Not:
		deg, cols := Not(degrees.At(op.Arg))
		degrees.Push(deg)
		//
		return cols
	case *bytecode.Call:
		n := top.At(op.Func).OutputSize
		degrees.PushN(1, n)
		//
		return n
	case *bytecode.PreImg:
		n := top.At(op.Func).InputSize
		degrees.PushN(1, n)
		//
		return n
	case *bytecode.Store:
		degrees.Push(1)
		return 1
	case *bytecode.Load:
		degrees.PushN(1, op.Arity)
		return op.Arity
	case *bytecode.Hash:
		n := top.Hasher().ImageSize()
		degrees.PushN(1, n)
		//
		return n
	case *bytecode.AssertEq, *bytecode.Debug:
		return 0
	case *bytecode.AssertNe:
		return uint(len(op.Left))
	default:
		panic(fmt.Sprintf("unknown operation %T", op))
	}
	//
	return 0
}

func ctrlAux(top *toplevel.Toplevel, ctrl bytecode.Ctrl, degrees *Degrees, aux uint) uint {
	switch c := ctrl.(type) {
	case *bytecode.Return:
		return aux
	case *bytecode.If:
		// Inverse witness for the condition
		t := blockAux(top, c.True, degrees, aux+1)
		f := blockAux(top, c.False, degrees, aux)
		//
		return max(t, f)
	case *bytecode.IfMany:
		// Inverse witness for each condition
		t := blockAux(top, c.True, degrees, aux+uint(len(c.Conds)))
		f := blockAux(top, c.False, degrees, aux)
		//
		return max(t, f)
	case *bytecode.Match:
		res := aux
		//
		for _, k := range c.Cases {
			res = max(res, blockAux(top, k.Block, degrees, aux))
		}
		//
		if c.Default != nil {
			// One inverse witness per case
			res = max(res, blockAux(top, c.Default, degrees, aux+uint(len(c.Cases))))
		}
		//
		return res
	case *bytecode.MatchMany:
		res := aux
		//
		for _, k := range c.Cases {
			res = max(res, blockAux(top, k.Block, degrees, aux))
		}
		//
		if c.Default != nil {
			// One inverse witness per value per case
			res = max(res, blockAux(top, c.Default, degrees, aux+uint(len(c.Cases)*len(c.Vars))))
		}
		//
		return res
	default:
		panic(fmt.Sprintf("unknown control %T", ctrl))
	}
}
