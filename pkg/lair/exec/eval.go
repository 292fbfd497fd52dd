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
package exec

import (
	"fmt"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
)

// Sentinel used to unwind an execution which exceeds its step limit.
var errStepLimit = &struct{ string }{"step limit"}

// evaluator holds state common to both evaluation strategies.  Calls are
// evaluated by the strategies themselves, whilst everything else is
// evaluated here.
type evaluator struct {
	top    *toplevel.Toplevel
	rec    *record.QueryRecord
	config Config
	steps  uint
}

func (p *evaluator) tick() {
	p.steps++
	//
	if p.config.MaxSteps != 0 && p.steps > p.config.MaxSteps {
		panic(errStepLimit)
	}
}

// Evaluate an operation (other than a call), appending its results to the
// value list.
func (p *evaluator) apply(fn *bytecode.Func, op bytecode.Op, values []field.Element) []field.Element {
	p.tick()
	//
	switch op := op.(type) {
	case *bytecode.Const:
		return append(values, op.Value)
	case *bytecode.Add:
		return append(values, values[op.Left].Add(values[op.Right]))
	case *bytecode.Sub:
		return append(values, values[op.Left].Sub(values[op.Right]))
	case *bytecode.Mul:
		return append(values, values[op.Left].Mul(values[op.Right]))
	case *bytecode.Inv:
		return append(values, values[op.Arg].Inverse())
	case *bytecode.Not:
		if values[op.Arg].IsZero() {
			return append(values, field.One())
		}
		//
		return append(values, field.Zero())
	case *bytecode.PreImg:
		outs := gather(fn, values, op.Outs)
		args, ok := p.rec.QueryPreimage(op.Func, outs)
		//
		if !ok {
			fault(fn, "no preimage of %s%s", p.top.At(op.Func).Name, outs)
		}
		//
		return append(values, args...)
	case *bytecode.Store:
		return append(values, p.rec.Store(gather(fn, values, op.Args)))
	case *bytecode.Load:
		ptr := values[op.Ptr]
		//
		if !p.rec.Assigned(op.Arity, ptr) {
			fault(fn, "load of arity %d through unassigned pointer %s", op.Arity, ptr)
		}
		//
		return append(values, p.rec.Load(op.Arity, ptr)...)
	case *bytecode.Hash:
		return append(values, p.rec.Hash(gather(fn, values, op.Args))...)
	case *bytecode.AssertEq:
		left, right := gather(fn, values, op.Left), gather(fn, values, op.Right)
		//
		if !left.Equals(right) {
			fault(fn, "assertion %s = %s failed", left, right)
		}
		//
		return values
	case *bytecode.AssertNe:
		left, right := gather(fn, values, op.Left), gather(fn, values, op.Right)
		//
		if left.Equals(right) {
			fault(fn, "assertion %s != %s failed", left, right)
		}
		//
		return values
	case *bytecode.Debug:
		if p.config.Debug != nil {
			fmt.Fprintf(p.config.Debug, "%s: %s\n", fn.Name, op.Message)
		}
		//
		return values
	case *bytecode.Call:
		panic("calls are evaluated by the strategy")
	default:
		panic(fmt.Sprintf("unknown operation %T", op))
	}
}

// Determine the block to which a (non-return) control branches.
func (p *evaluator) branch(fn *bytecode.Func, ctrl bytecode.Ctrl, values []field.Element) *bytecode.Block {
	var target *bytecode.Block
	//
	p.tick()
	//
	switch c := ctrl.(type) {
	case *bytecode.If:
		if values[c.Cond].IsZero() {
			return c.False
		}
		//
		return c.True
	case *bytecode.IfMany:
		for _, v := range gather(fn, values, c.Conds) {
			if !v.IsZero() {
				return c.True
			}
		}
		//
		return c.False
	case *bytecode.Match:
		if target = c.Lookup(values[c.Var]); target == nil {
			fault(fn, "no case matches %s", values[c.Var])
		}
	case *bytecode.MatchMany:
		vals := gather(fn, values, c.Vars)
		//
		if target = c.Lookup(vals); target == nil {
			fault(fn, "no case matches %s", vals)
		}
	default:
		panic(fmt.Sprintf("unknown control %T", ctrl))
	}
	//
	return target
}

func fault(fn *bytecode.Func, format string, args ...any) {
	panic(Fault{fn.Name, fmt.Sprintf(format, args...)})
}

// Copy out the values at the given positions.
func gather(fn *bytecode.Func, values []field.Element, vars []uint) field.Tuple {
	tuple := make(field.Tuple, len(vars))
	//
	for i, v := range vars {
		if v >= uint(len(values)) {
			fault(fn, "unbound value %d", v)
		}
		//
		tuple[i] = values[v]
	}
	//
	return tuple
}
