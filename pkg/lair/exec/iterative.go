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
	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/util/collection/stack"
)

// frame captures the state of a call which is in progress.
type frame struct {
	fn   *bytecode.Func
	args field.Tuple
	// Values computed so far
	values []field.Element
	// Block being executed
	block *bytecode.Block
	// Next operation in block to execute
	cursor uint
}

func newFrame(fn *bytecode.Func, args field.Tuple) frame {
	values := append(make([]field.Element, 0, len(args)), args...)
	//
	return frame{fn, args, values, &fn.Body, 0}
}

// continuation describes how execution proceeds after a frame suspends.
// Either the frame applies a function to some arguments which must be
// evaluated first, or else it returns some values to its caller.
type continuation struct {
	apply bool
	// Function being applied
	fn uint
	// Arguments (when applying) or outputs (when returning)
	values field.Tuple
}

// Evaluate a call using an explicit stack of frames.  This never recurses, and
// hence can evaluate arbitrarily deep call chains.
func (p *evaluator) iterative(index uint, args field.Tuple) field.Tuple {
	if out, ok := p.rec.Query(index, args); ok {
		return out
	}
	//
	frames := stack.NewStack[frame]()
	frames.Push(newFrame(p.top.At(index), args))
	//
	for {
		cont := p.resume(frames.Top())
		//
		if cont.apply {
			frames.Push(newFrame(p.top.At(cont.fn), cont.values))
			continue
		}
		// Memoize completed call
		done := frames.Pop()
		p.rec.InsertResult(done.fn.Index, done.args, cont.values)
		//
		if frames.IsEmpty() {
			return cont.values
		}
		//
		caller := frames.Top()
		caller.values = append(caller.values, cont.values...)
	}
}

// Resume a frame until it either returns, or calls a function whose result is
// not yet memoized.
func (p *evaluator) resume(f *frame) continuation {
	for {
		for f.cursor < uint(len(f.block.Ops)) {
			op := f.block.Ops[f.cursor]
			f.cursor++
			//
			if call, ok := op.(*bytecode.Call); ok {
				p.tick()
				//
				args := gather(f.fn, f.values, call.Args)
				//
				if out, ok := p.rec.Query(call.Func, args); ok {
					f.values = append(f.values, out...)
				} else {
					return continuation{true, call.Func, args}
				}
			} else {
				f.values = p.apply(f.fn, op, f.values)
			}
		}
		//
		if ret, ok := f.block.Ctrl.(*bytecode.Return); ok {
			return continuation{false, 0, gather(f.fn, f.values, ret.Vars)}
		}
		//
		f.block, f.cursor = p.branch(f.fn, f.block.Ctrl, f.values), 0
	}
}
