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
)

// Evaluate a call using the native call stack.  Every call is memoized before
// it returns.
func (p *evaluator) recursive(index uint, args field.Tuple) field.Tuple {
	if out, ok := p.rec.Query(index, args); ok {
		return out
	}
	//
	var (
		fn     = p.top.At(index)
		values = append(make([]field.Element, 0, len(args)), args...)
		block  = &fn.Body
	)
	//
	for {
		for _, op := range block.Ops {
			if call, ok := op.(*bytecode.Call); ok {
				p.tick()
				values = append(values, p.recursive(call.Func, gather(fn, values, call.Args))...)
			} else {
				values = p.apply(fn, op, values)
			}
		}
		//
		if ret, ok := block.Ctrl.(*bytecode.Return); ok {
			output := gather(fn, values, ret.Vars)
			p.rec.InsertResult(index, args, output)
			//
			return output
		}
		//
		block = p.branch(fn, block.Ctrl, values)
	}
}
