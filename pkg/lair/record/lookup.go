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
package record

import (
	"fmt"

	"github.com/consensys/go-lair/pkg/field"
)

// The following lookups read a record without modifying it, and are used when
// generating traces.  Shards consult the record they were split from, since
// the entry being looked up may be held by another shard.  Each lookup panics
// if the value is not recorded, since that indicates a malformed record.

// CallOutput returns the output of a recorded call.
func (p *QueryRecord) CallOutput(fn uint, args field.Tuple) field.Tuple {
	for r := p; r != nil; r = r.parent {
		if res, ok := r.funcs[fn].Get(args); ok {
			return res.Output
		}
	}
	//
	panic(fmt.Sprintf("no record of call %s%s", p.top.At(fn).Name, args))
}

// Preimage returns the arguments of a recorded call producing a given output.
func (p *QueryRecord) Preimage(fn uint, output field.Tuple) field.Tuple {
	for r := p; r != nil; r = r.parent {
		if args, ok := r.inverses[fn].Get(output); ok {
			return args
		}
	}
	//
	panic(fmt.Sprintf("no preimage of %s%s", p.top.At(fn).Name, output))
}

// Pointer returns the pointer assigned to a stored tuple.
func (p *QueryRecord) Pointer(args field.Tuple) field.Element {
	for r := p; r != nil; r = r.parent {
		if res, ok := r.memTable(uint(len(args))).Get(args); ok {
			return field.Uint64(uint64(res.Pointer))
		}
	}
	//
	panic(fmt.Sprintf("tuple %s was never stored", args))
}

// Loaded returns the tuple of a given arity identified by a pointer.
func (p *QueryRecord) Loaded(arity uint, ptr field.Element) field.Tuple {
	var r = p
	// Only the root holds every pointer
	for r.parent != nil {
		r = r.parent
	}
	//
	table := r.memTable(arity)
	//
	return table.Key(findPointer(table, ptr))
}

// Image returns the recorded image of a given preimage.
func (p *QueryRecord) Image(preimage field.Tuple) field.Tuple {
	for r := p; r != nil; r = r.parent {
		if res, ok := r.hashTable(uint(len(preimage))).Get(preimage); ok {
			return res.Image
		}
	}
	//
	panic(fmt.Sprintf("preimage %s was never hashed", preimage))
}
