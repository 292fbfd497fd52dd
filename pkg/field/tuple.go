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
package field

import (
	"hash/fnv"
	"strings"
)

// Tuple is an ordered list of field elements, such as the arguments or outputs
// of a function call.  Tuples can be used as keys in a hash.Map.
type Tuple []Element

// Uints constructs a tuple from a list of unsigned values.
func Uints(vals ...uint64) Tuple {
	tuple := make(Tuple, len(vals))
	//
	for i, v := range vals {
		tuple[i] = Uint64(v)
	}
	//
	return tuple
}

// Equals determines whether two tuples hold the same elements in the same
// order.
func (p Tuple) Equals(other Tuple) bool {
	if len(p) != len(other) {
		return false
	}
	//
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	//
	return true
}

// Hash implementation for the Hasher interface.
func (p Tuple) Hash() uint64 {
	hash := fnv.New64a()
	//
	for _, e := range p {
		hash.Write(e.Bytes())
	}
	// Done
	return hash.Sum64()
}

// Clone returns a copy of this tuple which shares no storage with it.
func (p Tuple) Clone() Tuple {
	return append(Tuple(nil), p...)
}

func (p Tuple) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	//
	for i, e := range p {
		if i != 0 {
			builder.WriteString(" ")
		}
		//
		builder.WriteString(e.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
