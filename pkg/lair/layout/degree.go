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

// Degree is a coarse measure of the algebraic degree of a value, in terms of
// the trace columns of the current row.  Constants have degree 0; values held
// in (or linear over) columns have degree 1.
type Degree uint8

// Mul returns the degree of a product and the number of auxiliary columns it
// requires.  A product of two nonconstant values is held in a fresh column.
func Mul(left, right Degree) (Degree, uint) {
	if deg := left + right; deg < 2 {
		return deg, 0
	}
	//
	return 1, 1
}

// Inv returns the degree of an inverse and the number of auxiliary columns it
// requires.  The inverse of a nonconstant value is held in a fresh column.
func Inv(arg Degree) (Degree, uint) {
	if arg == 0 {
		return 0, 0
	}
	//
	return 1, 1
}

// Not returns the degree of a negation and the number of auxiliary columns it
// requires.  The negation of a nonconstant value is held in a fresh column,
// along with an inverse witness.
func Not(arg Degree) (Degree, uint) {
	if arg == 0 {
		return 0, 0
	}
	//
	return 1, 2
}

// Degrees tracks the degree of each value in a frame's value list.
type Degrees struct {
	degrees []Degree
}

// NewDegrees constructs a tracker for a frame holding a given number of
// inputs, each of which has degree 1.
func NewDegrees(inputs uint) *Degrees {
	degrees := make([]Degree, inputs, inputs*4)
	//
	for i := range degrees {
		degrees[i] = 1
	}
	//
	return &Degrees{degrees}
}

// Len returns the number of values tracked.
func (p *Degrees) Len() uint {
	return uint(len(p.degrees))
}

// At returns the degree of a given value.
func (p *Degrees) At(index uint) Degree {
	return p.degrees[index]
}

// Push the degree of a new value.
func (p *Degrees) Push(deg Degree) {
	p.degrees = append(p.degrees, deg)
}

// PushN pushes n values of a given degree.
func (p *Degrees) PushN(deg Degree, n uint) {
	for range n {
		p.degrees = append(p.degrees, deg)
	}
}

// Truncate the tracked values to a given length.  This is used when leaving a
// branch.
func (p *Degrees) Truncate(n uint) {
	p.degrees = p.degrees[:n]
}
