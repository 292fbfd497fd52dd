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
	"math/bits"

	"github.com/consensys/go-lair/pkg/field"
)

// MIN_HEIGHT is the smallest height of any generated matrix.
const MIN_HEIGHT = uint(4)

// Matrix is a row-major matrix of field elements.
type Matrix struct {
	width  uint
	height uint
	values []field.Element
}

// NewMatrix constructs a zeroed matrix of the given dimensions.
func NewMatrix(width uint, height uint) *Matrix {
	return &Matrix{width, height, make([]field.Element, width*height)}
}

// Width returns the number of columns in this matrix.
func (p *Matrix) Width() uint {
	return p.width
}

// Height returns the number of rows in this matrix.
func (p *Matrix) Height() uint {
	return p.height
}

// Row returns a given row of this matrix.  The returned slice aliases the
// matrix, hence writing to it updates the matrix.
func (p *Matrix) Row(row uint) []field.Element {
	start := row * p.width
	//
	return p.values[start : start+p.width : start+p.width]
}

// Get the value at a given row and column.
func (p *Matrix) Get(row uint, col uint) field.Element {
	return p.values[row*p.width+col]
}

// Set the value at a given row and column.
func (p *Matrix) Set(row uint, col uint, val field.Element) {
	p.values[row*p.width+col] = val
}

// Values returns the underlying (row-major) values of this matrix.
func (p *Matrix) Values() []field.Element {
	return p.values
}

// Height returns the height of a matrix holding a given number of rows, which
// is the next power of two (but never less than MIN_HEIGHT).
func Height(rows uint) uint {
	if rows <= MIN_HEIGHT {
		return MIN_HEIGHT
	}
	//
	return 1 << bits.Len(rows-1)
}
