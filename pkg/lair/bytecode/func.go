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
package bytecode

// Func is a linked function.  Calls between functions are made by index, and
// every local value is addressed by its position in the frame's value list,
// which initially holds the function's inputs.
type Func struct {
	// Name of this function, as declared.
	Name string
	// Index of this function within its toplevel.
	Index uint
	// Number of input values
	InputSize uint
	// Number of output values
	OutputSize uint
	// Invertible functions support preimage lookups, which recover the input
	// of a previously recorded call from its output.
	Invertible bool
	// Number of returns in the body.  Returns are identified by 0..Returns-1.
	Returns uint
	// Body of this function
	Body Block
}

// Block is a sequence of operations terminated by exactly one control.
type Block struct {
	Ops  []Op
	Ctrl Ctrl
	// Returns identifies the half-open range [ReturnLo,ReturnHi) of return
	// identifiers reachable from this block.  Return identifiers are assigned
	// depth-first, so this range is always contiguous.
	ReturnLo, ReturnHi uint
}
