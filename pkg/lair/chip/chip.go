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
package chip

import (
	"fmt"

	"github.com/consensys/go-lair/pkg/lair/air"
	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/layout"
	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
	"github.com/consensys/go-lair/pkg/lair/trace"
)

// Chip is a single table of a machine, along with the constraints which every
// row of that table must satisfy.  Chips interact with each other only through
// lookups.
type Chip interface {
	// Name of this chip, which is unique within its machine.
	Name() string
	// Width returns the number of columns of this chip.
	Width() uint
	// Columns returns the names of this chip's columns.
	Columns() []string
	// Eval emits the constraints and interactions of a single row.
	Eval(builder air.Builder)
	// Generate the trace of this chip from a record (or shard).
	Generate(rec *record.QueryRecord) *trace.Matrix
	// Included determines whether this chip has any rows for a given record.
	// Chips which are not included need not be generated or checked.
	Included(rec *record.QueryRecord) bool
}

// ============================================================================
// Function chip
// ============================================================================

// FuncChip holds one row for every recorded call of a given function.
type FuncChip struct {
	top      *toplevel.Toplevel
	fn       *bytecode.Func
	width    layout.Width
	parallel bool
}

// NewFuncChip constructs a chip for a given function.
func NewFuncChip(top *toplevel.Toplevel, fn *bytecode.Func, width layout.Width, parallel bool) *FuncChip {
	return &FuncChip{top, fn, width, parallel}
}

// Func returns the function of this chip.
func (p *FuncChip) Func() *bytecode.Func {
	return p.fn
}

// Layout returns the column layout of this chip.
func (p *FuncChip) Layout() layout.Width {
	return p.width
}

// Name implementation for Chip interface.
func (p *FuncChip) Name() string {
	return p.fn.Name
}

// Width implementation for Chip interface.
func (p *FuncChip) Width() uint {
	return p.width.Total()
}

// Columns implementation for Chip interface.
func (p *FuncChip) Columns() []string {
	return trace.Columns(p.width)
}

// Eval implementation for Chip interface.
func (p *FuncChip) Eval(builder air.Builder) {
	air.EvalFunc(p.top, p.fn, p.width, builder)
}

// Generate implementation for Chip interface.
func (p *FuncChip) Generate(rec *record.QueryRecord) *trace.Matrix {
	return trace.Function(rec, p.fn, p.width, p.parallel)
}

// Included implementation for Chip interface.
func (p *FuncChip) Included(rec *record.QueryRecord) bool {
	return rec.Included(p.fn.Index)
}

// ============================================================================
// Memory chip
// ============================================================================

// MemoryChip holds one row for every tuple of a given arity stored in memory,
// consisting of its multiplicity, pointer and values.
type MemoryChip struct {
	table uint
	arity uint
}

// NewMemoryChip constructs a chip for a given memory table.
func NewMemoryChip(top *toplevel.Toplevel, table uint) *MemoryChip {
	return &MemoryChip{table, top.MemoryArities()[table]}
}

// Name implementation for Chip interface.
func (p *MemoryChip) Name() string {
	return fmt.Sprintf("mem%d", p.arity)
}

// Width implementation for Chip interface.
func (p *MemoryChip) Width() uint {
	return 2 + p.arity
}

// Columns implementation for Chip interface.
func (p *MemoryChip) Columns() []string {
	return append([]string{"mult", "ptr"}, names("val", p.arity)...)
}

// Eval implementation for Chip interface.
func (p *MemoryChip) Eval(builder air.Builder) {
	var (
		mult   = builder.Column(0)
		values = air.Columns(builder, 1, 1+p.arity)
	)
	//
	builder.Provide(air.MemoryRelation(p.arity), mult, values)
}

// Generate implementation for Chip interface.
func (p *MemoryChip) Generate(rec *record.QueryRecord) *trace.Matrix {
	return trace.Memory(rec, p.table)
}

// Included implementation for Chip interface.
func (p *MemoryChip) Included(rec *record.QueryRecord) bool {
	for _, res := range rec.Memory(p.table).Values() {
		if res.Multiplicity != 0 {
			return true
		}
	}
	//
	return false
}

// ============================================================================
// Hash chip
// ============================================================================

// HashChip holds one row for every preimage of a given arity which was
// hashed, consisting of its multiplicity, preimage and image.  The relation
// between preimage and image is not constrained here, and is assumed to be
// enforced by a dedicated permutation chip.
type HashChip struct {
	table uint
	arity uint
	size  uint
}

// NewHashChip constructs a chip for a given hash table.
func NewHashChip(top *toplevel.Toplevel, table uint) *HashChip {
	return &HashChip{table, top.HashArities()[table], top.Hasher().ImageSize()}
}

// Name implementation for Chip interface.
func (p *HashChip) Name() string {
	return fmt.Sprintf("hash%d", p.arity)
}

// Width implementation for Chip interface.
func (p *HashChip) Width() uint {
	return 1 + p.arity + p.size
}

// Columns implementation for Chip interface.
func (p *HashChip) Columns() []string {
	cols := append([]string{"mult"}, names("pre", p.arity)...)
	//
	return append(cols, names("img", p.size)...)
}

// Eval implementation for Chip interface.
func (p *HashChip) Eval(builder air.Builder) {
	var (
		mult   = builder.Column(0)
		values = air.Columns(builder, 1, p.arity+p.size)
	)
	//
	builder.Provide(air.HashRelation(p.arity), mult, values)
}

// Generate implementation for Chip interface.
func (p *HashChip) Generate(rec *record.QueryRecord) *trace.Matrix {
	return trace.Hash(rec, p.table)
}

// Included implementation for Chip interface.
func (p *HashChip) Included(rec *record.QueryRecord) bool {
	for _, res := range rec.Hashes(p.table).Values() {
		if res.Multiplicity != 0 {
			return true
		}
	}
	//
	return false
}

// ============================================================================
// Entrypoint chip
// ============================================================================

// EntrypointChip holds one row for every public call to a given function.
// Each row requires the call from the function's chip, thereby accounting for
// the multiplicity which the root of each execution contributes.
type EntrypointChip struct {
	fn *bytecode.Func
}

// NewEntrypointChip constructs an entrypoint chip for a given function.
func NewEntrypointChip(fn *bytecode.Func) *EntrypointChip {
	return &EntrypointChip{fn}
}

// Name implementation for Chip interface.
func (p *EntrypointChip) Name() string {
	return fmt.Sprintf("entry(%s)", p.fn.Name)
}

// Width implementation for Chip interface.
func (p *EntrypointChip) Width() uint {
	return p.fn.InputSize + p.fn.OutputSize + 1
}

// Columns implementation for Chip interface.
func (p *EntrypointChip) Columns() []string {
	cols := append(names("in", p.fn.InputSize), names("out", p.fn.OutputSize)...)
	//
	return append(cols, "active")
}

// Eval implementation for Chip interface.
func (p *EntrypointChip) Eval(builder air.Builder) {
	var (
		n      = p.fn.InputSize + p.fn.OutputSize
		values = air.Columns(builder, 0, n)
		active = builder.Column(n)
	)
	//
	air.AssertBool(builder, active)
	builder.Require(air.CallRelation(p.fn.Index), active, values)
}

// Generate implementation for Chip interface.
func (p *EntrypointChip) Generate(rec *record.QueryRecord) *trace.Matrix {
	return trace.Entrypoint(rec, p.fn)
}

// Included implementation for Chip interface.
func (p *EntrypointChip) Included(rec *record.QueryRecord) bool {
	for _, e := range rec.Entries() {
		if e.Func == p.fn.Index {
			return true
		}
	}
	//
	return false
}

func names(prefix string, n uint) []string {
	cols := make([]string, n)
	//
	for i := range n {
		cols[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	//
	return cols
}
