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
package air

import (
	"slices"
	"strings"
	"testing"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/exec"
	"github.com/consensys/go-lair/pkg/lair/hasher"
	"github.com/consensys/go-lair/pkg/lair/layout"
	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
	"github.com/consensys/go-lair/pkg/lair/trace"
	"github.com/stretchr/testify/require"
)

// TestDir determines the (relative) location of the test directory.
const TestDir = "../../../testdata"

func Test_Expr_01(t *testing.T) {
	var (
		two   = NewConst64(2)
		three = NewConst64(3)
		x     = NewColumnAccess(0)
	)
	//
	require.Equal(t, field.Uint64(5), *two.Add(three).AsConstant())
	require.Equal(t, field.Uint64(6), *two.Mul(three).AsConstant())
	require.Equal(t, field.Int64(-1), *two.Sub(three).AsConstant())
	require.True(t, x.Mul(NewConst64(0)).AsConstant().IsZero())
	require.Equal(t, Expr(x), x.Mul(NewConst64(1)))
	require.Equal(t, Expr(x), NewConst64(0).Add(x))
	require.Equal(t, Expr(x), x.Sub(NewConst64(0)))
}

func Test_Expr_02(t *testing.T) {
	var (
		x, y, z = NewColumnAccess(0), NewColumnAccess(1), NewColumnAccess(2)
		e       = x.Mul(y).Add(z).Sub(NewConst64(1))
		row     = []field.Element{field.Uint64(3), field.Uint64(4), field.Uint64(5)}
	)
	//
	require.Equal(t, field.Uint64(16), e.EvalAt(row))
	require.Equal(t, uint(2), e.Degree())
	require.Nil(t, e.AsConstant())
	require.Equal(t, "(- (+ (* #0 #1) #2) 1)", e.String())
	require.Equal(t, uint(3), x.Mul(y).Mul(z).Degree())
}

func Test_Factorial_01(t *testing.T) {
	check_Honest(t, "factorial", "factorial", []string{"call0(5 120): 1"}, field.Uints(5))
}

func Test_Factorial_02(t *testing.T) {
	var (
		rec    = check_Execute(t, "factorial", "factorial", field.Uints(5))
		fn     = rec.Toplevel().At(0)
		width  = layout.Of(rec.Toplevel(), fn)
		honest = []string{"call0(5 120): 1"}
	)
	// Every cell of a recursive row is pinned down
	for r := uint(1); r <= 5; r++ {
		for c := range width.Total() {
			require.True(t, check_Corrupt(t, rec, fn, r, c, honest), "row %d, column %d", r, c)
		}
	}
	// The base case does not use auxiliary columns beyond its multiplicity
	for _, c := range []uint{0, 1, 2, 6, 7} {
		require.True(t, check_Corrupt(t, rec, fn, 0, c, honest), "row 0, column %d", c)
	}
	// Padding rows cannot claim multiplicity
	require.True(t, check_Corrupt(t, rec, fn, 6, width.AuxOffset(), honest))
}

func Test_Fib_01(t *testing.T) {
	check_Honest(t, "fib", "fib", []string{"call0(7 21): 1"}, field.Uints(7))
}

func Test_Fib_02(t *testing.T) {
	var (
		rec    = check_Execute(t, "fib", "fib", field.Uints(7))
		fn     = rec.Toplevel().At(0)
		width  = layout.Of(rec.Toplevel(), fn)
		honest = []string{"call0(7 21): 1"}
	)
	// Rows are recorded post-order, so the last is fib(7)
	for c := range width.Total() {
		require.True(t, check_Corrupt(t, rec, fn, 7, c, honest), "column %d", c)
	}
}

func Test_Classify_01(t *testing.T) {
	check_Honest(t, "classify", "classify", nil, field.Uints(0), field.Uints(3), field.Uints(4), field.Uints(100))
}

func Test_Classify_02(t *testing.T) {
	var (
		rec    = check_Execute(t, "classify", "classify", field.Uints(100))
		fn     = rec.Toplevel().At(0)
		honest = []string{"call0(100 0): 1"}
	)
	// Default witnesses, output and selectors are all pinned down
	for c := range uint(12) {
		require.True(t, check_Corrupt(t, rec, fn, 0, c, honest), "column %d", c)
	}
}

func Test_Classify_03(t *testing.T) {
	var (
		rec    = check_Execute(t, "classify", "classify", field.Uints(2))
		fn     = rec.Toplevel().At(0)
		width  = layout.Of(rec.Toplevel(), fn)
		matrix = trace.Function(rec, fn, width, false)
		sels   = width.SelOffset()
	)
	// Claim the default case for a value which matches case 2
	matrix.Set(0, sels+2, field.Zero())
	matrix.Set(0, sels+4, field.One())
	matrix.Set(0, 1, field.Zero())
	//
	failures := Check(fn.Name, matrix, check_Eval(rec.Toplevel(), fn, width), NewLookups())
	require.NotEmpty(t, failures)
}

func Test_Polynomial_01(t *testing.T) {
	check_Honest(t, "polynomial", "polynomial", nil, field.Uints(1, 2, 3, 4, 5), field.Uints(0, 0, 0, 0, 0))
}

func Test_Misc_01(t *testing.T) {
	check_Honest(t, "misc", "misc", nil, field.Uints(1, 2), field.Uints(2, 1), field.Uints(0, 5),
		field.Uints(6, 3), field.Uints(0, 0))
	check_Honest(t, "misc", "distinct", nil, field.Uints(1, 2), field.Uints(0, 5))
	check_Honest(t, "misc", "negate", nil, field.Uints(1), field.Uints(0))
}

func Test_Memory_01(t *testing.T) {
	check_Honest(t, "memory", "pair_sum", nil, field.Uints(1, 2), field.Uints(3, 4))
}

func Test_Hash_01(t *testing.T) {
	check_Honest(t, "hash", "digest", nil, field.Uints(1, 2, 3))
}

func Test_Symbolic_01(t *testing.T) {
	var (
		top     = check_Compile(t, "factorial")
		fn      = top.At(0)
		width   = layout.Of(top, fn)
		builder SymbolicBuilder
		out     strings.Builder
	)
	//
	EvalFunc(top, fn, width, &builder)
	// One provide, and one require for the recursive call
	require.Len(t, builder.Interactions, 2)
	require.True(t, builder.Interactions[0].Provide)
	require.False(t, builder.Interactions[1].Provide)
	require.Equal(t, CallRelation(0), builder.Interactions[1].Relation)
	require.Equal(t, uint(3), builder.Degree())
	//
	require.NoError(t, builder.Write(&out, trace.Columns(width)))
	require.Contains(t, out.String(), "(provide call0 mult in0 out0)")
	require.NotContains(t, out.String(), "#")
}

func Test_Relation_01(t *testing.T) {
	require.Equal(t, "call3", CallRelation(3).String())
	require.Equal(t, "mem2", MemoryRelation(2).String())
	require.Equal(t, "hash4", HashRelation(4).String())
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_Compile(t *testing.T, file string) *toplevel.Toplevel {
	top, errs := toplevel.CompileFile(TestDir+"/"+file+".lair", hasher.NewPoseidon2())
	require.Empty(t, errs)
	//
	return top
}

func check_Execute(t *testing.T, file string, name string, args ...field.Tuple) *record.QueryRecord {
	rec := record.New(check_Compile(t, file))
	//
	for _, arg := range args {
		_, err := exec.Execute(rec, name, arg, exec.DefaultConfig())
		require.NoError(t, err)
	}
	//
	return rec
}

func check_Eval(top *toplevel.Toplevel, fn *bytecode.Func, width layout.Width) func(Builder) {
	return func(builder Builder) {
		EvalFunc(top, fn, width, builder)
	}
}

// Check every function chip of an honest execution satisfies its constraints.
// Since only function chips are evaluated, memory and hash interactions are
// ignored when checking the remaining imbalance.
func check_Honest(t *testing.T, file string, name string, unbalanced []string, args ...field.Tuple) {
	var (
		rec     = check_Execute(t, file, name, args...)
		top     = rec.Toplevel()
		lookups = NewLookups()
	)
	//
	for _, fn := range top.Functions() {
		var (
			width  = layout.Of(top, fn)
			matrix = trace.Function(rec, fn, width, false)
		)
		//
		require.Empty(t, Check(fn.Name, matrix, check_Eval(top, fn, width), lookups))
	}
	//
	if unbalanced != nil {
		require.Equal(t, unbalanced, lookups.Unbalanced())
	}
}

// Corrupt a single cell of a function's trace and determine whether this is
// detected, either by a failing constraint or by a change in lookup balance.
func check_Corrupt(t *testing.T, rec *record.QueryRecord, fn *bytecode.Func, row, col uint, honest []string) bool {
	var (
		width   = layout.Of(rec.Toplevel(), fn)
		matrix  = trace.Function(rec, fn, width, false)
		lookups = NewLookups()
	)
	//
	matrix.Set(row, col, matrix.Get(row, col).Add(field.One()))
	//
	if len(Check(fn.Name, matrix, check_Eval(rec.Toplevel(), fn, width), lookups)) > 0 {
		return true
	}
	//
	return !slices.Equal(honest, lookups.Unbalanced())
}
