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
	"bytes"
	"testing"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/hasher"
	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
	"github.com/stretchr/testify/require"
)

// TestDir determines the (relative) location of the test directory.
const TestDir = "../../../testdata"

var modes = []Mode{RECURSIVE, ITERATIVE}

func Test_Factorial_01(t *testing.T) {
	for _, mode := range modes {
		rec := check_Execute(t, "factorial", mode, field.Uints(5), field.Uints(120))
		queries := rec.Queries(0)
		// One call for each of 0..5, each made once
		require.Equal(t, uint(6), queries.Size())
		//
		for i, res := range queries.Values() {
			require.Equal(t, uint32(1), res.Multiplicity)
			// Calls are recorded as they complete
			require.Equal(t, field.Uints(uint64(i)), queries.Key(uint(i)))
		}
		//
		require.Equal(t, []record.Entry{{Func: 0, Args: field.Uints(5), Output: field.Uints(120)}}, rec.Entries())
	}
}

func Test_Factorial_02(t *testing.T) {
	// Repeated calls hit the memo
	for _, mode := range modes {
		var (
			top = check_Compile(t, "factorial")
			rec = record.New(top)
		)
		//
		outs, err := ExecuteAll(rec, "factorial", []field.Tuple{field.Uints(3), field.Uints(5)}, Config{Mode: mode})
		require.NoError(t, err)
		require.Equal(t, []field.Tuple{field.Uints(6), field.Uints(120)}, outs)
		//
		mult, _ := rec.Queries(0).Get(field.Uints(3))
		require.Equal(t, uint32(2), mult.Multiplicity)
		require.Equal(t, uint(6), rec.Queries(0).Size())
		require.Len(t, rec.Entries(), 2)
	}
}

func Test_Fib_01(t *testing.T) {
	for _, mode := range modes {
		rec := check_Execute(t, "fib", mode, field.Uints(7), field.Uints(21))
		queries := rec.Queries(0)
		//
		require.Equal(t, uint(8), queries.Size())
		// fib(7) and fib(6) are called once, fib(0) once, everything else twice.
		for i, args := range queries.Keys() {
			var expected uint32 = 2
			//
			if n := args[0].Uint64(); n == 0 || n >= 6 {
				expected = 1
			}
			//
			require.Equal(t, expected, queries.Value(uint(i)).Multiplicity, "fib(%s)", args)
		}
	}
}

func Test_Polynomial_01(t *testing.T) {
	for _, mode := range modes {
		var (
			top  = check_Compile(t, "polynomial")
			rec  = record.New(top)
			args = field.Uints(1, 3, 5, 7, 20)
		)
		//
		out, err := Execute(rec, "polynomial", args, Config{Mode: mode})
		require.NoError(t, err)
		require.Equal(t, field.Uints(58061), out)
		//
		out, err = Execute(rec, "inverse", field.Uints(58061), Config{Mode: mode})
		require.NoError(t, err)
		require.Equal(t, args, out)
		// Preimage lookup counts as a use of the forward call
		res, ok := rec.Queries(0).Get(args)
		require.True(t, ok)
		require.Equal(t, uint32(2), res.Multiplicity)
	}
}

func Test_Polynomial_02(t *testing.T) {
	// Preimage without a forward call
	for _, mode := range modes {
		top := check_Compile(t, "polynomial")
		//
		check_Fault(t, top, "inverse", mode, field.Uints(1))
	}
}

func Test_Classify_01(t *testing.T) {
	for _, mode := range modes {
		check_Execute(t, "classify", mode, field.Uints(0), field.Uints(10))
		check_Execute(t, "classify", mode, field.Uints(2), field.Uints(30))
		check_Execute(t, "classify", mode, field.Uints(3), field.Uints(40))
		check_Execute(t, "classify", mode, field.Uints(5), field.Uints(0))
	}
}

func Test_Misc_01(t *testing.T) {
	for _, mode := range modes {
		check_Execute(t, "misc", mode, field.Uints(1, 2), field.Uints(12, 0))
		check_Execute(t, "misc", mode, field.Uints(2, 1), field.Uints(21, 0))
		check_Execute(t, "misc", mode, field.Uints(0, 5), field.Uints(0, 1))
		check_Execute(t, "misc", mode, field.Uints(6, 3), field.Uints(0, 0))
		// Inverse of zero is zero
		check_Execute(t, "misc", mode, field.Uints(0, 0), field.Uints(99, 1))
	}
}

func Test_Misc_02(t *testing.T) {
	for _, mode := range modes {
		top := check_Compile(t, "misc")
		// 5 / 0 * 0 != 5
		check_Fault(t, top, "misc", mode, field.Uints(5, 0))
		check_Fault(t, top, "distinct", mode, field.Uints(3, 3))
		check_Execute(t, "misc", mode, field.Uints(3, 4), field.Uints(0, 0))
	}
}

func Test_Misc_03(t *testing.T) {
	var (
		top = check_Compile(t, "misc")
		buf bytes.Buffer
	)
	//
	out, err := Execute(record.New(top), "negate", field.Uints(5), Config{Debug: &buf})
	require.NoError(t, err)
	require.Equal(t, field.Tuple{field.Int64(-5)}, out)
	require.Equal(t, "negate: negating\n", buf.String())
}

func Test_Memory_01(t *testing.T) {
	for _, mode := range modes {
		var (
			top = check_Compile(t, "memory")
			rec = record.New(top)
			cfg = Config{Mode: mode}
		)
		//
		out, err := Execute(rec, "pair_sum", field.Uints(3, 4), cfg)
		require.NoError(t, err)
		require.Equal(t, field.Uints(7), out)
		//
		out, err = Execute(rec, "pair_sum", field.Uints(5, 6), cfg)
		require.NoError(t, err)
		require.Equal(t, field.Uints(11), out)
		// Pointers are assigned in order
		out, err = Execute(rec, "sum_ptr", field.Uints(1), cfg)
		require.NoError(t, err)
		require.Equal(t, field.Uints(7), out)
		//
		memory := rec.Memory(0)
		require.Equal(t, uint(2), memory.Size())
		require.Equal(t, record.MemResult{Pointer: 1, Multiplicity: 2}, memory.Value(0))
		require.Equal(t, record.MemResult{Pointer: 2, Multiplicity: 2}, memory.Value(1))
		// sum_ptr(1) was called twice, once from within pair_sum
		res, _ := rec.Queries(1).Get(field.Uints(1))
		require.Equal(t, uint32(2), res.Multiplicity)
	}
}

func Test_Memory_02(t *testing.T) {
	for _, mode := range modes {
		check_Fault(t, check_Compile(t, "memory"), "sum_ptr", mode, field.Uints(9))
	}
}

func Test_Hash_01(t *testing.T) {
	rec1 := check_Run(t, "hash", RECURSIVE, field.Uints(1, 2, 3))
	rec2 := check_Run(t, "hash", ITERATIVE, field.Uints(1, 2, 3))
	expected := hasher.NewPoseidon2().Hash(field.Uints(1, 2, 3))
	//
	require.Equal(t, expected, rec1.Entries()[0].Output)
	require.Equal(t, expected, rec2.Entries()[0].Output)
	require.Equal(t, uint(1), rec1.Hashes(0).Size())
}

func Test_Determinism_01(t *testing.T) {
	// Both evaluators produce identical records
	check_Determinism(t, "factorial", field.Uints(9))
	check_Determinism(t, "fib", field.Uints(12))
	check_Determinism(t, "classify", field.Uints(7))
	check_Determinism(t, "misc", field.Uints(2, 1))
	check_Determinism(t, "memory", field.Uints(8, 9))
	check_Determinism(t, "hash", field.Uints(4, 5, 6))
}

func Test_Iterative_01(t *testing.T) {
	// Deep call chains
	top := check_Compile(t, "factorial")
	rec := record.New(top)
	//
	_, err := Execute(rec, "factorial", field.Uints(50000), Config{Mode: ITERATIVE})
	require.NoError(t, err)
	require.Equal(t, uint(50001), rec.Queries(0).Size())
}

func Test_StepLimit_01(t *testing.T) {
	for _, mode := range modes {
		top := check_Compile(t, "factorial")
		rec := record.New(top)
		//
		_, err := Execute(rec, "factorial", field.Uints(100), Config{Mode: mode, MaxSteps: 50})
		require.ErrorIs(t, err, ErrStepLimit)
		require.Empty(t, rec.Entries())
		// Sufficient steps
		_, err = Execute(record.New(top), "factorial", field.Uints(5), Config{Mode: mode, MaxSteps: 1000})
		require.NoError(t, err)
	}
}

func Test_StepLimit_02(t *testing.T) {
	// An aborted execution leaves no trace in the record
	top := check_Compile(t, "fib")
	//
	for _, mode := range modes {
		var (
			expected = check_Fib(t, top, mode, 0).Snapshot()
			aborted  = 0
		)
		//
		for limit := uint(1); limit < 100; limit++ {
			rec := check_Fib(t, top, mode, limit)
			//
			if rec == nil {
				aborted++
			} else {
				require.Equal(t, expected, rec.Snapshot(), "limit %d", limit)
			}
		}
		//
		require.NotZero(t, aborted)
	}
}

func Test_Execute_01(t *testing.T) {
	top := check_Compile(t, "factorial")
	//
	_, err := Execute(record.New(top), "fact", field.Uints(1), DefaultConfig())
	require.Error(t, err)
	_, err = Execute(record.New(top), "factorial", field.Uints(1, 2), DefaultConfig())
	require.Error(t, err)
}

func Test_Mode_01(t *testing.T) {
	for _, mode := range modes {
		parsed, err := ParseMode(mode.String())
		require.NoError(t, err)
		require.Equal(t, mode, parsed)
	}
	//
	_, err := ParseMode("parallel")
	require.Error(t, err)
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_Compile(t *testing.T, name string) *toplevel.Toplevel {
	top, errs := toplevel.CompileFile(TestDir+"/"+name+".lair", hasher.NewPoseidon2())
	require.Empty(t, errs)
	//
	return top
}

// Execute the first function of a program.
func check_Run(t *testing.T, name string, mode Mode, args field.Tuple) *record.QueryRecord {
	var (
		top = check_Compile(t, name)
		rec = record.New(top)
	)
	//
	_, err := Execute(rec, top.At(0).Name, args, Config{Mode: mode})
	require.NoError(t, err)
	//
	return rec
}

// Execute a function of the named program, which is found in the file of the
// same name.
func check_Execute(t *testing.T, fn string, mode Mode, args, expected field.Tuple) *record.QueryRecord {
	var file = fn
	//
	if fn == "distinct" || fn == "negate" {
		file = "misc"
	}
	//
	var (
		top = check_Compile(t, file)
		rec = record.New(top)
	)
	//
	out, err := Execute(rec, fn, args, Config{Mode: mode})
	require.NoError(t, err)
	require.Equal(t, expected, out, "%s%s", fn, args)
	//
	return rec
}

func check_Fault(t *testing.T, top *toplevel.Toplevel, fn string, mode Mode, args field.Tuple) {
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected fault")
		//
		_, ok := r.(Fault)
		require.True(t, ok, "expected fault, got %v", r)
	}()
	//
	_, _ = Execute(record.New(top), fn, args, Config{Mode: mode})
}

func check_Determinism(t *testing.T, name string, args field.Tuple) {
	rec1 := check_Run(t, name, RECURSIVE, args)
	rec2 := check_Run(t, name, ITERATIVE, args)
	//
	require.Equal(t, rec1.Snapshot(), rec2.Snapshot())
}

// Execute fib(4) then fib(10) against the same record, where the latter is
// subject to a given step limit.  When the limit is exceeded, the record must
// be unchanged by the attempt, and an unlimited retry must then succeed.  This
// returns the completed record, or nil if the limit was exceeded.
func check_Fib(t *testing.T, top *toplevel.Toplevel, mode Mode, limit uint) *record.QueryRecord {
	rec := record.New(top)
	//
	_, err := Execute(rec, "fib", field.Uints(4), Config{Mode: mode})
	require.NoError(t, err)
	//
	before := rec.Snapshot()
	_, err = Execute(rec, "fib", field.Uints(10), Config{Mode: mode, MaxSteps: limit})
	//
	if err == nil {
		return rec
	}
	//
	require.ErrorIs(t, err, ErrStepLimit)
	require.Equal(t, before, rec.Snapshot(), "limit %d", limit)
	// Retry against the same record
	_, err = Execute(rec, "fib", field.Uints(10), Config{Mode: mode})
	require.NoError(t, err)
	require.Equal(t, check_Fib(t, top, mode, 0).Snapshot(), rec.Snapshot(), "limit %d", limit)
	//
	return nil
}
