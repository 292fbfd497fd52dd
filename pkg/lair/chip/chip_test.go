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
	"errors"
	"testing"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/exec"
	"github.com/consensys/go-lair/pkg/lair/hasher"
	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
	"github.com/stretchr/testify/require"
)

// TestDir determines the (relative) location of the test directory.
const TestDir = "../../../testdata"

func Test_Machine_01(t *testing.T) {
	check_Machine(t, "factorial", DefaultConfig(), call("factorial", 5))
}

func Test_Machine_02(t *testing.T) {
	check_Machine(t, "fib", DefaultConfig(), call("fib", 10), call("fib", 3))
}

func Test_Machine_03(t *testing.T) {
	check_Machine(t, "polynomial", DefaultConfig(), call("polynomial", 1, 2, 3, 4, 5), call("inverse", 586))
}

func Test_Machine_04(t *testing.T) {
	check_Machine(t, "memory", DefaultConfig(), call("pair_sum", 1, 2), call("pair_sum", 3, 4),
		call("pair_sum", 1, 2))
}

func Test_Machine_05(t *testing.T) {
	check_Machine(t, "hash", DefaultConfig(), call("digest", 1, 2, 3), call("digest", 1, 2, 3))
}

func Test_Machine_06(t *testing.T) {
	check_Machine(t, "misc", Config{Parallel: false}, call("misc", 1, 2), call("misc", 2, 1),
		call("misc", 0, 5), call("misc", 6, 3), call("misc", 0, 0), call("distinct", 1, 2),
		call("negate", 7))
}

func Test_Machine_07(t *testing.T) {
	check_Machine(t, "classify", DefaultConfig(), call("classify", 0), call("classify", 2), call("classify", 9))
}

func Test_Shard_01(t *testing.T) {
	var (
		rec     = check_Execute(t, "fib", call("fib", 10))
		machine = NewMachine(rec.Toplevel(), Config{ShardSize: 3, Parallel: true})
	)
	//
	shards, err := machine.Generate(rec)
	require.NoError(t, err)
	// fib(0) ... fib(10)
	require.Len(t, shards, 4)
	// Entrypoint only in the first shard
	require.Equal(t, "entry(fib)", shards[0].Traces[0].Chip.Name())
	require.Equal(t, "fib", shards[1].Traces[0].Chip.Name())
	require.NoError(t, machine.Debug(shards))
}

func Test_Shard_02(t *testing.T) {
	check_Machine(t, "memory", Config{ShardSize: 1, Parallel: true}, call("pair_sum", 1, 2),
		call("pair_sum", 3, 4))
	check_Machine(t, "hash", Config{ShardSize: 1, Parallel: false}, call("digest", 1, 2, 3),
		call("digest", 4, 5, 6))
}

func Test_Invalid_01(t *testing.T) {
	var (
		rec     = check_Execute(t, "factorial", call("factorial", 5))
		machine = NewMachine(rec.Toplevel(), DefaultConfig())
	)
	//
	shards, err := machine.Generate(rec)
	require.NoError(t, err)
	// Corrupt the output of factorial(5)
	m := check_Trace(t, shards, "factorial").Matrix
	m.Set(5, 1, field.Uint64(121))
	//
	failure := check_DebugError(t, machine.Debug(shards))
	require.NotEmpty(t, failure.Failures)
	require.Equal(t, "factorial", failure.Failures[0].Chip)
	require.Equal(t, uint(5), failure.Failures[0].Row)
}

func Test_Invalid_02(t *testing.T) {
	var (
		rec     = check_Execute(t, "factorial", call("factorial", 5))
		machine = NewMachine(rec.Toplevel(), DefaultConfig())
	)
	//
	shards, err := machine.Generate(rec)
	require.NoError(t, err)
	// Drop the entrypoint
	shards[0].Traces = shards[0].Traces[1:]
	//
	failure := check_DebugError(t, machine.Debug(shards))
	require.Empty(t, failure.Failures)
	require.Equal(t, []string{"call0(5 120): 1"}, failure.Unbalanced)
}

func Test_Invalid_03(t *testing.T) {
	var (
		rec     = check_Execute(t, "factorial", call("factorial", 5))
		machine = NewMachine(rec.Toplevel(), DefaultConfig())
	)
	//
	shards, err := machine.Generate(rec)
	require.NoError(t, err)
	// Claim factorial(4) was called once more than it was
	m := check_Trace(t, shards, "factorial").Matrix
	m.Set(4, 2, field.Uint64(2))
	//
	failure := check_DebugError(t, machine.Debug(shards))
	require.Empty(t, failure.Failures)
	require.Equal(t, []string{"call0(4 24): 1"}, failure.Unbalanced)
}

func Test_Invalid_04(t *testing.T) {
	top := check_Compile(t, "memory")
	machine := NewMachine(check_Compile(t, "factorial"), DefaultConfig())
	//
	_, err := machine.Generate(record.New(top))
	require.Error(t, err)
}

func Test_Included_01(t *testing.T) {
	var (
		rec     = check_Execute(t, "polynomial", call("polynomial", 1, 1, 1, 1, 1))
		machine = NewMachine(rec.Toplevel(), DefaultConfig())
	)
	//
	require.True(t, machine.Chip("entry(polynomial)").Included(rec))
	require.True(t, machine.Chip("polynomial").Included(rec))
	require.False(t, machine.Chip("entry(inverse)").Included(rec))
	require.False(t, machine.Chip("inverse").Included(rec))
	require.Nil(t, machine.Chip("missing"))
}

func Test_Chips_01(t *testing.T) {
	var (
		memory = NewMachine(check_Compile(t, "memory"), DefaultConfig())
		digest = NewMachine(check_Compile(t, "hash"), DefaultConfig())
	)
	//
	require.Len(t, memory.Chips(), 5)
	require.Equal(t, []string{"mult", "ptr", "val0", "val1"}, memory.Chip("mem2").Columns())
	require.Equal(t, []string{"in0", "in1", "out0", "active"}, memory.Chip("entry(pair_sum)").Columns())
	require.Equal(t, uint(12), digest.Chip("hash3").Width())
	require.Len(t, digest.Chip("hash3").Columns(), 12)
	require.Equal(t, uint(21), digest.Chip("digest").Width())
}

// ===================================================================
// Test Helpers
// ===================================================================

type testCall struct {
	name string
	args field.Tuple
}

func call(name string, args ...uint64) testCall {
	return testCall{name, field.Uints(args...)}
}

func check_Compile(t *testing.T, file string) *toplevel.Toplevel {
	top, errs := toplevel.CompileFile(TestDir+"/"+file+".lair", hasher.NewPoseidon2())
	require.Empty(t, errs)
	//
	return top
}

func check_Execute(t *testing.T, file string, calls ...testCall) *record.QueryRecord {
	rec := record.New(check_Compile(t, file))
	//
	for _, c := range calls {
		_, err := exec.Execute(rec, c.name, c.args, exec.DefaultConfig())
		require.NoError(t, err)
	}
	//
	return rec
}

func check_Machine(t *testing.T, file string, config Config, calls ...testCall) {
	rec := check_Execute(t, file, calls...)
	machine := NewMachine(rec.Toplevel(), config)
	//
	require.NoError(t, machine.Check(rec))
}

func check_Trace(t *testing.T, shards []Shard, name string) Trace {
	for _, s := range shards {
		for _, tr := range s.Traces {
			if tr.Chip.Name() == name {
				return tr
			}
		}
	}
	//
	require.Fail(t, "missing trace", name)
	//
	return Trace{}
}

func check_DebugError(t *testing.T, err error) *DebugError {
	var failure *DebugError
	//
	require.Error(t, err)
	require.True(t, errors.As(err, &failure))
	//
	return failure
}
