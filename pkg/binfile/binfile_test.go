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
package binfile

import (
	"os"
	"testing"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/exec"
	"github.com/consensys/go-lair/pkg/lair/hasher"
	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
	"github.com/stretchr/testify/require"
)

// TestDir determines the (relative) location of the test directory.
const TestDir = "../../testdata"

func Test_Checkpoint_01(t *testing.T) {
	check_RoundTrip(t, "factorial", "factorial", field.Uints(10))
}

func Test_Checkpoint_02(t *testing.T) {
	check_RoundTrip(t, "memory", "pair_sum", field.Uints(1, 2), field.Uints(3, 4))
}

func Test_Checkpoint_03(t *testing.T) {
	check_RoundTrip(t, "hash", "digest", field.Uints(1, 2, 3))
}

func Test_Checkpoint_04(t *testing.T) {
	var (
		program, top = check_Compile(t, "factorial")
		ckpt         = NewCheckpoint(program, record.New(top))
		other, _     = check_Compile(t, "fib")
	)
	//
	require.True(t, ckpt.Matches(program))
	require.False(t, ckpt.Matches(other))
}

func Test_Checkpoint_05(t *testing.T) {
	var (
		program, top = check_Compile(t, "factorial")
		ckpt         = NewCheckpoint(program, record.New(top))
		decoded      Checkpoint
	)
	// Future major version
	ckpt.Header.MajorVersion = BINFILE_MAJOR_VERSION + 1
	bytes, err := ckpt.MarshalBinary()
	require.NoError(t, err)
	require.True(t, IsCheckpoint(bytes))
	require.ErrorContains(t, decoded.UnmarshalBinary(bytes), "incompatible checkpoint file")
	// Truncated
	require.Error(t, decoded.UnmarshalBinary(bytes[:10]))
	require.False(t, IsCheckpoint([]byte("zkbinary")))
	require.False(t, IsCheckpoint(nil))
}

func Test_Checkpoint_06(t *testing.T) {
	var (
		program, top = check_Compile(t, "factorial")
		_, other     = check_Compile(t, "fib")
		rec          = record.New(top)
		decoded      Checkpoint
	)
	//
	_, err := exec.Execute(rec, "factorial", field.Uints(3), exec.DefaultConfig())
	require.NoError(t, err)
	//
	bytes, err := NewCheckpoint(program, rec).MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, decoded.UnmarshalBinary(bytes))
	// Restoring against the wrong program fails
	_, err = decoded.Restore(other)
	require.Error(t, err)
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_Compile(t *testing.T, file string) ([]byte, *toplevel.Toplevel) {
	program, err := os.ReadFile(TestDir + "/" + file + ".lair")
	require.NoError(t, err)
	//
	top, errs := toplevel.CompileString(string(program), hasher.NewPoseidon2())
	require.Empty(t, errs)
	//
	return program, top
}

func check_RoundTrip(t *testing.T, file string, name string, args ...field.Tuple) {
	var (
		program, top = check_Compile(t, file)
		rec          = record.New(top)
		decoded      Checkpoint
	)
	//
	for _, arg := range args {
		_, err := exec.Execute(rec, name, arg, exec.DefaultConfig())
		require.NoError(t, err)
	}
	//
	bytes, err := NewCheckpoint(program, rec).MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, decoded.UnmarshalBinary(bytes))
	require.True(t, decoded.Matches(program))
	//
	restored, err := decoded.Restore(top)
	require.NoError(t, err)
	require.Equal(t, rec.Snapshot(), restored.Snapshot())
	require.Equal(t, rec.Stats().String(), restored.Stats().String())
}
