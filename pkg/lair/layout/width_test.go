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

import (
	"testing"

	"github.com/consensys/go-lair/pkg/lair/hasher"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
	"github.com/stretchr/testify/require"
)

// TestDir determines the (relative) location of the test directory.
const TestDir = "../../../testdata"

func Test_Width_01(t *testing.T) {
	check_Width(t, "factorial", "factorial", Width{1, 1, 4, 2})
}

func Test_Width_02(t *testing.T) {
	w := check_Width(t, "fib", "fib", Width{1, 1, 5, 3})
	require.Equal(t, uint(10), w.Total())
}

func Test_Width_03(t *testing.T) {
	// Four inverse witnesses for the default case
	check_Width(t, "classify", "classify", Width{1, 1, 5, 5})
}

func Test_Width_04(t *testing.T) {
	check_Width(t, "polynomial", "polynomial", Width{5, 1, 4, 1})
	check_Width(t, "polynomial", "inverse", Width{1, 5, 6, 1})
}

func Test_Width_05(t *testing.T) {
	check_Width(t, "misc", "misc", Width{2, 2, 12, 4})
	check_Width(t, "misc", "distinct", Width{2, 1, 3, 1})
	check_Width(t, "misc", "negate", Width{1, 1, 1, 1})
}

func Test_Width_06(t *testing.T) {
	check_Width(t, "memory", "pair_sum", Width{2, 1, 3, 1})
	check_Width(t, "memory", "sum_ptr", Width{1, 1, 3, 1})
	check_Width(t, "hash", "digest", Width{3, 8, 9, 1})
}

func Test_Width_07(t *testing.T) {
	// Products and inverses of constants need no columns
	check_WidthString(t, `(defun f [x] 1
	  (let a 2)
	  (let b (mul a a))
	  (let c (inv b))
	  (let d (mul c x))
	  (let e (not a))
	  (let g (add d e))
	  (return g))`, Width{1, 1, 1, 1})
}

func Test_Width_08(t *testing.T) {
	// Products of products need a column each
	check_WidthString(t, `(defun f [x] 1
	  (let a (mul x x))
	  (let b (mul a a))
	  (let c (mul b x))
	  (return c))`, Width{1, 1, 4, 1})
}

func Test_Width_09(t *testing.T) {
	// Branches share columns
	check_WidthString(t, `(defun f [x] 1
	  (if x
	    (then (let a (mul x x)) (return a))
	    (else (let a (mul x x)) (let b (mul a x)) (let c (mul b x)) (return c))))`, Width{1, 1, 4, 2})
}

func Test_Degree_01(t *testing.T) {
	deg, n := Mul(0, 1)
	require.Equal(t, Degree(1), deg)
	require.Equal(t, uint(0), n)
	//
	deg, n = Mul(1, 1)
	require.Equal(t, Degree(1), deg)
	require.Equal(t, uint(1), n)
	//
	deg, n = Inv(0)
	require.Equal(t, Degree(0), deg)
	require.Equal(t, uint(0), n)
	//
	deg, n = Not(1)
	require.Equal(t, Degree(1), deg)
	require.Equal(t, uint(2), n)
}

func Test_Cache_01(t *testing.T) {
	top := check_Compile(t, "polynomial")
	cache := NewCache(top, 1)
	//
	for range 3 {
		for _, fn := range top.Functions() {
			require.Equal(t, Of(top, fn), cache.Width(fn))
		}
	}
	//
	require.Equal(t, top, cache.Toplevel())
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

func check_Width(t *testing.T, file string, name string, expected Width) Width {
	top := check_Compile(t, file)
	fn, ok := top.Get(name)
	require.True(t, ok)
	//
	actual := Of(top, fn)
	require.Equal(t, expected, actual, "width of %s", name)
	//
	return actual
}

func check_WidthString(t *testing.T, text string, expected Width) {
	top, errs := toplevel.CompileString(text, hasher.NewPoseidon2())
	require.Empty(t, errs)
	require.Equal(t, expected, Of(top, top.At(0)))
}
