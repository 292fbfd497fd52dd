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
package toplevel

import (
	"strings"
	"testing"

	"github.com/consensys/go-lair/pkg/lair/ast"
	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/hasher"
	"github.com/stretchr/testify/require"
)

// TestDir determines the (relative) location of the test directory.
const TestDir = "../../../testdata"

func Test_Compile_01(t *testing.T) {
	top := check_CompileFile(t, "factorial")
	fn, ok := top.Get("factorial")
	//
	require.True(t, ok)
	require.Equal(t, uint(0), fn.Index)
	require.Equal(t, uint(1), fn.InputSize)
	require.Equal(t, uint(1), fn.OutputSize)
	require.Equal(t, uint(2), fn.Returns)
	require.Equal(t, uint(0), fn.Body.ReturnLo)
	require.Equal(t, uint(2), fn.Body.ReturnHi)
	//
	ctrl, ok := fn.Body.Ctrl.(*bytecode.If)
	require.True(t, ok)
	require.Equal(t, uint(0), ctrl.True.ReturnLo)
	require.Equal(t, uint(1), ctrl.True.ReturnHi)
	require.Equal(t, uint(1), ctrl.False.ReturnLo)
	require.Equal(t, uint(2), ctrl.False.ReturnHi)
}

func Test_Compile_02(t *testing.T) {
	top := check_CompileFile(t, "polynomial")
	poly, _ := top.Get("polynomial")
	inv, _ := top.Get("inverse")
	//
	require.True(t, poly.Invertible)
	require.False(t, inv.Invertible)
	//
	img, ok := inv.Body.Ops[0].(*bytecode.PreImg)
	require.True(t, ok)
	require.Equal(t, poly.Index, img.Func)
	require.Equal(t, []uint{0}, img.Outs)
}

func Test_Compile_03(t *testing.T) {
	top := check_CompileFile(t, "memory")
	//
	require.Equal(t, []uint{2}, top.MemoryArities())
	require.Empty(t, top.HashArities())
	//
	table, ok := top.MemoryTable(2)
	require.True(t, ok)
	require.Equal(t, uint(0), table)
	//
	_, ok = top.MemoryTable(3)
	require.False(t, ok)
}

func Test_Compile_04(t *testing.T) {
	top := check_CompileFile(t, "hash")
	//
	require.Equal(t, []uint{3}, top.HashArities())
	require.Equal(t, "poseidon2", top.Hasher().Name())
}

func Test_Compile_05(t *testing.T) {
	// Division is multiplication by an inverse
	top := check_CompileString(t, `(defun f [x y] 1 (let z (div x y)) (return z))`)
	fn := top.At(0)
	//
	require.Len(t, fn.Body.Ops, 2)
	require.Equal(t, &bytecode.Inv{Arg: 1}, fn.Body.Ops[0])
	require.Equal(t, &bytecode.Mul{Left: 0, Right: 2}, fn.Body.Ops[1])
	require.Equal(t, &bytecode.Return{Ident: 0, Vars: []uint{3}}, fn.Body.Ctrl)
}

func Test_Compile_06(t *testing.T) {
	// Ignored bindings need not be used
	check_CompileString(t, `(defun f [x _y] 1 (let [_a] (call g x)) (return x)) (defun g [x] 1 (return x))`)
}

func Test_Compile_07(t *testing.T) {
	// Bindings within a branch are not visible after it, and shadowing
	// resolves to the innermost binding.
	top := check_CompileString(t, `
	(defun f [x] 1
	  (let x (add x x))
	  (match x
	    (case 0 (let y 1) (return y))
	    (default (return x))))`)
	fn := top.At(0)
	ctrl, ok := fn.Body.Ctrl.(*bytecode.Match)
	//
	require.True(t, ok)
	require.Equal(t, uint(1), ctrl.Var)
	require.Equal(t, &bytecode.Return{Ident: 1, Vars: []uint{1}}, ctrl.Default.Ctrl)
	require.Equal(t, &bytecode.Return{Ident: 0, Vars: []uint{2}}, ctrl.Cases[0].Block.Ctrl)
}

func Test_Invalid_01(t *testing.T) {
	check_Invalid(t, `(defun f [x] 1 (return y))`, "unbound variable y")
}

func Test_Invalid_02(t *testing.T) {
	check_Invalid(t, `(defun f [x] 1 (let [y] (call g x)) (return y))`, "unknown function g")
}

func Test_Invalid_03(t *testing.T) {
	check_Invalid(t, `(defun f [x y] 1 (return x))`, "variable y is never used")
}

func Test_Invalid_04(t *testing.T) {
	check_Invalid(t, `(defun f [x] 1 (let [y] (call f x x)) (return y))`, "f expects 1 arguments, found 2")
}

func Test_Invalid_05(t *testing.T) {
	check_Invalid(t, `(defun f [x] 1 (let [y z] (call f x)) (let w (add y z)) (return w))`,
		"f returns 1 values, but 2 are bound")
}

func Test_Invalid_06(t *testing.T) {
	check_Invalid(t, `(defun f [x] 2 (return x))`, "return of 1 values, but output size is 2")
}

func Test_Invalid_07(t *testing.T) {
	check_Invalid(t, `(defun f [x] 1 (let [y] (preimg f x)) (return y))`, "preimage of f, which is not invertible")
}

func Test_Invalid_08(t *testing.T) {
	check_Invalid(t, `(defun f [x] 1 (return x)) (defun f [y] 1 (return y))`, "duplicate function")
}

func Test_Invalid_09(t *testing.T) {
	check_Invalid(t, `(defun f [x] 1 (match x (case 1 (return x)) (case 1 (return x))))`, "duplicate match case (1)")
}

func Test_Invalid_10(t *testing.T) {
	check_Invalid(t, `(defun f [x] 1 (let [a b] (load 3 x)) (let c (add a b)) (return c))`,
		"load of arity 3 binds 2 values")
}

func Test_Invalid_11(t *testing.T) {
	check_Invalid(t, `(defun f [x] 1 (let [a] (hash x)) (return a))`, "hash binds 1 values, but images have size 8")
}

func Test_Invalid_12(t *testing.T) {
	check_Invalid(t, `(defun f [x y] 1 (assert-eq [x y] [x]) (return x))`, "assertion compares 2 values against 1")
}

func Test_Invalid_13(t *testing.T) {
	check_Invalid(t, `(defun f [x] 1 (match [x x] (case [1] (return x)) (default (return x))))`,
		"match case (1) has 1 values, expected 2")
}

func Test_Invalid_14(t *testing.T) {
	// Syntax errors are reported before linking
	_, errs := CompileString(`(defun f [x] 1 (return x)`, hasher.NewPoseidon2())
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "unexpected end-of-file")
}

func Test_Link_01(t *testing.T) {
	ret := ast.Block{Ctrl: &ast.Return{Vars: []string{"x"}}}
	check_LinkInvalid(t, &ast.If{True: ret, False: ret}, "if on no values")
}

func Test_Link_02(t *testing.T) {
	ret := ast.Block{Ctrl: &ast.Return{Vars: []string{"x"}}}
	check_LinkInvalid(t, &ast.If{Conds: []string{"x", "x"}, True: ret, False: ret}, "if on 2 values must be on a tuple")
}

func Test_Link_03(t *testing.T) {
	ret := ast.Block{Ctrl: &ast.Return{Vars: []string{"x"}}}
	check_LinkInvalid(t, &ast.Match{Default: &ret}, "match on no values")
}

func Test_Link_04(t *testing.T) {
	ret := ast.Block{Ctrl: &ast.Return{Vars: []string{"x"}}}
	check_LinkInvalid(t, &ast.Match{Vars: []string{"x", "x"}, Default: &ret}, "match on 2 values must be on a tuple")
}

func Test_Link_05(t *testing.T) {
	check_LinkInvalid(t, nil, "block has no control")
}

func Test_Link_06(t *testing.T) {
	// Tuples of one condition are permitted
	ret := ast.Block{Ctrl: &ast.Return{Vars: []string{"x"}}}
	decl := ast.Func{Name: "f", Inputs: []string{"x"}, OutputSize: 1,
		Body: ast.Block{Ctrl: &ast.If{Conds: []string{"x"}, Many: true, True: ret, False: ret}}}
	//
	top, errs := Link([]ast.Func{decl}, hasher.NewPoseidon2())
	require.Empty(t, errs)
	//
	_, ok := top.At(0).Body.Ctrl.(*bytecode.IfMany)
	require.True(t, ok)
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_CompileFile(t *testing.T, name string) *Toplevel {
	top, errs := CompileFile(TestDir+"/"+name+".lair", hasher.NewPoseidon2())
	require.Empty(t, errs)
	//
	return top
}

func check_CompileString(t *testing.T, text string) *Toplevel {
	top, errs := CompileString(text, hasher.NewPoseidon2())
	require.Empty(t, errs)
	//
	return top
}

func check_Invalid(t *testing.T, text string, msg string) {
	top, errs := CompileString(text, hasher.NewPoseidon2())
	require.Nil(t, top)
	//
	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	//
	require.True(t, containsSuffix(msgs, msg), "expected %q amongst %v", msg, msgs)
}

func containsSuffix(msgs []string, suffix string) bool {
	for _, m := range msgs {
		if strings.HasSuffix(m, suffix) {
			return true
		}
	}
	//
	return false
}

// Link a function f(x) whose body is a given control, which should fail.
func check_LinkInvalid(t *testing.T, ctrl ast.Ctrl, msg string) {
	decl := ast.Func{Name: "f", Inputs: []string{"x"}, OutputSize: 1, Body: ast.Block{Ctrl: ctrl}}
	//
	top, errs := Link([]ast.Func{decl}, hasher.NewPoseidon2())
	require.Nil(t, top)
	//
	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	//
	require.Contains(t, msgs, "f: "+msg)
}
