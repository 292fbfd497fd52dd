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
package sexp

import (
	"testing"

	"github.com/consensys/go-lair/pkg/util/source"
	"github.com/stretchr/testify/require"
)

func Test_Parser_01(t *testing.T) {
	check_Parse(t, "(a b c)", "(a b c)")
}

func Test_Parser_02(t *testing.T) {
	check_Parse(t, "(a [b c] (d))", "(a [b c] (d))")
}

func Test_Parser_03(t *testing.T) {
	check_Parse(t, "; comment\n(a\n  ; another\n  b)", "(a b)")
}

func Test_Parser_04(t *testing.T) {
	check_Parse(t, "(debug \"hello world\")", "(debug \"hello world\")")
}

func Test_Parser_05(t *testing.T) {
	check_Parse(t, "(a) (b)", "(a)", "(b)")
}

func Test_Parser_06(t *testing.T) {
	check_ParseError(t, "(a b", "unexpected end-of-file")
}

func Test_Parser_07(t *testing.T) {
	check_ParseError(t, "(a b))", "unexpected end-of-list")
}

func Test_Parser_08(t *testing.T) {
	check_ParseError(t, "(a \"b)", "unterminated string")
}

func Test_Parser_09(t *testing.T) {
	check_ParseError(t, "(a [b)", "unexpected end-of-list")
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_Parse(t *testing.T, input string, expected ...string) {
	file := source.NewSourceFile("test.lair", []byte(input))
	terms, srcmap, err := ParseAll(file)
	//
	require.Nil(t, err)
	require.Len(t, terms, len(expected))
	//
	for i, term := range terms {
		require.Equal(t, expected[i], term.String(true))
		require.NotPanics(t, func() { srcmap.Get(term) })
	}
}

func check_ParseError(t *testing.T, input string, msg string) {
	file := source.NewSourceFile("test.lair", []byte(input))
	_, _, err := ParseAll(file)
	//
	require.NotNil(t, err)
	require.Equal(t, msg, err.Message())
}
