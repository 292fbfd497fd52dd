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
package cmd

import (
	"testing"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/stretchr/testify/require"
)

func Test_Arguments_01(t *testing.T) {
	require.Equal(t, field.Uints(1, 2, 3), ParseArguments([]string{"1", "2", "3"}))
	require.Equal(t, field.Tuple{field.Int64(-1)}, ParseArguments([]string{"-1"}))
	require.Empty(t, ParseArguments(nil))
}

func Test_Commands_01(t *testing.T) {
	var names []string
	//
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	//
	for _, name := range []string{"execute", "trace", "check", "width", "checkpoint"} {
		require.Contains(t, names, name)
	}
	//
	require.Len(t, checkpointCmd.Commands(), 4)
}
