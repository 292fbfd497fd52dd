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
package termio

import (
	"io"
	"os"

	"golang.org/x/term"
)

// DEFAULT_WIDTH is assumed for outputs which are not terminals.
const DEFAULT_WIDTH = uint(120)

// IsTerminal determines whether a given output is attached to a terminal, in
// which case ANSI escapes can be used.
func IsTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	//
	return ok && term.IsTerminal(int(file.Fd()))
}

// Width returns the number of columns available on a given output.
func Width(out io.Writer) uint {
	if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			return uint(width)
		}
	}
	//
	return DEFAULT_WIDTH
}
