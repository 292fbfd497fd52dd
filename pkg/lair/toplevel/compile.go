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
	"github.com/consensys/go-lair/pkg/lair/ast"
	"github.com/consensys/go-lair/pkg/lair/hasher"
	"github.com/consensys/go-lair/pkg/util/source"
)

// Compile reads and links every function of a lair source file.  Syntax errors
// are reported in preference to link errors, since linking a partially read
// file is liable to report spurious faults.
func Compile(file *source.File, hasher hasher.Hasher) (*Toplevel, []error) {
	decls, syntaxErrors := ast.Read(file)
	//
	if len(syntaxErrors) > 0 {
		errs := make([]error, len(syntaxErrors))
		//
		for i := range syntaxErrors {
			errs[i] = &syntaxErrors[i]
		}
		//
		return nil, errs
	}
	//
	top, linkErrors := Link(decls, hasher)
	//
	if len(linkErrors) > 0 {
		errs := make([]error, len(linkErrors))
		//
		for i, e := range linkErrors {
			errs[i] = e
		}
		//
		return nil, errs
	}
	//
	return top, nil
}

// CompileFile reads and links a lair source file from disk.
func CompileFile(filename string, hasher hasher.Hasher) (*Toplevel, []error) {
	file, err := source.ReadFile(filename)
	//
	if err != nil {
		return nil, []error{err}
	}
	//
	return Compile(file, hasher)
}

// CompileString reads and links a lair program given as a string.
func CompileString(text string, hasher hasher.Hasher) (*Toplevel, []error) {
	return Compile(source.NewSourceFile("<string>", []byte(text)), hasher)
}
