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
package trace

import (
	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/layout"
	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/util"
)

// Function generates the trace of a function from a record.  There is one row
// for every recorded call with nonzero multiplicity, in the order the calls
// were recorded.  The remaining rows are zero, and denote padding.  Rows are
// generated in parallel when requested, since each depends only on the
// (read-only) record.
func Function(rec *record.QueryRecord, fn *bytecode.Func, width layout.Width, parallel bool) *Matrix {
	var (
		queries = rec.Queries(fn.Index)
		rows    = make([]uint, 0, queries.Size())
	)
	//
	for i, res := range queries.Values() {
		if res.Multiplicity != 0 {
			rows = append(rows, uint(i))
		}
	}
	//
	matrix := NewMatrix(width.Total(), Height(uint(len(rows))))
	//
	fill := func(i uint) error {
		var (
			entry = rows[i]
			res   = queries.Value(entry)
		)
		//
		Row(rec, fn, width, queries.Key(entry), res, matrix.Row(i))
		//
		return nil
	}
	//
	if parallel {
		// Rows never fail
		_ = util.ParallelRange(uint(len(rows)), fill)
	} else {
		for i := range uint(len(rows)) {
			_ = fill(i)
		}
	}
	//
	return matrix
}

// Row populates the row of a single recorded call.  The auxiliary columns are
// filled by replaying the function body along the path taken by the call, in
// exactly the order that the layout allocates them.
func Row(rec *record.QueryRecord, fn *bytecode.Func, width layout.Width, args field.Tuple,
	res record.QueryResult, row []field.Element) {
	var (
		aux = row[width.AuxOffset():width.SelOffset()]
		sel = row[width.SelOffset():]
		r   = replay{rec: rec, aux: aux, sel: sel}
	)
	//
	copy(row, args)
	copy(row[width.OutputOffset():], res.Output)
	// Multiplicity
	r.push(field.Uint64(uint64(res.Multiplicity)))
	//
	r.degrees = layout.NewDegrees(fn.InputSize)
	r.values = append(r.values, args...)
	r.block(fn, &fn.Body)
}
