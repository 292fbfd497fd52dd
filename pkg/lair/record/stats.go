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
package record

import (
	"fmt"
	"strings"
)

// TableStats summarises a single table of a record.
type TableStats struct {
	Name string
	// Number of distinct entries in the table
	Entries uint
	// Total multiplicity across all entries
	Multiplicity uint64
}

// Stats summarises the tables of a record.
type Stats struct {
	Funcs  []TableStats
	Memory []TableStats
	Hashes []TableStats
}

// Stats returns a summary of the tables in this record.
func (p *QueryRecord) Stats() Stats {
	var stats Stats
	//
	for i, t := range p.funcs {
		stats.Funcs = append(stats.Funcs, summarise(p.top.At(uint(i)).Name, t.Values(),
			func(r QueryResult) uint32 { return r.Multiplicity }))
	}
	//
	for i, t := range p.memory {
		name := fmt.Sprintf("mem%d", p.top.MemoryArities()[i])
		stats.Memory = append(stats.Memory, summarise(name, t.Values(),
			func(r MemResult) uint32 { return r.Multiplicity }))
	}
	//
	for i, t := range p.hashes {
		name := fmt.Sprintf("hash%d", p.top.HashArities()[i])
		stats.Hashes = append(stats.Hashes, summarise(name, t.Values(),
			func(r HashResult) uint32 { return r.Multiplicity }))
	}
	//
	return stats
}

func summarise[T any](name string, values []T, mult func(T) uint32) TableStats {
	var total uint64
	//
	for _, v := range values {
		total += uint64(mult(v))
	}
	//
	return TableStats{name, uint(len(values)), total}
}

// Tables returns every table summary, functions first.
func (p Stats) Tables() []TableStats {
	tables := append([]TableStats{}, p.Funcs...)
	tables = append(tables, p.Memory...)
	//
	return append(tables, p.Hashes...)
}

func (p Stats) String() string {
	var builder strings.Builder
	//
	for _, t := range p.Tables() {
		builder.WriteString(fmt.Sprintf("%s: %d entries, multiplicity %d\n", t.Name, t.Entries, t.Multiplicity))
	}
	//
	return builder.String()
}
