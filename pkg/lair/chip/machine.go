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
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-lair/pkg/lair/air"
	"github.com/consensys/go-lair/pkg/lair/layout"
	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
	"github.com/consensys/go-lair/pkg/lair/trace"
	"github.com/consensys/go-lair/pkg/util"
)

// Config determines how a machine generates and checks its traces.
type Config struct {
	// Maximum number of entries of any table held by a single shard.  Zero
	// indicates the record is not sharded.
	ShardSize uint
	// Generate and check chips in parallel.
	Parallel bool
}

// DefaultConfig returns the default machine configuration.
func DefaultConfig() Config {
	return Config{ShardSize: 1 << 20, Parallel: true}
}

// Machine is the set of chips for a given toplevel, consisting of an
// entrypoint chip and a function chip for every function, followed by a chip
// for every memory table and every hash table.
type Machine struct {
	top    *toplevel.Toplevel
	chips  []Chip
	config Config
}

// Trace is the generated trace of a single chip.
type Trace struct {
	Chip   Chip
	Matrix *trace.Matrix
}

// Shard holds the traces of every chip included in a given shard.
type Shard struct {
	Index  uint
	Traces []Trace
}

// NewMachine constructs the machine for a given toplevel.
func NewMachine(top *toplevel.Toplevel, config Config) *Machine {
	var (
		chips  []Chip
		widths = layout.NewCache(top, 0)
	)
	//
	for _, fn := range top.Functions() {
		chips = append(chips, NewEntrypointChip(fn))
	}
	//
	for _, fn := range top.Functions() {
		chips = append(chips, NewFuncChip(top, fn, widths.Width(fn), config.Parallel))
	}
	//
	for i := range top.MemoryArities() {
		chips = append(chips, NewMemoryChip(top, uint(i)))
	}
	//
	for i := range top.HashArities() {
		chips = append(chips, NewHashChip(top, uint(i)))
	}
	//
	return &Machine{top, chips, config}
}

// Toplevel returns the toplevel of this machine.
func (p *Machine) Toplevel() *toplevel.Toplevel {
	return p.top
}

// Chips returns the chips of this machine.
func (p *Machine) Chips() []Chip {
	return p.chips
}

// Chip returns the chip with a given name, or nil if no such chip exists.
func (p *Machine) Chip(name string) Chip {
	for _, c := range p.chips {
		if c.Name() == name {
			return c
		}
	}
	//
	return nil
}

// Generate the traces for a given record.  The record is first split into
// shards, and then the trace of every chip included in a shard is generated.
func (p *Machine) Generate(rec *record.QueryRecord) ([]Shard, error) {
	if rec.Toplevel() != p.top {
		return nil, fmt.Errorf("record belongs to a different toplevel")
	}
	//
	var (
		stats   = util.NewPerfStats()
		records = []*record.QueryRecord{rec}
	)
	//
	if p.config.ShardSize != 0 {
		records = rec.Shard(p.config.ShardSize)
	}
	//
	shards := make([]Shard, len(records))
	//
	for i, r := range records {
		var included []Chip
		//
		for _, c := range p.chips {
			if c.Included(r) {
				included = append(included, c)
			}
		}
		//
		traces, err := forEach(p.config.Parallel, included, func(c Chip) (Trace, error) {
			return Trace{c, c.Generate(r)}, nil
		})
		//
		if err != nil {
			return nil, err
		}
		//
		shards[i] = Shard{uint(i), traces}
		log.Debugf("shard %d includes %d of %d chips", i, len(traces), len(p.chips))
	}
	//
	stats.Log("Trace generation")
	//
	return shards, nil
}

// Debug checks the constraints of every chip on every row of every shard, and
// that all lookup interactions are balanced across the shards.
func (p *Machine) Debug(shards []Shard) error {
	type result struct {
		failures []air.Failure
		lookups  *air.Lookups
	}
	//
	var (
		stats    = util.NewPerfStats()
		lookups  = air.NewLookups()
		failures []air.Failure
		traces   []Trace
	)
	//
	for _, s := range shards {
		traces = append(traces, s.Traces...)
	}
	//
	results, err := forEach(p.config.Parallel, traces, func(t Trace) (result, error) {
		local := air.NewLookups()
		//
		return result{air.Check(t.Chip.Name(), t.Matrix, t.Chip.Eval, local), local}, nil
	})
	//
	if err != nil {
		return err
	}
	//
	for _, r := range results {
		failures = append(failures, r.failures...)
		lookups.Merge(r.lookups)
	}
	//
	stats.Log("Constraint checking")
	//
	if unbalanced := lookups.Unbalanced(); len(failures) > 0 || len(unbalanced) > 0 {
		return &DebugError{failures, unbalanced}
	}
	//
	return nil
}

// Check generates the traces of a record and debugs them.
func (p *Machine) Check(rec *record.QueryRecord) error {
	shards, err := p.Generate(rec)
	//
	if err != nil {
		return err
	}
	//
	return p.Debug(shards)
}

// Apply a function to each item, in parallel if so configured.
func forEach[S any, T any](parallel bool, items []S, fn func(S) (T, error)) ([]T, error) {
	if parallel {
		return util.ParallelMap(items, fn)
	}
	//
	results := make([]T, len(items))
	//
	for i, item := range items {
		var err error
		//
		if results[i], err = fn(item); err != nil {
			return nil, err
		}
	}
	//
	return results, nil
}

// DebugError reports the constraints which failed, and the lookups which did
// not balance, when debugging a machine.
type DebugError struct {
	Failures   []air.Failure
	Unbalanced []string
}

func (p *DebugError) Error() string {
	var builder strings.Builder
	//
	builder.WriteString(fmt.Sprintf("%d constraint failure(s), %d unbalanced lookup(s)",
		len(p.Failures), len(p.Unbalanced)))
	//
	for _, f := range p.Failures {
		builder.WriteString("\n")
		builder.WriteString(f.Error())
	}
	//
	for _, u := range p.Unbalanced {
		builder.WriteString("\nunbalanced ")
		builder.WriteString(u)
	}
	//
	return builder.String()
}
