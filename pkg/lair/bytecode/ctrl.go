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
package bytecode

import (
	"fmt"
	"strings"

	"github.com/consensys/go-lair/pkg/field"
)

// Ctrl terminates a block, either by returning from the enclosing function or
// by branching into one of several nested blocks.
type Ctrl interface {
	// Uses returns the value-list positions read by this control.
	Uses() []uint
	// Blocks returns the nested blocks of this control (if any), with any
	// default block last.
	Blocks() []*Block
}

// Return emits the given values as the function's outputs.  Each return has
// a unique identifier within its function, which determines its selector.
type Return struct {
	Ident uint
	Vars  []uint
}

// If branches to True when a value is nonzero, and False otherwise.
type If struct {
	Cond        uint
	True, False *Block
}

// IfMany branches to True when any of the given values is nonzero, and False
// otherwise.
type IfMany struct {
	Conds       []uint
	True, False *Block
}

// Match branches on a value being equal to one of several distinct constants.
// When no case applies, the default block (if present) is taken.
type Match struct {
	Var     uint
	Cases   []Case
	Default *Block
}

// Case of a Match.
type Case struct {
	Value field.Element
	Block *Block
}

// MatchMany branches on a tuple of values being equal to one of several
// distinct constant tuples.  When no case applies, the default block (if
// present) is taken.
type MatchMany struct {
	Vars    []uint
	Cases   []ManyCase
	Default *Block
}

// ManyCase is a case of a MatchMany.
type ManyCase struct {
	Values field.Tuple
	Block  *Block
}

// Uses implementation for Ctrl interface
func (p *Return) Uses() []uint { return p.Vars }

// Uses implementation for Ctrl interface
func (p *If) Uses() []uint { return []uint{p.Cond} }

// Uses implementation for Ctrl interface
func (p *IfMany) Uses() []uint { return p.Conds }

// Uses implementation for Ctrl interface
func (p *Match) Uses() []uint { return []uint{p.Var} }

// Uses implementation for Ctrl interface
func (p *MatchMany) Uses() []uint { return p.Vars }

// Blocks implementation for Ctrl interface
func (p *Return) Blocks() []*Block { return nil }

// Blocks implementation for Ctrl interface
func (p *If) Blocks() []*Block { return []*Block{p.True, p.False} }

// Blocks implementation for Ctrl interface
func (p *IfMany) Blocks() []*Block { return []*Block{p.True, p.False} }

// Blocks implementation for Ctrl interface
func (p *Match) Blocks() []*Block {
	var blocks []*Block
	//
	for _, c := range p.Cases {
		blocks = append(blocks, c.Block)
	}
	//
	if p.Default != nil {
		blocks = append(blocks, p.Default)
	}
	//
	return blocks
}

// Blocks implementation for Ctrl interface
func (p *MatchMany) Blocks() []*Block {
	var blocks []*Block
	//
	for _, c := range p.Cases {
		blocks = append(blocks, c.Block)
	}
	//
	if p.Default != nil {
		blocks = append(blocks, p.Default)
	}
	//
	return blocks
}

// Lookup returns the block of the case matching a given value, or the default
// block if no case applies.  This returns nil if neither exists.
func (p *Match) Lookup(val field.Element) *Block {
	for _, c := range p.Cases {
		if c.Value == val {
			return c.Block
		}
	}
	//
	return p.Default
}

// Lookup returns the block of the case matching a given tuple, or the default
// block if no case applies.  This returns nil if neither exists.
func (p *MatchMany) Lookup(vals field.Tuple) *Block {
	for _, c := range p.Cases {
		if c.Values.Equals(vals) {
			return c.Block
		}
	}
	//
	return p.Default
}

// ============================================================================
// Printing
// ============================================================================

// String returns a human-readable listing of this function.
func (f *Func) String() string {
	var builder strings.Builder
	//
	builder.WriteString(fmt.Sprintf("fn %s(%d) -> %d", f.Name, f.InputSize, f.OutputSize))
	//
	if f.Invertible {
		builder.WriteString(" invertible")
	}
	//
	builder.WriteString("\n")
	writeBlock(&builder, &f.Body, 1)
	//
	return builder.String()
}

func writeBlock(builder *strings.Builder, block *Block, indent int) {
	var tab = strings.Repeat("  ", indent)
	//
	for _, op := range block.Ops {
		builder.WriteString(fmt.Sprintf("%s%s\n", tab, op.String()))
	}
	//
	switch c := block.Ctrl.(type) {
	case *Return:
		builder.WriteString(fmt.Sprintf("%sreturn#%d%s\n", tab, c.Ident, varsToString(c.Vars)))
	case *If:
		builder.WriteString(fmt.Sprintf("%sif $%d\n", tab, c.Cond))
		writeBlock(builder, c.True, indent+1)
		builder.WriteString(fmt.Sprintf("%selse\n", tab))
		writeBlock(builder, c.False, indent+1)
	case *IfMany:
		builder.WriteString(fmt.Sprintf("%sif [%s]\n", tab, listToString(c.Conds)))
		writeBlock(builder, c.True, indent+1)
		builder.WriteString(fmt.Sprintf("%selse\n", tab))
		writeBlock(builder, c.False, indent+1)
	case *Match:
		builder.WriteString(fmt.Sprintf("%smatch $%d\n", tab, c.Var))
		//
		for _, k := range c.Cases {
			builder.WriteString(fmt.Sprintf("%scase %s\n", tab, k.Value.String()))
			writeBlock(builder, k.Block, indent+1)
		}
		//
		if c.Default != nil {
			builder.WriteString(fmt.Sprintf("%sdefault\n", tab))
			writeBlock(builder, c.Default, indent+1)
		}
	case *MatchMany:
		builder.WriteString(fmt.Sprintf("%smatch [%s]\n", tab, listToString(c.Vars)))
		//
		for _, k := range c.Cases {
			builder.WriteString(fmt.Sprintf("%scase %s\n", tab, k.Values.String()))
			writeBlock(builder, k.Block, indent+1)
		}
		//
		if c.Default != nil {
			builder.WriteString(fmt.Sprintf("%sdefault\n", tab))
			writeBlock(builder, c.Default, indent+1)
		}
	default:
		panic("unknown control")
	}
}

// Write a list of value-list positions, each preceded by a space.
func varsToString(vars []uint) string {
	var builder strings.Builder
	//
	for _, v := range vars {
		builder.WriteString(fmt.Sprintf(" $%d", v))
	}
	//
	return builder.String()
}

// Write a space-separated list of value-list positions.
func listToString(vars []uint) string {
	return strings.TrimPrefix(varsToString(vars), " ")
}
