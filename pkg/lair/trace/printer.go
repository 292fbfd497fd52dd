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
	"fmt"
	"io"
	"math"

	"github.com/consensys/go-lair/pkg/lair/layout"
	"github.com/consensys/go-lair/pkg/util/termio"
)

// Printer encapsulates various configuration options useful for printing out
// matrices in human-readable forms.
type Printer struct {
	// Column names
	names []string
	// First row to print
	startRow uint
	// Last row to print
	endRow uint
	// Determine maximum width to print
	maxCellWidth uint
	// Enable ANSI
	ansiEscapes bool
	// Highlight nonzero cells
	highlight bool
}

// NewPrinter constructs a default printer
func NewPrinter() *Printer {
	return &Printer{nil, 0, math.MaxUint, math.MaxUint, false, true}
}

// Names configures the column names to print.
func (p *Printer) Names(names []string) *Printer {
	p.names = names
	return p
}

// Start configures the starting row for this printer.
func (p *Printer) Start(start uint) *Printer {
	p.startRow = start
	return p
}

// End configures the ending row (inclusive) for this printer.
func (p *Printer) End(end uint) *Printer {
	p.endRow = end
	return p
}

// AnsiEscapes can be used to enable or disable the use of ANSI escape sequences
// (e.g. for showing colour in a terminal, etc)
func (p *Printer) AnsiEscapes(enable bool) *Printer {
	p.ansiEscapes = enable
	return p
}

// Highlight configures whether nonzero cells are highlighted.  This has no
// effect unless ANSI escapes are enabled.
func (p *Printer) Highlight(enable bool) *Printer {
	p.highlight = enable
	return p
}

// MaxCellWidth sets the maximum width to use for the cell data.
func (p *Printer) MaxCellWidth(width uint) *Printer {
	p.maxCellWidth = width
	return p
}

// Print a given matrix to a given output.  Cells are truncated so that the
// matrix fits within the output's width.
func (p *Printer) Print(out io.Writer, m *Matrix) {
	var end = m.Height()
	// End is inclusive
	if p.endRow < end {
		end = p.endRow + 1
	}
	//
	var (
		start = min(p.startRow, end)
		table = termio.NewTablePrinter(1+m.Width(), 2+end-start)
		// Bold red for nonzero cells
		nonzero = termio.BoldAnsiEscape().FgColour(termio.TERM_RED)
	)
	// Headers
	table.Set(0, 0, "row")
	table.Set(0, 1, "")
	//
	for col := range m.Width() {
		if col < uint(len(p.names)) {
			table.Set(1+col, 0, p.names[col])
		}
		//
		table.Set(1+col, 1, fmt.Sprintf("#%d", col))
	}
	//
	for row := start; row < end; row++ {
		table.Set(0, 2+row-start, fmt.Sprintf("%d", row))
		//
		for col := range m.Width() {
			val := m.Get(row, col)
			table.Set(1+col, 2+row-start, val.String())
			//
			if p.highlight && !val.IsZero() {
				table.SetEscape(1+col, 2+row-start, nonzero)
			}
		}
	}
	// Fit to output
	fit := termio.Width(out) / (m.Width() + 1)
	table.SetMaxWidths(min(p.maxCellWidth, max(fit, 3)-3))
	table.AnsiEscapes(p.ansiEscapes)
	table.Print(out)
}

// Columns returns the names of the columns of a function's trace.
func Columns(width layout.Width) []string {
	var names []string
	//
	for i := range width.Input {
		names = append(names, fmt.Sprintf("in%d", i))
	}
	//
	for i := range width.Output {
		names = append(names, fmt.Sprintf("out%d", i))
	}
	//
	names = append(names, "mult")
	//
	for i := uint(1); i < width.Aux; i++ {
		names = append(names, fmt.Sprintf("aux%d", i))
	}
	//
	for i := range width.Sel {
		names = append(names, fmt.Sprintf("sel%d", i))
	}
	//
	return names
}
