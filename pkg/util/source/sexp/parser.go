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
	"unicode"

	"github.com/consensys/go-lair/pkg/util/source"
)

// ParseAll converts a given source file into zero or more S-expressions, or
// returns an error if it is malformed.  A source map is also returned for
// reporting errors against the original text.
func ParseAll(s *source.File) ([]SExp, *source.Map[SExp], *source.SyntaxError) {
	p := NewParser(s)
	//
	terms := make([]SExp, 0)
	// Parse the input
	for {
		term, err := p.Parse()
		// Sanity check everything was parsed
		if err != nil {
			return terms, p.srcmap, err
		} else if term == nil {
			// EOF reached
			return terms, p.srcmap, nil
		}

		terms = append(terms, term)
	}
}

// Parser represents a parser in the process of parsing a given string into one
// or more S-expressions.
type Parser struct {
	// Source file being parsed
	srcfile *source.File
	// Cache (for simplicity)
	text []rune
	// Determine current position within text
	index int
	// Mapping from constructed S-Expressions to their spans in the original text.
	srcmap *source.Map[SExp]
}

// NewParser constructs a new instance of Parser
func NewParser(srcfile *source.File) *Parser {
	return &Parser{
		srcfile: srcfile,
		text:    srcfile.Contents(),
		index:   0,
		srcmap:  source.NewSourceMap[SExp](srcfile),
	}
}

// SourceMap returns the internal source map constructing during parsing.
func (p *Parser) SourceMap() *source.Map[SExp] {
	return p.srcmap
}

// Parse the next S-Expression, or produce an error.  This returns nil when the
// end of the input is reached.
func (p *Parser) Parse() (SExp, *source.SyntaxError) {
	var term SExp
	// Skip over any whitespace.  This is import to get the correct starting
	// point for this term.
	p.SkipWhiteSpace()
	// Record start of this term
	start := p.index
	//
	if p.index == len(p.text) {
		return nil, nil
	}
	//
	switch p.text[p.index] {
	case ')':
		return nil, p.error("unexpected end-of-list")
	case ']':
		return nil, p.error("unexpected end-of-array")
	case '(':
		p.index++
		//
		elements, err := p.parseSequence(')')
		if err != nil {
			return nil, err
		}
		//
		term = &List{elements}
	case '[':
		p.index++
		//
		elements, err := p.parseSequence(']')
		if err != nil {
			return nil, err
		}
		//
		term = &Array{elements}
	case '"':
		value, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		//
		term = &Symbol{value}
	default:
		term = &Symbol{p.parseSymbol()}
	}
	// Register item in source map
	p.srcmap.Put(term, source.NewSpan(start, p.index))
	// Done
	return term, nil
}

// SkipWhiteSpace skips over any whitespace, including comments.
func (p *Parser) SkipWhiteSpace() {
	for p.index < len(p.text) && (unicode.IsSpace(p.text[p.index]) || p.text[p.index] == ';') {
		if p.text[p.index] == ';' {
			// Skip comment
			for p.index < len(p.text) && p.text[p.index] != '\n' {
				p.index++
			}
		} else {
			p.index++
		}
	}
}

func (p *Parser) parseSymbol() string {
	start := p.index
	//
	for p.index < len(p.text) && !isNotSymbolLetter(p.text[p.index]) {
		p.index++
	}
	//
	return string(p.text[start:p.index])
}

func (p *Parser) parseQuoted() (string, *source.SyntaxError) {
	// Skip opening quote
	start := p.index + 1
	//
	for i := start; i < len(p.text); i++ {
		if p.text[i] == '"' {
			p.index = i + 1
			return string(p.text[start:i]), nil
		} else if p.text[i] == '\n' {
			break
		}
	}
	//
	return "", p.error("unterminated string")
}

func (p *Parser) parseSequence(terminator rune) ([]SExp, *source.SyntaxError) {
	var elements []SExp
	//
	for {
		p.SkipWhiteSpace()
		//
		if p.index == len(p.text) {
			return nil, p.error("unexpected end-of-file")
		} else if p.text[p.index] == terminator {
			// Consume terminator
			p.index++
			return elements, nil
		}
		// Parse next element
		element, err := p.Parse()
		if err != nil {
			return nil, err
		}
		//
		elements = append(elements, element)
	}
}

// Construct a parser error at the current position in the input stream.
func (p *Parser) error(msg string) *source.SyntaxError {
	end := min(p.index+1, len(p.text))
	return p.srcfile.SyntaxError(source.NewSpan(min(p.index, end), end), msg)
}
