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
package ast

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/util/source"
	"github.com/consensys/go-lair/pkg/util/source/sexp"
)

// ReadString parses a program given as a string.  This is primarily useful for
// testing.
func ReadString(text string) ([]Func, []source.SyntaxError) {
	return Read(source.NewSourceFile("<string>", []byte(text)))
}

// Read parses the function definitions of a lair source file.  A lair file
// holds a sequence of definitions of the following form:
//
// (defun name [x y] 1 :invertible
//
//	(let z (add x y))
//	(return z))
//
// Where the output size follows the inputs, and the invertible flag is
// optional.  The final statement of every block must be a control (return, if
// or match).
func Read(file *source.File) ([]Func, []source.SyntaxError) {
	terms, srcmap, err := sexp.ParseAll(file)
	//
	if err != nil {
		return nil, []source.SyntaxError{*err}
	}
	//
	reader := reader{srcmap: srcmap}
	funcs := make([]Func, 0, len(terms))
	//
	for _, term := range terms {
		if fn, ok := reader.readFunc(term); ok {
			funcs = append(funcs, fn)
		}
	}
	//
	return funcs, reader.errors
}

type reader struct {
	srcmap *source.Map[sexp.SExp]
	errors []source.SyntaxError
}

func (p *reader) error(node sexp.SExp, format string, args ...any) {
	err := p.srcmap.SyntaxError(node, fmt.Sprintf(format, args...))
	p.errors = append(p.errors, *err)
}

func (p *reader) readFunc(term sexp.SExp) (Func, bool) {
	var (
		fn   Func
		list = term.AsList()
		ok   bool
	)
	//
	if list == nil || !list.MatchSymbols(5, "defun") {
		p.error(term, "expected (defun name [inputs] size body)")
		return fn, false
	}
	//
	if fn.Name, ok = p.readName(list.Get(1)); !ok {
		return fn, false
	} else if fn.Inputs, ok = p.readNames(list.Get(2), true); !ok {
		return fn, false
	} else if fn.OutputSize, ok = p.readSize(list.Get(3)); !ok {
		return fn, false
	}
	//
	body := list.Elements[4:]
	//
	if s := body[0].AsSymbol(); s != nil && s.Value == ":invertible" {
		fn.Invertible = true
		body = body[1:]
	}
	//
	fn.Body, ok = p.readBlock(term, body)
	//
	return fn, ok
}

func (p *reader) readBlock(parent sexp.SExp, stmts []sexp.SExp) (Block, bool) {
	var (
		block Block
		ok    = true
	)
	//
	if len(stmts) == 0 {
		p.error(parent, "empty block")
		return block, false
	}
	//
	for _, stmt := range stmts[:len(stmts)-1] {
		if op, opOk := p.readOp(stmt); opOk {
			block.Ops = append(block.Ops, op)
		} else {
			ok = false
		}
	}
	//
	ctrl, ctrlOk := p.readCtrl(stmts[len(stmts)-1])
	block.Ctrl = ctrl
	//
	return block, ok && ctrlOk
}

func (p *reader) readOp(term sexp.SExp) (Op, bool) {
	list := term.AsList()
	//
	if list == nil {
		p.error(term, "expected statement")
		return nil, false
	}
	//
	switch list.Head() {
	case "let":
		return p.readLet(list)
	case "assert-eq", "assert-ne":
		if list.Len() != 3 {
			p.error(term, "expected (%s [names] [names])", list.Head())
			return nil, false
		}
		//
		left, lok := p.readNames(list.Get(1), true)
		right, rok := p.readNames(list.Get(2), true)
		//
		return &Assert{list.Head() == "assert-eq", left, right}, lok && rok
	case "debug":
		if list.Len() != 2 || list.Get(1).AsSymbol() == nil {
			p.error(term, "expected (debug message)")
			return nil, false
		}
		//
		return &Debug{list.Get(1).AsSymbol().Value}, true
	case "return", "if", "match":
		p.error(term, "control must terminate block")
		return nil, false
	}
	//
	p.error(term, "unknown statement")
	//
	return nil, false
}

func (p *reader) readLet(list *sexp.List) (Op, bool) {
	if list.Len() != 3 {
		p.error(list, "expected (let names expression)")
		return nil, false
	}
	//
	targets, ok := p.readNames(list.Get(1), true)
	if !ok {
		return nil, false
	}
	// Literals
	if sym := list.Get(2).AsSymbol(); sym != nil {
		val, vok := p.readLiteral(sym)
		//
		if !vok {
			return nil, false
		}
		//
		return p.single(list, targets, func(t string) Op { return &Const{t, val} })
	}
	// Expressions
	expr := list.Get(2).AsList()
	if expr == nil || expr.Head() == "" {
		p.error(list.Get(2), "expected expression")
		return nil, false
	}
	//
	args := expr.Elements[1:]
	//
	switch expr.Head() {
	case "add", "sub", "mul", "div":
		operands, ok := p.readArgs(expr, args, 2)
		if !ok {
			return nil, false
		}
		//
		kind := map[string]BinaryKind{"add": ADD, "sub": SUB, "mul": MUL, "div": DIV}[expr.Head()]
		//
		return p.single(list, targets, func(t string) Op { return &Binary{kind, t, operands[0], operands[1]} })
	case "inv", "not":
		operands, ok := p.readArgs(expr, args, 1)
		if !ok {
			return nil, false
		}
		//
		kind := map[string]UnaryKind{"inv": INV, "not": NOT}[expr.Head()]
		//
		return p.single(list, targets, func(t string) Op { return &Unary{kind, t, operands[0]} })
	case "store":
		operands, ok := p.readArgs(expr, args, -1)
		if !ok {
			return nil, false
		}
		//
		return p.single(list, targets, func(t string) Op { return &Store{t, operands} })
	case "call", "preimg":
		if len(args) == 0 {
			p.error(expr, "missing function name")
			return nil, false
		}
		//
		name, nok := p.readName(args[0])
		operands, aok := p.readArgs(expr, args[1:], -1)
		//
		if expr.Head() == "call" {
			return &Call{targets, name, operands}, nok && aok
		}
		//
		return &PreImg{targets, name, operands}, nok && aok
	case "load":
		if len(args) != 2 {
			p.error(expr, "expected (load arity pointer)")
			return nil, false
		}
		//
		arity, aok := p.readSize(args[0])
		ptr, pok := p.readName(args[1])
		//
		return &Load{targets, arity, ptr}, aok && pok
	case "hash":
		operands, ok := p.readArgs(expr, args, -1)
		//
		return &Hash{targets, operands}, ok
	}
	//
	p.error(expr, "unknown operation")
	//
	return nil, false
}

// Construct an operation which binds exactly one name.
func (p *reader) single(list *sexp.List, targets []string, op func(string) Op) (Op, bool) {
	if len(targets) != 1 {
		p.error(list.Get(1), "expected exactly one name")
		return nil, false
	}
	//
	return op(targets[0]), true
}

func (p *reader) readCtrl(term sexp.SExp) (Ctrl, bool) {
	list := term.AsList()
	//
	if list == nil {
		p.error(term, "expected control")
		return nil, false
	}
	//
	switch list.Head() {
	case "return":
		vars, ok := p.readArgs(list, list.Elements[1:], -1)
		return &Return{vars}, ok
	case "if":
		return p.readIf(list)
	case "match":
		return p.readMatch(list)
	}
	//
	p.error(term, "block must terminate with control")
	//
	return nil, false
}

func (p *reader) readIf(list *sexp.List) (Ctrl, bool) {
	var ctrl If
	//
	if list.Len() != 4 {
		p.error(list, "expected (if cond (then ...) (else ...))")
		return nil, false
	}
	//
	conds, ok := p.readNames(list.Get(1), false)
	if !ok {
		return nil, false
	}
	//
	ctrl.Conds, ctrl.Many = conds, list.Get(1).AsArray() != nil
	//
	tBlock, tok := p.readBranch(list.Get(2), "then")
	fBlock, fok := p.readBranch(list.Get(3), "else")
	ctrl.True, ctrl.False = tBlock, fBlock
	//
	return &ctrl, tok && fok
}

func (p *reader) readMatch(list *sexp.List) (Ctrl, bool) {
	var (
		ctrl Match
		ok   bool
	)
	//
	if list.Len() < 3 {
		p.error(list, "expected (match var (case ...) ...)")
		return nil, false
	} else if ctrl.Vars, ok = p.readNames(list.Get(1), false); !ok {
		return nil, false
	}
	//
	ctrl.Many = list.Get(1).AsArray() != nil
	//
	for i, c := range list.Elements[2:] {
		arm := c.AsList()
		//
		if arm != nil && arm.Head() == "default" && i == list.Len()-3 {
			block, bok := p.readBranch(c, "default")
			ctrl.Default = &block
			ok = ok && bok
		} else if arm != nil && arm.MatchSymbols(3, "case") {
			values, vok := p.readLiterals(arm.Get(1))
			block, bok := p.readBlock(arm, arm.Elements[2:])
			ctrl.Cases = append(ctrl.Cases, Case{values, block})
			ok = ok && vok && bok
		} else {
			p.error(c, "expected (case value ...) or final (default ...)")
			ok = false
		}
	}
	//
	return &ctrl, ok
}

func (p *reader) readBranch(term sexp.SExp, keyword string) (Block, bool) {
	list := term.AsList()
	//
	if list == nil || list.Head() != keyword {
		p.error(term, "expected (%s ...)", keyword)
		return Block{}, false
	}
	//
	return p.readBlock(term, list.Elements[1:])
}

// Read either a single name, or an array of names.  Arrays are permitted to
// be empty only when requested.
func (p *reader) readNames(term sexp.SExp, allowEmpty bool) ([]string, bool) {
	if sym := term.AsSymbol(); sym != nil {
		name, ok := p.readName(term)
		return []string{name}, ok
	}
	//
	array := term.AsArray()
	if array == nil {
		p.error(term, "expected name or [names]")
		return nil, false
	} else if array.Len() == 0 && !allowEmpty {
		p.error(term, "expected at least one name")
		return nil, false
	}
	//
	return p.readArgs(term, array.Elements, -1)
}

// Read a list of names, checking there are exactly n of them (unless n is
// negative).
func (p *reader) readArgs(parent sexp.SExp, terms []sexp.SExp, n int) ([]string, bool) {
	var (
		names = make([]string, len(terms))
		ok    = true
	)
	//
	if n >= 0 && len(terms) != n {
		p.error(parent, "expected %d operands, found %d", n, len(terms))
		return nil, false
	}
	//
	for i, t := range terms {
		var iok bool
		//
		names[i], iok = p.readName(t)
		ok = ok && iok
	}
	//
	return names, ok
}

func (p *reader) readName(term sexp.SExp) (string, bool) {
	sym := term.AsSymbol()
	//
	if sym == nil || sym.Value == "" || !isNameStart(rune(sym.Value[0])) {
		p.error(term, "expected name")
		return "", false
	}
	//
	return sym.Value, true
}

func (p *reader) readSize(term sexp.SExp) (uint, bool) {
	if sym := term.AsSymbol(); sym != nil {
		if n, err := strconv.ParseUint(sym.Value, 10, 32); err == nil {
			return uint(n), true
		}
	}
	//
	p.error(term, "expected size")
	//
	return 0, false
}

func (p *reader) readLiterals(term sexp.SExp) (field.Tuple, bool) {
	var elements []sexp.SExp
	//
	if array := term.AsArray(); array != nil {
		elements = array.Elements
	} else {
		elements = []sexp.SExp{term}
	}
	//
	values := make(field.Tuple, len(elements))
	ok := true
	//
	for i, e := range elements {
		var iok bool
		//
		values[i], iok = p.readLiteral(e)
		ok = ok && iok
	}
	//
	return values, ok
}

func (p *reader) readLiteral(term sexp.SExp) (field.Element, bool) {
	if sym := term.AsSymbol(); sym != nil {
		if strings.HasPrefix(sym.Value, "-") {
			if n, err := strconv.ParseInt(sym.Value, 0, 64); err == nil {
				return field.Int64(n), true
			}
		} else if n, err := strconv.ParseUint(sym.Value, 0, 64); err == nil {
			return field.Uint64(n), true
		}
	}
	//
	p.error(term, "expected field element")
	//
	return field.Zero(), false
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}
