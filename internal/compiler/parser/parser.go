// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"fmt"
	"io"

	"github.com/c0lang/c0c/internal/code"
	cerrors "github.com/c0lang/c0c/internal/compiler/errors"
	"github.com/c0lang/c0c/internal/compiler/position"
	"github.com/c0lang/c0c/internal/compiler/symbol"
	"github.com/golang/glog"
)

// Parse analyses the program read from input, returning the completed symbol
// tables.  Parsing, name resolution, type checking and code emission all
// happen in this single pass, and the first error stops it.
func Parse(name string, input io.Reader) (*symbol.Unit, error) {
	p := NewParser(name, input)
	return p.Analyse()
}

// Parser is a one token lookahead recursive descent parser that emits
// bytecode as it recognises each construct.
type Parser struct {
	l      *Lexer
	tok    Token // lookahead
	peeked bool
	unit   *symbol.Unit
}

// NewParser creates a parser reading the program from input.
func NewParser(name string, input io.Reader) *Parser {
	return &Parser{
		l:    NewLexer(name, input),
		unit: symbol.NewUnit(),
	}
}

// loop describes the innermost enclosing while statement.
type loop struct {
	test int // index of the first instruction of the loop test
}

// fnCtx is the per-function analysis state threaded through every parse
// function: the function whose instruction list is being appended to, the
// tables visible from it, and the innermost loop, if any.
type fnCtx struct {
	fn    *symbol.Entry
	prog  *code.Program
	scope symbol.Scope
	loop  *loop
}

// top reports whether c is the program level rather than a function body.
func (c *fnCtx) top() bool {
	_, loc := c.scope.Innermost()
	return loc == symbol.Global
}

// table returns the table declarations in c are added to.
func (c *fnCtx) table() *symbol.Table {
	t, _ := c.scope.Innermost()
	return t
}

// emit appends an instruction to the current function.
func (c *fnCtx) emit(op code.Opcode, operand int64) int {
	i := c.prog.Emit(op, operand)
	glog.V(2).Infof("emitting %s at %d", code.Instr{Opcode: op, Operand: operand}, i)
	return i
}

// result is what a statement or block tells its enclosing construct.
type result struct {
	breaks     []int // indices of break branches awaiting the loop exit
	terminates bool  // every path through the construct returns
}

func (r *result) merge(o result) {
	r.breaks = append(r.breaks, o.breaks...)
	r.terminates = r.terminates || o.terminates
}

// Analyse parses the whole program.
//
//	program := declaration* function* EOF
func (p *Parser) Analyse() (*symbol.Unit, error) {
	ctx := &fnCtx{
		fn:    p.unit.Start,
		prog:  p.unit.Start.Code,
		scope: symbol.Scope{}.Push(p.unit.Globals, symbol.Global),
	}
	for p.check(LET) || p.check(CONST) {
		if err := p.declaration(ctx); err != nil {
			return nil, err
		}
	}
	for p.check(FN) {
		if err := p.function(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(EOF); err != nil {
		return nil, err
	}
	glog.Infof("analysed %d globals and %d functions", p.unit.Globals.Count(), p.unit.Functions.Count())
	return p.unit, nil
}

// peek returns the lookahead token without consuming it.
func (p *Parser) peek() Token {
	if !p.peeked {
		p.tok = p.l.NextToken()
		p.peeked = true
	}
	return p.tok
}

// next consumes and returns the lookahead token.  Callers must have checked
// its kind; an INVALID token is never consumed.
func (p *Parser) next() Token {
	tok := p.peek()
	p.peeked = false
	return tok
}

// check reports whether the lookahead token is of kind k.
func (p *Parser) check(k Kind) bool {
	return p.peek().Kind == k
}

// accept consumes the lookahead token if it is of kind k.
func (p *Parser) accept(k Kind) bool {
	if p.check(k) {
		p.next()
		return true
	}
	return false
}

// expect consumes a token of kind k or fails.
func (p *Parser) expect(k Kind) (Token, error) {
	if p.check(k) {
		return p.next(), nil
	}
	return Token{}, p.unexpected(k)
}

// unexpected returns the error for a lookahead token that matches none of
// want.  A token the lexer could not scan reports the lexical error instead.
func (p *Parser) unexpected(want ...Kind) error {
	tok := p.peek()
	if tok.Kind == INVALID {
		if err, ok := tok.Value.(*cerrors.Error); ok {
			return err
		}
	}
	names := make([]string, 0, len(want))
	for _, k := range want {
		names = append(names, k.String())
	}
	return cerrors.Expected(tok.Pos, names, describe(tok))
}

func describe(tok Token) string {
	if tok.Kind == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q", tok.Kind, tok.Spelling)
}

func semanticf(c cerrors.Code, pos position.Position, format string, args ...interface{}) error {
	return cerrors.New(c, pos, format, args...)
}

// typeName parses a variable type.
func (p *Parser) typeName() (symbol.Type, error) {
	switch {
	case p.accept(INT):
		return symbol.Int, nil
	case p.accept(DOUBLE):
		return symbol.Double, nil
	}
	return symbol.Void, p.unexpected(INT, DOUBLE)
}
