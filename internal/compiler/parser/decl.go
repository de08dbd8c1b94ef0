// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"math"

	"github.com/c0lang/c0c/internal/code"
	cerrors "github.com/c0lang/c0c/internal/compiler/errors"
	"github.com/c0lang/c0c/internal/compiler/symbol"
)

// declaration parses a variable or constant declaration into the innermost
// table of ctx.  The entry becomes visible only after its initializer.
//
//	declaration := ('let' | 'const') IDENT ':' type ('=' expression)? ';'
func (p *Parser) declaration(ctx *fnCtx) error {
	kind := symbol.LetSymbol
	if p.accept(CONST) {
		kind = symbol.ConstSymbol
	} else if _, err := p.expect(LET); err != nil {
		return err
	}
	name, err := p.expect(IDENT)
	if err != nil {
		return err
	}
	if _, err = p.expect(COLON); err != nil {
		return err
	}
	typ, err := p.typeName()
	if err != nil {
		return err
	}
	pos := name.Pos
	e := symbol.NewVariable(name.Text(), kind, typ, &pos)
	tab := ctx.table()
	if tab.Has(e.Name) {
		return semanticf(cerrors.DuplicateDeclaration, pos, "%q is already declared", e.Name)
	}
	tab.Reserve(e)

	if p.check(ASSIGN) {
		p.next()
		addr := code.Loca
		if ctx.top() {
			addr = code.Globa
		}
		ctx.emit(addr, int64(e.Slot))
		start := ctx.prog.Len()
		initPos := p.peek().Pos
		v, err := p.expression(ctx)
		if err != nil {
			return err
		}
		if v.typ != typ || v.pred {
			return semanticf(cerrors.TypeMismatch, initPos, "cannot initialize %s %q with a value of type %s", typ, e.Name, v.typ)
		}
		if ctx.top() {
			foldLiteral(e, ctx.prog, start)
		}
		ctx.emit(code.Store64, 0)
		e.Initialized = true
	} else if kind == symbol.ConstSymbol {
		return semanticf(cerrors.ConstantNeedValue, pos, "constant %q must be initialized", e.Name)
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return err
	}
	return tab.Insert(e)
}

// foldLiteral records the value of a global whose initializer, emitted from
// start, is a single literal push, optionally negated.
func foldLiteral(e *symbol.Entry, prog *code.Program, start int) {
	emitted := prog.Instrs()[start:]
	if len(emitted) == 0 || emitted[0].Opcode != code.Push {
		return
	}
	v := emitted[0].Operand
	switch {
	case len(emitted) == 1:
	case len(emitted) == 2 && emitted[1].Opcode == code.Negi:
		v = -v
	case len(emitted) == 2 && emitted[1].Opcode == code.Negf:
		v = int64(math.Float64bits(-math.Float64frombits(uint64(v))))
	default:
		return
	}
	e.Value = v
}

// function parses a function declaration and its body.
//
//	function := 'fn' IDENT '(' params? ')' '->' ('int' | 'double' | 'void') block
func (p *Parser) function() error {
	if _, err := p.expect(FN); err != nil {
		return err
	}
	name, err := p.expect(IDENT)
	if err != nil {
		return err
	}
	pos := name.Pos
	if symbol.Builtin(name.Text()) >= 0 || p.unit.Functions.Has(name.Text()) {
		return semanticf(cerrors.DuplicateDeclaration, pos, "function %q is already declared", name.Text())
	}
	fn := symbol.NewFunction(name.Text(), symbol.Void, &pos)

	if _, err := p.expect(L_PAREN); err != nil {
		return err
	}
	if !p.check(R_PAREN) {
		if err := p.params(fn); err != nil {
			return err
		}
	}
	if _, err := p.expect(R_PAREN); err != nil {
		return err
	}
	if _, err := p.expect(ARROW); err != nil {
		return err
	}
	switch {
	case p.accept(INT):
		fn.Type = symbol.Int
	case p.accept(DOUBLE):
		fn.Type = symbol.Double
	case p.accept(VOID):
		fn.Type = symbol.Void
	default:
		return p.unexpected(INT, DOUBLE, VOID)
	}
	if err := p.unit.Functions.Add(fn); err != nil {
		return err
	}
	if fn.Name == "main" {
		p.unit.Main = fn
		start := p.unit.Start.Code
		start.Emit(code.Stackalloc, int64(fn.ReturnSlots()))
		start.Emit(code.Call, int64(fn.Slot))
	}

	ctx := &fnCtx{
		fn:   fn,
		prog: fn.Code,
		scope: symbol.Scope{}.
			Push(p.unit.Globals, symbol.Global).
			Push(fn.Params, symbol.Param).
			Push(fn.Locals, symbol.Local),
	}
	res, err := p.block(ctx)
	if err != nil {
		return err
	}
	if fn.Type != symbol.Void && !res.terminates {
		return semanticf(cerrors.MissingReturn, pos, "function %q does not return a value on every path", fn.Name)
	}
	if last, ok := fn.Code.Last(); fn.Type == symbol.Void || !ok || last.Opcode != code.Ret {
		ctx.emit(code.Ret, 0)
	}
	return nil
}

// params parses the parameter list of fn.
//
//	params := param (',' param)*
//	param  := 'const'? IDENT ':' type
func (p *Parser) params(fn *symbol.Entry) error {
	for {
		kind := symbol.LetSymbol
		if p.accept(CONST) {
			kind = symbol.ConstSymbol
		}
		name, err := p.expect(IDENT)
		if err != nil {
			return err
		}
		if _, err := p.expect(COLON); err != nil {
			return err
		}
		typ, err := p.typeName()
		if err != nil {
			return err
		}
		pos := name.Pos
		e := symbol.NewVariable(name.Text(), kind, typ, &pos)
		e.Initialized = true
		if err := fn.AddParam(e); err != nil {
			return err
		}
		if !p.accept(COMMA) {
			return nil
		}
	}
}
