// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"github.com/c0lang/c0c/internal/code"
	cerrors "github.com/c0lang/c0c/internal/compiler/errors"
	"github.com/c0lang/c0c/internal/compiler/symbol"
)

// block parses a brace delimited statement list.
//
//	block := '{' statement* '}'
func (p *Parser) block(ctx *fnCtx) (result, error) {
	var res result
	if _, err := p.expect(L_BRACE); err != nil {
		return res, err
	}
	for !p.check(R_BRACE) {
		r, err := p.statement(ctx)
		if err != nil {
			return res, err
		}
		res.merge(r)
	}
	p.next()
	return res, nil
}

// statement := if | while | return | break | continue | ';' | ident-statement | declaration
func (p *Parser) statement(ctx *fnCtx) (result, error) {
	switch p.peek().Kind {
	case IF:
		return p.ifStatement(ctx)
	case WHILE:
		return p.whileStatement(ctx)
	case RETURN:
		return p.returnStatement(ctx)
	case BREAK:
		return p.breakStatement(ctx)
	case CONTINUE:
		return result{}, p.continueStatement(ctx)
	case SEMICOLON:
		p.next()
		return result{}, nil
	case IDENT:
		return result{}, p.identStatement(ctx)
	case LET, CONST:
		return result{}, p.declaration(ctx)
	}
	return result{}, p.unexpected(IF, WHILE, RETURN, BREAK, CONTINUE, SEMICOLON, IDENT, LET, CONST, R_BRACE)
}

// ifStatement emits a placeholder branch over the true block, and when an
// else follows, a second one over the false block.
//
//	if := 'if' condition block ('else' (block | if))?
func (p *Parser) ifStatement(ctx *fnCtx) (result, error) {
	p.next()
	if err := p.condition(ctx); err != nil {
		return result{}, err
	}
	skip := ctx.emit(code.Br, 0)
	res, err := p.block(ctx)
	if err != nil {
		return res, err
	}
	if !p.accept(ELSE) {
		ctx.prog.PatchTo(skip, ctx.prog.Len())
		res.terminates = false
		return res, nil
	}

	over := ctx.emit(code.Br, 0)
	ctx.prog.PatchTo(skip, ctx.prog.Len())
	var alt result
	switch {
	case p.check(IF):
		alt, err = p.ifStatement(ctx)
	case p.check(L_BRACE):
		alt, err = p.block(ctx)
	default:
		err = p.unexpected(L_BRACE, IF)
	}
	if err != nil {
		return res, err
	}
	ctx.prog.PatchTo(over, ctx.prog.Len())
	return result{
		breaks:     append(res.breaks, alt.breaks...),
		terminates: res.terminates && alt.terminates,
	}, nil
}

// whileStatement lays a loop out as
//
//	    br test
//	test:
//	    <condition>
//	    br exit
//	    <body>
//	    br test
//	exit:
//
// Breaks in the body are patched to exit.
func (p *Parser) whileStatement(ctx *fnCtx) (result, error) {
	p.next()
	ctx.emit(code.Br, 0)
	test := ctx.prog.Len()
	if err := p.condition(ctx); err != nil {
		return result{}, err
	}
	exit := ctx.emit(code.Br, 0)

	body := *ctx
	body.loop = &loop{test: test}
	res, err := p.block(&body)
	if err != nil {
		return result{}, err
	}
	back := ctx.emit(code.Br, 0)
	ctx.prog.PatchTo(back, test)

	end := ctx.prog.Len()
	ctx.prog.PatchTo(exit, end)
	for _, b := range res.breaks {
		ctx.prog.PatchTo(b, end)
	}
	return result{}, nil
}

// condition parses the test of an if or while.  On return the next emitted
// instruction runs only when the test is false.
//
//	condition := expression (relop expression)?
func (p *Parser) condition(ctx *fnCtx) error {
	pos := p.peek().Pos
	v, err := p.relational(ctx)
	if err != nil {
		return err
	}
	if v.pred {
		return nil
	}
	if !v.typ.IsNumeric() {
		return semanticf(cerrors.TypeMismatch, pos, "condition has type %s", v.typ)
	}
	ctx.emit(code.Brtrue, 1)
	return nil
}

// returnStatement stores the value into argument slot 0 and returns.
//
//	return := 'return' expression? ';'
func (p *Parser) returnStatement(ctx *fnCtx) (result, error) {
	tok := p.next()
	if ctx.fn.Type == symbol.Void {
		if !p.check(SEMICOLON) {
			return result{}, semanticf(cerrors.InvalidReturn, tok.Pos, "function %q returns void", ctx.fn.Name)
		}
	} else {
		if p.check(SEMICOLON) {
			return result{}, semanticf(cerrors.InvalidReturn, tok.Pos, "function %q must return a %s", ctx.fn.Name, ctx.fn.Type)
		}
		ctx.emit(code.Arga, 0)
		pos := p.peek().Pos
		v, err := p.expression(ctx)
		if err != nil {
			return result{}, err
		}
		if v.typ != ctx.fn.Type || v.pred {
			return result{}, semanticf(cerrors.TypeMismatch, pos, "cannot return %s from function %q returning %s", v.typ, ctx.fn.Name, ctx.fn.Type)
		}
		ctx.emit(code.Store64, 0)
	}
	ctx.emit(code.Ret, 0)
	if _, err := p.expect(SEMICOLON); err != nil {
		return result{}, err
	}
	return result{terminates: true}, nil
}

//	break := 'break' ';'
func (p *Parser) breakStatement(ctx *fnCtx) (result, error) {
	tok := p.next()
	if _, err := p.expect(SEMICOLON); err != nil {
		return result{}, err
	}
	if ctx.loop == nil {
		return result{}, semanticf(cerrors.BreakOutsideLoop, tok.Pos, "break is not in a loop")
	}
	return result{breaks: []int{ctx.emit(code.Br, 0)}}, nil
}

//	continue := 'continue' ';'
func (p *Parser) continueStatement(ctx *fnCtx) error {
	tok := p.next()
	if _, err := p.expect(SEMICOLON); err != nil {
		return err
	}
	if ctx.loop == nil {
		return semanticf(cerrors.ContinueOutsideLoop, tok.Pos, "continue is not in a loop")
	}
	i := ctx.emit(code.Br, 0)
	ctx.prog.PatchTo(i, ctx.loop.test)
	return nil
}

// identStatement parses a call or an assignment.  A discarded call result is
// popped.
//
//	ident-statement := IDENT ( '(' args? ')' | '=' expression ) ';'
func (p *Parser) identStatement(ctx *fnCtx) error {
	name := p.next()
	switch {
	case p.check(L_PAREN):
		v, err := p.call(ctx, name)
		if err != nil {
			return err
		}
		if v.typ != symbol.Void {
			ctx.emit(code.Pop, 0)
		}
	case p.check(ASSIGN):
		if err := p.assignment(ctx, name); err != nil {
			return err
		}
	default:
		return p.unexpected(L_PAREN, ASSIGN)
	}
	_, err := p.expect(SEMICOLON)
	return err
}

func (p *Parser) assignment(ctx *fnCtx, name Token) error {
	e, loc, err := p.resolve(ctx, name)
	if err != nil {
		return err
	}
	if e.IsConstant() {
		return semanticf(cerrors.AssignToConstant, name.Pos, "cannot assign to constant %q", e.Name)
	}
	p.next()
	ctx.address(e, loc)
	pos := p.peek().Pos
	v, err := p.expression(ctx)
	if err != nil {
		return err
	}
	if v.typ != e.Type || v.pred {
		return semanticf(cerrors.TypeMismatch, pos, "cannot assign %s to %s %q", v.typ, e.Type, e.Name)
	}
	ctx.emit(code.Store64, 0)
	e.Initialized = true
	return nil
}
