// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"github.com/c0lang/c0c/internal/code"
	cerrors "github.com/c0lang/c0c/internal/compiler/errors"
	"github.com/c0lang/c0c/internal/compiler/position"
	"github.com/c0lang/c0c/internal/compiler/symbol"
)

// value is the static description of an analysed expression.
type value struct {
	typ symbol.Type
	// pred is set for comparisons, whose truth is held in control flow: the
	// instruction following the comparison is skipped when it holds.
	pred bool
}

// relops maps each comparison operator to the instructions that follow the
// compare.  Each ends in a branch over the next instruction.
var relops = map[Kind][]code.Instr{
	LT:  {{Opcode: code.Setlt}, {Opcode: code.Brtrue, Operand: 1}},
	LE:  {{Opcode: code.Setgt}, {Opcode: code.Brfalse, Operand: 1}},
	GE:  {{Opcode: code.Setlt}, {Opcode: code.Brfalse, Operand: 1}},
	GT:  {{Opcode: code.Setgt}, {Opcode: code.Brtrue, Operand: 1}},
	NEQ: {{Opcode: code.Brtrue, Operand: 1}},
	EQ:  {{Opcode: code.Brfalse, Operand: 1}},
}

// arith selects the int or double instruction for each arithmetic operator.
var arith = map[Kind][2]code.Opcode{
	PLUS:  {code.Addi, code.Addf},
	MINUS: {code.Subi, code.Subf},
	MUL:   {code.Muli, code.Mulf},
	DIV:   {code.Divi, code.Divf},
}

func arithOp(k Kind, t symbol.Type) code.Opcode {
	if t == symbol.Double {
		return arith[k][1]
	}
	return arith[k][0]
}

// relational parses an optional single comparison.  Comparisons do not
// chain.
//
//	relational := expression (relop expression)?
func (p *Parser) relational(ctx *fnCtx) (value, error) {
	pos := p.peek().Pos
	l, err := p.expression(ctx)
	if err != nil {
		return l, err
	}
	tail, ok := relops[p.peek().Kind]
	if !ok {
		return l, nil
	}
	op := p.next()
	r, err := p.expression(ctx)
	if err != nil {
		return r, err
	}
	if l.pred || r.pred || !l.typ.IsNumeric() || l.typ != r.typ {
		return value{}, semanticf(cerrors.TypeMismatch, pos, "cannot compare %s %s %s", l.typ, op.Spelling, r.typ)
	}
	if l.typ == symbol.Double {
		ctx.emit(code.Cmpf, 0)
	} else {
		ctx.emit(code.Cmpi, 0)
	}
	for _, i := range tail {
		ctx.emit(i.Opcode, i.Operand)
	}
	return value{typ: symbol.Void, pred: true}, nil
}

// expression parses a left associative sum.
//
//	expression := term (('+' | '-') term)*
func (p *Parser) expression(ctx *fnCtx) (value, error) {
	pos := p.peek().Pos
	l, err := p.term(ctx)
	if err != nil {
		return l, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		op := p.next()
		r, err := p.term(ctx)
		if err != nil {
			return r, err
		}
		if err := checkArith(pos, op, l, r); err != nil {
			return value{}, err
		}
		ctx.emit(arithOp(op.Kind, l.typ), 0)
	}
	return l, nil
}

// term parses a left associative product.
//
//	term := factor (('*' | '/') factor)*
func (p *Parser) term(ctx *fnCtx) (value, error) {
	pos := p.peek().Pos
	l, err := p.factor(ctx)
	if err != nil {
		return l, err
	}
	for p.check(MUL) || p.check(DIV) {
		op := p.next()
		r, err := p.factor(ctx)
		if err != nil {
			return r, err
		}
		if err := checkArith(pos, op, l, r); err != nil {
			return value{}, err
		}
		ctx.emit(arithOp(op.Kind, l.typ), 0)
	}
	return l, nil
}

func checkArith(pos position.Position, op Token, l, r value) error {
	if l.pred || r.pred || !l.typ.IsNumeric() || l.typ != r.typ {
		return semanticf(cerrors.TypeMismatch, pos, "invalid operation %s %s %s", l.typ, op.Spelling, r.typ)
	}
	return nil
}

// factor parses prefix signs, a primary and trailing casts.  The signs
// apply to the cast result.
//
//	factor := ('+' | '-')* primary ('as' ('int' | 'double'))*
func (p *Parser) factor(ctx *fnCtx) (value, error) {
	pos := p.peek().Pos
	negate := 0
	for p.check(PLUS) || p.check(MINUS) {
		if p.next().Kind == MINUS {
			negate++
		}
	}
	v, err := p.primary(ctx)
	if err != nil {
		return v, err
	}
	for p.check(AS) {
		as := p.next()
		to, err := p.typeName()
		if err != nil {
			return v, err
		}
		if v.pred || !v.typ.IsNumeric() {
			return v, semanticf(cerrors.InvalidCast, as.Pos, "cannot cast %s to %s", v.typ, to)
		}
		switch {
		case v.typ == symbol.Int && to == symbol.Double:
			ctx.emit(code.Itof, 0)
		case v.typ == symbol.Double && to == symbol.Int:
			ctx.emit(code.Ftoi, 0)
		}
		v.typ = to
	}
	if negate > 0 && (v.pred || !v.typ.IsNumeric()) {
		return v, semanticf(cerrors.TypeMismatch, pos, "cannot negate %s", v.typ)
	}
	for i := 0; i < negate; i++ {
		if v.typ == symbol.Double {
			ctx.emit(code.Negf, 0)
		} else {
			ctx.emit(code.Negi, 0)
		}
	}
	return v, nil
}

// primary := IDENT | IDENT '(' args? ')' | literal | '(' relational ')'
func (p *Parser) primary(ctx *fnCtx) (value, error) {
	switch p.peek().Kind {
	case IDENT:
		name := p.next()
		if p.check(L_PAREN) {
			return p.call(ctx, name)
		}
		return p.load(ctx, name)
	case UINT_LITERAL, CHAR_LITERAL:
		ctx.emit(code.Push, p.next().Int())
		return value{typ: symbol.Int}, nil
	case DOUBLE_LITERAL:
		bits, _ := p.next().Value.(uint64)
		ctx.emit(code.Push, int64(bits))
		return value{typ: symbol.Double}, nil
	case STRING_LITERAL:
		e := symbol.NewString("", p.next().Text())
		if err := p.unit.Globals.Add(e); err != nil {
			return value{}, err
		}
		ctx.emit(code.Push, int64(e.Slot))
		return value{typ: symbol.String}, nil
	case L_PAREN:
		p.next()
		v, err := p.relational(ctx)
		if err != nil {
			return v, err
		}
		_, err = p.expect(R_PAREN)
		return v, err
	}
	return value{}, p.unexpected(IDENT, UINT_LITERAL, DOUBLE_LITERAL, CHAR_LITERAL, STRING_LITERAL, L_PAREN)
}

// resolve looks a variable up local, then parameter, then global.
func (p *Parser) resolve(ctx *fnCtx, name Token) (*symbol.Entry, symbol.Location, error) {
	e, loc, ok := ctx.scope.Resolve(name.Text())
	if !ok {
		return nil, 0, semanticf(cerrors.NotDeclared, name.Pos, "%q is not declared", name.Text())
	}
	if !e.Type.IsNumeric() {
		return nil, 0, semanticf(cerrors.NotAVariable, name.Pos, "%q is not a variable", name.Text())
	}
	return e, loc, nil
}

// address emits the instruction pushing the address of e.
func (c *fnCtx) address(e *symbol.Entry, loc symbol.Location) {
	switch loc {
	case symbol.Global:
		c.emit(code.Globa, int64(e.Slot))
	case symbol.Param:
		c.emit(code.Arga, int64(c.fn.ArgSlot(e.Slot)))
	case symbol.Local:
		c.emit(code.Loca, int64(e.Slot))
	}
}

// load emits a variable read.
func (p *Parser) load(ctx *fnCtx, name Token) (value, error) {
	e, loc, err := p.resolve(ctx, name)
	if err != nil {
		return value{}, err
	}
	if loc == symbol.Local && !e.Initialized {
		return value{}, semanticf(cerrors.NotInitialized, name.Pos, "%q is used before it is assigned", e.Name)
	}
	ctx.address(e, loc)
	ctx.emit(code.Load64, 0)
	return value{typ: e.Type}, nil
}

// call emits a call to a built-in or a user function.  Return slots are
// reserved before the arguments are pushed.
//
//	args := expression (',' expression)*
func (p *Parser) call(ctx *fnCtx, name Token) (value, error) {
	if i := symbol.Builtin(name.Text()); i >= 0 {
		b := symbol.Builtins[i]
		g := p.unit.Globals.Lookup(b.Name)
		var params []symbol.Type
		if b.Param != symbol.Void {
			params = []symbol.Type{b.Param}
		}
		ret := 0
		if b.Return != symbol.Void {
			ret = 1
		}
		ctx.emit(code.Stackalloc, int64(ret))
		if err := p.args(ctx, name, params); err != nil {
			return value{}, err
		}
		ctx.emit(code.Callname, int64(g.Slot))
		return value{typ: b.Return}, nil
	}

	f := p.unit.Functions.Lookup(name.Text())
	if f == nil {
		return value{}, semanticf(cerrors.NotDeclared, name.Pos, "function %q is not declared", name.Text())
	}
	var params []symbol.Type
	if f.Params != nil {
		for _, e := range f.Params.Entries() {
			params = append(params, e.Type)
		}
	}
	// The return slot sits below the arguments, so the callee stores its
	// result through arga 0 and reads parameters from arga ReturnSlots.
	ctx.emit(code.Stackalloc, int64(f.ReturnSlots()))
	if err := p.args(ctx, name, params); err != nil {
		return value{}, err
	}
	ctx.emit(code.Call, int64(f.Slot))
	return value{typ: f.Type}, nil
}

// args parses a parenthesised argument list whose types must match params
// exactly.
func (p *Parser) args(ctx *fnCtx, name Token, params []symbol.Type) error {
	if _, err := p.expect(L_PAREN); err != nil {
		return err
	}
	n := 0
	for !p.check(R_PAREN) {
		if n > 0 {
			if _, err := p.expect(COMMA); err != nil {
				return err
			}
		}
		pos := p.peek().Pos
		if n >= len(params) {
			return semanticf(cerrors.ArgumentCount, pos, "too many arguments to %q, want %d", name.Text(), len(params))
		}
		v, err := p.expression(ctx)
		if err != nil {
			return err
		}
		if v.pred || v.typ != params[n] {
			return semanticf(cerrors.TypeMismatch, pos, "argument %d to %q has type %s, want %s", n+1, name.Text(), v.typ, params[n])
		}
		n++
	}
	if n != len(params) {
		return semanticf(cerrors.ArgumentCount, p.peek().Pos, "not enough arguments to %q, want %d", name.Text(), len(params))
	}
	p.next()
	return nil
}
