// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package errors defines the compile errors reported by the lexer and the
// parser.  Compilation stops at the first error, so an error is a single
// value rather than a list.
package errors

import (
	"fmt"
	"strings"

	"github.com/c0lang/c0c/internal/compiler/position"
	"github.com/pkg/errors"
)

// Family separates errors found while scanning characters from errors found
// while parsing and analysing tokens.
type Family int

const (
	Lexical Family = iota
	Semantic
)

func (f Family) String() string {
	switch f {
	case Lexical:
		return "lexical"
	case Semantic:
		return "semantic"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// Code identifies the kind of a compile error.
type Code int

// Lexical error codes.
const (
	InvalidInput       Code = iota // Unrecognised character.
	InvalidNumber                  // Malformed numeric literal.
	IntegerOverflow                // Integer literal does not fit in 64 bits.
	InvalidChar                    // Malformed character literal.
	InvalidEscape                  // Unknown escape sequence.
	InvalidString                  // Illegal raw character inside a string literal.
	UnterminatedString             // String literal runs into the end of input.

	firstSemantic
)

// Semantic and syntactic error codes.
const (
	ExpectedToken        = firstSemantic + iota // Grammar mismatch.
	DuplicateDeclaration                        // Name already declared in the same table.
	NotDeclared                                 // Name resolves nowhere.
	TypeMismatch                                // Operand, initializer, argument or return type disagrees.
	AssignToConstant                            // Assignment target is a const.
	NotInitialized                              // Local read before any assignment.
	ConstantNeedValue                           // const declared without an initializer.
	InvalidReturn                               // return value presence disagrees with the function type.
	MissingReturn                               // Non-void function body can fall off its end.
	BreakOutsideLoop                            // break with no enclosing while.
	ContinueOutsideLoop                         // continue with no enclosing while.
	ArgumentCount                               // Call argument count differs from the callee's parameters.
	InvalidCast                                 // as-cast between unsupported types.
	NotAVariable                                // Name resolves to something that cannot be loaded or stored.
)

var codeNames = map[Code]string{
	InvalidInput:         "invalid input",
	InvalidNumber:        "invalid number",
	IntegerOverflow:      "integer overflow",
	InvalidChar:          "invalid char literal",
	InvalidEscape:        "invalid escape sequence",
	InvalidString:        "invalid string literal",
	UnterminatedString:   "unterminated string literal",
	ExpectedToken:        "unexpected token",
	DuplicateDeclaration: "duplicate declaration",
	NotDeclared:          "not declared",
	TypeMismatch:         "type mismatch",
	AssignToConstant:     "assignment to constant",
	NotInitialized:       "not initialized",
	ConstantNeedValue:    "constant needs a value",
	InvalidReturn:        "invalid return",
	MissingReturn:        "missing return",
	BreakOutsideLoop:     "break outside loop",
	ContinueOutsideLoop:  "continue outside loop",
	ArgumentCount:        "wrong argument count",
	InvalidCast:          "invalid cast",
	NotAVariable:         "not a variable",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Family returns the error family the code belongs to.
func (c Code) Family() Family {
	if c < firstSemantic {
		return Lexical
	}
	return Semantic
}

// Error is a compile error at a source position.
type Error struct {
	Code Code
	Pos  position.Position
	Msg  string
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Code.String() + ": " + e.Msg
}

// Family returns the error family of e.
func (e *Error) Family() Family {
	return e.Code.Family()
}

// New returns an Error with code at pos.
func New(code Code, pos position.Position, format string, args ...interface{}) *Error {
	return &Error{Code: code, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Expected returns the grammar mismatch error naming the acceptable token
// kinds and the token actually found.
func Expected(pos position.Position, want []string, found string) *Error {
	return New(ExpectedToken, pos, "expected %s, found %s", strings.Join(want, " or "), found)
}

// CodeOf returns the compile error code carried by err, and whether err is a
// compile error at all.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
