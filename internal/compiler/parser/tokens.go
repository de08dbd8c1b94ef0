// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/c0lang/c0c/internal/compiler/position"
)

// Kind enumerates the types of lexical tokens in a program.
type Kind int

const (
	INVALID Kind = iota // A lexical error; the token Value carries the error.
	EOF

	// Keywords.
	FN
	LET
	CONST
	AS
	WHILE
	IF
	ELSE
	RETURN
	BREAK
	CONTINUE
	INT
	VOID
	DOUBLE

	// Literals and names.
	UINT_LITERAL
	DOUBLE_LITERAL
	CHAR_LITERAL
	STRING_LITERAL
	IDENT

	// Operators and punctuation.
	PLUS
	MINUS
	MUL
	DIV
	ASSIGN
	EQ
	NEQ
	LT
	GT
	LE
	GE
	L_PAREN
	R_PAREN
	L_BRACE
	R_BRACE
	ARROW
	COMMA
	COLON
	SEMICOLON
)

var kindNames = map[Kind]string{
	INVALID:        "INVALID",
	EOF:            "EOF",
	FN:             "FN_KW",
	LET:            "LET_KW",
	CONST:          "CONST_KW",
	AS:             "AS_KW",
	WHILE:          "WHILE_KW",
	IF:             "IF_KW",
	ELSE:           "ELSE_KW",
	RETURN:         "RETURN_KW",
	BREAK:          "BREAK_KW",
	CONTINUE:       "CONTINUE_KW",
	INT:            "INT_KW",
	VOID:           "VOID_KW",
	DOUBLE:         "DOUBLE_KW",
	UINT_LITERAL:   "UINT_LITERAL",
	DOUBLE_LITERAL: "DOUBLE_LITERAL",
	CHAR_LITERAL:   "CHAR_LITERAL",
	STRING_LITERAL: "STRING_LITERAL",
	IDENT:          "IDENT",
	PLUS:           "PLUS",
	MINUS:          "MINUS",
	MUL:            "MUL",
	DIV:            "DIV",
	ASSIGN:         "ASSIGN",
	EQ:             "EQ",
	NEQ:            "NEQ",
	LT:             "LT",
	GT:             "GT",
	LE:             "LE",
	GE:             "GE",
	L_PAREN:        "L_PAREN",
	R_PAREN:        "R_PAREN",
	L_BRACE:        "L_BRACE",
	R_BRACE:        "R_BRACE",
	ARROW:          "ARROW",
	COMMA:          "COMMA",
	COLON:          "COLON",
	SEMICOLON:      "SEMICOLON",
}

// String returns a readable name of the token Kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token describes a lexed Token from the input, containing its type, the
// original text of the Token, its decoded value and its position in the input.
//
// Value holds nil for keywords, operators and EOF; an int64 for UINT_LITERAL
// and CHAR_LITERAL; the IEEE-754 bit pattern as a uint64 for DOUBLE_LITERAL;
// the decoded text for STRING_LITERAL and IDENT; and an *errors.Error for
// INVALID.
type Token struct {
	Kind     Kind
	Spelling string
	Value    interface{}
	Pos      position.Position
}

// String returns a printable form of a Token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q,%s)", t.Kind.String(), t.Spelling, t.Pos)
}

// Int returns the integer value of an integer or character literal.
func (t Token) Int() int64 {
	v, _ := t.Value.(int64)
	return v
}

// Float returns the value of a double literal.
func (t Token) Float() float64 {
	v, _ := t.Value.(uint64)
	return math.Float64frombits(v)
}

// Text returns the decoded text of a string literal or identifier.
func (t Token) Text() string {
	v, _ := t.Value.(string)
	return v
}

// Source returns program text that lexes back to a token of the same kind
// and value.
func (t Token) Source() string {
	switch t.Kind {
	case STRING_LITERAL:
		return `"` + escape(t.Text(), '"') + `"`
	case CHAR_LITERAL:
		return "'" + escape(string(rune(t.Int())), '\'') + "'"
	case UINT_LITERAL:
		return strconv.FormatUint(uint64(t.Int()), 10)
	case DOUBLE_LITERAL:
		s := strconv.FormatFloat(t.Float(), 'e', -1, 64)
		// The lexer needs a fraction before the exponent.
		if i := strings.IndexByte(s, 'e'); i >= 0 && !strings.Contains(s[:i], ".") {
			s = s[:i] + ".0" + s[i:]
		}
		return s
	case EOF:
		return ""
	}
	return t.Spelling
}

func escape(s string, quote rune) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\'', '"':
			if r == quote {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
