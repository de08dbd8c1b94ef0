// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"math"
	"strings"
	"testing"
	"testing/quick"

	"github.com/c0lang/c0c/internal/compiler/errors"
	"github.com/c0lang/c0c/internal/compiler/position"
	"github.com/c0lang/c0c/internal/testutil"
)

type lexerTest struct {
	name   string
	input  string
	tokens []Token
}

var lexerTests = []lexerTest{
	{"empty", "", []Token{
		{EOF, "", nil, position.Position{Filename: "empty", Line: 0, Startcol: 0, Endcol: 0}}}},
	{"spaces", " \t", []Token{
		{EOF, "", nil, position.Position{Filename: "spaces", Line: 0, Startcol: 2, Endcol: 2}}}},
	{"newlines", "\n\n", []Token{
		{EOF, "", nil, position.Position{Filename: "newlines", Line: 2, Startcol: 0, Endcol: 0}}}},
	{"comment", "// comment", []Token{
		{EOF, "", nil, position.Position{Filename: "comment", Line: 0, Startcol: 10, Endcol: 10}}}},
	{"comment then token", "a // comment\nb", []Token{
		{IDENT, "a", "a", position.Position{Filename: "comment then token", Line: 0, Startcol: 0, Endcol: 0}},
		{IDENT, "b", "b", position.Position{Filename: "comment then token", Line: 1, Startcol: 0, Endcol: 0}},
		{EOF, "", nil, position.Position{Filename: "comment then token", Line: 1, Startcol: 1, Endcol: 1}}}},
	{"div is not a comment", "a/b", []Token{
		{IDENT, "a", "a", position.Position{Filename: "div is not a comment", Line: 0, Startcol: 0, Endcol: 0}},
		{DIV, "/", nil, position.Position{Filename: "div is not a comment", Line: 0, Startcol: 1, Endcol: 1}},
		{IDENT, "b", "b", position.Position{Filename: "div is not a comment", Line: 0, Startcol: 2, Endcol: 2}},
		{EOF, "", nil, position.Position{Filename: "div is not a comment", Line: 0, Startcol: 3, Endcol: 3}}}},
	{"punctuation", "(){},:;", []Token{
		{L_PAREN, "(", nil, position.Position{Filename: "punctuation", Line: 0, Startcol: 0, Endcol: 0}},
		{R_PAREN, ")", nil, position.Position{Filename: "punctuation", Line: 0, Startcol: 1, Endcol: 1}},
		{L_BRACE, "{", nil, position.Position{Filename: "punctuation", Line: 0, Startcol: 2, Endcol: 2}},
		{R_BRACE, "}", nil, position.Position{Filename: "punctuation", Line: 0, Startcol: 3, Endcol: 3}},
		{COMMA, ",", nil, position.Position{Filename: "punctuation", Line: 0, Startcol: 4, Endcol: 4}},
		{COLON, ":", nil, position.Position{Filename: "punctuation", Line: 0, Startcol: 5, Endcol: 5}},
		{SEMICOLON, ";", nil, position.Position{Filename: "punctuation", Line: 0, Startcol: 6, Endcol: 6}},
		{EOF, "", nil, position.Position{Filename: "punctuation", Line: 0, Startcol: 7, Endcol: 7}}}},
	{"operators", "+ - * / = == != < > <= >= ->", []Token{
		{PLUS, "+", nil, position.Position{Filename: "operators", Line: 0, Startcol: 0, Endcol: 0}},
		{MINUS, "-", nil, position.Position{Filename: "operators", Line: 0, Startcol: 2, Endcol: 2}},
		{MUL, "*", nil, position.Position{Filename: "operators", Line: 0, Startcol: 4, Endcol: 4}},
		{DIV, "/", nil, position.Position{Filename: "operators", Line: 0, Startcol: 6, Endcol: 6}},
		{ASSIGN, "=", nil, position.Position{Filename: "operators", Line: 0, Startcol: 8, Endcol: 8}},
		{EQ, "==", nil, position.Position{Filename: "operators", Line: 0, Startcol: 10, Endcol: 11}},
		{NEQ, "!=", nil, position.Position{Filename: "operators", Line: 0, Startcol: 13, Endcol: 14}},
		{LT, "<", nil, position.Position{Filename: "operators", Line: 0, Startcol: 16, Endcol: 16}},
		{GT, ">", nil, position.Position{Filename: "operators", Line: 0, Startcol: 18, Endcol: 18}},
		{LE, "<=", nil, position.Position{Filename: "operators", Line: 0, Startcol: 20, Endcol: 21}},
		{GE, ">=", nil, position.Position{Filename: "operators", Line: 0, Startcol: 23, Endcol: 24}},
		{ARROW, "->", nil, position.Position{Filename: "operators", Line: 0, Startcol: 26, Endcol: 27}},
		{EOF, "", nil, position.Position{Filename: "operators", Line: 0, Startcol: 28, Endcol: 28}}}},
	{"keywords", "fn let const as while if else return break continue int void double", []Token{
		{FN, "fn", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 0, Endcol: 1}},
		{LET, "let", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 3, Endcol: 5}},
		{CONST, "const", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 7, Endcol: 11}},
		{AS, "as", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 13, Endcol: 14}},
		{WHILE, "while", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 16, Endcol: 20}},
		{IF, "if", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 22, Endcol: 23}},
		{ELSE, "else", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 25, Endcol: 28}},
		{RETURN, "return", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 30, Endcol: 35}},
		{BREAK, "break", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 37, Endcol: 41}},
		{CONTINUE, "continue", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 43, Endcol: 50}},
		{INT, "int", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 52, Endcol: 54}},
		{VOID, "void", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 56, Endcol: 59}},
		{DOUBLE, "double", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 61, Endcol: 66}},
		{EOF, "", nil, position.Position{Filename: "keywords", Line: 0, Startcol: 67, Endcol: 67}}}},
	{"identifiers", "a be foo_bar x1 letter int2", []Token{
		{IDENT, "a", "a", position.Position{Filename: "identifiers", Line: 0, Startcol: 0, Endcol: 0}},
		{IDENT, "be", "be", position.Position{Filename: "identifiers", Line: 0, Startcol: 2, Endcol: 3}},
		{IDENT, "foo_bar", "foo_bar", position.Position{Filename: "identifiers", Line: 0, Startcol: 5, Endcol: 11}},
		{IDENT, "x1", "x1", position.Position{Filename: "identifiers", Line: 0, Startcol: 13, Endcol: 14}},
		{IDENT, "letter", "letter", position.Position{Filename: "identifiers", Line: 0, Startcol: 16, Endcol: 21}},
		{IDENT, "int2", "int2", position.Position{Filename: "identifiers", Line: 0, Startcol: 23, Endcol: 26}},
		{EOF, "", nil, position.Position{Filename: "identifiers", Line: 0, Startcol: 27, Endcol: 27}}}},
	{"numbers", "0 123 3.14 1.5e3 2.0E-2 18446744073709551615", []Token{
		{UINT_LITERAL, "0", int64(0), position.Position{Filename: "numbers", Line: 0, Startcol: 0, Endcol: 0}},
		{UINT_LITERAL, "123", int64(123), position.Position{Filename: "numbers", Line: 0, Startcol: 2, Endcol: 4}},
		{DOUBLE_LITERAL, "3.14", math.Float64bits(3.14), position.Position{Filename: "numbers", Line: 0, Startcol: 6, Endcol: 9}},
		{DOUBLE_LITERAL, "1.5e3", math.Float64bits(1500), position.Position{Filename: "numbers", Line: 0, Startcol: 11, Endcol: 15}},
		{DOUBLE_LITERAL, "2.0E-2", math.Float64bits(0.02), position.Position{Filename: "numbers", Line: 0, Startcol: 17, Endcol: 22}},
		{UINT_LITERAL, "18446744073709551615", int64(-1), position.Position{Filename: "numbers", Line: 0, Startcol: 24, Endcol: 43}},
		{EOF, "", nil, position.Position{Filename: "numbers", Line: 0, Startcol: 44, Endcol: 44}}}},
	{"string", "\"hi\\tthere\"", []Token{
		{STRING_LITERAL, "hi\tthere", "hi\tthere", position.Position{Filename: "string", Line: 0, Startcol: 0, Endcol: 10}},
		{EOF, "", nil, position.Position{Filename: "string", Line: 0, Startcol: 11, Endcol: 11}}}},
	{"chars", "'a' '\\n' '\\''", []Token{
		{CHAR_LITERAL, "a", int64('a'), position.Position{Filename: "chars", Line: 0, Startcol: 0, Endcol: 2}},
		{CHAR_LITERAL, "\n", int64('\n'), position.Position{Filename: "chars", Line: 0, Startcol: 4, Endcol: 7}},
		{CHAR_LITERAL, "'", int64('\''), position.Position{Filename: "chars", Line: 0, Startcol: 9, Endcol: 12}},
		{EOF, "", nil, position.Position{Filename: "chars", Line: 0, Startcol: 13, Endcol: 13}}}},
	{"arrow after minus", "a-->b", []Token{
		{IDENT, "a", "a", position.Position{Filename: "arrow after minus", Line: 0, Startcol: 0, Endcol: 0}},
		{MINUS, "-", nil, position.Position{Filename: "arrow after minus", Line: 0, Startcol: 1, Endcol: 1}},
		{ARROW, "->", nil, position.Position{Filename: "arrow after minus", Line: 0, Startcol: 2, Endcol: 3}},
		{IDENT, "b", "b", position.Position{Filename: "arrow after minus", Line: 0, Startcol: 4, Endcol: 4}},
		{EOF, "", nil, position.Position{Filename: "arrow after minus", Line: 0, Startcol: 5, Endcol: 5}}}},
	{"function header", "fn main() -> void {\n}", []Token{
		{FN, "fn", nil, position.Position{Filename: "function header", Line: 0, Startcol: 0, Endcol: 1}},
		{IDENT, "main", "main", position.Position{Filename: "function header", Line: 0, Startcol: 3, Endcol: 6}},
		{L_PAREN, "(", nil, position.Position{Filename: "function header", Line: 0, Startcol: 7, Endcol: 7}},
		{R_PAREN, ")", nil, position.Position{Filename: "function header", Line: 0, Startcol: 8, Endcol: 8}},
		{ARROW, "->", nil, position.Position{Filename: "function header", Line: 0, Startcol: 10, Endcol: 11}},
		{VOID, "void", nil, position.Position{Filename: "function header", Line: 0, Startcol: 13, Endcol: 16}},
		{L_BRACE, "{", nil, position.Position{Filename: "function header", Line: 0, Startcol: 18, Endcol: 18}},
		{R_BRACE, "}", nil, position.Position{Filename: "function header", Line: 1, Startcol: 0, Endcol: 0}},
		{EOF, "", nil, position.Position{Filename: "function header", Line: 1, Startcol: 1, Endcol: 1}}}},
}

// collect gathers the emitted items into a slice.
func collect(t *lexerTest) (tokens []Token) {
	l := NewLexer(t.name, strings.NewReader(t.input))
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == EOF || tok.Kind == INVALID {
			return
		}
	}
}

func TestLex(t *testing.T) {
	for _, tc := range lexerTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tokens := collect(&tc)

			testutil.ExpectNoDiff(t, tc.tokens, tokens)
		})
	}
}

func TestLexErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"unexpected char", "?", errors.InvalidInput},
		{"lone bang", "!x", errors.InvalidInput},
		{"underscore start", "_a", errors.InvalidInput},
		{"exponent before fraction", "1e5", errors.InvalidNumber},
		{"missing fraction digits", "1.e5", errors.InvalidNumber},
		{"missing exponent digits", "1.5e+", errors.InvalidNumber},
		{"integer overflow", "18446744073709551616", errors.IntegerOverflow},
		{"empty char", "''", errors.InvalidChar},
		{"unterminated char", "'ab'", errors.InvalidChar},
		{"bad char escape", `'\q'`, errors.InvalidEscape},
		{"bad string escape", `"a\qb"`, errors.InvalidEscape},
		{"unterminated string", `"abc`, errors.UnterminatedString},
		{"raw newline in string", "\"a\nb\"", errors.InvalidString},
		{"raw tab in string", "\"a\tb\"", errors.InvalidString},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			l := NewLexer(tc.name, strings.NewReader(tc.input))
			for {
				tok, err := l.Scan()
				if err != nil {
					testutil.ExpectCode(t, err, tc.code)
					if tok.Kind != INVALID {
						t.Errorf("error token kind %s, want INVALID", tok.Kind)
					}
					return
				}
				if tok.Kind == EOF {
					t.Fatalf("reached EOF without error")
				}
			}
		})
	}
}

func TestLexErrorPosition(t *testing.T) {
	l := NewLexer("pos", strings.NewReader("let x\n  ?"))
	var err error
	for err == nil {
		_, err = l.Scan()
	}
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("want *errors.Error, got %T", err)
	}
	testutil.ExpectNoDiff(t, position.Position{Filename: "pos", Line: 1, Startcol: 2, Endcol: 2}, e.Pos)
}

func TestEOFForever(t *testing.T) {
	l := NewLexer("eof", strings.NewReader("x"))
	tok, err := l.Scan()
	testutil.FatalIfErr(t, err)
	testutil.ExpectNoDiff(t, IDENT, tok.Kind)
	for i := 0; i < 3; i++ {
		tok, err = l.Scan()
		testutil.FatalIfErr(t, err)
		testutil.ExpectNoDiff(t, EOF, tok.Kind)
	}
}

func scanAll(t *testing.T, input string) []Token {
	t.Helper()
	l := NewLexer("relex", strings.NewReader(input))
	var r []Token
	for {
		tok, err := l.Scan()
		testutil.FatalIfErr(t, err)
		if tok.Kind == EOF {
			return r
		}
		r = append(r, tok)
	}
}

func TestRelexPrintedTokens(t *testing.T) {
	src := `const pi: double = 3.14159;
let c: int = '\n';
fn main() -> void {
    // greet
    putstr("say \"hi\"\t\\ok\r\n");
    let big: double = 1.0e-300;
    while c <= 10 { c = c + 1 as int; }
}`
	first := scanAll(t, src)
	var printed []string
	for _, tok := range first {
		printed = append(printed, tok.Source())
	}
	second := scanAll(t, strings.Join(printed, " "))
	testutil.ExpectNoDiff(t, first, second, testutil.IgnoreFields(Token{}, "Spelling", "Pos"))
}

func TestRelexQuick(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping quickcheck in short mode")
	}
	relex := func(tok Token) bool {
		l := NewLexer("quick", strings.NewReader(tok.Source()))
		got, err := l.Scan()
		if err != nil {
			return false
		}
		return got.Kind == tok.Kind && testutil.Diff(tok.Value, got.Value) == ""
	}
	checkInt := func(v uint64) bool {
		return relex(Token{Kind: UINT_LITERAL, Value: int64(v)})
	}
	checkFloat := func(f float64) bool {
		return relex(Token{Kind: DOUBLE_LITERAL, Value: math.Float64bits(math.Abs(f))})
	}
	checkString := func(s string) bool {
		return relex(Token{Kind: STRING_LITERAL, Value: s})
	}
	q := &quick.Config{MaxCount: 10000}
	for _, f := range []interface{}{checkInt, checkFloat, checkString} {
		if err := quick.Check(f, q); err != nil {
			t.Error(err)
		}
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{IDENT, "foo", "foo", position.Position{Filename: "prog", Line: 0, Startcol: 4, Endcol: 6}}
	testutil.ExpectNoDiff(t, `IDENT("foo",prog:1:5-7)`, tok.String())
}
