// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"bufio"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	cerrors "github.com/c0lang/c0c/internal/compiler/errors"
	"github.com/c0lang/c0c/internal/compiler/position"
	"github.com/golang/glog"
)

// List of keywords.  Keep this list sorted!
var keywords = map[string]Kind{
	"as":       AS,
	"break":    BREAK,
	"const":    CONST,
	"continue": CONTINUE,
	"double":   DOUBLE,
	"else":     ELSE,
	"fn":       FN,
	"if":       IF,
	"int":      INT,
	"let":      LET,
	"return":   RETURN,
	"void":     VOID,
	"while":    WHILE,
}

// A stateFn represents each state the scanner can be in.
type stateFn func(*Lexer) stateFn

// A Lexer holds the state of the scanner.
type Lexer struct {
	name  string        // Name of program.
	input *bufio.Reader // Source program
	state stateFn       // Current state function of the lexer.

	// The "read cursor" in the input.
	rune  rune // The current rune.
	width int  // Width in bytes.
	line  int  // The line position of the current rune.
	col   int  // The column position of the current rune.

	// The currently being lexed token.
	startcol int             // Starting column of the current token.
	text     strings.Builder // the text of the current token

	tokens chan Token // Output channel for tokens emitted.
}

// NewLexer creates a new scanner type that reads the input provided.
func NewLexer(name string, input io.Reader) *Lexer {
	l := &Lexer{
		name:   name,
		input:  bufio.NewReader(input),
		state:  lexProg,
		tokens: make(chan Token, 2),
	}
	return l
}

// NextToken returns the next token in the input.  When no token is available
// to be returned it executes the next action in the state machine.  Lexical
// errors are returned as INVALID tokens.
func (l *Lexer) NextToken() Token {
	for {
		select {
		case tok := <-l.tokens:
			return tok
		default:
			l.state = l.state(l)
		}
	}
}

// Scan returns the next token in the input, or the lexical error found while
// scanning it.  Once the input is exhausted Scan returns EOF forever.
func (l *Lexer) Scan() (Token, error) {
	tok := l.NextToken()
	if tok.Kind == INVALID {
		if err, ok := tok.Value.(*cerrors.Error); ok {
			return tok, err
		}
		return tok, cerrors.New(cerrors.InvalidInput, tok.Pos, "%s", tok.Spelling)
	}
	return tok, nil
}

func (l *Lexer) pos() position.Position {
	return position.Position{Filename: l.name, Line: l.line, Startcol: l.startcol, Endcol: l.col - 1}
}

// emit passes a token to the client.
func (l *Lexer) emit(kind Kind, value interface{}) {
	pos := l.pos()
	glog.V(2).Infof("Emitting %v spelled %q at %v", kind, l.text.String(), pos)
	l.tokens <- Token{kind, l.text.String(), value, pos}
	// Reset the current token
	l.text.Reset()
	l.startcol = l.col
}

// Internal end of file value.
const eof rune = -1

// next returns the next rune in the input.
func (l *Lexer) next() rune {
	var err error
	l.rune, l.width, err = l.input.ReadRune()
	if errors.Is(err, io.EOF) {
		l.width = 1
		l.rune = eof
	}
	return l.rune
}

// backup indicates that we haven't yet dealt with the next rune. Use when
// terminating tokens on unknown runes.
func (l *Lexer) backup() {
	l.width = 0
	if l.rune == eof {
		return
	}
	if err := l.input.UnreadRune(); err != nil {
		glog.Info(err)
	}
}

// peek returns the rune after the current one without consuming it.
func (l *Lexer) peek() rune {
	r, _, err := l.input.ReadRune()
	if err != nil {
		return eof
	}
	if err := l.input.UnreadRune(); err != nil {
		glog.Info(err)
	}
	return r
}

// stepCursor moves the read cursor.
func (l *Lexer) stepCursor() {
	if l.rune == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col += l.width
	}
}

// accept accepts the current rune and its position into the current token.
func (l *Lexer) accept() {
	l.text.WriteRune(l.rune)
	l.stepCursor()
}

// acceptAs accepts the position of the current rune into the current token,
// but records r as its text.  Used for escape sequences.
func (l *Lexer) acceptAs(r rune) {
	l.text.WriteRune(r)
	l.stepCursor()
}

// skip does not accept the current rune into the current token's text, but
// does accept its position into the token. Use only at the start or end of a
// token.
func (l *Lexer) skip() {
	l.stepCursor()
}

// ignore skips over the current rune, removing it from the text of the token,
// and resetting the start position of the current token. Use only between
// tokens.
func (l *Lexer) ignore() {
	l.stepCursor()
	l.startcol = l.col
}

// errorf emits an INVALID token carrying the error and resets the scanner.
func (l *Lexer) errorf(code cerrors.Code, format string, args ...interface{}) stateFn {
	e := cerrors.New(code, l.pos(), format, args...)
	l.tokens <- Token{
		Kind:     INVALID,
		Spelling: e.Msg,
		Value:    e,
		Pos:      e.Pos,
	}
	// Reset the current token
	l.text.Reset()
	l.startcol = l.col
	return lexProg
}

// State functions.

// lexProg starts lexing a program.
func lexProg(l *Lexer) stateFn {
	switch r := l.next(); {
	case isSpace(r):
		l.ignore()
	case r == '/':
		if l.peek() == '/' {
			return lexComment
		}
		l.accept()
		l.emit(DIV, nil)
	case isDigit(r):
		l.backup()
		return lexNumeric
	case isAlpha(r):
		return lexIdentifier
	case r == '\'':
		return lexChar
	case r == '"':
		return lexQuotedString
	case r == eof:
		return lexEOF
	default:
		return lexOperator
	}
	return lexProg
}

// lexEOF emits EOF tokens forever.
func lexEOF(l *Lexer) stateFn {
	pos := position.Position{Filename: l.name, Line: l.line, Startcol: l.col, Endcol: l.col}
	l.tokens <- Token{Kind: EOF, Pos: pos}
	return lexEOF
}

// Lex a line comment.
func lexComment(l *Lexer) stateFn {
	l.ignore()
Loop:
	for {
		switch l.next() {
		case '\n':
			l.ignore()
			break Loop
		case eof:
			l.backup()
			break Loop
		default:
			l.ignore()
		}
	}
	return lexProg
}

// Lex an operator or punctuation.  Two-character operators take priority over
// their one-character prefixes.
func lexOperator(l *Lexer) stateFn {
	r := l.rune
	l.accept()
	switch r {
	case '+':
		l.emit(PLUS, nil)
	case '*':
		l.emit(MUL, nil)
	case '(':
		l.emit(L_PAREN, nil)
	case ')':
		l.emit(R_PAREN, nil)
	case '{':
		l.emit(L_BRACE, nil)
	case '}':
		l.emit(R_BRACE, nil)
	case ',':
		l.emit(COMMA, nil)
	case ':':
		l.emit(COLON, nil)
	case ';':
		l.emit(SEMICOLON, nil)
	case '-':
		l.pair('>', ARROW, MINUS)
	case '=':
		l.pair('=', EQ, ASSIGN)
	case '<':
		l.pair('=', LE, LT)
	case '>':
		l.pair('=', GE, GT)
	case '!':
		if l.next() != '=' {
			l.backup()
			return l.errorf(cerrors.InvalidInput, "Unexpected input: %q", r)
		}
		l.accept()
		l.emit(NEQ, nil)
	default:
		return l.errorf(cerrors.InvalidInput, "Unexpected input: %q", r)
	}
	return lexProg
}

// pair emits long if the next rune is second, otherwise short.
func (l *Lexer) pair(second rune, long, short Kind) {
	if l.next() == second {
		l.accept()
		l.emit(long, nil)
		return
	}
	l.backup()
	l.emit(short, nil)
}

// Lex a numerical constant.  An exponent is only legal after a fraction.
func lexNumeric(l *Lexer) stateFn {
	r := l.next()
	for isDigit(r) {
		l.accept()
		r = l.next()
	}
	switch r {
	case 'e', 'E':
		l.accept()
		return l.errorf(cerrors.InvalidNumber, "exponent before fraction in %q", l.text.String())
	case '.':
		return lexFraction
	}
	l.backup()
	u, err := strconv.ParseUint(l.text.String(), 10, 64)
	if err != nil {
		return l.errorf(cerrors.IntegerOverflow, "integer literal %s out of range", l.text.String())
	}
	l.emit(UINT_LITERAL, int64(u))
	return lexProg
}

// lexFraction lexes the rest of a floating point literal after the '.'.
func lexFraction(l *Lexer) stateFn {
	l.accept()
	r := l.next()
	if !isDigit(r) {
		l.backup()
		return l.errorf(cerrors.InvalidNumber, "missing digits after '.' in %q", l.text.String())
	}
	for isDigit(r) {
		l.accept()
		r = l.next()
	}
	if r == 'e' || r == 'E' {
		l.accept()
		r = l.next()
		if r == '+' || r == '-' {
			l.accept()
			r = l.next()
		}
		if !isDigit(r) {
			l.backup()
			return l.errorf(cerrors.InvalidNumber, "missing exponent digits in %q", l.text.String())
		}
		for isDigit(r) {
			l.accept()
			r = l.next()
		}
	}
	l.backup()
	f, err := strconv.ParseFloat(l.text.String(), 64)
	if err != nil || math.IsInf(f, 0) {
		return l.errorf(cerrors.InvalidNumber, "bad number %q", l.text.String())
	}
	l.emit(DOUBLE_LITERAL, math.Float64bits(f))
	return lexProg
}

// Lex an identifier or keyword.
func lexIdentifier(l *Lexer) stateFn {
	l.accept()
Loop:
	for {
		switch r := l.next(); {
		case isAlnum(r) || r == '_':
			l.accept()
		default:
			l.backup()
			break Loop
		}
	}
	if r, ok := keywords[l.text.String()]; ok {
		l.emit(r, nil)
	} else {
		l.emit(IDENT, l.text.String())
	}
	return lexProg
}

// escapes maps the character after a backslash to the character it denotes.
var escapes = map[rune]rune{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	't':  '\t',
	'n':  '\n',
	'r':  '\r',
}

// lexEscape decodes the escape sequence after a backslash into the token text.
func (l *Lexer) lexEscape() bool {
	l.skip() // Skip the backslash.
	r := l.next()
	e, ok := escapes[r]
	if !ok {
		l.backup()
		return false
	}
	l.acceptAs(e)
	return true
}

// Lex a character literal.  The token value is the character code.
func lexChar(l *Lexer) stateFn {
	l.skip() // Skip leading quote
	switch r := l.next(); r {
	case '\\':
		if !l.lexEscape() {
			return l.errorf(cerrors.InvalidEscape, "unknown escape sequence in char literal")
		}
	case '\'', eof:
		l.backup()
		return l.errorf(cerrors.InvalidChar, "empty char literal")
	default:
		l.accept()
	}
	if l.next() != '\'' {
		l.backup()
		return l.errorf(cerrors.InvalidChar, "unterminated char literal '%s", l.text.String())
	}
	l.skip() // Skip trailing quote.
	c := []rune(l.text.String())[0]
	l.emit(CHAR_LITERAL, int64(c))
	return lexProg
}

// Lex a quoted string.  The text of a quoted string does not include the '"'
// quotes, and has its escape sequences decoded.
func lexQuotedString(l *Lexer) stateFn {
	l.skip() // Skip leading quote
Loop:
	for {
		switch r := l.next(); r {
		case '\\':
			if !l.lexEscape() {
				return l.errorf(cerrors.InvalidEscape, "unknown escape sequence in string literal")
			}
		case eof:
			l.backup()
			return l.errorf(cerrors.UnterminatedString, "unterminated string literal: \"%s", l.text.String())
		case '\n', '\r', '\t':
			l.backup()
			return l.errorf(cerrors.InvalidString, "raw %q in string literal", r)
		case '"':
			l.skip() // Skip trailing quote.
			break Loop
		default:
			l.accept()
		}
	}
	l.emit(STRING_LITERAL, l.text.String())
	return lexProg
}

// Helper predicates.

// isAlpha reports whether r is an alphabetical rune.
func isAlpha(r rune) bool {
	return unicode.IsLetter(r)
}

// isAlnum reports whether r is an alphanumeric rune.
func isAlnum(r rune) bool {
	return isAlpha(r) || isDigit(r)
}

// isDigit reports whether r is a decimal digit.
func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// isSpace reports whether r is whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}
