// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package errors_test

import (
	"testing"

	"github.com/c0lang/c0c/internal/compiler/errors"
	"github.com/c0lang/c0c/internal/compiler/position"
	"github.com/c0lang/c0c/internal/testutil"
	pkgerrors "github.com/pkg/errors"
)

func TestErrorString(t *testing.T) {
	e := errors.New(errors.NotDeclared, position.Position{Filename: "test", Line: 1, Startcol: 4, Endcol: 6}, "%q", "foo")
	testutil.ExpectNoDiff(t, `test:2:5-7: not declared: "foo"`, e.Error())
}

func TestExpected(t *testing.T) {
	e := errors.Expected(position.Position{Filename: "test", Line: 0, Startcol: 0, Endcol: 0}, []string{"IDENT", "L_PAREN"}, "SEMICOLON")
	testutil.ExpectNoDiff(t, "test:1:1: unexpected token: expected IDENT or L_PAREN, found SEMICOLON", e.Error())
	testutil.ExpectNoDiff(t, errors.Semantic, e.Family())
}

func TestFamily(t *testing.T) {
	for _, c := range []errors.Code{errors.InvalidInput, errors.InvalidNumber, errors.UnterminatedString} {
		if c.Family() != errors.Lexical {
			t.Errorf("%s: want lexical, got %s", c, c.Family())
		}
	}
	for _, c := range []errors.Code{errors.ExpectedToken, errors.TypeMismatch, errors.NotAVariable} {
		if c.Family() != errors.Semantic {
			t.Errorf("%s: want semantic, got %s", c, c.Family())
		}
	}
}

func TestCodeOf(t *testing.T) {
	var err error = errors.New(errors.TypeMismatch, position.Position{}, "int and double")
	wrapped := pkgerrors.Wrap(err, "compile failed")
	code, ok := errors.CodeOf(wrapped)
	if !ok {
		t.Fatalf("CodeOf(%v) not a compile error", wrapped)
	}
	testutil.ExpectNoDiff(t, errors.TypeMismatch, code)

	if _, ok := errors.CodeOf(pkgerrors.New("plain")); ok {
		t.Error("plain error reported as compile error")
	}
}
