// Copyright 2018 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"testing"

	"github.com/c0lang/c0c/internal/compiler/errors"
)

// FatalIfErr fails the test with a fatal error if err is not nil.
func FatalIfErr(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatal(err)
	}
}

// ExpectCode fails the test unless err is a compile error carrying code.
func ExpectCode(tb testing.TB, err error, code errors.Code) {
	tb.Helper()
	if err == nil {
		tb.Fatalf("expected %s error, got nil", code)
	}
	got, ok := errors.CodeOf(err)
	if !ok {
		tb.Fatalf("expected %s error, got non-compile error %v", code, err)
	}
	if got != code {
		tb.Errorf("expected %s error, got %s: %v", code, got, err)
	}
}
