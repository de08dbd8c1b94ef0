// Copyright 2018 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code_test

import (
	"math"
	"strings"
	"testing"

	"github.com/c0lang/c0c/internal/code"
	"github.com/c0lang/c0c/internal/testutil"
)

func TestInstrString(t *testing.T) {
	testutil.ExpectNoDiff(t, code.Instr{Opcode: code.Globa, Operand: 8}.String(), "{globa 8}")
	testutil.ExpectNoDiff(t, code.Instr{Opcode: code.Ret}.String(), "{ret}")
}

var encodeTests = []struct {
	name string
	i    code.Instr
	want []byte
}{
	{"nop", code.Instr{Opcode: code.Nop}, []byte{0x00}},
	{"ret", code.Instr{Opcode: code.Ret}, []byte{0x49}},
	{"stroe64", code.Instr{Opcode: code.Store64}, []byte{0x17}},
	{"globa", code.Instr{Opcode: code.Globa, Operand: 8}, []byte{0x0c, 0, 0, 0, 8}},
	{"call", code.Instr{Opcode: code.Call, Operand: 0x01020304}, []byte{0x48, 1, 2, 3, 4}},
	{"back branch", code.Instr{Opcode: code.Br, Operand: -3}, []byte{0x41, 0xff, 0xff, 0xff, 0xfd}},
	{"push", code.Instr{Opcode: code.Push, Operand: 5}, []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 5}},
	{"push double", code.Instr{Opcode: code.Push, Operand: int64(math.Float64bits(1.0))},
		[]byte{0x01, 0x3f, 0xf0, 0, 0, 0, 0, 0, 0}},
}

func TestEncode(t *testing.T) {
	for _, tc := range encodeTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := tc.i.AppendTo(nil)
			testutil.ExpectNoDiff(t, tc.want, got)
			if tc.i.Size() != len(got) {
				t.Errorf("Size() = %d, encoded %d bytes", tc.i.Size(), len(got))
			}
			d, n, err := code.Decode(got)
			testutil.FatalIfErr(t, err)
			if n != len(got) {
				t.Errorf("Decode consumed %d bytes, want %d", n, len(got))
			}
			testutil.ExpectNoDiff(t, tc.i, d)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, b := range [][]byte{
		{},
		{0xff},
		{0x01, 0, 0},
		{0x41, 0},
	} {
		if _, _, err := code.Decode(b); err == nil {
			t.Errorf("Decode(%v) succeeded", b)
		}
	}
}

func TestProgramPatch(t *testing.T) {
	var p code.Program
	if _, ok := p.Last(); ok {
		t.Error("empty program has a last instruction")
	}
	top := p.Len()
	p.Emit(code.Push, 1)
	exit := p.Emit(code.Brfalse, 0)
	p.Emit(code.Nop, 0)
	back := p.Emit(code.Br, 0)
	p.PatchTo(back, top)
	p.PatchTo(exit, p.Len())

	testutil.ExpectNoDiff(t, []code.Instr{
		{Opcode: code.Push, Operand: 1},
		{Opcode: code.Brfalse, Operand: 2},
		{Opcode: code.Nop},
		{Opcode: code.Br, Operand: -4},
	}, p.Instrs())
	last, ok := p.Last()
	if !ok || last.Opcode != code.Br {
		t.Errorf("Last() = %v, %v", last, ok)
	}
	if p.Size() != 9+5+1+5 {
		t.Errorf("Size() = %d", p.Size())
	}
}

func TestPatchNonBranch(t *testing.T) {
	var p code.Program
	i := p.Emit(code.Stackalloc, 1)
	defer func() {
		if recover() == nil {
			t.Error("patching stackalloc did not panic")
		}
		testutil.ExpectNoDiff(t, int64(1), p.Instrs()[i].Operand)
	}()
	p.PatchTo(i, 0)
}

func TestObjectDump(t *testing.T) {
	o := &code.Object{
		Magic:   0x72303b3e,
		Version: 1,
		Globals: []code.Global{{Constant: true, Data: []byte("putint")}},
		Functions: []code.Function{{
			Slot: 0,
			Program: []code.Instr{
				{Opcode: code.Push, Operand: 7},
				{Opcode: code.Callname, Operand: 0},
			},
		}},
	}
	s := o.Dump()
	for _, want := range []string{"magic 0x72303b3e version 1", `const "putint"`, "push", "callname"} {
		if !strings.Contains(s, want) {
			t.Errorf("dump missing %q:\n%s", want, s)
		}
	}
}
