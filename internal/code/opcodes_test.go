// Copyright 2018 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code

import "testing"

func TestOpcodeHasString(t *testing.T) {
	for o := range opNames {
		if o.String() != opNames[o] {
			t.Errorf("opcode string not match.  Expected %s, received %s", opNames[o], o.String())
		}
	}
}

func TestOpcodeEncoding(t *testing.T) {
	tests := map[Opcode]byte{
		Nop: 0x00, Push: 0x01, Pop: 0x02, Dup: 0x04,
		Loca: 0x0a, Arga: 0x0b, Globa: 0x0c,
		Load64: 0x13, Store64: 0x17, Stackalloc: 0x1a,
		Addi: 0x20, Subi: 0x21, Muli: 0x22, Divi: 0x23,
		Addf: 0x24, Subf: 0x25, Mulf: 0x26, Divf: 0x27,
		Cmpi: 0x30, Cmpf: 0x32, Negi: 0x34, Negf: 0x35,
		Itof: 0x36, Ftoi: 0x37, Setlt: 0x39, Setgt: 0x3a,
		Br: 0x41, Brfalse: 0x42, Brtrue: 0x43,
		Call: 0x48, Ret: 0x49, Callname: 0x4a,
	}
	if len(tests) != len(opNames) {
		t.Errorf("catalog has %d opcodes, expected %d", len(opNames), len(tests))
	}
	for o, want := range tests {
		if byte(o) != want {
			t.Errorf("%s encodes as %#02x, want %#02x", o, byte(o), want)
		}
	}
}

func TestBadOpcode(t *testing.T) {
	o := Opcode(0xff)
	if o.Valid() {
		t.Error("0xff should not be a valid opcode")
	}
	if o.String() != "bad(0xff)" {
		t.Errorf("unexpected string %q", o.String())
	}
}
