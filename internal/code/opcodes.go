// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package code contains the bytecode instructions for the stack virtual machine.
package code

import "fmt"

// Opcode is a virtual machine operation.  Each Opcode value is its byte
// encoding in the binary module.
type Opcode byte

const (
	Nop        Opcode = 0x00 // Do nothing.
	Push       Opcode = 0x01 // Push the 64-bit operand onto the stack.
	Pop        Opcode = 0x02 // Discard the top of stack.
	Dup        Opcode = 0x04 // Duplicate the top of stack.
	Loca       Opcode = 0x0a // Push the address of local slot operand.
	Arga       Opcode = 0x0b // Push the address of argument slot operand.
	Globa      Opcode = 0x0c // Push the address of global slot operand.
	Load64     Opcode = 0x13 // Pop an address, push the value stored there.
	Store64    Opcode = 0x17 // Pop a value and an address, store the value there.
	Stackalloc Opcode = 0x1a // Reserve operand slots on the stack.
	Addi       Opcode = 0x20 // Integer add.
	Subi       Opcode = 0x21 // Integer subtract.
	Muli       Opcode = 0x22 // Integer multiply.
	Divi       Opcode = 0x23 // Integer divide.
	Addf       Opcode = 0x24 // Floating point add.
	Subf       Opcode = 0x25 // Floating point subtract.
	Mulf       Opcode = 0x26 // Floating point multiply.
	Divf       Opcode = 0x27 // Floating point divide.
	Cmpi       Opcode = 0x30 // Integer compare, push -1, 0 or 1.
	Cmpf       Opcode = 0x32 // Floating point compare, push -1, 0 or 1.
	Negi       Opcode = 0x34 // Integer negate.
	Negf       Opcode = 0x35 // Floating point negate.
	Itof       Opcode = 0x36 // Integer to floating point.
	Ftoi       Opcode = 0x37 // Floating point to integer.
	Setlt      Opcode = 0x39 // Push 1 if top of stack is negative, else 0.
	Setgt      Opcode = 0x3a // Push 1 if top of stack is positive, else 0.
	Br         Opcode = 0x41 // Unconditional relative branch.
	Brfalse    Opcode = 0x42 // Branch if top of stack is zero.
	Brtrue     Opcode = 0x43 // Branch if top of stack is non-zero.
	Call       Opcode = 0x48 // Call the function at slot operand.
	Ret        Opcode = 0x49 // Return from the current function.
	Callname   Opcode = 0x4a // Call the built-in named by global slot operand.
)

var opNames = map[Opcode]string{
	Nop:        "nop",
	Push:       "push",
	Pop:        "pop",
	Dup:        "dup",
	Loca:       "loca",
	Arga:       "arga",
	Globa:      "globa",
	Load64:     "load64",
	Store64:    "stroe64",
	Stackalloc: "stackalloc",
	Addi:       "addi",
	Subi:       "subi",
	Muli:       "muli",
	Divi:       "divi",
	Addf:       "addf",
	Subf:       "subf",
	Mulf:       "mulf",
	Divf:       "divf",
	Cmpi:       "cmpi",
	Cmpf:       "cmpf",
	Negi:       "negi",
	Negf:       "negf",
	Itof:       "itof",
	Ftoi:       "ftoi",
	Setlt:      "setlt",
	Setgt:      "setgt",
	Br:         "br",
	Brfalse:    "brfalse",
	Brtrue:     "brtrue",
	Call:       "call",
	Ret:        "ret",
	Callname:   "callname",
}

func (o Opcode) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("bad(%#02x)", byte(o))
}

// Valid reports whether o is in the opcode catalog.
func (o Opcode) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// OperandSize returns the number of operand bytes that follow the opcode
// byte in the binary encoding: 8 for push, 4 for slot, offset and count
// operands, and 0 otherwise.
func (o Opcode) OperandSize() int {
	switch o {
	case Push:
		return 8
	case Loca, Arga, Globa, Stackalloc, Br, Brfalse, Brtrue, Call, Callname:
		return 4
	}
	return 0
}

// IsBranch reports whether the operand of o is a relative instruction offset.
func (o Opcode) IsBranch() bool {
	return o == Br || o == Brfalse || o == Brtrue
}
