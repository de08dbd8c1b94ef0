// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Instr is a single virtual machine instruction.  Operand is only meaningful
// when Opcode.OperandSize is non-zero.  For push it holds the raw 64 bits of
// the pushed value; for the other operand-carrying opcodes it is a 32-bit
// slot, count or relative offset.
type Instr struct {
	Opcode  Opcode
	Operand int64
}

// debug print for instructions.
func (i Instr) String() string {
	if i.Opcode.OperandSize() == 0 {
		return fmt.Sprintf("{%s}", i.Opcode)
	}
	return fmt.Sprintf("{%s %d}", i.Opcode, i.Operand)
}

// Size returns the length of the binary encoding of i.
func (i Instr) Size() int {
	return 1 + i.Opcode.OperandSize()
}

// AppendTo appends the big-endian binary encoding of i to b.
func (i Instr) AppendTo(b []byte) []byte {
	b = append(b, byte(i.Opcode))
	switch i.Opcode.OperandSize() {
	case 8:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(i.Operand))
		b = append(b, buf[:]...)
	case 4:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(i.Operand))
		b = append(b, buf[:]...)
	}
	return b
}

// Decode reads one instruction from the front of b, returning it and the
// number of bytes consumed.  Four byte operands are sign extended so that
// backwards branch offsets survive a round trip.
func Decode(b []byte) (Instr, int, error) {
	if len(b) == 0 {
		return Instr{}, 0, errors.New("empty instruction stream")
	}
	op := Opcode(b[0])
	if !op.Valid() {
		return Instr{}, 0, errors.Errorf("unknown opcode %#02x", b[0])
	}
	n := 1 + op.OperandSize()
	if len(b) < n {
		return Instr{}, 0, errors.Errorf("truncated operand for %s", op)
	}
	i := Instr{Opcode: op}
	switch op.OperandSize() {
	case 8:
		i.Operand = int64(binary.BigEndian.Uint64(b[1:9]))
	case 4:
		i.Operand = int64(int32(binary.BigEndian.Uint32(b[1:5])))
	}
	return i, n, nil
}
