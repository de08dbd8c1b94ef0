// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code

import "fmt"

// Program is the ordered instruction list of a single function.  Instructions
// are addressed by index, which is what branch offsets are computed against.
type Program struct {
	instrs []Instr
}

// Emit appends an instruction and returns its index.
func (p *Program) Emit(op Opcode, operand int64) int {
	p.instrs = append(p.instrs, Instr{Opcode: op, Operand: operand})
	return len(p.instrs) - 1
}

// Len returns the number of instructions emitted so far, which is also the
// index the next instruction will occupy.
func (p *Program) Len() int {
	return len(p.instrs)
}

// Last returns the most recently emitted instruction, and false if the
// program is empty.
func (p *Program) Last() (Instr, bool) {
	if len(p.instrs) == 0 {
		return Instr{}, false
	}
	return p.instrs[len(p.instrs)-1], true
}

// PatchTo sets the operand of the branch at index i so that it transfers
// control to the instruction at index target.  Offsets are relative to the
// instruction after the branch.
func (p *Program) PatchTo(i, target int) {
	if op := p.instrs[i].Opcode; !op.IsBranch() {
		panic(fmt.Sprintf("patching non-branch %s at %d", op, i))
	}
	p.instrs[i].Operand = Offset(i, target)
}

// Offset returns the relative branch operand for a branch at index from that
// lands on index to.
func Offset(from, to int) int64 {
	return int64(to - (from + 1))
}

// Instrs returns the instruction list.  The returned slice must not be
// modified.
func (p *Program) Instrs() []Instr {
	return p.instrs
}

// Size returns the length in bytes of the encoded program.
func (p *Program) Size() int {
	n := 0
	for _, i := range p.instrs {
		n += i.Size()
	}
	return n
}
