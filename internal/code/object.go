// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code

import (
	"bytes"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/golang/glog"
)

// Global is one entry of the global data section of a module.
type Global struct {
	Constant bool
	// Data holds the raw payload bytes.  Numeric globals carry their 64-bit
	// value big-endian; string constants carry their characters.
	Data []byte
}

// Function is one entry of the function section of a module.
type Function struct {
	Slot    int // Index in the module's function table.
	Returns int // Number of return slots, 0 or 1.
	Params  int // Number of parameter slots.
	Locals  int // Number of local variable slots.
	Program []Instr
}

// Object is a decoded binary module: the data and bytecode resulting from
// compiled program source.  Function 0 is the entry routine.
type Object struct {
	Magic     uint32
	Version   uint32
	Globals   []Global
	Functions []Function
}

// Dump returns a human readable disassembly of the module.
func (o *Object) Dump() string {
	b := new(bytes.Buffer)
	fmt.Fprintf(b, "Module: magic %#08x version %d\n", o.Magic, o.Version)
	fmt.Fprintln(b, "Globals")
	for i, g := range o.Globals {
		kind := "let"
		if g.Constant {
			kind = "const"
		}
		fmt.Fprintf(b, " %8d %-5s %q\n", i, kind, g.Data)
	}
	for _, f := range o.Functions {
		fmt.Fprintf(b, "Function %d: returns %d params %d locals %d\n", f.Slot, f.Returns, f.Params, f.Locals)
		w := new(tabwriter.Writer)
		w.Init(b, 0, 0, 1, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "disasm\tl\top\topnd\t")
		for n, i := range f.Program {
			fmt.Fprintf(w, "\t%d\t%s\t%s\t\n", n, i.Opcode, operandString(i))
		}
		if err := w.Flush(); err != nil {
			glog.Infof("flush error: %s", err)
		}
	}
	return b.String()
}

func operandString(i Instr) string {
	switch {
	case i.Opcode.OperandSize() == 0:
		return ""
	case i.Opcode == Push && i.Operand != 0 && (i.Operand < -1<<31 || i.Operand > 1<<31):
		// Large push operands are almost always float bit patterns.
		return fmt.Sprintf("%d (%g)", i.Operand, math.Float64frombits(uint64(i.Operand)))
	}
	return fmt.Sprintf("%d", i.Operand)
}
