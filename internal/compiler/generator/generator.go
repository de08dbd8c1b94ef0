// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package generator serializes analysed symbol tables into the binary module
// executed by the virtual machine, and reads such modules back.
//
// All multi-byte fields are big-endian.  The layout is
//
//	magic u32, version u32
//	global count u32, then per global:
//	    constant u8, length u32, payload
//	function count u32, then per function:
//	    slot u32, return slots u32, params u32, locals u32,
//	    instruction count u32, instructions
package generator

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/c0lang/c0c/internal/compiler/symbol"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	// Magic identifies a binary module.
	Magic uint32 = 0x72303b3e
	// Version is the module format version.
	Version uint32 = 1
)

// Generate writes the binary module for u to w.  The module is assembled in
// memory first so that nothing is written when the tables are inconsistent.
func Generate(w io.Writer, u *symbol.Unit) error {
	b, err := Encode(u)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return errors.Wrap(err, "failed to write module")
	}
	return nil
}

// Encode returns the binary module for u.
func Encode(u *symbol.Unit) ([]byte, error) {
	b := make([]byte, 0, 1024)
	b = binary.BigEndian.AppendUint32(b, Magic)
	b = binary.BigEndian.AppendUint32(b, Version)

	globals := u.Globals.Entries()
	b = binary.BigEndian.AppendUint32(b, uint32(len(globals)))
	for i, e := range globals {
		if e.Slot != i {
			return nil, errors.Errorf("global %q has slot %d at position %d", e.Name, e.Slot, i)
		}
		b = appendGlobal(b, e)
	}

	funcs := u.Functions.Entries()
	b = binary.BigEndian.AppendUint32(b, uint32(len(funcs)))
	for i, f := range funcs {
		if f.Slot != i {
			return nil, errors.Errorf("function %q has slot %d at position %d", f.Name, f.Slot, i)
		}
		var err error
		if b, err = appendFunction(b, f); err != nil {
			return nil, err
		}
	}
	glog.V(1).Infof("encoded %d globals, %d functions in %d bytes", len(globals), len(funcs), len(b))
	return b, nil
}

func appendGlobal(b []byte, e *symbol.Entry) []byte {
	if e.IsConstant() {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	if e.Type == symbol.String {
		b = binary.BigEndian.AppendUint32(b, uint32(len(e.Text)))
		return append(b, e.Text...)
	}
	b = binary.BigEndian.AppendUint32(b, 8)
	return binary.BigEndian.AppendUint64(b, uint64(e.Value))
}

func appendFunction(b []byte, f *symbol.Entry) ([]byte, error) {
	instrs := f.Code.Instrs()
	b = binary.BigEndian.AppendUint32(b, uint32(f.Slot))
	b = binary.BigEndian.AppendUint32(b, uint32(f.ReturnSlots()))
	b = binary.BigEndian.AppendUint32(b, uint32(f.ParamCount()))
	b = binary.BigEndian.AppendUint32(b, uint32(f.Locals.Count()))
	b = binary.BigEndian.AppendUint32(b, uint32(len(instrs)))
	for n, i := range instrs {
		if i.Opcode.OperandSize() == 4 && (i.Operand < math.MinInt32 || i.Operand > math.MaxUint32) {
			return nil, errors.Errorf("function %q instruction %d: operand of %s out of range", f.Name, n, i)
		}
		b = i.AppendTo(b)
	}
	return b, nil
}
