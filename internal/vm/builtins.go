// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package vm

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// builtin is the host implementation of a function called through callname.
// A builtin with a return value writes it into the slot on top of the stack,
// reserved by the caller before the call.
type builtin struct {
	params  int
	returns int
	fn      func(v *VM, args []uint64) (uint64, error)
}

var builtins = map[string]builtin{
	"getint": {0, 1, func(v *VM, _ []uint64) (uint64, error) {
		var x int64
		if _, err := fmt.Fscan(v.in, &x); err != nil {
			return 0, errors.Wrap(err, "getint")
		}
		return uint64(x), nil
	}},
	"getdouble": {0, 1, func(v *VM, _ []uint64) (uint64, error) {
		var x float64
		if _, err := fmt.Fscan(v.in, &x); err != nil {
			return 0, errors.Wrap(err, "getdouble")
		}
		return fromFloat(x), nil
	}},
	"getchar": {0, 1, func(v *VM, _ []uint64) (uint64, error) {
		b, err := v.in.ReadByte()
		if err == io.EOF {
			return uint64(^uint64(0)), nil // -1
		}
		if err != nil {
			return 0, errors.Wrap(err, "getchar")
		}
		return uint64(b), nil
	}},
	"putint": {1, 0, func(v *VM, args []uint64) (uint64, error) {
		_, err := v.out.WriteString(strconv.FormatInt(int64(args[0]), 10))
		return 0, err
	}},
	"putdouble": {1, 0, func(v *VM, args []uint64) (uint64, error) {
		_, err := v.out.WriteString(strconv.FormatFloat(toFloat(args[0]), 'g', -1, 64))
		return 0, err
	}},
	"putchar": {1, 0, func(v *VM, args []uint64) (uint64, error) {
		return 0, v.out.WriteByte(byte(args[0]))
	}},
	"putstr": {1, 0, func(v *VM, args []uint64) (uint64, error) {
		if args[0] >= uint64(len(v.obj.Globals)) {
			return 0, errors.Errorf("putstr: global slot %d out of range", args[0])
		}
		_, err := v.out.Write(v.obj.Globals[args[0]].Data)
		return 0, err
	}},
	"putln": {0, 0, func(v *VM, _ []uint64) (uint64, error) {
		return 0, v.out.WriteByte('\n')
	}},
}

// resolve returns the builtin named by the string global at slot.
func (v *VM) resolve(f *frame, slot int64) (builtin, error) {
	if b, ok := v.builtinMemos.Get(slot); ok {
		return b.(builtin), nil
	}
	if slot < 0 || slot >= int64(len(v.obj.Globals)) {
		return builtin{}, v.errorf(f, "global slot %d out of range", slot)
	}
	name := string(v.obj.Globals[slot].Data)
	b, ok := builtins[name]
	if !ok {
		return builtin{}, v.errorf(f, "unknown builtin %q", name)
	}
	v.builtinMemos.Add(slot, b)
	return b, nil
}

func (v *VM) callBuiltin(f *frame, slot int64) error {
	b, err := v.resolve(f, slot)
	if err != nil {
		return err
	}
	base := len(v.mem) - b.params
	if base-b.returns < f.locals+f.fn.Locals {
		return v.errorf(f, "stack underflow calling builtin %q", v.obj.Globals[slot].Data)
	}
	args := append([]uint64(nil), v.mem[base:]...)
	v.mem = v.mem[:base]
	x, err := b.fn(v, args)
	if err != nil {
		return v.errorf(f, "%s", err)
	}
	if b.returns > 0 {
		v.mem[len(v.mem)-1] = x
	}
	return nil
}
