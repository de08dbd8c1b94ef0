// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package vm provides a virtual machine that executes decoded c0 modules.
//
// Memory is a single array of 64-bit slots.  Globals occupy the first slots,
// one per global table entry, and the operand stack grows after them.  A call
// frame is a window on the stack: the return slot and arguments pushed by the
// caller, followed by the callee's locals.  Addresses pushed by globa, arga
// and loca are indices into memory.
package vm

import (
	"bufio"
	"context"
	"encoding/binary"
	"expvar"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/c0lang/c0c/internal/code"
	"github.com/golang/glog"
	"github.com/golang/groupcache/lru"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RuntimeErrors counts the number of runtime errors, by program name.
	RuntimeErrors = expvar.NewMap("runtime_errors_total")

	// RunDurations measures the wall time of complete program executions.
	RunDurations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "c0c",
		Subsystem: "vm",
		Name:      "run_duration_seconds",
		Help:      "VM program execution time distribution in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.00002, 4.0, 10),
	})
)

// DefaultMaxSteps bounds the number of instructions a program may execute.
const DefaultMaxSteps = 100000000

type frame struct {
	fn     *code.Function
	pc     int // Index of the next instruction.
	args   int // Memory index of argument slot 0.
	locals int // Memory index of local slot 0.
}

// VM describes the virtual machine for a module: its globals, its code, the
// memory holding globals and the stack, and the current call frames.
type VM struct {
	name string
	obj  *code.Object

	mem    []uint64 // Globals followed by the stack.
	frames []frame

	in  *bufio.Reader
	out *bufio.Writer

	builtinMemos *lru.Cache // memo of global slot to resolved built-in

	maxSteps int
	steps    int
	trace    bool
}

// RuntimeError describes a failure during execution.
type RuntimeError struct {
	Fn    int // Slot of the executing function.
	PC    int // Index of the failing instruction.
	Instr code.Instr
	Msg   string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error in function %d at instruction %d %s: %s", e.Fn, e.PC, e.Instr, e.Msg)
}

// New creates a new virtual machine for the module obj.
func New(name string, obj *code.Object, options ...Option) (*VM, error) {
	v := &VM{
		name:         name,
		obj:          obj,
		in:           bufio.NewReader(os.Stdin),
		out:          bufio.NewWriter(os.Stdout),
		builtinMemos: lru.New(len(builtins)),
		maxSteps:     DefaultMaxSteps,
		trace:        bool(glog.V(2)),
	}
	for _, option := range options {
		if err := option(v); err != nil {
			return nil, err
		}
	}
	if len(obj.Functions) == 0 {
		return nil, errors.Errorf("module %s has no entry function", name)
	}
	for i, f := range obj.Functions {
		if f.Slot != i {
			return nil, errors.Errorf("module %s: function %d has slot %d", name, i, f.Slot)
		}
	}
	return v, nil
}

// Run executes the module from its entry function until the entry function
// finishes, the context is cancelled or a runtime error occurs.  Output is
// flushed in every case.
func (v *VM) Run(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		RunDurations.Observe(time.Since(start).Seconds())
		if ferr := v.out.Flush(); err == nil && ferr != nil {
			err = errors.Wrap(ferr, "failed to flush output")
		}
		if err != nil {
			RuntimeErrors.Add(v.name, 1)
		}
	}()

	v.mem = v.mem[:0]
	for _, g := range v.obj.Globals {
		var x uint64
		if len(g.Data) == 8 {
			x = binary.BigEndian.Uint64(g.Data)
		}
		v.mem = append(v.mem, x)
	}
	v.frames = v.frames[:0]
	v.steps = 0
	v.enter(&v.obj.Functions[0], len(v.mem))

	for len(v.frames) > 0 {
		f := &v.frames[len(v.frames)-1]
		if f.pc >= len(f.fn.Program) {
			if len(v.frames) == 1 {
				return nil
			}
			return v.errorf(f, "ran off the end of the function")
		}
		if v.steps++; v.steps > v.maxSteps {
			return v.errorf(f, "step limit %d exceeded", v.maxSteps)
		}
		if v.steps%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		i := f.fn.Program[f.pc]
		f.pc++
		if v.trace {
			glog.Infof("%s: fn %d pc %d %s stack %v", v.name, f.fn.Slot, f.pc-1, i, v.mem[len(v.obj.Globals):])
		}
		if err := v.execute(f, i); err != nil {
			return err
		}
	}
	return nil
}

// errorf returns a runtime error at the instruction most recently fetched in f.
func (v *VM) errorf(f *frame, format string, args ...interface{}) error {
	e := &RuntimeError{Fn: f.fn.Slot, PC: f.pc - 1, Msg: fmt.Sprintf(format, args...)}
	if e.PC >= 0 && e.PC < len(f.fn.Program) {
		e.Instr = f.fn.Program[e.PC]
	}
	glog.V(1).Infof("%s: %s", v.name, e)
	if glog.V(2) {
		glog.Infof("Dumping vm state\n%s", v.obj.Dump())
	}
	return e
}

// enter pushes a frame for fn whose return slot and arguments start at args,
// and reserves its locals.
func (v *VM) enter(fn *code.Function, args int) {
	locals := len(v.mem)
	for n := 0; n < fn.Locals; n++ {
		v.mem = append(v.mem, 0)
	}
	v.frames = append(v.frames, frame{fn: fn, args: args, locals: locals})
}

func (v *VM) push(x uint64) {
	v.mem = append(v.mem, x)
}

func (v *VM) pop(f *frame) (uint64, error) {
	if len(v.mem) <= f.locals+f.fn.Locals {
		return 0, v.errorf(f, "stack underflow")
	}
	x := v.mem[len(v.mem)-1]
	v.mem = v.mem[:len(v.mem)-1]
	return x, nil
}

func (v *VM) pop2(f *frame) (a, b uint64, err error) {
	if b, err = v.pop(f); err != nil {
		return
	}
	a, err = v.pop(f)
	return
}

func (v *VM) address(f *frame, addr uint64) (int, error) {
	if addr >= uint64(len(v.mem)) {
		return 0, v.errorf(f, "address %d out of range", addr)
	}
	return int(addr), nil
}

func fromFloat(x float64) uint64 { return math.Float64bits(x) }
func toFloat(x uint64) float64   { return math.Float64frombits(x) }

func compare[T int64 | float64](a, b T) uint64 {
	switch {
	case a < b:
		return uint64(math.MaxUint64) // -1
	case a > b:
		return 1
	}
	return 0
}

func (v *VM) execute(f *frame, i code.Instr) error {
	switch i.Opcode {
	case code.Nop:

	case code.Push:
		v.push(uint64(i.Operand))

	case code.Pop:
		if _, err := v.pop(f); err != nil {
			return err
		}

	case code.Dup:
		x, err := v.pop(f)
		if err != nil {
			return err
		}
		v.push(x)
		v.push(x)

	case code.Globa:
		if i.Operand < 0 || int(i.Operand) >= len(v.obj.Globals) {
			return v.errorf(f, "global slot %d out of range", i.Operand)
		}
		v.push(uint64(i.Operand))

	case code.Arga:
		if i.Operand < 0 || int(i.Operand) >= f.fn.Returns+f.fn.Params {
			return v.errorf(f, "argument slot %d out of range", i.Operand)
		}
		v.push(uint64(f.args + int(i.Operand)))

	case code.Loca:
		if i.Operand < 0 || int(i.Operand) >= f.fn.Locals {
			return v.errorf(f, "local slot %d out of range", i.Operand)
		}
		v.push(uint64(f.locals + int(i.Operand)))

	case code.Load64:
		a, err := v.pop(f)
		if err != nil {
			return err
		}
		addr, err := v.address(f, a)
		if err != nil {
			return err
		}
		v.push(v.mem[addr])

	case code.Store64:
		a, x, err := v.pop2(f)
		if err != nil {
			return err
		}
		addr, err := v.address(f, a)
		if err != nil {
			return err
		}
		v.mem[addr] = x

	case code.Stackalloc:
		for n := int64(0); n < i.Operand; n++ {
			v.push(0)
		}

	case code.Addi, code.Subi, code.Muli, code.Divi:
		a, b, err := v.pop2(f)
		if err != nil {
			return err
		}
		x, y := int64(a), int64(b)
		switch i.Opcode {
		case code.Addi:
			v.push(uint64(x + y))
		case code.Subi:
			v.push(uint64(x - y))
		case code.Muli:
			v.push(uint64(x * y))
		case code.Divi:
			if y == 0 {
				return v.errorf(f, "integer division by zero")
			}
			v.push(uint64(x / y))
		}

	case code.Addf, code.Subf, code.Mulf, code.Divf:
		a, b, err := v.pop2(f)
		if err != nil {
			return err
		}
		x, y := toFloat(a), toFloat(b)
		switch i.Opcode {
		case code.Addf:
			v.push(fromFloat(x + y))
		case code.Subf:
			v.push(fromFloat(x - y))
		case code.Mulf:
			v.push(fromFloat(x * y))
		case code.Divf:
			v.push(fromFloat(x / y))
		}

	case code.Cmpi:
		a, b, err := v.pop2(f)
		if err != nil {
			return err
		}
		v.push(compare(int64(a), int64(b)))

	case code.Cmpf:
		a, b, err := v.pop2(f)
		if err != nil {
			return err
		}
		v.push(compare(toFloat(a), toFloat(b)))

	case code.Negi, code.Negf, code.Itof, code.Ftoi, code.Setlt, code.Setgt:
		x, err := v.pop(f)
		if err != nil {
			return err
		}
		switch i.Opcode {
		case code.Negi:
			v.push(uint64(-int64(x)))
		case code.Negf:
			v.push(fromFloat(-toFloat(x)))
		case code.Itof:
			v.push(fromFloat(float64(int64(x))))
		case code.Ftoi:
			v.push(uint64(int64(toFloat(x))))
		case code.Setlt:
			v.push(boolSlot(int64(x) < 0))
		case code.Setgt:
			v.push(boolSlot(int64(x) > 0))
		}

	case code.Br:
		return v.branch(f, i.Operand)

	case code.Brtrue, code.Brfalse:
		x, err := v.pop(f)
		if err != nil {
			return err
		}
		if (x != 0) == (i.Opcode == code.Brtrue) {
			return v.branch(f, i.Operand)
		}

	case code.Call:
		if i.Operand < 0 || int(i.Operand) >= len(v.obj.Functions) {
			return v.errorf(f, "function slot %d out of range", i.Operand)
		}
		fn := &v.obj.Functions[i.Operand]
		args := len(v.mem) - fn.Returns - fn.Params
		if args < f.locals+f.fn.Locals {
			return v.errorf(f, "stack underflow calling function %d", fn.Slot)
		}
		v.enter(fn, args)

	case code.Ret:
		v.mem = v.mem[:f.args+f.fn.Returns]
		v.frames = v.frames[:len(v.frames)-1]

	case code.Callname:
		return v.callBuiltin(f, i.Operand)

	default:
		return v.errorf(f, "invalid opcode %s", i.Opcode)
	}
	return nil
}

// branch moves the program counter by offset instructions relative to the
// instruction after the branch.
func (v *VM) branch(f *frame, offset int64) error {
	target := int64(f.pc) + offset
	if target < 0 || target > int64(len(f.fn.Program)) {
		return v.errorf(f, "branch target %d out of range", target)
	}
	f.pc = int(target)
	return nil
}

func boolSlot(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
