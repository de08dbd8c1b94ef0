// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package generator

import (
	"encoding/binary"
	"io"

	"github.com/c0lang/c0c/internal/code"
	"github.com/pkg/errors"
)

// reader decodes fields from the front of a module image.
type reader struct {
	b   []byte
	off int
}

func (r *reader) take(n int, what string) ([]byte, error) {
	if n < 0 || len(r.b)-r.off < n {
		return nil, errors.Errorf("module truncated reading %s at offset %d", what, r.off)
	}
	s := r.b[r.off : r.off+n]
	r.off += n
	return s, nil
}

func (r *reader) u32(what string) (uint32, error) {
	s, err := r.take(4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(s), nil
}

// Read decodes a binary module.
func Read(in io.Reader) (*code.Object, error) {
	b, err := io.ReadAll(in)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read module")
	}
	return Decode(b)
}

// Decode decodes a binary module image.
func Decode(b []byte) (*code.Object, error) {
	r := &reader{b: b}
	o := &code.Object{}
	var err error
	if o.Magic, err = r.u32("magic"); err != nil {
		return nil, err
	}
	if o.Magic != Magic {
		return nil, errors.Errorf("bad magic %#08x", o.Magic)
	}
	if o.Version, err = r.u32("version"); err != nil {
		return nil, err
	}
	if o.Version != Version {
		return nil, errors.Errorf("unsupported module version %d", o.Version)
	}

	n, err := r.u32("global count")
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		flag, err := r.take(1, "global flag")
		if err != nil {
			return nil, err
		}
		size, err := r.u32("global length")
		if err != nil {
			return nil, err
		}
		data, err := r.take(int(size), "global data")
		if err != nil {
			return nil, err
		}
		o.Globals = append(o.Globals, code.Global{Constant: flag[0] != 0, Data: data})
	}

	if n, err = r.u32("function count"); err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		var hdr [5]uint32
		for j, what := range []string{"function slot", "return slots", "param count", "local count", "instruction count"} {
			if hdr[j], err = r.u32(what); err != nil {
				return nil, err
			}
		}
		f := code.Function{
			Slot:    int(hdr[0]),
			Returns: int(hdr[1]),
			Params:  int(hdr[2]),
			Locals:  int(hdr[3]),
		}
		for k := uint32(0); k < hdr[4]; k++ {
			instr, size, err := code.Decode(r.b[r.off:])
			if err != nil {
				return nil, errors.Wrapf(err, "function %d instruction %d", f.Slot, k)
			}
			r.off += size
			f.Program = append(f.Program, instr)
		}
		o.Functions = append(o.Functions, f)
	}
	if r.off != len(r.b) {
		return nil, errors.Errorf("%d trailing bytes after module", len(r.b)-r.off)
	}
	return o, nil
}
