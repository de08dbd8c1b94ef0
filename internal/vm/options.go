// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package vm

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a new VM.
type Option func(*VM) error

// Input sets the reader consumed by getint, getdouble and getchar.
func Input(r io.Reader) Option {
	return func(v *VM) error {
		v.in = bufio.NewReader(r)
		return nil
	}
}

// Output sets the writer used by the put builtins.
func Output(w io.Writer) Option {
	return func(v *VM) error {
		v.out = bufio.NewWriter(w)
		return nil
	}
}

// MaxSteps bounds the number of instructions executed by Run.
func MaxSteps(n int) Option {
	return func(v *VM) error {
		if n <= 0 {
			return errors.Errorf("max steps must be positive, not %d", n)
		}
		v.maxSteps = n
		return nil
	}
}

// Trace logs every executed instruction and the stack.
func Trace() Option {
	return func(v *VM) error {
		v.trace = true
		return nil
	}
}

// PrometheusRegisterer registers the VM's metrics with reg.
func PrometheusRegisterer(reg prometheus.Registerer) Option {
	return func(v *VM) error {
		return reg.Register(RunDurations)
	}
}
