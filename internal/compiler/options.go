// Copyright 2021 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package compiler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
)

// Option configures a new Compiler.
type Option func(*Compiler) error

// DumpTokens instructs the Compiler to log every token read during
// tokenization.
func DumpTokens() Option {
	return func(c *Compiler) error {
		c.dumpTokens = true
		return nil
	}
}

// DumpBytecode instructs the Compiler to log a disassembly of each module it
// generates.
func DumpBytecode() Option {
	return func(c *Compiler) error {
		c.dumpBytecode = true
		return nil
	}
}

// PrometheusRegisterer passes in a registry for setting up exported metrics.
func PrometheusRegisterer(reg prometheus.Registerer) Option {
	return func(c *Compiler) error {
		c.reg = reg
		c.reg.MustRegister(CompileDurations, CompileErrorsByFamily)
		return nil
	}
}

// Filesystem sets the filesystem that CompileFile reads sources from and
// writes modules to.
func Filesystem(fs afero.Fs) Option {
	return func(c *Compiler) error {
		c.fs = fs
		return nil
	}
}
