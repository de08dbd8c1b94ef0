// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package compiler is the entry point to the c0 compiler.  It exposes the
// three passes the driver needs: pulling tokens one at a time, analysing a
// whole program into symbol tables, and generating the binary module from
// them.
package compiler

import (
	"bytes"
	"io"
	"path/filepath"
	"time"

	"github.com/c0lang/c0c/internal/compiler/errors"
	"github.com/c0lang/c0c/internal/compiler/generator"
	"github.com/c0lang/c0c/internal/compiler/parser"
	"github.com/c0lang/c0c/internal/compiler/symbol"
	"github.com/golang/glog"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
)

// Compiler compiles c0 programs.
type Compiler struct {
	fs  afero.Fs              // filesystem for CompileFile
	reg prometheus.Registerer // place to register metrics

	dumpTokens   bool // Log each token during Tokenize.
	dumpBytecode bool // Log a disassembly of each generated module.
}

// New creates a Compiler configured by options.
func New(options ...Option) (*Compiler, error) {
	c := &Compiler{fs: afero.NewOsFs()}
	if err := c.SetOption(options...); err != nil {
		return nil, err
	}
	return c, nil
}

// SetOption takes one or more option functions and applies them in order to
// the Compiler.
func (c *Compiler) SetOption(options ...Option) error {
	for _, option := range options {
		if err := option(c); err != nil {
			return err
		}
	}
	return nil
}

// Tokenize lexes the program read from input, passing each token to fn up to
// and including EOF.  It stops at the first lexical error or the first error
// returned by fn.
func (c *Compiler) Tokenize(name string, input io.Reader, fn func(parser.Token) error) error {
	l := parser.NewLexer(filepath.Base(name), input)
	for {
		tok, err := l.Scan()
		if err != nil {
			c.recordError(name, err)
			return err
		}
		if c.dumpTokens {
			glog.Infof("%s", tok)
		}
		if err := fn(tok); err != nil {
			return err
		}
		if tok.Kind == parser.EOF {
			return nil
		}
	}
}

// Analyse parses and checks the program read from input, returning the
// completed symbol tables.
func (c *Compiler) Analyse(name string, input io.Reader) (*symbol.Unit, error) {
	u, err := parser.Parse(filepath.Base(name), input)
	if err != nil {
		c.recordError(name, err)
		return nil, err
	}
	return u, nil
}

// Generate writes the binary module for u to w.
func (c *Compiler) Generate(w io.Writer, u *symbol.Unit) error {
	if !c.dumpBytecode {
		return generator.Generate(w, u)
	}
	var buf bytes.Buffer
	if err := generator.Generate(io.MultiWriter(w, &buf), u); err != nil {
		return err
	}
	obj, err := generator.Decode(buf.Bytes())
	if err != nil {
		return err
	}
	glog.Info("Dumping module and bytecode\n", obj.Dump())
	return nil
}

// Compile analyses the program read from input and writes its binary module
// to w.  Nothing is written to w unless compilation succeeds.
func (c *Compiler) Compile(name string, input io.Reader, w io.Writer) error {
	start := time.Now()
	u, err := c.Analyse(name, input)
	if err != nil {
		return err
	}
	if err := c.Generate(w, u); err != nil {
		c.recordError(name, err)
		return err
	}
	CompileDurations.Observe(time.Since(start).Seconds())
	Compiles.Add(filepath.Base(name), 1)
	glog.Infof("Compiled program %s", name)
	return nil
}

// CompileFile compiles the program at path src and writes the module to path
// dst on the Compiler's filesystem.  dst is left untouched on failure.
func (c *Compiler) CompileFile(src, dst string) error {
	f, err := c.fs.Open(src)
	if err != nil {
		c.recordError(src, err)
		return pkgerrors.Wrapf(err, "failed to open program %q", src)
	}
	defer func() {
		if err := f.Close(); err != nil {
			glog.Warning(err)
		}
	}()
	var buf bytes.Buffer
	if err := c.Compile(src, f, &buf); err != nil {
		return pkgerrors.Wrapf(err, "compile failed for %s", src)
	}
	if err := afero.WriteFile(c.fs, dst, buf.Bytes(), 0o644); err != nil {
		c.recordError(src, err)
		return pkgerrors.Wrapf(err, "failed to write module %q", dst)
	}
	return nil
}

// recordError counts a failed compilation of name.
func (c *Compiler) recordError(name string, err error) {
	CompileErrors.Add(filepath.Base(name), 1)
	family := "io"
	var e *errors.Error
	if pkgerrors.As(err, &e) {
		family = e.Family().String()
	}
	CompileErrorsByFamily.WithLabelValues(family).Inc()
}
