// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

/*
Command c0c compiles c0 programs to bytecode modules.

In tokenize mode it prints the tokens of the program, one per line.  In
analyse mode it checks the program and prints its global and function
tables.  In generate mode, the default, it writes the binary module to the
-o file or to standard output.  In run mode it compiles the program and
executes it on the reference virtual machine, connected to standard input
and output.
*/
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/c0lang/c0c/internal/compiler"
	"github.com/c0lang/c0c/internal/compiler/generator"
	"github.com/c0lang/c0c/internal/compiler/parser"
	"github.com/c0lang/c0c/internal/compiler/symbol"
	"github.com/c0lang/c0c/internal/vm"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/prometheus/common/version"
)

var (
	prog     = flag.String("prog", "", "Name of the c0 program to compile.")
	stdin    = flag.Bool("stdin", false, "Read the program from standard input instead of -prog.")
	mode     = flag.String("mode", "generate", "Operating mode: tokenize, analyse, generate or run.")
	output   = flag.String("o", "", "Write the module to this file instead of standard output.")
	maxSteps = flag.Int("max_steps", vm.DefaultMaxSteps, "In run mode, the maximum number of instructions to execute.")

	dumpTokens   = flag.Bool("dump_tokens", false, "Dump tokens as they are lexed (to INFO log).")
	dumpBytecode = flag.Bool("dump_bytecode", false, "Dump bytecode of the generated module (to INFO log).")
	trace        = flag.Bool("trace", false, "In run mode, log every executed instruction (to INFO log).")

	showVersion = flag.Bool("version", false, "Print c0c version information.")
)

var (
	// Branch as well as Version and Revision identifies where in the git
	// history the build came from, as supplied by the linker.
	Branch   = "unknown"
	Version  = "unknown"
	Revision = "unknown"
)

func main() {
	version.Branch = Branch
	version.Version = Version
	version.Revision = Revision

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", version.Print("c0c"))
		fmt.Fprintf(os.Stderr, "\nUsage:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Println(version.Print("c0c"))
		os.Exit(0)
	}
	if len(flag.Args()) > 0 {
		glog.Exitf("Too many extra arguments specified: %q", flag.Args())
	}

	var opts []compiler.Option
	if *dumpTokens {
		opts = append(opts, compiler.DumpTokens())
	}
	if *dumpBytecode {
		opts = append(opts, compiler.DumpBytecode())
	}
	c, err := compiler.New(opts...)
	if err != nil {
		glog.Exit(err)
	}

	// Compiling file to file goes through the compiler's filesystem.
	if *mode == "generate" && *prog != "" && !*stdin && *output != "" {
		if err := c.CompileFile(*prog, *output); err != nil {
			glog.Exit(err)
		}
		return
	}

	name, input, err := openProgram()
	if err != nil {
		glog.Exit(err)
	}
	defer func() {
		if err := input.Close(); err != nil {
			glog.Warning(err)
		}
	}()

	switch *mode {
	case "tokenize":
		err = c.Tokenize(name, input, func(tok parser.Token) error {
			_, err := fmt.Println(tok)
			return err
		})
	case "analyse":
		var u *symbol.Unit
		if u, err = c.Analyse(name, input); err == nil {
			err = printUnit(os.Stdout, u)
		}
	case "generate":
		err = generate(c, name, input)
	case "run":
		if *stdin {
			glog.Exitf("-stdin cannot be used in run mode, the program reads standard input")
		}
		err = run(c, name, input)
	default:
		glog.Exitf("Unknown mode %q", *mode)
	}
	if err != nil {
		glog.Exit(err)
	}
}

func openProgram() (string, io.ReadCloser, error) {
	if *stdin {
		return "<stdin>", io.NopCloser(os.Stdin), nil
	}
	if *prog == "" {
		return "", nil, errors.New("no -prog given")
	}
	f, err := os.Open(*prog)
	if err != nil {
		return "", nil, errors.Wrapf(err, "failed to open program %q", *prog)
	}
	return *prog, f, nil
}

func generate(c *compiler.Compiler, name string, input io.Reader) error {
	var buf bytes.Buffer
	if err := c.Compile(name, input, &buf); err != nil {
		return err
	}
	if *output == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return errors.Wrap(err, "failed to write module")
	}
	return errors.Wrapf(os.WriteFile(*output, buf.Bytes(), 0o644), "failed to write module %q", *output)
}

func run(c *compiler.Compiler, name string, input io.Reader) error {
	var buf bytes.Buffer
	if err := c.Compile(name, input, &buf); err != nil {
		return err
	}
	obj, err := generator.Decode(buf.Bytes())
	if err != nil {
		return err
	}
	opts := []vm.Option{vm.Input(os.Stdin), vm.Output(os.Stdout), vm.MaxSteps(*maxSteps)}
	if *trace {
		opts = append(opts, vm.Trace())
	}
	v, err := vm.New(name, obj, opts...)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return v.Run(ctx)
}

// printUnit writes the global and function tables of u in slot order.
func printUnit(w io.Writer, u *symbol.Unit) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintln(tw, "globals")
	for _, e := range u.Globals.Entries() {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%q\n", e.Slot, e.Kind, e.Type, e.Name)
	}
	fmt.Fprintln(tw, "functions")
	for _, f := range u.Functions.Entries() {
		fmt.Fprintf(tw, "  %d\t%s\t%q\tparams %d\tlocals %d\tinstrs %d\n",
			f.Slot, f.Type, f.Name, f.ParamCount(), f.Locals.Count(), f.Code.Len())
	}
	return tw.Flush()
}
