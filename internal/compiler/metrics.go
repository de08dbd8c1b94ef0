// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package compiler

import (
	"expvar"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Compiles counts the number of successful compilations, by program name.
	Compiles = expvar.NewMap("compiles_total")
	// CompileErrors counts the number of failed compilations, by program name.
	CompileErrors = expvar.NewMap("compile_errors_total")

	// CompileDurations measures the time taken to analyse and generate a program.
	CompileDurations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "c0c",
		Subsystem: "compiler",
		Name:      "compile_duration_seconds",
		Help:      "Time taken to compile a program to a module.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	// CompileErrorsByFamily counts compile failures by error family.
	CompileErrorsByFamily = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "c0c",
		Subsystem: "compiler",
		Name:      "compile_errors_total",
		Help:      "Number of compilations aborted by an error.",
	}, []string{"family"})
)
