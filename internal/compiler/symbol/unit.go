// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package symbol

// Builtins lists the library functions every program may call, in the order
// their names are seeded into the global table.
var Builtins = []struct {
	Name   string
	Param  Type // Void for none
	Return Type
}{
	{"getint", Void, Int},
	{"getdouble", Void, Double},
	{"getchar", Void, Int},
	{"putint", Int, Void},
	{"putdouble", Double, Void},
	{"putchar", Int, Void},
	{"putstr", String, Void},
	{"putln", Void, Void},
}

// EntryName is the name of the synthetic program entry function.
const EntryName = "_start"

// Unit is the result of analysing a program: the global table and the
// function table, complete and ready for generation.
type Unit struct {
	Globals   *Table
	Functions *Table
	Start     *Entry // the synthetic entry function, function slot 0
	Main      *Entry // nil when the program declares no main
}

// NewUnit creates a unit holding the synthetic entry function and one
// global string constant per built-in name.
func NewUnit() *Unit {
	u := &Unit{
		Globals:   NewTable(nil),
		Functions: NewTable(nil),
	}
	u.Start = NewFunction("", Void, nil)
	// A synthetic entry can't collide with anything.
	_ = u.Functions.Add(u.Start)
	for _, b := range Builtins {
		_ = u.Globals.Add(NewString(b.Name, b.Name))
	}
	return u
}

// Builtin returns the index into Builtins of name, or -1.
func Builtin(name string) int {
	for i, b := range Builtins {
		if b.Name == name {
			return i
		}
	}
	return -1
}
