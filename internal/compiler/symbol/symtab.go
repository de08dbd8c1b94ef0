// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package symbol holds the symbol tables built during analysis.  A table is
// an ordered, slot-allocating collection of entries: the global table, the
// function table, and each function's parameter and local tables.
package symbol

import (
	"bytes"
	"fmt"

	"github.com/c0lang/c0c/internal/code"
	"github.com/c0lang/c0c/internal/compiler/errors"
	"github.com/c0lang/c0c/internal/compiler/position"
)

// Kind enumerates the kind of an Entry.
type Kind int

// Kind enumerates the kinds of symbols found in the program text.
const (
	FnSymbol    Kind = iota // Functions
	LetSymbol               // Mutable variables
	ConstSymbol             // Constants
	endSymbol
)

func (k Kind) String() string {
	switch k {
	case FnSymbol:
		return "function"
	case LetSymbol:
		return "variable"
	case ConstSymbol:
		return "constant"
	default:
		panic("unexpected symbolkind")
	}
}

// Entry describes a named or synthetic program object.
type Entry struct {
	Name        string             // identifier name, empty for synthetic entries
	Kind        Kind               // kind of program object
	Type        Type               // variable type, or function return type
	Slot        int                // slot index in the owning table
	Initialized bool               // assigned a value at least once
	Pos         *position.Position // source position of the declaration, if any

	// Value is the literal value of a global numeric entry, as raw bits.
	Value int64
	// Text is the contents of a string constant.
	Text string

	Params *Table        // function parameters, nil if there are none
	Locals *Table        // function local variables
	Code   *code.Program // function instruction list
}

// NewVariable creates a let or const entry.
func NewVariable(name string, kind Kind, typ Type, pos *position.Position) *Entry {
	return &Entry{Name: name, Kind: kind, Type: typ, Pos: pos}
}

// NewString creates a string constant entry.  Built-in names and string
// literals are both stored this way.
func NewString(name, text string) *Entry {
	return &Entry{Name: name, Kind: ConstSymbol, Type: String, Initialized: true, Text: text}
}

// NewFunction creates a function entry with an empty local table and
// instruction list.  The parameter table is created on the first parameter.
func NewFunction(name string, ret Type, pos *position.Position) *Entry {
	return &Entry{
		Name:        name,
		Kind:        FnSymbol,
		Type:        ret,
		Pos:         pos,
		Initialized: true,
		Locals:      NewTable(nil),
		Code:        &code.Program{},
	}
}

// IsConstant reports whether e can never be assigned.
func (e *Entry) IsConstant() bool {
	return e.Kind == ConstSymbol
}

// AddParam declares a parameter of function e.
func (e *Entry) AddParam(p *Entry) error {
	if e.Params == nil {
		e.Params = NewTable(nil)
		e.Locals.fallback = e.Params
	}
	return e.Params.Add(p)
}

// ParamCount returns the number of parameter slots of function e.
func (e *Entry) ParamCount() int {
	if e.Params == nil {
		return 0
	}
	return e.Params.Count()
}

// ReturnSlots returns the number of return slots of function e.
func (e *Entry) ReturnSlots() int {
	if e.Type == Void {
		return 0
	}
	return 1
}

// ArgSlot returns the argument slot operand for the parameter at slot.  The
// return value, if any, occupies argument slot 0.
func (e *Entry) ArgSlot(slot int) int {
	return slot + e.ReturnSlots()
}

// Table is an ordered symbol table.  Entries are kept in insertion order,
// and each is given the next free slot.  A table may link to a fallback
// table consulted when a name is not found locally.
type Table struct {
	entries  []*Entry
	names    map[string]*Entry
	fallback *Table
	next     int
}

// NewTable creates a new table with the given fallback, which may be nil.
func NewTable(fallback *Table) *Table {
	return &Table{names: make(map[string]*Entry), fallback: fallback}
}

// IsRoot reports whether t has no fallback table.
func (t *Table) IsRoot() bool {
	return t.fallback == nil
}

// NextSlot allocates the next free slot in t.
func (t *Table) NextSlot() int {
	s := t.next
	t.next++
	return s
}

// Add allocates the next free slot for e and inserts it into t.  A named
// entry whose name is already present in t is rejected with
// DuplicateDeclaration and t is unchanged.  Synthetic entries are never
// rejected.
func (t *Table) Add(e *Entry) error {
	if err := t.checkDuplicate(e); err != nil {
		return err
	}
	e.Slot = t.NextSlot()
	t.insert(e)
	return nil
}

// Reserve allocates a slot for an entry that will be inserted once its
// initializer has been analysed.
func (t *Table) Reserve(e *Entry) {
	e.Slot = t.NextSlot()
}

// Insert inserts an entry whose slot was previously reserved.
func (t *Table) Insert(e *Entry) error {
	if err := t.checkDuplicate(e); err != nil {
		return err
	}
	t.insert(e)
	return nil
}

func (t *Table) checkDuplicate(e *Entry) error {
	if e.Name == "" || t.names[e.Name] == nil {
		return nil
	}
	var pos position.Position
	if e.Pos != nil {
		pos = *e.Pos
	}
	return errors.New(errors.DuplicateDeclaration, pos, "%q is already declared", e.Name)
}

func (t *Table) insert(e *Entry) {
	if e.Name != "" {
		t.names[e.Name] = e
	}
	t.entries = append(t.entries, e)
}

// Has reports whether name is declared directly in t.
func (t *Table) Has(name string) bool {
	_, ok := t.names[name]
	return ok
}

// LookupLocal returns the entry named name in t only, or nil.
func (t *Table) LookupLocal(name string) *Entry {
	return t.names[name]
}

// Lookup returns the entry named name in t or any fallback table, or nil.
func (t *Table) Lookup(name string) *Entry {
	for tab := t; tab != nil; tab = tab.fallback {
		if e := tab.names[name]; e != nil {
			return e
		}
	}
	return nil
}

// Count returns the number of slots allocated in t.
func (t *Table) Count() int {
	return t.next
}

// Entries returns the entries of t in insertion order.
func (t *Table) Entries() []*Entry {
	return t.entries
}

// String prints the table and its fallbacks.  This method is only used for
// debugging.
func (t *Table) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "table %p {", t)
	if t != nil {
		fmt.Fprintln(&buf)
		for _, e := range t.entries {
			fmt.Fprintf(&buf, "\t%d: %s %q %s\n", e.Slot, e.Kind, e.Name, e.Type)
		}
		if t.fallback != nil {
			fmt.Fprintf(&buf, "%s", t.fallback.String())
		}
	}
	fmt.Fprintf(&buf, "}\n")
	return buf.String()
}
