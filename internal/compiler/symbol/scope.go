// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package symbol

// Location says which table a name resolved in, and so which address
// instruction reaches it.
type Location int

const (
	Global Location = iota
	Param
	Local
)

func (l Location) String() string {
	switch l {
	case Global:
		return "global"
	case Param:
		return "param"
	case Local:
		return "local"
	default:
		panic("unexpected location")
	}
}

type frame struct {
	table *Table
	loc   Location
}

// Scope is an explicit stack of the tables visible at a point in the
// program, innermost last.  Pushing returns a new Scope and leaves the
// receiver untouched, so a Scope can be passed by value down the parse.
type Scope struct {
	frames []frame
}

// Push returns a new scope with t innermost.  A nil table is skipped so
// functions without parameters can push their absent parameter table.
func (s Scope) Push(t *Table, loc Location) Scope {
	if t == nil {
		return s
	}
	frames := make([]frame, len(s.frames), len(s.frames)+1)
	copy(frames, s.frames)
	return Scope{append(frames, frame{t, loc})}
}

// Resolve looks name up from the innermost table outwards, returning the
// entry and where it was found.
func (s Scope) Resolve(name string) (*Entry, Location, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if e := s.frames[i].table.LookupLocal(name); e != nil {
			return e, s.frames[i].loc, true
		}
	}
	return nil, 0, false
}

// Innermost returns the innermost table and its location.  It panics on an
// empty scope.
func (s Scope) Innermost() (*Table, Location) {
	f := s.frames[len(s.frames)-1]
	return f.table, f.loc
}

// Depth returns the number of tables in the scope.
func (s Scope) Depth() int {
	return len(s.frames)
}
