// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package symbol

// Type is the type of a symbol or expression.
type Type int

// Types found in the program text.  String is only ever the type of
// synthetic constants: built-in names and string literals.
const (
	Void Type = iota
	Int
	Double
	String
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Int:
		return "int"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		panic("unexpected type")
	}
}

// IsNumeric reports whether values of type t occupy one 64-bit stack slot
// and take part in arithmetic.
func (t Type) IsNumeric() bool {
	return t == Int || t == Double
}
