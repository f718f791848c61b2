// Package value models runtime values produced by the host evaluator
// and their reflection back into terms for inlining.
package value

import (
	"chime/internal/term"
	"chime/internal/types"
)

// Kind enumerates runtime value kinds.
type Kind uint8

const (
	// KindUnit is the unit value.
	KindUnit Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindInt is an integer.
	KindInt
	// KindFloat is a float.
	KindFloat
	// KindString is a string.
	KindString
	// KindPair is a pair of two values.
	KindPair
	// KindCell is a mutable cell owning its current value.
	KindCell
	// KindRecord maps field names to values.
	KindRecord
	// KindClosure is a function value with captured environment.
	KindClosure
	// KindNative is a foreign function, optionally carrying the
	// external symbol name it compiles to.
	KindNative
)

// String returns a human-readable name for the value kind.
func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindPair:
		return "Pair"
	case KindCell:
		return "Cell"
	case KindRecord:
		return "Record"
	case KindClosure:
		return "Closure"
	case KindNative:
		return "Native"
	default:
		return "Unknown"
	}
}

// Value is one runtime value. Type is filled by the host evaluator when
// the static type is known, NoTypeID otherwise.
type Value struct {
	Kind Kind
	Type types.TypeID

	Bool   bool
	Int    int64
	Float  float64
	Str    string
	First  *Value // pair
	Second *Value // pair
	Cell   *Value // current cell content

	Fields  []FieldValue
	Closure *Closure
	Native  *Native
}

// FieldValue is one record field with its generalization flag.
type FieldValue struct {
	Name        string
	Generalized bool
	Value       *Value
}

// Bound associates a name with a runtime value in an environment.
type Bound struct {
	Name  string
	Value *Value
}

// Closure is a function value: declared parameters with optional
// defaults, already-applied partial arguments, the captured lexical
// environment and the body term.
type Closure struct {
	Params  []term.Param
	Partial []Bound
	Env     []Bound
	Body    *term.Term
}

// Native is a foreign function. Extern is the external symbol name the
// generated code calls; when empty no code can be emitted for it.
type Native struct {
	Name   string
	Extern string
}
