package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindVar is an unresolved type variable. Terms reaching code
	// generation must not contain it.
	KindVar
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindString
	// KindRef is a mutable cell holding an Elem value.
	KindRef
	// KindEvent is an event channel carrying an Elem payload.
	KindEvent
	// KindPair is a pair of Elem and Second.
	KindPair
	// KindRecord is a record type; Payload indexes the interner's
	// record table.
	KindRecord
	// KindFn is a function type; Payload indexes the interner's
	// signature table.
	KindFn
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVar:
		return "var"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindRef:
		return "ref"
	case KindEvent:
		return "event"
	case KindPair:
		return "pair"
	case KindRecord:
		return "record"
	case KindFn:
		return "fn"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID // element for ref/event, first component for pair
	Second  TypeID // second component for pair
	Payload uint32 // record/signature table index, or type-variable id
}

// Descriptor helpers ---------------------------------------------------------

// MakeRef describes a mutable cell of the element type.
func MakeRef(elem TypeID) Type {
	return Type{Kind: KindRef, Elem: elem}
}

// MakeEvent describes an event channel carrying the element type.
func MakeEvent(elem TypeID) Type {
	return Type{Kind: KindEvent, Elem: elem}
}

// MakePair describes a pair of two component types.
func MakePair(first, second TypeID) Type {
	return Type{Kind: KindPair, Elem: first, Second: second}
}

// MakeVar describes an unresolved type variable with a distinguishing id.
func MakeVar(id uint32) Type {
	return Type{Kind: KindVar, Payload: id}
}

// Field is a named component of a record type.
type Field struct {
	Name string
	Type TypeID
}

// RecordInfo stores the field table for one record type.
type RecordInfo struct {
	Fields []Field
}

// FieldType returns the type of the named field, or NoTypeID.
func (r *RecordInfo) FieldType(name string) TypeID {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			return r.Fields[i].Type
		}
	}
	return NoTypeID
}

// FnInfo stores the signature for one function type.
type FnInfo struct {
	Params []TypeID
	Result TypeID
}
