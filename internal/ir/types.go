package ir

import (
	"fmt"
	"strings"

	"chime/internal/types"
)

// TypeKind enumerates IR type kinds.
type TypeKind uint8

const (
	// TypeVoid is the type of effects and of unit.
	TypeVoid TypeKind = iota
	// TypeBool is a boolean.
	TypeBool
	// TypeInt is a signed integer.
	TypeInt
	// TypeFloat is a double-precision float.
	TypeFloat
	// TypePtr is a pointer to an element type.
	TypePtr
	// TypeFn is a function type.
	TypeFn
	// TypeStruct is a struct with named fields.
	TypeStruct
)

// Type is one IR type. Composite payloads are pointers so the zero
// Type is a valid void.
type Type struct {
	Kind   TypeKind
	Elem   *Type // TypePtr
	Params []Type
	Result *Type       // TypeFn
	Struct *StructType // TypeStruct
}

// StructField is one named field of a struct type.
type StructField struct {
	Name string
	Type Type
}

// StructType is a named struct layout.
type StructType struct {
	Name   string
	Fields []StructField
}

// Field returns the field with the given name, or nil.
func (s *StructType) Field(name string) *StructField {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// PtrTo builds a pointer type.
func PtrTo(elem Type) Type {
	return Type{Kind: TypePtr, Elem: &elem}
}

// FnOf builds a function type.
func FnOf(params []Type, result Type) Type {
	return Type{Kind: TypeFn, Params: params, Result: &result}
}

// String renders the type for dumps and error messages.
func (t Type) String() string {
	switch t.Kind {
	case TypeVoid:
		return "void"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypePtr:
		return "*" + t.Elem.String()
	case TypeFn:
		parts := make([]string, len(t.Params))
		for i := range t.Params {
			parts[i] = t.Params[i].String()
		}
		return fmt.Sprintf("fn(%s) %s", strings.Join(parts, ", "), t.Result.String())
	case TypeStruct:
		if t.Struct.Name != "" {
			return t.Struct.Name
		}
		parts := make([]string, len(t.Struct.Fields))
		for i := range t.Struct.Fields {
			parts[i] = t.Struct.Fields[i].Name + " " + t.Struct.Fields[i].Type.String()
		}
		return "struct{" + strings.Join(parts, "; ") + "}"
	default:
		return "invalid"
	}
}

// EmitType maps a fully resolved static type to its IR representation.
// Cells and events become pointers to their element type; records and
// pairs are always passed by reference, so they become pointers to a
// struct layout. An unresolved type here is a contract violation by an
// upstream phase.
func EmitType(in *types.Interner, id types.TypeID) (Type, error) {
	if id == types.NoTypeID {
		return Type{}, fmt.Errorf("ir: missing type annotation")
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return Type{}, fmt.Errorf("ir: unknown type id %d", id)
	}
	switch tt.Kind {
	case types.KindUnit:
		return Type{Kind: TypeVoid}, nil
	case types.KindBool:
		return Type{Kind: TypeBool}, nil
	case types.KindInt:
		return Type{Kind: TypeInt}, nil
	case types.KindFloat:
		return Type{Kind: TypeFloat}, nil
	case types.KindRef, types.KindEvent:
		elem, err := EmitType(in, tt.Elem)
		if err != nil {
			return Type{}, err
		}
		return PtrTo(elem), nil
	case types.KindFn:
		info, ok := in.Fn(id)
		if !ok {
			return Type{}, fmt.Errorf("ir: malformed function type %s", in.String(id))
		}
		params := make([]Type, len(info.Params))
		for i, p := range info.Params {
			pt, err := EmitType(in, p)
			if err != nil {
				return Type{}, err
			}
			params[i] = pt
		}
		result, err := EmitType(in, info.Result)
		if err != nil {
			return Type{}, err
		}
		return FnOf(params, result), nil
	case types.KindPair:
		fst, err := EmitType(in, tt.Elem)
		if err != nil {
			return Type{}, err
		}
		snd, err := EmitType(in, tt.Second)
		if err != nil {
			return Type{}, err
		}
		return PtrTo(Type{Kind: TypeStruct, Struct: &StructType{
			Fields: []StructField{{Name: "fst", Type: fst}, {Name: "snd", Type: snd}},
		}}), nil
	case types.KindRecord:
		info, ok := in.Record(id)
		if !ok {
			return Type{}, fmt.Errorf("ir: malformed record type %s", in.String(id))
		}
		fields := make([]StructField, len(info.Fields))
		for i, f := range info.Fields {
			ft, err := EmitType(in, f.Type)
			if err != nil {
				return Type{}, err
			}
			fields[i] = StructField{Name: f.Name, Type: ft}
		}
		return PtrTo(Type{Kind: TypeStruct, Struct: &StructType{Fields: fields}}), nil
	case types.KindVar:
		return Type{}, fmt.Errorf("ir: unresolved type %s at code generation", in.String(id))
	case types.KindString:
		return Type{}, fmt.Errorf("ir: string type is not representable in the target")
	default:
		return Type{}, fmt.Errorf("ir: cannot emit type %s", in.String(id))
	}
}
