package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	Int     TypeID
	Float   TypeID
	String  TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	records  []RecordInfo
	sigs     []FnInfo
	nextVar  uint32
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	in.records = append(in.records, RecordInfo{}) // reserve 0 as invalid sentinel
	in.sigs = append(in.sigs, FnInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// InternRecord registers a record type with the given field table.
// Field names must be unique; order is preserved for deterministic output.
func (in *Interner) InternRecord(fields []Field) TypeID {
	payload, err := safecast.Conv[uint32](len(in.records))
	if err != nil {
		panic(fmt.Errorf("len(records) overflow: %w", err))
	}
	in.records = append(in.records, RecordInfo{Fields: fields})
	return in.internRaw(Type{Kind: KindRecord, Payload: payload})
}

// InternFn registers a function type with the given signature.
func (in *Interner) InternFn(params []TypeID, result TypeID) TypeID {
	payload, err := safecast.Conv[uint32](len(in.sigs))
	if err != nil {
		panic(fmt.Errorf("len(sigs) overflow: %w", err))
	}
	in.sigs = append(in.sigs, FnInfo{Params: params, Result: result})
	return in.internRaw(Type{Kind: KindFn, Payload: payload})
}

// FreshVar mints a new unresolved type variable.
func (in *Interner) FreshVar() TypeID {
	in.nextVar++
	return in.Intern(MakeVar(in.nextVar))
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Record returns the field table of a record type.
func (in *Interner) Record(id TypeID) (*RecordInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindRecord || int(t.Payload) >= len(in.records) {
		return nil, false
	}
	return &in.records[t.Payload], true
}

// Fn returns the signature of a function type.
func (in *Interner) Fn(id TypeID) (*FnInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindFn || int(t.Payload) >= len(in.sigs) {
		return nil, false
	}
	return &in.sigs[t.Payload], true
}

// IsResolved reports whether no type variable is reachable from id.
func (in *Interner) IsResolved(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindVar:
		return false
	case KindRef, KindEvent:
		return in.IsResolved(t.Elem)
	case KindPair:
		return in.IsResolved(t.Elem) && in.IsResolved(t.Second)
	case KindRecord:
		rec, ok := in.Record(id)
		if !ok {
			return false
		}
		for i := range rec.Fields {
			if !in.IsResolved(rec.Fields[i].Type) {
				return false
			}
		}
		return true
	case KindFn:
		sig, ok := in.Fn(id)
		if !ok {
			return false
		}
		for _, p := range sig.Params {
			if !in.IsResolved(p) {
				return false
			}
		}
		return in.IsResolved(sig.Result)
	default:
		return true
	}
}

// String renders a TypeID for diagnostics and traces.
func (in *Interner) String(id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<none>"
	}
	switch t.Kind {
	case KindRef:
		return "ref " + in.String(t.Elem)
	case KindEvent:
		return "event " + in.String(t.Elem)
	case KindPair:
		return "(" + in.String(t.Elem) + " * " + in.String(t.Second) + ")"
	case KindVar:
		return fmt.Sprintf("'t%d", t.Payload)
	case KindRecord:
		rec, _ := in.Record(id)
		var sb strings.Builder
		sb.WriteString("{")
		for i, f := range rec.Fields {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			sb.WriteString(in.String(f.Type))
		}
		sb.WriteString("}")
		return sb.String()
	case KindFn:
		sig, _ := in.Fn(id)
		var sb strings.Builder
		sb.WriteString("(")
		for i, p := range sig.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(in.String(p))
		}
		sb.WriteString(") -> ")
		sb.WriteString(in.String(sig.Result))
		return sb.String()
	default:
		return t.Kind.String()
	}
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Second  TypeID
	Payload uint32
}
