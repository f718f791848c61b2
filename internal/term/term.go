// Package term provides the typed functional term model for chime.
//
// A term is the compiler's input representation: a per-sample synthesis
// computation expressed with bindings, mutable cells, records and
// functions. Every node carries a TypeID assigned by the upstream
// checker; this package never infers types, it only consumes them.
//
// The term layer is designed to be the input for:
// - Hygienic substitution (closing a term over its environment)
// - Effect-threading reduction to weak-head normal form
// - Lowering into the imperative IR
package term

import (
	"chime/internal/types"
)

// Kind enumerates term node kinds.
type Kind uint8

const (
	// KindVar represents a variable reference by name.
	KindVar Kind = iota
	// KindUnit represents the unit literal.
	KindUnit
	// KindBool represents a boolean literal.
	KindBool
	// KindInt represents an integer literal.
	KindInt
	// KindFloat represents a float literal.
	KindFloat
	// KindString represents a string literal.
	KindString
	// KindSeq evaluates the left term, discards it, then evaluates the right.
	KindSeq
	// KindRefNew creates a mutable cell from an initializer.
	KindRefNew
	// KindRefGet reads a mutable cell.
	KindRefGet
	// KindRefSet writes a mutable cell.
	KindRefSet
	// KindRecord constructs a record from named fields.
	KindRecord
	// KindProject reads a record field, with an optional default.
	KindProject
	// KindReplace replaces one field of a record.
	KindReplace
	// KindLet binds a name to a definition inside a body.
	KindLet
	// KindLambda is a function abstraction with an ordered parameter list.
	KindLambda
	// KindApply applies a callee to named arguments.
	KindApply
	// KindBuiltin is a resolved builtin operator.
	KindBuiltin
	// KindOpen is a module-opening form. It is accepted structurally but
	// never produced by this compiler; reaching code generation with it
	// is a fatal condition.
	KindOpen
)

// String returns a human-readable name for the term kind.
func (k Kind) String() string {
	switch k {
	case KindVar:
		return "Var"
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
	case KindSeq:
		return "Seq"
	case KindRefNew:
		return "RefNew"
	case KindRefGet:
		return "RefGet"
	case KindRefSet:
		return "RefSet"
	case KindRecord:
		return "Record"
	case KindProject:
		return "Project"
	case KindReplace:
		return "Replace"
	case KindLet:
		return "Let"
	case KindLambda:
		return "Lambda"
	case KindApply:
		return "Apply"
	case KindBuiltin:
		return "Builtin"
	case KindOpen:
		return "Open"
	default:
		return "Unknown"
	}
}

// Term represents one typed term node.
type Term struct {
	Kind Kind
	Type types.TypeID // Always filled by the upstream checker
	Data Data         // Kind-specific payload
}

// Data is the interface for term-specific payloads.
type Data interface {
	termData()
}

// VarData holds data for KindVar.
type VarData struct {
	Name string
}

func (VarData) termData() {}

// UnitData holds data for KindUnit.
type UnitData struct{}

func (UnitData) termData() {}

// BoolData holds data for KindBool.
type BoolData struct {
	Value bool
}

func (BoolData) termData() {}

// IntData holds data for KindInt.
type IntData struct {
	Value int64
}

func (IntData) termData() {}

// FloatData holds data for KindFloat.
type FloatData struct {
	Value float64
}

func (FloatData) termData() {}

// StringData holds data for KindString.
type StringData struct {
	Value string
}

func (StringData) termData() {}

// SeqData holds data for KindSeq.
type SeqData struct {
	Left  *Term
	Right *Term
}

func (SeqData) termData() {}

// RefNewData holds data for KindRefNew.
type RefNewData struct {
	Init *Term
}

func (RefNewData) termData() {}

// RefGetData holds data for KindRefGet.
type RefGetData struct {
	Cell *Term
}

func (RefGetData) termData() {}

// RefSetData holds data for KindRefSet.
type RefSetData struct {
	Cell  *Term
	Value *Term
}

func (RefSetData) termData() {}

// FieldInit represents one field in a record construction.
type FieldInit struct {
	Name  string
	Value *Term
}

// RecordData holds data for KindRecord. Field order is irrelevant and
// names are unique.
type RecordData struct {
	Fields []FieldInit
}

func (RecordData) termData() {}

// Field returns the value bound to a field name, or nil.
func (d *RecordData) Field(name string) *Term {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return d.Fields[i].Value
		}
	}
	return nil
}

// ProjectData holds data for KindProject.
type ProjectData struct {
	Base    *Term
	Field   string
	Default *Term // nil when the projection has no default
}

func (ProjectData) termData() {}

// ReplaceData holds data for KindReplace.
type ReplaceData struct {
	Base  *Term
	Field string
	Value *Term
}

func (ReplaceData) termData() {}

// LetData holds data for KindLet.
type LetData struct {
	Name string
	Def  *Term
	Body *Term
}

func (LetData) termData() {}

// Param is one declared function parameter.
type Param struct {
	Name    string
	Type    types.TypeID
	Default *Term // nil when the parameter has no default
}

// LambdaData holds data for KindLambda.
type LambdaData struct {
	Params []Param
	Body   *Term
}

func (LambdaData) termData() {}

// Param returns the declared parameter with the given name, or nil.
func (d *LambdaData) Param(name string) *Param {
	for i := range d.Params {
		if d.Params[i].Name == name {
			return &d.Params[i]
		}
	}
	return nil
}

// NamedArg is one named argument in an application.
type NamedArg struct {
	Name  string
	Value *Term
}

// ApplyData holds data for KindApply.
type ApplyData struct {
	Callee *Term
	Args   []NamedArg
}

func (ApplyData) termData() {}

// BuiltinData holds data for KindBuiltin.
type BuiltinData struct {
	Op Op
}

func (BuiltinData) termData() {}

// OpenData holds data for KindOpen.
type OpenData struct {
	Module string
	Body   *Term
}

func (OpenData) termData() {}

// PeriodName is the reserved identifier for the synthesis period (the
// duration of one sample in seconds). The substitution engine never
// freshens it and the code generator binds it to a fixed state field.
const PeriodName = "period"

// Constructors -----------------------------------------------------------

// NewVar builds a variable reference.
func NewVar(name string, ty types.TypeID) *Term {
	return &Term{Kind: KindVar, Type: ty, Data: VarData{Name: name}}
}

// NewUnit builds the unit literal.
func NewUnit(ty types.TypeID) *Term {
	return &Term{Kind: KindUnit, Type: ty, Data: UnitData{}}
}

// NewBool builds a boolean literal.
func NewBool(v bool, ty types.TypeID) *Term {
	return &Term{Kind: KindBool, Type: ty, Data: BoolData{Value: v}}
}

// NewInt builds an integer literal.
func NewInt(v int64, ty types.TypeID) *Term {
	return &Term{Kind: KindInt, Type: ty, Data: IntData{Value: v}}
}

// NewFloat builds a float literal.
func NewFloat(v float64, ty types.TypeID) *Term {
	return &Term{Kind: KindFloat, Type: ty, Data: FloatData{Value: v}}
}

// NewString builds a string literal.
func NewString(v string, ty types.TypeID) *Term {
	return &Term{Kind: KindString, Type: ty, Data: StringData{Value: v}}
}

// NewSeq builds a sequencing node.
func NewSeq(left, right *Term, ty types.TypeID) *Term {
	return &Term{Kind: KindSeq, Type: ty, Data: SeqData{Left: left, Right: right}}
}

// NewRefNew builds a mutable-cell creation.
func NewRefNew(init *Term, ty types.TypeID) *Term {
	return &Term{Kind: KindRefNew, Type: ty, Data: RefNewData{Init: init}}
}

// NewRefGet builds a mutable-cell read.
func NewRefGet(cell *Term, ty types.TypeID) *Term {
	return &Term{Kind: KindRefGet, Type: ty, Data: RefGetData{Cell: cell}}
}

// NewRefSet builds a mutable-cell write.
func NewRefSet(cell, value *Term, ty types.TypeID) *Term {
	return &Term{Kind: KindRefSet, Type: ty, Data: RefSetData{Cell: cell, Value: value}}
}

// NewRecord builds a record construction.
func NewRecord(fields []FieldInit, ty types.TypeID) *Term {
	return &Term{Kind: KindRecord, Type: ty, Data: RecordData{Fields: fields}}
}

// NewProject builds a field projection.
func NewProject(base *Term, field string, def *Term, ty types.TypeID) *Term {
	return &Term{Kind: KindProject, Type: ty, Data: ProjectData{Base: base, Field: field, Default: def}}
}

// NewReplace builds a field replacement.
func NewReplace(base *Term, field string, value *Term, ty types.TypeID) *Term {
	return &Term{Kind: KindReplace, Type: ty, Data: ReplaceData{Base: base, Field: field, Value: value}}
}

// NewLet builds a local binding.
func NewLet(name string, def, body *Term, ty types.TypeID) *Term {
	return &Term{Kind: KindLet, Type: ty, Data: LetData{Name: name, Def: def, Body: body}}
}

// NewLambda builds a function abstraction.
func NewLambda(params []Param, body *Term, ty types.TypeID) *Term {
	return &Term{Kind: KindLambda, Type: ty, Data: LambdaData{Params: params, Body: body}}
}

// NewApply builds an application with named arguments.
func NewApply(callee *Term, args []NamedArg, ty types.TypeID) *Term {
	return &Term{Kind: KindApply, Type: ty, Data: ApplyData{Callee: callee, Args: args}}
}

// NewBuiltin builds a resolved builtin operator reference.
func NewBuiltin(op Op, ty types.TypeID) *Term {
	return &Term{Kind: KindBuiltin, Type: ty, Data: BuiltinData{Op: op}}
}
