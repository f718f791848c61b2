// Package ir defines the imperative intermediate representation the
// compiler emits, plus the lowering from reduced terms into it.
//
// The IR is a typed tree of declarations and expressions built fresh
// per compilation and handed by value to an emission backend; it is
// never mutated after Emit returns. Expression sequences double as
// statement lists: every element but the last is evaluated for its
// effect, the last is the value of the sequence.
package ir

// DeclKind enumerates top-level declaration kinds.
type DeclKind uint8

const (
	// DeclType declares a named struct type.
	DeclType DeclKind = iota
	// DeclFunc declares a named function.
	DeclFunc
	// DeclConst declares a named constant.
	DeclConst
	// DeclAlias declares a named alias for another type.
	DeclAlias
)

// Decl is one top-level declaration.
type Decl struct {
	Kind DeclKind
	Name string

	Type  Type // DeclType: the declared type; DeclAlias: the target
	Func  FuncDecl
	Const ConstDecl
}

// Param is one declared function parameter.
type Param struct {
	Name string
	Type Type
}

// FuncDecl is the payload of a DeclFunc.
type FuncDecl struct {
	Params []Param
	Result Type
	Body   []*Expr
}

// ConstDecl is the payload of a DeclConst.
type ConstDecl struct {
	Type  Type
	Value *Expr
}

// ExprKind enumerates expression and statement kinds.
type ExprKind uint8

const (
	// ExprVoid is the void literal (the value of unit).
	ExprVoid ExprKind = iota
	// ExprBool is a boolean literal.
	ExprBool
	// ExprInt is an integer literal.
	ExprInt
	// ExprFloat is a float literal.
	ExprFloat
	// ExprIdent is a reference to a local, parameter or declaration.
	ExprIdent
	// ExprLet introduces a named local binding.
	ExprLet
	// ExprAlloc allocates storage for one value of an element type.
	ExprAlloc
	// ExprLoad reads through a pointer.
	ExprLoad
	// ExprStore writes through a pointer.
	ExprStore
	// ExprAddrOf takes the address of a struct field.
	ExprAddrOf
	// ExprFree releases an allocation.
	ExprFree
	// ExprField reads a struct field through a pointer.
	ExprField
	// ExprIf is a two-armed conditional; each arm is a statement list
	// whose last element is the arm's value.
	ExprIf
	// ExprPrim applies a primitive operator.
	ExprPrim
	// ExprCall calls a named function.
	ExprCall
)

// Expr is one IR expression or statement.
type Expr struct {
	Kind ExprKind
	Type Type

	Bool  bool
	Int   int64
	Float float64

	Ident  IdentExpr
	Let    LetExpr
	Alloc  AllocExpr
	Load   LoadExpr
	Store  StoreExpr
	AddrOf AddrOfExpr
	Free   FreeExpr
	Field  FieldExpr
	If     IfExpr
	Prim   PrimExpr
	Call   CallExpr
}

// IdentExpr references a name in scope.
type IdentExpr struct {
	Name string
}

// LetExpr binds a value to a local name.
type LetExpr struct {
	Name  string
	Value *Expr
}

// AllocExpr allocates storage for one value of Elem.
type AllocExpr struct {
	Elem Type
}

// LoadExpr reads the value a pointer refers to.
type LoadExpr struct {
	Ptr *Expr
}

// StoreExpr writes a value through a pointer.
type StoreExpr struct {
	Ptr   *Expr
	Value *Expr
}

// AddrOfExpr takes the address of Field within the struct Base points to.
type AddrOfExpr struct {
	Base  *Expr
	Field string
}

// FreeExpr releases the allocation a pointer refers to.
type FreeExpr struct {
	Ptr *Expr
}

// FieldExpr reads Field from the struct Base points to.
type FieldExpr struct {
	Base  *Expr
	Field string
}

// IfExpr is a conditional with statement-list arms.
type IfExpr struct {
	Cond *Expr
	Then []*Expr
	Else []*Expr
}

// PrimExpr applies a primitive operator to evaluated arguments.
type PrimExpr struct {
	Op   PrimOp
	Args []*Expr
}

// CallExpr calls a function by name.
type CallExpr struct {
	Name string
	Args []*Expr
}

// Constructors used by the lowering pass.

func NewVoid() *Expr { return &Expr{Kind: ExprVoid, Type: Type{Kind: TypeVoid}} }

func NewBool(v bool, ty Type) *Expr { return &Expr{Kind: ExprBool, Type: ty, Bool: v} }

func NewInt(v int64, ty Type) *Expr { return &Expr{Kind: ExprInt, Type: ty, Int: v} }

func NewFloat(v float64, ty Type) *Expr { return &Expr{Kind: ExprFloat, Type: ty, Float: v} }

func NewIdent(name string, ty Type) *Expr {
	return &Expr{Kind: ExprIdent, Type: ty, Ident: IdentExpr{Name: name}}
}

func NewLet(name string, value *Expr) *Expr {
	return &Expr{Kind: ExprLet, Type: Type{Kind: TypeVoid}, Let: LetExpr{Name: name, Value: value}}
}

func NewAlloc(elem Type) *Expr {
	return &Expr{Kind: ExprAlloc, Type: PtrTo(elem), Alloc: AllocExpr{Elem: elem}}
}

func NewLoad(ptr *Expr, ty Type) *Expr {
	return &Expr{Kind: ExprLoad, Type: ty, Load: LoadExpr{Ptr: ptr}}
}

func NewStore(ptr, value *Expr) *Expr {
	return &Expr{Kind: ExprStore, Type: Type{Kind: TypeVoid}, Store: StoreExpr{Ptr: ptr, Value: value}}
}

func NewAddrOf(base *Expr, field string, ty Type) *Expr {
	return &Expr{Kind: ExprAddrOf, Type: ty, AddrOf: AddrOfExpr{Base: base, Field: field}}
}

func NewFree(ptr *Expr) *Expr {
	return &Expr{Kind: ExprFree, Type: Type{Kind: TypeVoid}, Free: FreeExpr{Ptr: ptr}}
}

func NewField(base *Expr, field string, ty Type) *Expr {
	return &Expr{Kind: ExprField, Type: ty, Field: FieldExpr{Base: base, Field: field}}
}

func NewIf(cond *Expr, then, els []*Expr, ty Type) *Expr {
	return &Expr{Kind: ExprIf, Type: ty, If: IfExpr{Cond: cond, Then: then, Else: els}}
}

func NewPrim(op PrimOp, args []*Expr, ty Type) *Expr {
	return &Expr{Kind: ExprPrim, Type: ty, Prim: PrimExpr{Op: op, Args: args}}
}

func NewCall(name string, args []*Expr, ty Type) *Expr {
	return &Expr{Kind: ExprCall, Type: ty, Call: CallExpr{Name: name, Args: args}}
}
