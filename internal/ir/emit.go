package ir

import (
	"fmt"

	"chime/internal/diag"
	"chime/internal/reduce"
	"chime/internal/term"
	"chime/internal/types"
	"chime/internal/value"
)

// The generated state-pointer parameter every emitted function receives.
const statePointerName = "state"

// EmitOptions configures one emission.
type EmitOptions struct {
	// Entry names the entry function and prefixes the generated
	// type/reset/alloc/free declarations.
	Entry string
	// Keep lists bindings that must survive as visible declarations.
	Keep []string
	// Env is the already-elaborated name environment inlined into the
	// term before reduction.
	Env []term.Binding
	// Values is the runtime-value environment; it is reflected into
	// terms and appended after Env. Bindings that fail to reflect are
	// reported and dropped.
	Values []value.Bound
	// Reporter receives reflection warnings. Nil discards them.
	Reporter diag.Reporter
}

// Emit compiles a term into the ordered declaration list handed to the
// backend. The first four declarations are always the state-record
// type and the reset, alloc and free functions, followed by lifted
// declarations and finally the entry function.
func Emit(in *types.Interner, namer *term.Namer, t *term.Term, opts EmitOptions) ([]Decl, error) {
	if opts.Entry == "" {
		return nil, fmt.Errorf("ir: empty entry name")
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}

	reflected, dropped := value.ReflectEnv(in, opts.Values)
	for _, err := range dropped {
		reporter.Report(diag.Warningf(diag.RefBindingDropped, opts.Entry, "%v", err))
	}
	env := make([]term.Binding, 0, len(opts.Env)+len(reflected))
	env = append(env, opts.Env...)
	env = append(env, reflected...)

	keep := make(term.NameSet)
	for _, k := range opts.Keep {
		keep.Add(k)
	}
	closed := term.NewSubst(keep, namer).Apply(env, t)

	red := reduce.New(in, namer, keep)
	st, nf, err := red.Reduce(closed)
	if err != nil {
		return nil, err
	}

	lw := NewLowerer(in, namer, red)
	lifted, params, body, stLate, err := lw.LowerDecls(nf)
	if err != nil {
		return nil, err
	}
	st.Merge(stLate)

	structTy, err := stateStruct(in, opts.Entry, &st)
	if err != nil {
		return nil, err
	}
	statePtr := PtrTo(structTy)
	prologue, err := cellAliases(in, &st, statePtr)
	if err != nil {
		return nil, err
	}

	reset, err := resetDecl(lw, opts.Entry, &st, statePtr, prologue)
	if err != nil {
		return nil, err
	}

	decls := make([]Decl, 0, len(lifted)+5)
	decls = append(decls,
		Decl{Kind: DeclType, Name: structTy.Struct.Name, Type: structTy},
		reset,
		allocDecl(opts.Entry, structTy, statePtr),
		freeDecl(opts.Entry, statePtr),
	)
	for _, d := range lifted {
		if d.Kind == DeclFunc {
			d.Func.Params = append([]Param{{Name: statePointerName, Type: statePtr}}, d.Func.Params...)
			d.Func.Body = append(cloneStmts(prologue), d.Func.Body...)
		}
		decls = append(decls, d)
	}
	decls = append(decls, entryDecl(opts.Entry, &st, statePtr, prologue, params, body))
	return decls, nil
}

// stateStruct builds the persistent state-record type: one fixed float
// field for the synthesis period, then one field per extracted cell in
// extraction order.
func stateStruct(in *types.Interner, entry string, st *reduce.State) (Type, error) {
	fields := make([]StructField, 0, len(st.Cells)+1)
	fields = append(fields, StructField{Name: term.PeriodName, Type: Type{Kind: TypeFloat}})
	for _, c := range st.Cells {
		ft, err := EmitType(in, c.Init.Type)
		if err != nil {
			return Type{}, fmt.Errorf("ir: cell %s: %w", c.Name, err)
		}
		fields = append(fields, StructField{Name: c.Name, Type: ft})
	}
	return Type{Kind: TypeStruct, Struct: &StructType{Name: entry + "_state", Fields: fields}}, nil
}

// cellAliases builds the shared function prologue: local bindings that
// alias the period and every cell name to address-of-field expressions
// on the state pointer, so lowered bodies reference them as ordinary
// identifiers.
func cellAliases(in *types.Interner, st *reduce.State, statePtr Type) ([]*Expr, error) {
	base := NewIdent(statePointerName, statePtr)
	out := make([]*Expr, 0, len(st.Cells)+1)
	out = append(out, NewLet(term.PeriodName,
		NewAddrOf(base, term.PeriodName, PtrTo(Type{Kind: TypeFloat}))))
	for _, c := range st.Cells {
		ft, err := EmitType(in, c.Init.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, NewLet(c.Name, NewAddrOf(base, c.Name, PtrTo(ft))))
	}
	return out, nil
}

func cloneStmts(in []*Expr) []*Expr {
	out := make([]*Expr, len(in))
	copy(out, in)
	return out
}

// resetDecl re-initializes every cell field from its reduced
// initializer. A reduced initializer can still be unlowerable (a lazy
// record construction, for one); that must fail the emission rather
// than leave the field without a store.
func resetDecl(lw *Lowerer, entry string, st *reduce.State, statePtr Type, prologue []*Expr) (Decl, error) {
	body := cloneStmts(prologue)
	for _, c := range st.Cells {
		stmts, val, err := lw.lower(c.Init)
		if err != nil {
			return Decl{}, fmt.Errorf("ir: initializer of cell %s: %w", c.Name, err)
		}
		body = append(body, stmts...)
		ft, err := EmitType(lw.types, c.Init.Type)
		if err != nil {
			return Decl{}, fmt.Errorf("ir: cell %s: %w", c.Name, err)
		}
		body = append(body, NewStore(NewIdent(c.Name, PtrTo(ft)), val))
	}
	return Decl{
		Kind: DeclFunc,
		Name: entry + "_reset",
		Func: FuncDecl{
			Params: []Param{{Name: statePointerName, Type: statePtr}},
			Result: Type{Kind: TypeVoid},
			Body:   body,
		},
	}, nil
}

// allocDecl allocates the record and delegates to reset.
func allocDecl(entry string, structTy, statePtr Type) Decl {
	return Decl{
		Kind: DeclFunc,
		Name: entry + "_alloc",
		Func: FuncDecl{
			Result: statePtr,
			Body: []*Expr{
				NewLet(statePointerName, NewAlloc(structTy)),
				NewCall(entry+"_reset", []*Expr{NewIdent(statePointerName, statePtr)}, Type{Kind: TypeVoid}),
				NewIdent(statePointerName, statePtr),
			},
		},
	}
}

func freeDecl(entry string, statePtr Type) Decl {
	return Decl{
		Kind: DeclFunc,
		Name: entry + "_free",
		Func: FuncDecl{
			Params: []Param{{Name: statePointerName, Type: statePtr}},
			Result: Type{Kind: TypeVoid},
			Body:   []*Expr{NewFree(NewIdent(statePointerName, statePtr))},
		},
	}
}

// entryDecl builds the entry function: the shared prologue, one store
// clearing each event flag (registrations do not persist across
// calls), then the lowered body.
func entryDecl(entry string, st *reduce.State, statePtr Type, prologue []*Expr, params []Param, body []*Expr) Decl {
	full := cloneStmts(prologue)
	boolPtr := PtrTo(Type{Kind: TypeBool})
	for _, ev := range st.Events {
		full = append(full, NewStore(NewIdent(ev.Name, boolPtr), NewBool(false, Type{Kind: TypeBool})))
	}
	full = append(full, body...)
	result := Type{Kind: TypeVoid}
	if len(body) > 0 {
		result = body[len(body)-1].Type
	}
	return Decl{
		Kind: DeclFunc,
		Name: entry,
		Func: FuncDecl{
			Params: append([]Param{{Name: statePointerName, Type: statePtr}}, params...),
			Result: result,
			Body:   full,
		},
	}
}
