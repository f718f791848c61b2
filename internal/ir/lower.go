package ir

import (
	"fmt"

	"chime/internal/reduce"
	"chime/internal/term"
	"chime/internal/types"
)

// Lowerer translates fully reduced terms into IR. It shares the
// compilation's fresh-name source and reducer so that lifted function
// bodies can be eta-expanded and re-reduced before lowering.
type Lowerer struct {
	types *types.Interner
	namer *term.Namer
	red   *reduce.Reducer
}

// NewLowerer creates a lowerer bound to one compilation.
func NewLowerer(in *types.Interner, namer *term.Namer, red *reduce.Reducer) *Lowerer {
	return &Lowerer{types: in, namer: namer, red: red}
}

// Lower translates a reduced term into a statement list whose last
// element is the term's value.
func (l *Lowerer) Lower(t *term.Term) ([]*Expr, error) {
	stmts, val, err := l.lower(t)
	if err != nil {
		return nil, err
	}
	return append(stmts, val), nil
}

func (l *Lowerer) emitType(id types.TypeID) (Type, error) {
	return EmitType(l.types, id)
}

// lower returns the effect prefix of a term followed by its value
// expression. The reducer is required to have removed abstractions,
// record constructions and replacements; any of them here is a bug in
// an upstream phase.
func (l *Lowerer) lower(t *term.Term) ([]*Expr, *Expr, error) {
	switch t.Kind {
	case term.KindUnit:
		return nil, NewVoid(), nil
	case term.KindBool:
		ty, err := l.emitType(t.Type)
		if err != nil {
			return nil, nil, err
		}
		return nil, NewBool(t.Data.(term.BoolData).Value, ty), nil
	case term.KindInt:
		ty, err := l.emitType(t.Type)
		if err != nil {
			return nil, nil, err
		}
		return nil, NewInt(t.Data.(term.IntData).Value, ty), nil
	case term.KindFloat:
		ty, err := l.emitType(t.Type)
		if err != nil {
			return nil, nil, err
		}
		return nil, NewFloat(t.Data.(term.FloatData).Value, ty), nil
	case term.KindString:
		return nil, nil, fmt.Errorf("ir: string literal cannot be lowered")
	case term.KindVar:
		ty, err := l.emitType(t.Type)
		if err != nil {
			return nil, nil, err
		}
		return nil, NewIdent(t.Data.(term.VarData).Name, ty), nil
	case term.KindRefNew:
		return l.lowerRefNew(t)
	case term.KindRefGet:
		d := t.Data.(term.RefGetData)
		stmts, cell, err := l.lower(d.Cell)
		if err != nil {
			return nil, nil, err
		}
		ty, err := l.emitType(t.Type)
		if err != nil {
			return nil, nil, err
		}
		return stmts, NewLoad(cell, ty), nil
	case term.KindRefSet:
		d := t.Data.(term.RefSetData)
		stmts, cell, err := l.lower(d.Cell)
		if err != nil {
			return nil, nil, err
		}
		vs, val, err := l.lower(d.Value)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, vs...)
		stmts = append(stmts, NewStore(cell, val))
		return stmts, NewVoid(), nil
	case term.KindSeq:
		d := t.Data.(term.SeqData)
		stmts, left, err := l.lower(d.Left)
		if err != nil {
			return nil, nil, err
		}
		if !isTrivial(left) {
			stmts = append(stmts, left)
		}
		rs, val, err := l.lower(d.Right)
		if err != nil {
			return nil, nil, err
		}
		return append(stmts, rs...), val, nil
	case term.KindLet:
		d := t.Data.(term.LetData)
		stmts, def, err := l.lower(d.Def)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, NewLet(d.Name, def))
		bs, val, err := l.lower(d.Body)
		if err != nil {
			return nil, nil, err
		}
		return append(stmts, bs...), val, nil
	case term.KindProject:
		d := t.Data.(term.ProjectData)
		stmts, base, err := l.lower(d.Base)
		if err != nil {
			return nil, nil, err
		}
		ty, err := l.emitType(t.Type)
		if err != nil {
			return nil, nil, err
		}
		return stmts, NewField(base, d.Field, ty), nil
	case term.KindApply:
		return l.lowerApply(t)
	default:
		return nil, nil, fmt.Errorf("ir: %s term reached code generation", t.Kind)
	}
}

// isTrivial reports whether a discarded value carries no effect.
func isTrivial(e *Expr) bool {
	switch e.Kind {
	case ExprVoid, ExprBool, ExprInt, ExprFloat, ExprIdent:
		return true
	}
	return false
}

func (l *Lowerer) lowerRefNew(t *term.Term) ([]*Expr, *Expr, error) {
	d := t.Data.(term.RefNewData)
	stmts, init, err := l.lower(d.Init)
	if err != nil {
		return nil, nil, err
	}
	ptrTy, err := l.emitType(t.Type)
	if err != nil {
		return nil, nil, err
	}
	if ptrTy.Kind != TypePtr {
		return nil, nil, fmt.Errorf("ir: cell with non-reference type %s", ptrTy)
	}
	name := l.namer.Fresh("ref")
	stmts = append(stmts,
		NewLet(name, NewAlloc(*ptrTy.Elem)),
		NewStore(NewIdent(name, ptrTy), init))
	return stmts, NewIdent(name, ptrTy), nil
}

func (l *Lowerer) lowerApply(t *term.Term) ([]*Expr, *Expr, error) {
	d := t.Data.(term.ApplyData)
	ty, err := l.emitType(t.Type)
	if err != nil {
		return nil, nil, err
	}
	switch d.Callee.Kind {
	case term.KindBuiltin:
		op := d.Callee.Data.(term.BuiltinData).Op
		if op == term.OpIf {
			return l.lowerIf(d.Args, ty)
		}
		switch op {
		case term.OpChannel, term.OpEmit, term.OpHandle:
			return nil, nil, fmt.Errorf("ir: effect primitive %s survived reduction", op)
		}
		stmts, args, err := l.lowerArgs(d.Args)
		if err != nil {
			return nil, nil, err
		}
		if p, ok := primOf(op); ok {
			return stmts, NewPrim(p, args, ty), nil
		}
		return stmts, NewCall(op.String(), args, ty), nil
	case term.KindVar:
		stmts, args, err := l.lowerArgs(d.Args)
		if err != nil {
			return nil, nil, err
		}
		return stmts, NewCall(d.Callee.Data.(term.VarData).Name, args, ty), nil
	default:
		return nil, nil, fmt.Errorf("ir: application of %s reached code generation", d.Callee.Kind)
	}
}

func (l *Lowerer) lowerArgs(args []term.NamedArg) ([]*Expr, []*Expr, error) {
	var stmts []*Expr
	out := make([]*Expr, len(args))
	for i := range args {
		as, val, err := l.lower(args[i].Value)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, as...)
		out[i] = val
	}
	return stmts, out, nil
}

// lowerIf lowers the conditional combinator. Both branches arrive as
// zero-argument thunks; their bodies are forced and lowered into the
// arm statement lists.
func (l *Lowerer) lowerIf(args []term.NamedArg, ty Type) ([]*Expr, *Expr, error) {
	if len(args) != 3 {
		return nil, nil, fmt.Errorf("ir: conditional with %d arguments", len(args))
	}
	stmts, cond, err := l.lower(args[0].Value)
	if err != nil {
		return nil, nil, err
	}
	then, err := l.forceThunk(args[1].Value)
	if err != nil {
		return nil, nil, err
	}
	els, err := l.forceThunk(args[2].Value)
	if err != nil {
		return nil, nil, err
	}
	return stmts, NewIf(cond, then, els, ty), nil
}

func (l *Lowerer) forceThunk(t *term.Term) ([]*Expr, error) {
	if t.Kind != term.KindLambda {
		return nil, fmt.Errorf("ir: conditional branch is %s, not a thunk", t.Kind)
	}
	d := t.Data.(term.LambdaData)
	if len(d.Params) != 0 {
		return nil, fmt.Errorf("ir: conditional branch thunk takes %d parameters", len(d.Params))
	}
	return l.Lower(d.Body)
}

// LowerDecls peels a leading chain of bindings off a reduced term,
// emitting function-typed definitions as standalone function
// declarations and kept definitions as named constants. Other residual
// bindings stop the peel: a binding the reducer left behind without a
// keep request reads per-call state, and it must lower inside the entry
// body where the cell aliases are in scope. A function tail provides
// the entry parameters; its body (like every lifted definition) is
// eta-expanded, re-reduced and lowered, and any state extracted by that
// late reduction is returned for merging.
func (l *Lowerer) LowerDecls(t *term.Term) ([]Decl, []Param, []*Expr, reduce.State, error) {
	var (
		decls []Decl
		st    reduce.State
	)
	for t.Kind == term.KindLet {
		d := t.Data.(term.LetData)
		if _, ok := l.types.Fn(d.Def.Type); ok {
			decl, stF, err := l.lowerFuncDecl(d.Name, d.Def)
			st.Merge(stF)
			if err != nil {
				return nil, nil, nil, st, err
			}
			decls = append(decls, decl)
		} else if l.red.Kept(d.Name) {
			decl, err := l.lowerConstDecl(d.Name, d.Def)
			if err != nil {
				return nil, nil, nil, st, err
			}
			decls = append(decls, decl)
		} else {
			break
		}
		t = d.Body
	}
	if t.Kind == term.KindLambda {
		params, body, stE, err := l.lowerEntryLambda(t)
		st.Merge(stE)
		return decls, params, body, st, err
	}
	body, err := l.Lower(t)
	return decls, nil, body, st, err
}

func (l *Lowerer) lowerFuncDecl(name string, def *term.Term) (Decl, reduce.State, error) {
	var st reduce.State
	info, ok := l.types.Fn(def.Type)
	if !ok {
		return Decl{}, st, fmt.Errorf("ir: malformed function type for %q", name)
	}
	params := make([]Param, len(info.Params))
	args := make([]term.NamedArg, len(info.Params))
	for i, pid := range info.Params {
		pt, err := l.emitType(pid)
		if err != nil {
			return Decl{}, st, err
		}
		pname := l.namer.Fresh("arg")
		params[i] = Param{Name: pname, Type: pt}
		args[i] = term.NamedArg{Value: term.NewVar(pname, pid)}
	}
	eta := term.NewApply(def, args, info.Result)
	st, nf, err := l.red.Reduce(eta)
	if err != nil {
		return Decl{}, st, err
	}
	body, err := l.Lower(nf)
	if err != nil {
		return Decl{}, st, err
	}
	result, err := l.emitType(info.Result)
	if err != nil {
		return Decl{}, st, err
	}
	return Decl{
		Kind: DeclFunc,
		Name: name,
		Func: FuncDecl{Params: params, Result: result, Body: body},
	}, st, nil
}

func (l *Lowerer) lowerConstDecl(name string, def *term.Term) (Decl, error) {
	stmts, val, err := l.lower(def)
	if err != nil {
		return Decl{}, err
	}
	if len(stmts) != 0 {
		return Decl{}, fmt.Errorf("ir: constant %q has an effectful initializer", name)
	}
	// A bare load carries no prefix statements but is still a per-call
	// state read; hoisting it to a top-level constant would freeze one
	// sample of a mutable cell.
	if containsLoad(val) {
		return Decl{}, fmt.Errorf("ir: constant %q reads mutable state", name)
	}
	cty, err := l.emitType(def.Type)
	if err != nil {
		return Decl{}, err
	}
	return Decl{
		Kind:  DeclConst,
		Name:  name,
		Const: ConstDecl{Type: cty, Value: val},
	}, nil
}

// containsLoad reports whether any subexpression reads through a
// pointer.
func containsLoad(e *Expr) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ExprLoad:
		return true
	case ExprLet:
		return containsLoad(e.Let.Value)
	case ExprStore:
		return containsLoad(e.Store.Ptr) || containsLoad(e.Store.Value)
	case ExprAddrOf:
		return containsLoad(e.AddrOf.Base)
	case ExprFree:
		return containsLoad(e.Free.Ptr)
	case ExprField:
		return containsLoad(e.Field.Base)
	case ExprIf:
		if containsLoad(e.If.Cond) {
			return true
		}
		return anyLoad(e.If.Then) || anyLoad(e.If.Else)
	case ExprPrim:
		return anyLoad(e.Prim.Args)
	case ExprCall:
		return anyLoad(e.Call.Args)
	}
	return false
}

func anyLoad(es []*Expr) bool {
	for _, e := range es {
		if containsLoad(e) {
			return true
		}
	}
	return false
}

func (l *Lowerer) lowerEntryLambda(t *term.Term) ([]Param, []*Expr, reduce.State, error) {
	var st reduce.State
	d := t.Data.(term.LambdaData)
	params := make([]Param, len(d.Params))
	args := make([]term.NamedArg, len(d.Params))
	for i, p := range d.Params {
		pt, err := l.emitType(p.Type)
		if err != nil {
			return nil, nil, st, err
		}
		params[i] = Param{Name: p.Name, Type: pt}
		args[i] = term.NamedArg{Name: p.Name, Value: term.NewVar(p.Name, p.Type)}
	}
	st, nf, err := l.red.Reduce(term.NewApply(t, args, d.Body.Type))
	if err != nil {
		return nil, nil, st, err
	}
	body, err := l.Lower(nf)
	return params, body, st, err
}
