package reduce

import (
	"fmt"
	"strings"

	"chime/internal/term"
	"chime/internal/types"
)

// reduceApply reduces the callee and every argument, then applies one
// named argument at a time by rewriting into a local-binding form.
// Threading arguments through bindings keeps effect order
// deterministic: each argument's retained effects occur in binding
// position before the next argument is substituted.
func (r *Reducer) reduceApply(t *term.Term) (State, *term.Term, error) {
	d := t.Data.(term.ApplyData)
	var st State
	callee := d.Callee
	if callee.Kind != term.KindBuiltin {
		// A builtin in applied position is handled by the operator
		// switch below; pre-reducing it would expand effect primitives
		// into their value-position combinator form first.
		var err error
		st, callee, err = r.reduce(d.Callee)
		if err != nil {
			return st, nil, err
		}
	}
	args := make([]term.NamedArg, len(d.Args))
	for i := range d.Args {
		stA, v, err := r.reduce(d.Args[i].Value)
		st.Merge(stA)
		if err != nil {
			return st, nil, err
		}
		args[i] = term.NamedArg{Name: d.Args[i].Name, Value: v}
	}

	switch callee.Kind {
	case term.KindLambda:
		stB, out, err := r.applyLambda(callee, args, t.Type)
		st.Merge(stB)
		return st, out, err
	case term.KindBuiltin:
		op := callee.Data.(term.BuiltinData).Op
		switch {
		case op == term.OpChannel:
			out, err := r.desugarChannel(&st, t)
			return st, out, err
		case op == term.OpEmit && len(args) == 1:
			return st, r.desugarEmit(args[0].Value), nil
		case op == term.OpHandle && len(args) == 2:
			desugared := r.desugarHandle(&st, args[0].Value, args[1].Value)
			stH, out, err := r.reduce(desugared)
			st.Merge(stH)
			return st, out, err
		}
		if out, ok := simplify(op, args, t.Type); ok {
			stS, reduced, err := r.reduce(out)
			st.Merge(stS)
			return st, reduced, err
		}
		// No applicable rule; fall back to the unsimplified
		// application. This is expected, not an error.
		return st, term.NewApply(callee, args, t.Type), nil
	case term.KindVar:
		// A recognized free variable (extern or kept declaration)
		// lowers to a named call.
		return st, term.NewApply(callee, args, t.Type), nil
	case term.KindLet:
		argsFree := make(term.NameSet)
		for i := range args {
			for name := range term.FreeVars(args[i].Value) {
				argsFree.Add(name)
			}
		}
		floated := r.floatApplyThroughLet(callee, args, t, argsFree)
		stF, out, err := r.reduce(floated)
		st.Merge(stF)
		return st, out, err
	case term.KindSeq:
		sd := callee.Data.(term.SeqData)
		floated := term.NewSeq(sd.Left, term.NewApply(sd.Right, args, t.Type), t.Type)
		stF, out, err := r.reduce(floated)
		st.Merge(stF)
		return st, out, err
	default:
		return st, nil, fmt.Errorf("reduce: cannot apply %s", callee.Kind)
	}
}

func (r *Reducer) floatApplyThroughLet(let *term.Term, args []term.NamedArg, t *term.Term, avoid term.NameSet) *term.Term {
	d := let.Data.(term.LetData)
	name, body := d.Name, d.Body
	if avoid.Has(name) && name != term.PeriodName && !r.keep.Has(name) {
		fresh := r.namer.Fresh(name)
		body = r.subst.Apply([]term.Binding{{Name: name, Repl: term.NewVar(fresh, d.Def.Type)}}, body)
		name = fresh
	}
	return term.NewLet(name, d.Def, term.NewApply(body, args, t.Type), t.Type)
}

// applyLambda consumes arguments one at a time. Each step binds the
// matched parameter around the partial application and re-reduces.
// When arguments run out with parameters left over, declared defaults
// fill the gap; without defaults the partial application stays a
// function value.
func (r *Reducer) applyLambda(callee *term.Term, args []term.NamedArg, resultTy types.TypeID) (State, *term.Term, error) {
	var st State
	d := callee.Data.(term.LambdaData)
	if len(args) == 0 {
		if len(d.Params) == 0 {
			return r.reduce(d.Body)
		}
		for i := range d.Params {
			if d.Params[i].Default == nil {
				return st, callee, nil
			}
		}
		defArgs := make([]term.NamedArg, len(d.Params))
		for i := range d.Params {
			defArgs[i] = term.NamedArg{Name: d.Params[i].Name, Value: d.Params[i].Default}
		}
		return r.applyStep(d, defArgs, resultTy)
	}
	return r.applyStep(d, args, resultTy)
}

func (r *Reducer) applyStep(d term.LambdaData, args []term.NamedArg, resultTy types.TypeID) (State, *term.Term, error) {
	var st State
	arg := args[0]
	idx := -1
	for i := range d.Params {
		if d.Params[i].Name == arg.Name {
			idx = i
			break
		}
	}
	if idx == -1 && len(d.Params) > 0 {
		// Generated applications bind positionally: either the argument
		// carries no name, or the parameter was minted by the namer
		// ('$' never appears in surface identifiers).
		if arg.Name == "" || strings.ContainsRune(d.Params[0].Name, '$') {
			idx = 0
		}
	}
	if idx == -1 {
		return st, nil, fmt.Errorf("reduce: no parameter named %q", arg.Name)
	}
	param := d.Params[idx]
	rest := make([]term.Param, 0, len(d.Params)-1)
	rest = append(rest, d.Params[:idx]...)
	rest = append(rest, d.Params[idx+1:]...)
	var inner *term.Term
	if len(rest) == 0 && len(args) == 1 {
		inner = d.Body
	} else {
		restTypes := make([]types.TypeID, len(rest))
		for i := range rest {
			restTypes[i] = rest[i].Type
		}
		lamTy := r.types.InternFn(restTypes, d.Body.Type)
		inner = term.NewApply(term.NewLambda(rest, d.Body, lamTy), args[1:], resultTy)
	}
	return r.reduce(term.NewLet(param.Name, arg.Value, inner, resultTy))
}
