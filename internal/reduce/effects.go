package reduce

import (
	"fmt"

	"chime/internal/term"
	"chime/internal/types"
)

// Effect primitives desugar into plain references, sets and
// conditionals over a boolean flag cell. A channel is its flag cell;
// emission sets the flag; handling checks it and conditionally invokes
// the handler with a unit argument.

// desugarChannel allocates the flag cell for one channel-creation
// application and registers the event. Channel payloads are constrained
// to unit; the upstream type system enforces this, so anything else is
// an internal invariant violation.
func (r *Reducer) desugarChannel(st *State, t *term.Term) (*term.Term, error) {
	if tt, ok := r.types.Lookup(t.Type); ok && tt.Kind == types.KindEvent {
		if elem, ok := r.types.Lookup(tt.Elem); !ok || elem.Kind != types.KindUnit {
			return nil, fmt.Errorf("reduce: channel of non-unit type %s", r.types.String(tt.Elem))
		}
	}
	b := r.types.Builtins()
	name := r.namer.Fresh("ev")
	st.AddCell(name, term.NewBool(false, b.Bool))
	st.AddEvent(name)
	return term.NewVar(name, r.types.Intern(types.MakeRef(b.Bool))), nil
}

// desugarEmit rewrites an applied emission into an unconditional store
// of true into the flag cell.
func (r *Reducer) desugarEmit(ch *term.Term) *term.Term {
	b := r.types.Builtins()
	return term.NewRefSet(ch, term.NewBool(true, b.Bool), b.Unit)
}

// desugarHandle rewrites an applied handler registration into a
// conditional: if the flag is set, invoke the handler with unit. The
// handler is also recorded in the state's event registry when the
// channel is already a named cell.
func (r *Reducer) desugarHandle(st *State, ch, handler *term.Term) *term.Term {
	b := r.types.Builtins()
	if ch.Kind == term.KindVar {
		st.AddHandler(ch.Data.(term.VarData).Name, handler)
	}
	cond := term.NewRefGet(ch, b.Bool)
	thunkTy := r.types.InternFn(nil, b.Unit)
	then := term.NewLambda(nil, r.invokeWithUnit(handler), thunkTy)
	els := term.NewLambda(nil, term.NewUnit(b.Unit), thunkTy)
	return term.NewApply(term.NewBuiltin(term.OpIf, types.NoTypeID), []term.NamedArg{
		{Name: "c", Value: cond},
		{Name: "t", Value: then},
		{Name: "e", Value: els},
	}, b.Unit)
}

// invokeWithUnit applies a handler to one unit argument, matching the
// handler's own parameter name when it is visible.
func (r *Reducer) invokeWithUnit(handler *term.Term) *term.Term {
	b := r.types.Builtins()
	unit := term.NewUnit(b.Unit)
	if handler.Kind == term.KindLambda {
		d := handler.Data.(term.LambdaData)
		if len(d.Params) == 0 {
			return term.NewApply(handler, nil, b.Unit)
		}
		return term.NewApply(handler, []term.NamedArg{{Name: d.Params[0].Name, Value: unit}}, b.Unit)
	}
	return term.NewApply(handler, []term.NamedArg{{Name: "", Value: unit}}, b.Unit)
}

// desugarBuiltin expands an effect primitive appearing in value
// position into its combinator form. Other builtins reduce to
// themselves.
func (r *Reducer) desugarBuiltin(t *term.Term) *term.Term {
	b := r.types.Builtins()
	refBool := r.types.Intern(types.MakeRef(b.Bool))
	switch t.Data.(term.BuiltinData).Op {
	case term.OpEmit:
		ch := r.namer.Fresh("ch")
		return term.NewLambda(
			[]term.Param{{Name: ch, Type: refBool}},
			r.desugarEmit(term.NewVar(ch, refBool)),
			r.types.InternFn([]types.TypeID{refBool}, b.Unit),
		)
	case term.OpHandle:
		ch := r.namer.Fresh("ch")
		fn := r.namer.Fresh("fn")
		handlerTy := r.types.InternFn([]types.TypeID{b.Unit}, b.Unit)
		var st State // registration happens when the combinator is applied
		body := r.desugarHandle(&st, term.NewVar(ch, refBool), term.NewVar(fn, handlerTy))
		return term.NewLambda(
			[]term.Param{{Name: ch, Type: refBool}, {Name: fn, Type: handlerTy}},
			body,
			r.types.InternFn([]types.TypeID{refBool, handlerTy}, b.Unit),
		)
	default:
		return t
	}
}
