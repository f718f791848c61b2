package value

import (
	"fmt"

	"chime/internal/term"
	"chime/internal/types"
)

// Reflect converts a runtime value back into a term for inlining into
// the compiled program.
//
// A native function without an extern name cannot be compiled; Reflect
// reports it as a recoverable error and the caller drops that single
// binding. Record fields that fail to reflect are dropped silently.
func Reflect(in *types.Interner, v *Value) (*term.Term, error) {
	if v == nil {
		return nil, fmt.Errorf("value: cannot reflect <nil>")
	}
	b := in.Builtins()
	switch v.Kind {
	case KindUnit:
		return term.NewUnit(typeOr(v.Type, b.Unit)), nil
	case KindBool:
		return term.NewBool(v.Bool, typeOr(v.Type, b.Bool)), nil
	case KindInt:
		return term.NewInt(v.Int, typeOr(v.Type, b.Int)), nil
	case KindFloat:
		return term.NewFloat(v.Float, typeOr(v.Type, b.Float)), nil
	case KindString:
		return term.NewString(v.Str, typeOr(v.Type, b.String)), nil
	case KindPair:
		return reflectPair(in, v)
	case KindCell:
		return reflectCell(in, v)
	case KindRecord:
		return reflectRecord(in, v)
	case KindClosure:
		return reflectClosure(in, v)
	case KindNative:
		return reflectNative(v)
	default:
		return nil, fmt.Errorf("value: cannot reflect %s", v.Kind)
	}
}

func typeOr(ty, fallback types.TypeID) types.TypeID {
	if ty != types.NoTypeID {
		return ty
	}
	return fallback
}

// reflectPair lowers a pair onto the record form the term model uses.
func reflectPair(in *types.Interner, v *Value) (*term.Term, error) {
	fst, err := Reflect(in, v.First)
	if err != nil {
		return nil, err
	}
	snd, err := Reflect(in, v.Second)
	if err != nil {
		return nil, err
	}
	ty := v.Type
	if ty == types.NoTypeID {
		ty = in.InternRecord([]types.Field{
			{Name: "fst", Type: fst.Type},
			{Name: "snd", Type: snd.Type},
		})
	}
	return term.NewRecord([]term.FieldInit{
		{Name: "fst", Value: fst},
		{Name: "snd", Value: snd},
	}, ty), nil
}

func reflectCell(in *types.Interner, v *Value) (*term.Term, error) {
	init, err := Reflect(in, v.Cell)
	if err != nil {
		return nil, err
	}
	ty := v.Type
	if ty == types.NoTypeID {
		ty = in.Intern(types.MakeRef(init.Type))
	}
	return term.NewRefNew(init, ty), nil
}

func reflectRecord(in *types.Interner, v *Value) (*term.Term, error) {
	fields := make([]term.FieldInit, 0, len(v.Fields))
	tyFields := make([]types.Field, 0, len(v.Fields))
	for i := range v.Fields {
		ft, err := Reflect(in, v.Fields[i].Value)
		if err != nil {
			// Fields that fail to reflect are dropped; projections on
			// them will be reported when (and if) they are reached.
			continue
		}
		fields = append(fields, term.FieldInit{Name: v.Fields[i].Name, Value: ft})
		tyFields = append(tyFields, types.Field{Name: v.Fields[i].Name, Type: ft.Type})
	}
	ty := v.Type
	if ty == types.NoTypeID {
		ty = in.InternRecord(tyFields)
	}
	return term.NewRecord(fields, ty), nil
}

// reflectClosure rebuilds a lambda whose body is closed over the
// captured environment and any partially-applied arguments via local
// bindings; the reducer inlines them away.
func reflectClosure(in *types.Interner, v *Value) (*term.Term, error) {
	c := v.Closure
	if c == nil {
		return nil, fmt.Errorf("value: closure value without payload")
	}
	body := c.Body
	body = wrapEnv(in, c.Partial, body)
	body = wrapEnv(in, c.Env, body)
	return term.NewLambda(c.Params, body, v.Type), nil
}

func wrapEnv(in *types.Interner, env []Bound, body *term.Term) *term.Term {
	free := term.FreeVars(body)
	for i := len(env) - 1; i >= 0; i-- {
		if !free.Has(env[i].Name) {
			continue
		}
		def, err := Reflect(in, env[i].Value)
		if err != nil {
			// Drop the single failing binding rather than aborting.
			continue
		}
		body = term.NewLet(env[i].Name, def, body, body.Type)
		free = term.FreeVars(body)
	}
	return body
}

func reflectNative(v *Value) (*term.Term, error) {
	n := v.Native
	if n == nil {
		return nil, fmt.Errorf("value: native value without payload")
	}
	if n.Extern == "" {
		return nil, fmt.Errorf("value: native function %q has no extern name", n.Name)
	}
	if op, ok := term.ResolveOp(n.Extern); ok {
		return term.NewBuiltin(op, v.Type), nil
	}
	return term.NewVar(n.Extern, v.Type), nil
}

// ReflectEnv reflects a whole name→value environment into term
// bindings. Bindings that fail to reflect are dropped and reported
// through the returned list of errors; compilation continues without
// them.
func ReflectEnv(in *types.Interner, env []Bound) (bindings []term.Binding, dropped []error) {
	bindings = make([]term.Binding, 0, len(env))
	for i := range env {
		t, err := Reflect(in, env[i].Value)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("value: dropping binding %q: %w", env[i].Name, err))
			continue
		}
		bindings = append(bindings, term.Binding{Name: env[i].Name, Repl: t})
	}
	return bindings, dropped
}
