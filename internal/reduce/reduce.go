package reduce

import (
	"fmt"

	"chime/internal/term"
	"chime/internal/types"
)

// Reducer rewrites terms to weak-head normal form, extracting cells
// and events into a State along the way. One Reducer serves one
// compilation; it owns the fresh-name source and the keep set.
type Reducer struct {
	types *types.Interner
	namer *term.Namer
	keep  term.NameSet
	subst *term.Subst
}

// New creates a reducer. keep names the bindings that must survive as
// visible declarations and are never inlined or renamed.
func New(in *types.Interner, namer *term.Namer, keep term.NameSet) *Reducer {
	if keep == nil {
		keep = make(term.NameSet)
	}
	return &Reducer{
		types: in,
		namer: namer,
		keep:  keep,
		subst: term.NewSubst(keep, namer),
	}
}

// Kept reports whether name is in the keep set, so downstream phases
// can tell a kept binding from an ordinary residual one.
func (r *Reducer) Kept(name string) bool {
	return r.keep.Has(name)
}

// Reduce rewrites t to weak-head normal form. The returned State is
// the union of the states of every visited subterm; no cell or event
// registration is ever dropped, whichever rule fires.
func (r *Reducer) Reduce(t *term.Term) (State, *term.Term, error) {
	return r.reduce(t)
}

func (r *Reducer) reduce(t *term.Term) (State, *term.Term, error) {
	var st State
	if t == nil {
		return st, nil, fmt.Errorf("reduce: nil term")
	}
	switch t.Kind {
	case term.KindVar, term.KindUnit, term.KindBool, term.KindInt,
		term.KindFloat, term.KindString:
		return st, t, nil
	case term.KindBuiltin:
		return st, r.desugarBuiltin(t), nil
	case term.KindRefNew:
		return r.reduceRefNew(t)
	case term.KindRefGet:
		d := t.Data.(term.RefGetData)
		st, cell, err := r.reduce(d.Cell)
		if err != nil {
			return st, nil, err
		}
		return st, term.NewRefGet(cell, t.Type), nil
	case term.KindRefSet:
		d := t.Data.(term.RefSetData)
		st, cell, err := r.reduce(d.Cell)
		if err != nil {
			return st, nil, err
		}
		stV, val, err := r.reduce(d.Value)
		st.Merge(stV)
		if err != nil {
			return st, nil, err
		}
		return st, term.NewRefSet(cell, val, t.Type), nil
	case term.KindSeq:
		return r.reduceSeq(t)
	case term.KindLet:
		return r.reduceLet(t)
	case term.KindRecord:
		// Records stay unevaluated; fields are forced on projection.
		return st, t, nil
	case term.KindProject:
		return r.reduceProject(t)
	case term.KindReplace:
		return r.reduceReplace(t)
	case term.KindLambda:
		return r.reduceLambda(t)
	case term.KindApply:
		return r.reduceApply(t)
	case term.KindOpen:
		// Never produced by this compiler; kept as-is so the code
		// generator can report it as the invariant violation it is.
		return st, t, nil
	default:
		return st, nil, fmt.Errorf("reduce: unhandled term kind %s", t.Kind)
	}
}

func (r *Reducer) reduceRefNew(t *term.Term) (State, *term.Term, error) {
	d := t.Data.(term.RefNewData)
	st, init, err := r.reduce(d.Init)
	if err != nil {
		return st, nil, err
	}
	name := r.namer.Fresh("cell")
	st.AddCell(name, init)
	return st, term.NewVar(name, t.Type), nil
}

func (r *Reducer) reduceSeq(t *term.Term) (State, *term.Term, error) {
	d := t.Data.(term.SeqData)
	st, left, err := r.reduce(d.Left)
	if err != nil {
		return st, nil, err
	}
	stR, right, err := r.reduce(d.Right)
	st.Merge(stR)
	if err != nil {
		return st, nil, err
	}
	// An effect-free prefix is dead code.
	if term.IsValue(left) {
		return st, right, nil
	}
	// Re-associate a leading binding whose body is discardable so the
	// binding wraps the continuation instead; effect order of the
	// definition is preserved.
	if left.Kind == term.KindLet {
		ld := left.Data.(term.LetData)
		if term.IsValue(ld.Body) {
			floated := r.floatBinder(left, right, func(body, rest *term.Term) *term.Term {
				return term.NewSeq(body, rest, t.Type)
			})
			stF, out, err := r.reduce(floated)
			st.Merge(stF)
			return st, out, err
		}
	}
	return st, term.NewSeq(left, right, t.Type), nil
}

// floatBinder rewrites Let(n, def, body) around rest into
// Let(n, def, wrap(body, rest)), freshening n when rest references it.
func (r *Reducer) floatBinder(let *term.Term, rest *term.Term, wrap func(body, rest *term.Term) *term.Term) *term.Term {
	d := let.Data.(term.LetData)
	name, body := d.Name, d.Body
	if term.FreeVars(rest).Has(name) {
		fresh := r.namer.Fresh(name)
		body = r.subst.Apply([]term.Binding{{Name: name, Repl: term.NewVar(fresh, d.Def.Type)}}, body)
		name = fresh
	}
	inner := wrap(body, rest)
	return term.NewLet(name, d.Def, inner, inner.Type)
}

func (r *Reducer) reduceLet(t *term.Term) (State, *term.Term, error) {
	d := t.Data.(term.LetData)
	st, def, err := r.reduce(d.Def)
	if err != nil {
		return st, nil, err
	}
	if r.keep.Has(d.Name) {
		// Keep names stay as visible declarations: inlining is
		// suppressed and the binding survives verbatim.
		stB, body, err := r.reduce(d.Body)
		st.Merge(stB)
		if err != nil {
			return st, nil, err
		}
		return st, term.NewLet(d.Name, def, body, t.Type), nil
	}
	if r.shouldInline(d.Name, def, d.Body) {
		inlined := r.subst.Apply([]term.Binding{{Name: d.Name, Repl: def}}, d.Body)
		stB, out, err := r.reduce(inlined)
		st.Merge(stB)
		return st, out, err
	}
	stB, body, err := r.reduce(d.Body)
	st.Merge(stB)
	if err != nil {
		return st, nil, err
	}
	return st, term.NewLet(d.Name, def, body, t.Type), nil
}

// shouldInline decides whether a reduced definition is substituted into
// the body. Function- and record-typed definitions always inline (the
// code generator cannot lower them in operand position); values inline
// freely; pure definitions inline when used at most once.
func (r *Reducer) shouldInline(name string, def, body *term.Term) bool {
	if tt, ok := r.types.Lookup(def.Type); ok {
		if tt.Kind == types.KindFn || tt.Kind == types.KindRecord {
			return true
		}
	}
	if term.IsValue(def) {
		return true
	}
	if term.IsPure(def) && term.Occurrences(name, body) <= 1 {
		return true
	}
	return false
}

func (r *Reducer) reduceProject(t *term.Term) (State, *term.Term, error) {
	d := t.Data.(term.ProjectData)
	st, base, err := r.reduce(d.Base)
	if err != nil {
		return st, nil, err
	}
	switch base.Kind {
	case term.KindLet:
		// Float the binding outward to expose the record underneath.
		rest := d.Default
		if rest == nil {
			rest = term.NewUnit(r.types.Builtins().Unit)
		}
		floated := r.floatBinder(base, rest, func(body, _ *term.Term) *term.Term {
			return term.NewProject(body, d.Field, d.Default, t.Type)
		})
		stF, out, err := r.reduce(floated)
		st.Merge(stF)
		return st, out, err
	case term.KindSeq:
		sd := base.Data.(term.SeqData)
		floated := term.NewSeq(sd.Left, term.NewProject(sd.Right, d.Field, d.Default, t.Type), t.Type)
		stF, out, err := r.reduce(floated)
		st.Merge(stF)
		return st, out, err
	case term.KindRecord:
		rd := base.Data.(term.RecordData)
		field := rd.Field(d.Field)
		if field == nil {
			if d.Default != nil {
				stD, out, err := r.reduce(d.Default)
				st.Merge(stD)
				return st, out, err
			}
			return st, nil, fmt.Errorf("reduce: record has no field %q", d.Field)
		}
		stF, out, err := r.reduce(field)
		st.Merge(stF)
		return st, out, err
	case term.KindVar:
		// Opaque base (a kept declaration); lowered as a field access.
		return st, term.NewProject(base, d.Field, d.Default, t.Type), nil
	default:
		return st, nil, fmt.Errorf("reduce: projection of %q from non-record %s", d.Field, base.Kind)
	}
}

func (r *Reducer) reduceReplace(t *term.Term) (State, *term.Term, error) {
	d := t.Data.(term.ReplaceData)
	st, base, err := r.reduce(d.Base)
	if err != nil {
		return st, nil, err
	}
	if base.Kind == term.KindRecord {
		rd := base.Data.(term.RecordData)
		if rd.Field(d.Field) == nil {
			return st, nil, fmt.Errorf("reduce: cannot replace missing field %q", d.Field)
		}
		fields := make([]term.FieldInit, len(rd.Fields))
		copy(fields, rd.Fields)
		for i := range fields {
			if fields[i].Name == d.Field {
				fields[i].Value = d.Value
			}
		}
		return st, term.NewRecord(fields, base.Type), nil
	}
	return st, term.NewReplace(base, d.Field, d.Value, t.Type), nil
}

func (r *Reducer) reduceLambda(t *term.Term) (State, *term.Term, error) {
	var st State
	d := t.Data.(term.LambdaData)
	for i := range d.Params {
		if term.Occurrences(d.Params[i].Name, d.Body) > 0 {
			// Weak-head policy: effects under the binder may depend on
			// arguments, so reduction waits for the application.
			return st, t, nil
		}
	}
	st, body, err := r.reduce(d.Body)
	if err != nil {
		return st, nil, err
	}
	return st, term.NewLambda(d.Params, body, t.Type), nil
}
