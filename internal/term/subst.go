package term

// Binding associates a variable name with its replacement term.
type Binding struct {
	Name string
	Repl *Term
}

// Subst is a hygienic, capture-avoiding substitution engine. All
// bindings of one Apply call are applied simultaneously: a variable is
// replaced by the first matching binding, and a replacement with free
// variables is re-substituted with only the bindings that follow it, so
// forward references inside one batch still resolve.
//
// Bound names that would capture a free variable of a pending
// replacement are renamed to fresh names first. The period name and the
// caller's keep names are exempt from renaming; the code generator must
// recognize them verbatim, which in turn disallows shadowing them.
type Subst struct {
	keep  NameSet
	namer *Namer
}

// NewSubst builds a substitution engine with the given keep set and
// fresh-name source.
func NewSubst(keep NameSet, namer *Namer) *Subst {
	if keep == nil {
		keep = make(NameSet)
	}
	return &Subst{keep: keep, namer: namer}
}

// Substitute applies bindings to t with an engine that protects only
// the period name.
func Substitute(bindings []Binding, namer *Namer, t *Term) *Term {
	return NewSubst(nil, namer).Apply(bindings, t)
}

// Apply substitutes all bindings into t. Apply(nil, t) returns t.
func (s *Subst) Apply(bindings []Binding, t *Term) *Term {
	if len(bindings) == 0 || t == nil {
		return t
	}
	switch t.Kind {
	case KindVar:
		name := t.Data.(VarData).Name
		for i := range bindings {
			if bindings[i].Name != name {
				continue
			}
			repl := bindings[i].Repl
			if len(FreeVars(repl)) == 0 {
				return repl
			}
			// The replacement's own free variables must still see
			// the bindings that follow it in the batch.
			return s.Apply(bindings[i+1:], repl)
		}
		return t
	case KindUnit, KindBool, KindInt, KindFloat, KindString, KindBuiltin:
		return t
	case KindSeq:
		d := t.Data.(SeqData)
		return NewSeq(s.Apply(bindings, d.Left), s.Apply(bindings, d.Right), t.Type)
	case KindRefNew:
		d := t.Data.(RefNewData)
		return NewRefNew(s.Apply(bindings, d.Init), t.Type)
	case KindRefGet:
		d := t.Data.(RefGetData)
		return NewRefGet(s.Apply(bindings, d.Cell), t.Type)
	case KindRefSet:
		d := t.Data.(RefSetData)
		return NewRefSet(s.Apply(bindings, d.Cell), s.Apply(bindings, d.Value), t.Type)
	case KindRecord:
		d := t.Data.(RecordData)
		fields := make([]FieldInit, len(d.Fields))
		for i := range d.Fields {
			fields[i] = FieldInit{Name: d.Fields[i].Name, Value: s.Apply(bindings, d.Fields[i].Value)}
		}
		return NewRecord(fields, t.Type)
	case KindProject:
		d := t.Data.(ProjectData)
		return NewProject(s.Apply(bindings, d.Base), d.Field, s.Apply(bindings, d.Default), t.Type)
	case KindReplace:
		d := t.Data.(ReplaceData)
		return NewReplace(s.Apply(bindings, d.Base), d.Field, s.Apply(bindings, d.Value), t.Type)
	case KindLet:
		return s.applyLet(bindings, t)
	case KindLambda:
		return s.applyLambda(bindings, t)
	case KindApply:
		d := t.Data.(ApplyData)
		args := make([]NamedArg, len(d.Args))
		for i := range d.Args {
			args[i] = NamedArg{Name: d.Args[i].Name, Value: s.Apply(bindings, d.Args[i].Value)}
		}
		return NewApply(s.Apply(bindings, d.Callee), args, t.Type)
	case KindOpen:
		d := t.Data.(OpenData)
		return &Term{Kind: KindOpen, Type: t.Type, Data: OpenData{Module: d.Module, Body: s.Apply(bindings, d.Body)}}
	default:
		return t
	}
}

func (s *Subst) applyLet(bindings []Binding, t *Term) *Term {
	d := t.Data.(LetData)
	def := s.Apply(bindings, d.Def)
	active := dropBound(bindings, d.Name)
	name := d.Name
	if s.mustRename(name, active) {
		fresh := s.namer.Fresh(name)
		active = append([]Binding{{Name: name, Repl: NewVar(fresh, d.Def.Type)}}, active...)
		name = fresh
	}
	return NewLet(name, def, s.Apply(active, d.Body), t.Type)
}

func (s *Subst) applyLambda(bindings []Binding, t *Term) *Term {
	d := t.Data.(LambdaData)
	active := bindings
	for i := range d.Params {
		active = dropBound(active, d.Params[i].Name)
	}
	params := make([]Param, len(d.Params))
	copy(params, d.Params)
	for i := range params {
		if !s.mustRename(params[i].Name, active) {
			continue
		}
		fresh := s.namer.Fresh(params[i].Name)
		active = append([]Binding{{Name: params[i].Name, Repl: NewVar(fresh, params[i].Type)}}, active...)
		params[i].Name = fresh
	}
	for i := range params {
		params[i].Default = s.Apply(active, params[i].Default)
	}
	return NewLambda(params, s.Apply(active, d.Body), t.Type)
}

// mustRename reports whether a bound name would capture a free variable
// of any pending replacement. Exempt names are never renamed.
func (s *Subst) mustRename(name string, active []Binding) bool {
	if name == PeriodName || s.keep.Has(name) {
		return false
	}
	for i := range active {
		if FreeVars(active[i].Repl).Has(name) {
			return true
		}
	}
	return false
}

func dropBound(bindings []Binding, name string) []Binding {
	keepAll := true
	for i := range bindings {
		if bindings[i].Name == name {
			keepAll = false
			break
		}
	}
	if keepAll {
		return bindings
	}
	out := make([]Binding, 0, len(bindings))
	for i := range bindings {
		if bindings[i].Name != name {
			out = append(out, bindings[i])
		}
	}
	return out
}
