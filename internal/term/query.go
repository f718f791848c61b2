package term

// NameSet is a set of variable names.
type NameSet map[string]struct{}

// Has reports set membership.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add inserts a name.
func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

// FreeVars computes the set of free variable names of a term. Names
// bound by Let, by function parameters (including inside their default
// values) and shadowed names are excluded per lexical scoping.
func FreeVars(t *Term) NameSet {
	out := make(NameSet)
	collectFree(t, make(NameSet), out)
	return out
}

func collectFree(t *Term, bound NameSet, out NameSet) {
	if t == nil {
		return
	}
	switch t.Kind {
	case KindVar:
		name := t.Data.(VarData).Name
		if !bound.Has(name) {
			out.Add(name)
		}
	case KindSeq:
		d := t.Data.(SeqData)
		collectFree(d.Left, bound, out)
		collectFree(d.Right, bound, out)
	case KindRefNew:
		collectFree(t.Data.(RefNewData).Init, bound, out)
	case KindRefGet:
		collectFree(t.Data.(RefGetData).Cell, bound, out)
	case KindRefSet:
		d := t.Data.(RefSetData)
		collectFree(d.Cell, bound, out)
		collectFree(d.Value, bound, out)
	case KindRecord:
		d := t.Data.(RecordData)
		for i := range d.Fields {
			collectFree(d.Fields[i].Value, bound, out)
		}
	case KindProject:
		d := t.Data.(ProjectData)
		collectFree(d.Base, bound, out)
		collectFree(d.Default, bound, out)
	case KindReplace:
		d := t.Data.(ReplaceData)
		collectFree(d.Base, bound, out)
		collectFree(d.Value, bound, out)
	case KindLet:
		d := t.Data.(LetData)
		collectFree(d.Def, bound, out)
		inner := withBound(bound, d.Name)
		collectFree(d.Body, inner, out)
	case KindLambda:
		d := t.Data.(LambdaData)
		inner := bound
		for i := range d.Params {
			inner = withBound(inner, d.Params[i].Name)
		}
		for i := range d.Params {
			collectFree(d.Params[i].Default, inner, out)
		}
		collectFree(d.Body, inner, out)
	case KindApply:
		d := t.Data.(ApplyData)
		collectFree(d.Callee, bound, out)
		for i := range d.Args {
			collectFree(d.Args[i].Value, bound, out)
		}
	case KindOpen:
		collectFree(t.Data.(OpenData).Body, bound, out)
	}
}

func withBound(bound NameSet, name string) NameSet {
	if bound.Has(name) {
		return bound
	}
	inner := make(NameSet, len(bound)+1)
	for k := range bound {
		inner.Add(k)
	}
	inner.Add(name)
	return inner
}

// Occurrences counts free references to a name inside a term.
func Occurrences(name string, t *Term) int {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case KindVar:
		if t.Data.(VarData).Name == name {
			return 1
		}
		return 0
	case KindSeq:
		d := t.Data.(SeqData)
		return Occurrences(name, d.Left) + Occurrences(name, d.Right)
	case KindRefNew:
		return Occurrences(name, t.Data.(RefNewData).Init)
	case KindRefGet:
		return Occurrences(name, t.Data.(RefGetData).Cell)
	case KindRefSet:
		d := t.Data.(RefSetData)
		return Occurrences(name, d.Cell) + Occurrences(name, d.Value)
	case KindRecord:
		d := t.Data.(RecordData)
		n := 0
		for i := range d.Fields {
			n += Occurrences(name, d.Fields[i].Value)
		}
		return n
	case KindProject:
		d := t.Data.(ProjectData)
		return Occurrences(name, d.Base) + Occurrences(name, d.Default)
	case KindReplace:
		d := t.Data.(ReplaceData)
		return Occurrences(name, d.Base) + Occurrences(name, d.Value)
	case KindLet:
		d := t.Data.(LetData)
		n := Occurrences(name, d.Def)
		if d.Name != name {
			n += Occurrences(name, d.Body)
		}
		return n
	case KindLambda:
		d := t.Data.(LambdaData)
		for i := range d.Params {
			if d.Params[i].Name == name {
				return 0
			}
		}
		n := 0
		for i := range d.Params {
			n += Occurrences(name, d.Params[i].Default)
		}
		return n + Occurrences(name, d.Body)
	case KindApply:
		d := t.Data.(ApplyData)
		n := Occurrences(name, d.Callee)
		for i := range d.Args {
			n += Occurrences(name, d.Args[i].Value)
		}
		return n
	case KindOpen:
		return Occurrences(name, t.Data.(OpenData).Body)
	default:
		return 0
	}
}

// IsValue reports whether a term is a variable or a literal. Only such
// terms are safe to inline unconditionally.
func IsValue(t *Term) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindVar, KindUnit, KindBool, KindInt, KindFloat, KindString, KindBuiltin:
		return true
	default:
		return false
	}
}

// IsPure reports whether evaluating a term can have no side effect.
// This is a conservative under-approximation: anything not explicitly
// classified counts as impure, which only blocks an optimization and
// never produces incorrect code.
func IsPure(t *Term) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindVar, KindUnit, KindBool, KindInt, KindFloat, KindString, KindBuiltin:
		return true
	default:
		return false
	}
}
