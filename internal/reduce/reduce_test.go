package reduce

import (
	"testing"

	"chime/internal/term"
	"chime/internal/types"
)

type fixture struct {
	in *types.Interner
	b  types.Builtins
	r  *Reducer
}

func newFixture(keep ...string) *fixture {
	in := types.NewInterner()
	ks := make(term.NameSet)
	for _, k := range keep {
		ks.Add(k)
	}
	return &fixture{
		in: in,
		b:  in.Builtins(),
		r:  New(in, term.NewNamer(), ks),
	}
}

func (f *fixture) apply(op term.Op, args ...*term.Term) *term.Term {
	names := []string{"a", "b", "c"}
	na := make([]term.NamedArg, len(args))
	for i := range args {
		na[i] = term.NamedArg{Name: names[i], Value: args[i]}
	}
	return term.NewApply(term.NewBuiltin(op, types.NoTypeID), na, f.b.Float)
}

func (f *fixture) reduce(t *testing.T, tm *term.Term) (State, *term.Term) {
	t.Helper()
	st, out, err := f.r.Reduce(tm)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	return st, out
}

func TestConstantFoldingAdd(t *testing.T) {
	f := newFixture()
	st, out := f.reduce(t, f.apply(term.OpAdd, term.NewFloat(1.5, f.b.Float), term.NewFloat(2.25, f.b.Float)))
	if len(st.Cells) != 0 || len(st.Events) != 0 {
		t.Fatalf("pure folding must not extract state")
	}
	if out.Kind != term.KindFloat || out.Data.(term.FloatData).Value != 3.75 {
		t.Fatalf("got %s, want 3.75", term.String(out))
	}
}

func TestAdditiveIdentity(t *testing.T) {
	f := newFixture()
	e := term.NewRefGet(term.NewVar("c", f.b.Float), f.b.Float)
	_, out := f.reduce(t, f.apply(term.OpAdd, term.NewFloat(0, f.b.Float), e))
	if out.Kind != term.KindRefGet {
		t.Fatalf("0.0 + e must reduce to e, got %s", term.String(out))
	}
	_, out = f.reduce(t, f.apply(term.OpMul, e, term.NewFloat(1, f.b.Float)))
	if out.Kind != term.KindRefGet {
		t.Fatalf("e * 1.0 must reduce to e, got %s", term.String(out))
	}
}

func TestSimplifyMissFallsBack(t *testing.T) {
	f := newFixture()
	// add of two opaque reads has no applicable rule; the application
	// survives unsimplified.
	e1 := term.NewRefGet(term.NewVar("c1", f.b.Float), f.b.Float)
	e2 := term.NewRefGet(term.NewVar("c2", f.b.Float), f.b.Float)
	_, out := f.reduce(t, f.apply(term.OpAdd, e1, e2))
	if out.Kind != term.KindApply {
		t.Fatalf("no-rule fallback must keep the application, got %s", term.String(out))
	}
}

func TestRefNewExtractsCell(t *testing.T) {
	f := newFixture()
	refTy := f.in.Intern(types.MakeRef(f.b.Float))
	st, out := f.reduce(t, term.NewRefNew(term.NewFloat(0.25, f.b.Float), refTy))
	if len(st.Cells) != 1 {
		t.Fatalf("expected one extracted cell, got %d", len(st.Cells))
	}
	if out.Kind != term.KindVar || out.Data.(term.VarData).Name != st.Cells[0].Name {
		t.Fatalf("cell creation must rewrite to the cell's variable, got %s", term.String(out))
	}
	if st.Cells[0].Init.Kind != term.KindFloat {
		t.Fatalf("initializer must be the reduced term")
	}
}

func TestStateCompleteness(t *testing.T) {
	f := newFixture()
	refTy := f.in.Intern(types.MakeRef(f.b.Float))
	// Two cells created on both sides of a sequence; both must survive
	// the merge.
	left := term.NewRefSet(
		term.NewRefNew(term.NewFloat(1, f.b.Float), refTy),
		term.NewFloat(2, f.b.Float), f.b.Unit)
	right := term.NewRefGet(term.NewRefNew(term.NewFloat(3, f.b.Float), refTy), f.b.Float)
	st, out := f.reduce(t, term.NewSeq(left, right, f.b.Float))
	if len(st.Cells) != 2 {
		t.Fatalf("expected two cells across the merge, got %d", len(st.Cells))
	}
	if st.Cells[0].Name == st.Cells[1].Name {
		t.Fatalf("cell names must be unique")
	}
	if out.Kind != term.KindSeq {
		t.Fatalf("store prefix must be retained, got %s", term.String(out))
	}
}

func TestClosedTermReducesWithEmptyState(t *testing.T) {
	f := newFixture()
	// let x = 2.0 in x * 3.0
	tm := term.NewLet("x", term.NewFloat(2, f.b.Float),
		f.apply(term.OpMul, term.NewVar("x", f.b.Float), term.NewFloat(3, f.b.Float)),
		f.b.Float)
	st, out := f.reduce(t, tm)
	if len(st.Cells) != 0 || len(st.Events) != 0 {
		t.Fatalf("closed cell-free term must produce empty state")
	}
	if out.Kind != term.KindFloat || out.Data.(term.FloatData).Value != 6 {
		t.Fatalf("got %s, want 6", term.String(out))
	}
}

func TestDeadBindingElimination(t *testing.T) {
	f := newFixture()
	refTy := f.in.Intern(types.MakeRef(f.b.Float))
	body := term.NewRefGet(term.NewRefNew(term.NewFloat(1, f.b.Float), refTy), f.b.Float)
	dead := term.NewLet("unused", term.NewFloat(9, f.b.Float), body, f.b.Float)

	stDirect, outDirect := f.reduce(t, body)
	f2 := newFixture()
	stDead, outDead := f2.reduce(t, dead)
	if len(stDead.Cells) != len(stDirect.Cells) {
		t.Fatalf("dead binding changed extracted state")
	}
	if term.String(outDead) != term.String(outDirect) {
		t.Fatalf("dead binding not eliminated:\n%s\nvs\n%s", term.String(outDead), term.String(outDirect))
	}
}

func TestKeepBindingSurvives(t *testing.T) {
	f := newFixture("dsp")
	tm := term.NewLet("dsp", term.NewFloat(2, f.b.Float),
		term.NewVar("dsp", f.b.Float), f.b.Float)
	_, out := f.reduce(t, tm)
	if out.Kind != term.KindLet || out.Data.(term.LetData).Name != "dsp" {
		t.Fatalf("keep binding must survive as a visible declaration, got %s", term.String(out))
	}
}

func TestSeqDropsValuePrefix(t *testing.T) {
	f := newFixture()
	tm := term.NewSeq(term.NewUnit(f.b.Unit), term.NewFloat(4, f.b.Float), f.b.Float)
	_, out := f.reduce(t, tm)
	if out.Kind != term.KindFloat {
		t.Fatalf("unit prefix must be dropped, got %s", term.String(out))
	}
}

func TestSeqReassociatesLeadingBinding(t *testing.T) {
	f := newFixture()
	refTy := f.in.Intern(types.MakeRef(f.b.Float))
	// (let c = <cell> in ()) ; 7.0  must keep c's binding around 7.0
	// when c is still referenced, or drop to 7.0 when dead.
	left := term.NewLet("tmp",
		term.NewRefSet(term.NewVar("flag", refTy), term.NewFloat(1, f.b.Float), f.b.Unit),
		term.NewUnit(f.b.Unit), f.b.Unit)
	tm := term.NewSeq(left, term.NewFloat(7, f.b.Float), f.b.Float)
	_, out := f.reduce(t, tm)
	// The store is impure, so it must be retained in effect order
	// before the literal.
	found := false
	var walk func(*term.Term)
	walk = func(x *term.Term) {
		if x == nil || found {
			return
		}
		switch x.Kind {
		case term.KindRefSet:
			found = true
		case term.KindSeq:
			d := x.Data.(term.SeqData)
			walk(d.Left)
			walk(d.Right)
		case term.KindLet:
			d := x.Data.(term.LetData)
			walk(d.Def)
			walk(d.Body)
		}
	}
	walk(out)
	if !found {
		t.Fatalf("store effect lost during flattening: %s", term.String(out))
	}
}

func TestApplicationThreadsArguments(t *testing.T) {
	f := newFixture()
	// (fun (x, y) -> x - y) x:10.0 y:4.0
	fnTy := f.in.InternFn([]types.TypeID{f.b.Float, f.b.Float}, f.b.Float)
	lam := term.NewLambda([]term.Param{
		{Name: "x", Type: f.b.Float},
		{Name: "y", Type: f.b.Float},
	}, f.apply(term.OpSub, term.NewVar("x", f.b.Float), term.NewVar("y", f.b.Float)), fnTy)
	app := term.NewApply(lam, []term.NamedArg{
		{Name: "x", Value: term.NewFloat(10, f.b.Float)},
		{Name: "y", Value: term.NewFloat(4, f.b.Float)},
	}, f.b.Float)
	_, out := f.reduce(t, app)
	if out.Kind != term.KindFloat || out.Data.(term.FloatData).Value != 6 {
		t.Fatalf("got %s, want 6", term.String(out))
	}
}

func TestApplicationUsesDefaults(t *testing.T) {
	f := newFixture()
	fnTy := f.in.InternFn([]types.TypeID{f.b.Float, f.b.Float}, f.b.Float)
	lam := term.NewLambda([]term.Param{
		{Name: "x", Type: f.b.Float},
		{Name: "amp", Type: f.b.Float, Default: term.NewFloat(0.5, f.b.Float)},
	}, f.apply(term.OpMul, term.NewVar("x", f.b.Float), term.NewVar("amp", f.b.Float)), fnTy)
	app := term.NewApply(lam, []term.NamedArg{
		{Name: "x", Value: term.NewFloat(8, f.b.Float)},
	}, f.b.Float)
	_, out := f.reduce(t, app)
	if out.Kind != term.KindFloat || out.Data.(term.FloatData).Value != 4 {
		t.Fatalf("got %s, want 4", term.String(out))
	}
}

func TestProjectionForcesField(t *testing.T) {
	f := newFixture()
	recTy := f.in.InternRecord([]types.Field{{Name: "freq", Type: f.b.Float}})
	rec := term.NewRecord([]term.FieldInit{
		{Name: "freq", Value: f.apply(term.OpAdd, term.NewFloat(220, f.b.Float), term.NewFloat(220, f.b.Float))},
	}, recTy)
	_, out := f.reduce(t, term.NewProject(rec, "freq", nil, f.b.Float))
	if out.Kind != term.KindFloat || out.Data.(term.FloatData).Value != 440 {
		t.Fatalf("got %s, want 440", term.String(out))
	}
}

func TestProjectionMissingFieldFatal(t *testing.T) {
	f := newFixture()
	recTy := f.in.InternRecord([]types.Field{{Name: "freq", Type: f.b.Float}})
	rec := term.NewRecord([]term.FieldInit{{Name: "freq", Value: term.NewFloat(1, f.b.Float)}}, recTy)
	_, _, err := f.r.Reduce(term.NewProject(rec, "gain", nil, f.b.Float))
	if err == nil {
		t.Fatalf("missing field must be fatal")
	}
}

func TestProjectionMissingFieldDefault(t *testing.T) {
	f := newFixture()
	recTy := f.in.InternRecord([]types.Field{{Name: "freq", Type: f.b.Float}})
	rec := term.NewRecord([]term.FieldInit{{Name: "freq", Value: term.NewFloat(1, f.b.Float)}}, recTy)
	_, out := f.reduce(t, term.NewProject(rec, "gain", term.NewFloat(0.7, f.b.Float), f.b.Float))
	if out.Kind != term.KindFloat || out.Data.(term.FloatData).Value != 0.7 {
		t.Fatalf("default must be used for a missing field, got %s", term.String(out))
	}
}

func TestChannelDesugar(t *testing.T) {
	f := newFixture()
	evTy := f.in.Intern(types.MakeEvent(f.b.Unit))
	ch := term.NewApply(term.NewBuiltin(term.OpChannel, types.NoTypeID),
		[]term.NamedArg{{Name: "a", Value: term.NewUnit(f.b.Unit)}}, evTy)
	st, out := f.reduce(t, ch)
	if len(st.Cells) != 1 || len(st.Events) != 1 {
		t.Fatalf("channel must extract one flag cell and one event, got %d/%d", len(st.Cells), len(st.Events))
	}
	if st.Cells[0].Name != st.Events[0].Name {
		t.Fatalf("event must be named after its flag cell")
	}
	if st.Cells[0].Init.Kind != term.KindBool || st.Cells[0].Init.Data.(term.BoolData).Value {
		t.Fatalf("flag cell must initialize to false")
	}
	if out.Kind != term.KindVar || out.Data.(term.VarData).Name != st.Cells[0].Name {
		t.Fatalf("channel value must be the flag cell variable, got %s", term.String(out))
	}
}

func TestChannelOfNonUnitFatal(t *testing.T) {
	f := newFixture()
	evTy := f.in.Intern(types.MakeEvent(f.b.Float))
	ch := term.NewApply(term.NewBuiltin(term.OpChannel, types.NoTypeID),
		[]term.NamedArg{{Name: "a", Value: term.NewUnit(f.b.Unit)}}, evTy)
	_, _, err := f.r.Reduce(ch)
	if err == nil {
		t.Fatalf("channel of non-unit payload must be fatal")
	}
}

func TestEmitDesugarsToStore(t *testing.T) {
	f := newFixture()
	refBool := f.in.Intern(types.MakeRef(f.b.Bool))
	emit := term.NewApply(term.NewBuiltin(term.OpEmit, types.NoTypeID),
		[]term.NamedArg{{Name: "a", Value: term.NewVar("ev$1", refBool)}}, f.b.Unit)
	_, out := f.reduce(t, emit)
	if out.Kind != term.KindRefSet {
		t.Fatalf("emit must desugar to a store, got %s", term.String(out))
	}
	d := out.Data.(term.RefSetData)
	if d.Value.Kind != term.KindBool || !d.Value.Data.(term.BoolData).Value {
		t.Fatalf("emit must store true")
	}
}

func TestHandleDesugarsToConditional(t *testing.T) {
	f := newFixture()
	refBool := f.in.Intern(types.MakeRef(f.b.Bool))
	handlerTy := f.in.InternFn([]types.TypeID{f.b.Unit}, f.b.Unit)
	handler := term.NewLambda([]term.Param{{Name: "u", Type: f.b.Unit}},
		term.NewRefSet(term.NewVar("out", f.in.Intern(types.MakeRef(f.b.Float))), term.NewFloat(0, f.b.Float), f.b.Unit),
		handlerTy)
	handle := term.NewApply(term.NewBuiltin(term.OpHandle, types.NoTypeID), []term.NamedArg{
		{Name: "a", Value: term.NewVar("ev$1", refBool)},
		{Name: "b", Value: handler},
	}, f.b.Unit)
	st, out := f.reduce(t, handle)
	if out.Kind != term.KindApply {
		t.Fatalf("handle must desugar to a conditional application, got %s", term.String(out))
	}
	callee := out.Data.(term.ApplyData).Callee
	if callee.Kind != term.KindBuiltin || callee.Data.(term.BuiltinData).Op != term.OpIf {
		t.Fatalf("handle must check the flag via the if combinator")
	}
	if len(st.Events) != 1 || len(st.Events[0].Handlers) != 1 {
		t.Fatalf("handler must be registered on the event")
	}
}

func TestReductionDeterminism(t *testing.T) {
	build := func(f *fixture) *term.Term {
		refTy := f.in.Intern(types.MakeRef(f.b.Float))
		phase := term.NewRefNew(term.NewFloat(0, f.b.Float), refTy)
		return term.NewLet("phase", phase,
			term.NewRefGet(term.NewVar("phase", refTy), f.b.Float), f.b.Float)
	}
	f1, f2 := newFixture(), newFixture()
	st1, out1 := f1.reduce(t, build(f1))
	st2, out2 := f2.reduce(t, build(f2))
	if term.String(out1) != term.String(out2) {
		t.Fatalf("normal forms differ between identical runs")
	}
	if len(st1.Cells) != len(st2.Cells) || st1.Cells[0].Name != st2.Cells[0].Name {
		t.Fatalf("extracted state differs between identical runs")
	}
}

func TestMergeUnionsHandlers(t *testing.T) {
	var a, b State
	a.AddEvent("ev$1")
	h := term.NewUnit(types.NoTypeID)
	b.AddHandler("ev$1", h)
	b.AddCell("cell$2", h)
	a.Merge(b)
	if len(a.Events) != 1 || len(a.Events[0].Handlers) != 1 {
		t.Fatalf("handler lists must union per name")
	}
	if len(a.Cells) != 1 {
		t.Fatalf("cells must union")
	}
}
