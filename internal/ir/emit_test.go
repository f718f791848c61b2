package ir

import (
	"strings"
	"testing"

	"chime/internal/diag"
	"chime/internal/term"
	"chime/internal/types"
	"chime/internal/value"
)

// phaseTerm builds `let phase = ref 0.0 in !phase`, the smallest term
// with persistent state.
func phaseTerm(in *types.Interner) *term.Term {
	b := in.Builtins()
	refTy := in.Intern(types.MakeRef(b.Float))
	return term.NewLet("phase",
		term.NewRefNew(term.NewFloat(0, b.Float), refTy),
		term.NewRefGet(term.NewVar("phase", refTy), b.Float),
		b.Float)
}

func TestEmitFixedShape(t *testing.T) {
	in := types.NewInterner()
	decls, err := Emit(in, term.NewNamer(), phaseTerm(in), EmitOptions{Entry: "voice"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(decls) != 5 {
		t.Fatalf("got %d declarations, want 5", len(decls))
	}
	wantNames := []string{"voice_state", "voice_reset", "voice_alloc", "voice_free", "voice"}
	wantKinds := []DeclKind{DeclType, DeclFunc, DeclFunc, DeclFunc, DeclFunc}
	for i := range wantNames {
		if decls[i].Name != wantNames[i] || decls[i].Kind != wantKinds[i] {
			t.Fatalf("decl[%d] = %s (kind %d), want %s", i, decls[i].Name, decls[i].Kind, wantNames[i])
		}
	}
}

func TestEmitStateRecordFields(t *testing.T) {
	in := types.NewInterner()
	decls, err := Emit(in, term.NewNamer(), phaseTerm(in), EmitOptions{Entry: "voice"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	st := decls[0].Type.Struct
	if len(st.Fields) != 2 {
		t.Fatalf("state has %d fields, want period + one cell", len(st.Fields))
	}
	if st.Fields[0].Name != term.PeriodName || st.Fields[0].Type.Kind != TypeFloat {
		t.Fatalf("first field must be the float period, got %s %s", st.Fields[0].Name, st.Fields[0].Type)
	}
	if st.Fields[1].Type.Kind != TypeFloat {
		t.Fatalf("cell field type = %s, want float", st.Fields[1].Type)
	}
}

func TestEmitEntryStateParameter(t *testing.T) {
	in := types.NewInterner()
	decls, err := Emit(in, term.NewNamer(), phaseTerm(in), EmitOptions{Entry: "voice"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	entry := decls[len(decls)-1]
	if len(entry.Func.Params) != 1 {
		t.Fatalf("non-function entry must take only the state pointer, got %d params", len(entry.Func.Params))
	}
	p := entry.Func.Params[0]
	if p.Type.Kind != TypePtr || p.Type.Elem.Kind != TypeStruct {
		t.Fatalf("state parameter type = %s", p.Type)
	}
	// The prologue aliases period and the cell before the body runs.
	if len(entry.Func.Body) < 2 || entry.Func.Body[0].Kind != ExprLet {
		t.Fatalf("entry body must start with alias bindings")
	}
	if entry.Func.Body[0].Let.Name != term.PeriodName {
		t.Fatalf("first alias = %q, want period", entry.Func.Body[0].Let.Name)
	}
	if entry.Func.Body[0].Let.Value.Kind != ExprAddrOf {
		t.Fatalf("aliases must bind address-of-field expressions")
	}
}

func TestEmitEntryLambdaArity(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	fnTy := in.InternFn([]types.TypeID{b.Float}, b.Float)
	lam := term.NewLambda([]term.Param{{Name: "x", Type: b.Float}},
		term.NewApply(term.NewBuiltin(term.OpAdd, types.NoTypeID), []term.NamedArg{
			{Name: "a", Value: term.NewVar("x", b.Float)},
			{Name: "b", Value: term.NewFloat(1, b.Float)},
		}, b.Float), fnTy)

	decls, err := Emit(in, term.NewNamer(), lam, EmitOptions{Entry: "gain"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	entry := decls[len(decls)-1]
	// One more parameter than the source arrow type specifies.
	if len(entry.Func.Params) != 2 {
		t.Fatalf("entry has %d params, want state + x", len(entry.Func.Params))
	}
	if entry.Func.Params[1].Name != "x" || entry.Func.Params[1].Type.Kind != TypeFloat {
		t.Fatalf("second param = %s %s", entry.Func.Params[1].Name, entry.Func.Params[1].Type)
	}
	if entry.Func.Result.Kind != TypeFloat {
		t.Fatalf("entry result = %s, want float", entry.Func.Result)
	}
	last := entry.Func.Body[len(entry.Func.Body)-1]
	if last.Kind != ExprPrim || last.Prim.Op != PrimAdd {
		t.Fatalf("entry body must end in the lowered addition, got kind %d", last.Kind)
	}
}

func TestEmitClearsEventFlags(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	evTy := in.Intern(types.MakeEvent(b.Unit))
	refBool := in.Intern(types.MakeRef(b.Bool))
	handlerTy := in.InternFn([]types.TypeID{b.Unit}, b.Unit)

	handler := term.NewLambda([]term.Param{{Name: "u", Type: b.Unit}}, term.NewUnit(b.Unit), handlerTy)
	ch := term.NewApply(term.NewBuiltin(term.OpChannel, types.NoTypeID),
		[]term.NamedArg{{Name: "a", Value: term.NewUnit(b.Unit)}}, evTy)
	tm := term.NewLet("tick", ch,
		term.NewApply(term.NewBuiltin(term.OpHandle, types.NoTypeID), []term.NamedArg{
			{Name: "a", Value: term.NewVar("tick", refBool)},
			{Name: "b", Value: handler},
		}, b.Unit),
		b.Unit)

	decls, err := Emit(in, term.NewNamer(), tm, EmitOptions{Entry: "tickmod"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	st := decls[0].Type.Struct
	if len(st.Fields) != 2 || st.Fields[1].Type.Kind != TypeBool {
		t.Fatalf("event flag must be a bool state field, got %v", st.Fields)
	}
	entry := decls[len(decls)-1]
	// After the aliases (period + flag cell) the entry must clear the
	// flag before the body.
	clear := entry.Func.Body[2]
	if clear.Kind != ExprStore || clear.Store.Value.Kind != ExprBool || clear.Store.Value.Bool {
		t.Fatalf("entry must store false into the event flag, got %s", exprStr(clear))
	}
}

func TestEmitLiftsKeptFunction(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	fnTy := in.InternFn([]types.TypeID{b.Float}, b.Float)
	double := term.NewLambda([]term.Param{{Name: "x", Type: b.Float}},
		term.NewApply(term.NewBuiltin(term.OpMul, types.NoTypeID), []term.NamedArg{
			{Name: "a", Value: term.NewVar("x", b.Float)},
			{Name: "b", Value: term.NewFloat(2, b.Float)},
		}, b.Float), fnTy)
	tm := term.NewLet("double", double,
		term.NewApply(term.NewVar("double", fnTy),
			[]term.NamedArg{{Name: "x", Value: term.NewFloat(3, b.Float)}}, b.Float),
		b.Float)

	decls, err := Emit(in, term.NewNamer(), tm, EmitOptions{Entry: "main", Keep: []string{"double"}})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(decls) != 6 {
		t.Fatalf("got %d declarations, want 4 wrappers + lifted + entry", len(decls))
	}
	lifted := decls[4]
	if lifted.Kind != DeclFunc || lifted.Name != "double" {
		t.Fatalf("decl[4] = %s, want lifted double", lifted.Name)
	}
	// state pointer + one positional parameter
	if len(lifted.Func.Params) != 2 || lifted.Func.Params[1].Type.Kind != TypeFloat {
		t.Fatalf("lifted params wrong: %v", lifted.Func.Params)
	}
	body := lifted.Func.Body
	last := body[len(body)-1]
	if last.Kind != ExprPrim || last.Prim.Op != PrimMul {
		t.Fatalf("lifted body must end in the multiplication")
	}
	entry := decls[5]
	elast := entry.Func.Body[len(entry.Func.Body)-1]
	if elast.Kind != ExprCall || elast.Call.Name != "double" {
		t.Fatalf("entry must call the kept declaration, got %s", exprStr(elast))
	}
}

func TestEmitInlinesValueEnvironment(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tm := term.NewApply(term.NewBuiltin(term.OpMul, types.NoTypeID), []term.NamedArg{
		{Name: "a", Value: term.NewVar("gain", b.Float)},
		{Name: "b", Value: term.NewFloat(2, b.Float)},
	}, b.Float)

	bag := diag.NewBag(8)
	decls, err := Emit(in, term.NewNamer(), tm, EmitOptions{
		Entry: "out",
		Values: []value.Bound{
			{Name: "gain", Value: &value.Value{Kind: value.KindFloat, Type: b.Float, Float: 0.5}},
			{Name: "mystery", Value: &value.Value{Kind: value.KindNative, Native: &value.Native{Name: "mystery"}}},
		},
		Reporter: diag.BagReporter{Bag: bag},
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	entry := decls[len(decls)-1]
	last := entry.Func.Body[len(entry.Func.Body)-1]
	if last.Kind != ExprFloat || last.Float != 1 {
		t.Fatalf("environment not folded: %s", exprStr(last))
	}
	if !bag.HasWarnings() {
		t.Fatalf("unreflectable binding must be reported")
	}
}

func TestEmitStateReadStaysInEntryBody(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	refTy := in.Intern(types.MakeRef(b.Float))
	sum := term.NewApply(term.NewBuiltin(term.OpAdd, types.NoTypeID), []term.NamedArg{
		{Name: "a", Value: term.NewVar("x", b.Float)},
		{Name: "b", Value: term.NewVar("x", b.Float)},
	}, b.Float)
	// x reads the cell twice per call; it must not become a top-level
	// constant holding a single frozen sample.
	tm := term.NewLet("phase",
		term.NewRefNew(term.NewFloat(0, b.Float), refTy),
		term.NewLet("x",
			term.NewRefGet(term.NewVar("phase", refTy), b.Float),
			sum, b.Float),
		b.Float)

	decls, err := Emit(in, term.NewNamer(), tm, EmitOptions{Entry: "voice"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(decls) != 5 {
		t.Fatalf("got %d declarations, want 5", len(decls))
	}
	for _, d := range decls {
		if d.Kind == DeclConst {
			t.Fatalf("per-call state read hoisted into constant %q", d.Name)
		}
	}
	entry := decls[len(decls)-1]
	var bound bool
	for _, e := range entry.Func.Body {
		if e.Kind == ExprLet && e.Let.Name == "x" {
			bound = true
			if e.Let.Value.Kind != ExprLoad {
				t.Fatalf("x must bind the cell load, got %s", exprStr(e.Let.Value))
			}
		}
	}
	if !bound {
		t.Fatalf("residual binding must lower inside the entry body")
	}
	last := entry.Func.Body[len(entry.Func.Body)-1]
	if last.Kind != ExprPrim || last.Prim.Op != PrimAdd {
		t.Fatalf("entry body must end in the addition, got %s", exprStr(last))
	}
}

func TestEmitRejectsKeptStateReadConstant(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	refTy := in.Intern(types.MakeRef(b.Float))
	tm := term.NewLet("phase",
		term.NewRefNew(term.NewFloat(0, b.Float), refTy),
		term.NewLet("x",
			term.NewRefGet(term.NewVar("phase", refTy), b.Float),
			term.NewVar("x", b.Float), b.Float),
		b.Float)

	_, err := Emit(in, term.NewNamer(), tm, EmitOptions{Entry: "voice", Keep: []string{"x"}})
	if err == nil {
		t.Fatalf("kept binding reading a cell cannot be a constant")
	}
	if !strings.Contains(err.Error(), "mutable state") {
		t.Fatalf("error must call out the state read, got %v", err)
	}
}

func TestEmitRecordCellInitializerFails(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	recTy := in.InternRecord([]types.Field{{Name: "a", Type: b.Float}})
	refTy := in.Intern(types.MakeRef(recTy))
	cell := term.NewRefNew(
		term.NewRecord([]term.FieldInit{{Name: "a", Value: term.NewFloat(1, b.Float)}}, recTy),
		refTy)
	tm := term.NewSeq(cell, term.NewFloat(0, b.Float), b.Float)

	_, err := Emit(in, term.NewNamer(), tm, EmitOptions{Entry: "voice"})
	if err == nil {
		t.Fatalf("record-initialized cell must fail emission, not lose its store")
	}
	if !strings.Contains(err.Error(), "initializer") {
		t.Fatalf("error must name the failing initializer, got %v", err)
	}
}

func TestEmitDeterminism(t *testing.T) {
	render := func() string {
		in := types.NewInterner()
		decls, err := Emit(in, term.NewNamer(), phaseTerm(in), EmitOptions{Entry: "voice"})
		if err != nil {
			t.Fatalf("emit: %v", err)
		}
		var sb strings.Builder
		if err := Dump(&sb, decls, DumpOptions{}); err != nil {
			t.Fatalf("dump: %v", err)
		}
		return sb.String()
	}
	if a, b := render(), render(); a != b {
		t.Fatalf("emissions differ:\n%s\nvs\n%s", a, b)
	}
}
