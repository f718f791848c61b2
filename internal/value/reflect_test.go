package value

import (
	"testing"

	"chime/internal/term"
	"chime/internal/types"
)

func TestReflectLiterals(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	cases := []struct {
		name string
		v    *Value
		kind term.Kind
		ty   types.TypeID
	}{
		{"unit", &Value{Kind: KindUnit}, term.KindUnit, b.Unit},
		{"bool", &Value{Kind: KindBool, Bool: true}, term.KindBool, b.Bool},
		{"int", &Value{Kind: KindInt, Int: 7}, term.KindInt, b.Int},
		{"float", &Value{Kind: KindFloat, Float: 440}, term.KindFloat, b.Float},
		{"string", &Value{Kind: KindString, Str: "saw"}, term.KindString, b.String},
	}
	for _, tc := range cases {
		got, err := Reflect(in, tc.v)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got.Kind != tc.kind || got.Type != tc.ty {
			t.Fatalf("%s: got kind %s type %d", tc.name, got.Kind, got.Type)
		}
	}
}

func TestReflectCell(t *testing.T) {
	in := types.NewInterner()
	got, err := Reflect(in, &Value{Kind: KindCell, Cell: &Value{Kind: KindFloat, Float: 0.5}})
	if err != nil {
		t.Fatalf("reflect cell: %v", err)
	}
	if got.Kind != term.KindRefNew {
		t.Fatalf("cell must reflect to RefNew, got %s", got.Kind)
	}
	ty, _ := in.Lookup(got.Type)
	if ty.Kind != types.KindRef {
		t.Fatalf("cell type = %s, want ref", ty.Kind)
	}
}

func TestReflectRecordDropsFailingFields(t *testing.T) {
	in := types.NewInterner()
	v := &Value{Kind: KindRecord, Fields: []FieldValue{
		{Name: "freq", Value: &Value{Kind: KindFloat, Float: 220}},
		{Name: "impl", Value: &Value{Kind: KindNative, Native: &Native{Name: "impl"}}},
	}}
	got, err := Reflect(in, v)
	if err != nil {
		t.Fatalf("reflect record: %v", err)
	}
	rec := got.Data.(term.RecordData)
	if len(rec.Fields) != 1 || rec.Fields[0].Name != "freq" {
		t.Fatalf("failing field must be dropped silently, got %d fields", len(rec.Fields))
	}
}

func TestReflectNative(t *testing.T) {
	in := types.NewInterner()
	if _, err := Reflect(in, &Value{Kind: KindNative, Native: &Native{Name: "mystery"}}); err == nil {
		t.Fatalf("native without extern name must fail to reflect")
	}
	got, err := Reflect(in, &Value{Kind: KindNative, Native: &Native{Name: "plus", Extern: "add"}})
	if err != nil {
		t.Fatalf("reflect native: %v", err)
	}
	if got.Kind != term.KindBuiltin || got.Data.(term.BuiltinData).Op != term.OpAdd {
		t.Fatalf("extern add must resolve to the builtin, got %s", term.String(got))
	}
	got, err = Reflect(in, &Value{Kind: KindNative, Native: &Native{Name: "tbl", Extern: "wavetable_read"}})
	if err != nil {
		t.Fatalf("reflect native: %v", err)
	}
	if got.Kind != term.KindVar || got.Data.(term.VarData).Name != "wavetable_read" {
		t.Fatalf("unknown extern must become a variable, got %s", term.String(got))
	}
}

func TestReflectClosureWrapsCapturedEnv(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	body := term.NewApply(term.NewBuiltin(term.OpMul, b.Float), []term.NamedArg{
		{Name: "a", Value: term.NewVar("x", b.Float)},
		{Name: "b", Value: term.NewVar("gain", b.Float)},
	}, b.Float)
	v := &Value{
		Kind: KindClosure,
		Type: in.InternFn([]types.TypeID{b.Float}, b.Float),
		Closure: &Closure{
			Params: []term.Param{{Name: "x", Type: b.Float}},
			Env: []Bound{
				{Name: "gain", Value: &Value{Kind: KindFloat, Float: 0.8}},
				{Name: "unused", Value: &Value{Kind: KindNative, Native: &Native{Name: "unused"}}},
			},
			Body: body,
		},
	}
	got, err := Reflect(in, v)
	if err != nil {
		t.Fatalf("reflect closure: %v", err)
	}
	lam := got.Data.(term.LambdaData)
	if lam.Body.Kind != term.KindLet {
		t.Fatalf("captured gain must be bound around the body, got %s", term.String(got))
	}
	fv := term.FreeVars(got)
	if len(fv) != 0 {
		t.Fatalf("closure must reflect to a closed lambda, free = %v", fv)
	}
}

func TestReflectEnvDropsFailures(t *testing.T) {
	in := types.NewInterner()
	env := []Bound{
		{Name: "tempo", Value: &Value{Kind: KindFloat, Float: 120}},
		{Name: "decode", Value: &Value{Kind: KindNative, Native: &Native{Name: "decode"}}},
	}
	bindings, dropped := ReflectEnv(in, env)
	if len(bindings) != 1 || bindings[0].Name != "tempo" {
		t.Fatalf("expected one surviving binding, got %d", len(bindings))
	}
	if len(dropped) != 1 {
		t.Fatalf("expected one dropped binding, got %d", len(dropped))
	}
}
