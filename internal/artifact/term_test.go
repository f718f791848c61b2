package artifact

import (
	"bytes"
	"testing"

	"chime/internal/term"
	"chime/internal/types"
)

func TestTermRoundTrip(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	refF := in.Intern(types.MakeRef(b.Float))
	fnTy := in.InternFn([]types.TypeID{b.Float}, b.Float)

	// let phase = ref 0.0 in (\x -> !phase + x) 1.0
	body := term.NewApply(
		term.NewLambda(
			[]term.Param{{Name: "x", Type: b.Float}},
			term.NewApply(
				term.NewBuiltin(term.OpAdd, fnTy),
				[]term.NamedArg{
					{Name: "a", Value: term.NewRefGet(term.NewVar("phase", refF), b.Float)},
					{Name: "b", Value: term.NewVar("x", b.Float)},
				},
				b.Float,
			),
			fnTy,
		),
		[]term.NamedArg{{Name: "x", Value: term.NewFloat(1, b.Float)}},
		b.Float,
	)
	src := term.NewLet("phase",
		term.NewRefNew(term.NewFloat(0, b.Float), refF),
		body,
		b.Float,
	)

	var buf bytes.Buffer
	if err := EncodeTerm(&buf, in, src); err != nil {
		t.Fatalf("encode: %v", err)
	}

	out := types.NewInterner()
	got, err := DecodeTerm(&buf, out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want, have := term.String(src), term.String(got); want != have {
		t.Fatalf("term mangled:\nwant %s\nhave %s", want, have)
	}

	// Types must re-intern structurally.
	d := got.Data.(term.LetData)
	cellTy, ok := out.Lookup(d.Def.Type)
	if !ok || cellTy.Kind != types.KindRef {
		t.Fatalf("ref type lost: %+v", cellTy)
	}
	if elem, _ := out.Lookup(cellTy.Elem); elem.Kind != types.KindFloat {
		t.Fatalf("ref element type lost")
	}
}

func TestTermRoundTripRecord(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	recTy := in.InternRecord([]types.Field{
		{Name: "freq", Type: b.Float},
		{Name: "gate", Type: b.Bool},
	})
	src := term.NewProject(
		term.NewRecord([]term.FieldInit{
			{Name: "freq", Value: term.NewFloat(440, b.Float)},
			{Name: "gate", Value: term.NewBool(true, b.Bool)},
		}, recTy),
		"freq",
		term.NewFloat(0, b.Float),
		b.Float,
	)

	var buf bytes.Buffer
	if err := EncodeTerm(&buf, in, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := types.NewInterner()
	got, err := DecodeTerm(&buf, out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec, ok := out.Record(got.Data.(term.ProjectData).Base.Type)
	if !ok || len(rec.Fields) != 2 || rec.Fields[0].Name != "freq" {
		t.Fatalf("record field table lost: %+v", rec)
	}
	if got.Data.(term.ProjectData).Default == nil {
		t.Fatalf("projection default lost")
	}
}

func TestDecodeTermNormalizesNames(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	// Decomposed e + combining acute must come out composed.
	src := term.NewVar("voix_e\u0301", b.Float)

	var buf bytes.Buffer
	if err := EncodeTerm(&buf, in, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeTerm(&buf, types.NewInterner())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if name := got.Data.(term.VarData).Name; name != "voix_\u00e9" {
		t.Fatalf("name not NFC-normalized: %q", name)
	}
}
