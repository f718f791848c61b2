package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID || b.Float == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	unit, _ := in.Lookup(b.Unit)
	if unit.Kind != KindUnit {
		t.Fatalf("expected unit kind, got %v", unit.Kind)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	ref1 := in.Intern(MakeRef(in.Builtins().Float))
	ref2 := in.Intern(MakeRef(in.Builtins().Float))
	if ref1 != ref2 {
		t.Fatalf("ref types should be deduplicated")
	}
	ev := in.Intern(MakeEvent(in.Builtins().Float))
	if ev == ref1 {
		t.Fatalf("event and ref types must differ")
	}
}

func TestRecordFieldLookup(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	rec := in.InternRecord([]Field{
		{Name: "freq", Type: b.Float},
		{Name: "gate", Type: b.Bool},
	})
	info, ok := in.Record(rec)
	if !ok {
		t.Fatalf("record info missing")
	}
	if info.FieldType("gate") != b.Bool {
		t.Fatalf("gate field type mismatch")
	}
	if info.FieldType("absent") != NoTypeID {
		t.Fatalf("absent field should yield NoTypeID")
	}
}

func TestFnSignature(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	fn := in.InternFn([]TypeID{b.Float, b.Float}, b.Float)
	sig, ok := in.Fn(fn)
	if !ok {
		t.Fatalf("fn info missing")
	}
	if len(sig.Params) != 2 || sig.Result != b.Float {
		t.Fatalf("unexpected signature")
	}
}

func TestIsResolved(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if !in.IsResolved(b.Float) {
		t.Fatalf("float should be resolved")
	}
	tv := in.FreshVar()
	if in.IsResolved(tv) {
		t.Fatalf("type variable should not be resolved")
	}
	ref := in.Intern(MakeRef(tv))
	if in.IsResolved(ref) {
		t.Fatalf("ref of type variable should not be resolved")
	}
	fn := in.InternFn([]TypeID{b.Float}, tv)
	if in.IsResolved(fn) {
		t.Fatalf("fn with unresolved result should not be resolved")
	}
}
