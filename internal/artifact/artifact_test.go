package artifact

import (
	"bytes"
	"path/filepath"
	"testing"

	"chime/internal/ir"
)

func samplePayload(key Digest) *Payload {
	decls := []ir.Decl{
		{Kind: ir.DeclType, Name: "voice_state", Type: ir.Type{
			Kind: ir.TypeStruct,
			Struct: &ir.StructType{Name: "voice_state", Fields: []ir.StructField{
				{Name: "period", Type: ir.Type{Kind: ir.TypeFloat}},
			}},
		}},
		{Kind: ir.DeclFunc, Name: "voice", Func: ir.FuncDecl{
			Result: ir.Type{Kind: ir.TypeFloat},
			Body:   []*ir.Expr{ir.NewFloat(0.5, ir.Type{Kind: ir.TypeFloat})},
		}},
	}
	return NewPayload("voice", []string{"osc"}, key, decls, []string{"dropped: mystery"})
}

func TestPayloadRoundTrip(t *testing.T) {
	key := Key("voice", []string{"osc"}, "let phase = ...")
	var buf bytes.Buffer
	if err := samplePayload(key).Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Entry != "voice" || len(got.Decls) != 2 || got.Digest != key {
		t.Fatalf("payload mangled: %+v", got)
	}
	if got.Decls[0].Type.Struct.Fields[0].Name != "period" {
		t.Fatalf("nested declaration lost")
	}
}

func TestKeyDeterministicAndSensitive(t *testing.T) {
	a := Key("voice", []string{"osc"}, "body")
	b := Key("voice", []string{"osc"}, "body")
	if a != b {
		t.Fatalf("same inputs must key the same artifact")
	}
	if a == Key("voice", []string{"osc"}, "other") {
		t.Fatalf("term change must change the key")
	}
	if a == Key("voice", []string{"lfo"}, "body") {
		t.Fatalf("keep-set change must change the key")
	}
}

func TestKeyNormalizesIdentifiers(t *testing.T) {
	// U+00E9 vs e + U+0301: same text after NFC.
	composed := "voix_\u00e9"
	decomposed := "voix_e\u0301"
	if Key(composed, nil, "t") != Key(decomposed, nil, "t") {
		t.Fatalf("equivalent entry names must key the same artifact")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "chime"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key("voice", nil, "term")

	if _, ok, err := cache.Get(key); err != nil || ok {
		t.Fatalf("empty cache must miss cleanly, got ok=%v err=%v", ok, err)
	}
	if err := cache.Put(key, samplePayload(key)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := cache.Get(key)
	if err != nil || !ok {
		t.Fatalf("get after put: ok=%v err=%v", ok, err)
	}
	if got.Entry != "voice" || len(got.Decls) != 2 {
		t.Fatalf("cached payload mangled: %+v", got)
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "chime"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key("voice", nil, "term")
	if err := cache.Put(key, samplePayload(key)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok, _ := cache.Get(key); ok {
		t.Fatalf("cache must be empty after DropAll")
	}
}
