package diag

import "testing"

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	if !b.Add(Warningf(RefFieldDropped, "a", "one")) {
		t.Fatalf("first add rejected")
	}
	if !b.Add(Warningf(RefFieldDropped, "b", "two")) {
		t.Fatalf("second add rejected")
	}
	if b.Add(Warningf(RefFieldDropped, "c", "three")) {
		t.Fatalf("add beyond capacity accepted")
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}

func TestBagSeverityQueries(t *testing.T) {
	b := NewBag(4)
	b.Add(Infof(ObsTimings, "", "timings"))
	if b.HasWarnings() || b.HasErrors() {
		t.Fatalf("info-only bag must have no warnings or errors")
	}
	b.Add(Warningf(RefBindingDropped, "f", "dropped"))
	if !b.HasWarnings() || b.HasErrors() {
		t.Fatalf("warning detection wrong")
	}
	b.Add(Errorf(GenUnreducedTerm, "main", "lambda reached code generation"))
	if !b.HasErrors() {
		t.Fatalf("error not detected")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(8)
	b.Add(Warningf(RefFieldDropped, "z", "dup"))
	b.Add(Errorf(GenUnresolvedType, "a", "unresolved"))
	b.Add(Warningf(RefFieldDropped, "z", "dup"))
	b.Sort()
	b.Dedup()
	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("dedup kept %d items, want 2", len(items))
	}
	if items[0].Subject != "a" || items[1].Subject != "z" {
		t.Fatalf("sort order wrong: %q then %q", items[0].Subject, items[1].Subject)
	}
}

func TestCodeID(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{RefNoExternName, "REF1001"},
		{RedMissingField, "RED2001"},
		{GenOpenForm, "GEN3003"},
		{ProjBadManifest, "PRJ5002"},
	}
	for _, tc := range cases {
		if got := tc.code.ID(); got != tc.want {
			t.Fatalf("ID(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
