package diagfmt

import (
	"strings"
	"testing"

	"chime/internal/diag"
)

func TestPrettyPlain(t *testing.T) {
	bag := diag.NewBag(8)
	bag.Add(diag.Warningf(diag.RefBindingDropped, "osc", "foreign function has no external name"))
	bag.Add(diag.Errorf(diag.GenUnresolvedType, "voice", "unresolved type at code generation"))
	bag.Sort()

	var sb strings.Builder
	Pretty(&sb, bag, PrettyOpts{})
	out := sb.String()
	if !strings.Contains(out, "WARNING [REF1003] osc:") {
		t.Fatalf("missing warning line:\n%s", out)
	}
	if !strings.Contains(out, "ERROR [GEN3001] voice:") {
		t.Fatalf("missing error line:\n%s", out)
	}
}

func TestPrettyVerboseNotes(t *testing.T) {
	bag := diag.NewBag(8)
	d := diag.Warningf(diag.RefFieldDropped, "env", "field dropped").
		WithNote("env.attack", "closure body references an unnamed native")
	bag.Add(d)

	var sb strings.Builder
	Pretty(&sb, bag, PrettyOpts{Verbose: true})
	if !strings.Contains(sb.String(), "note: env.attack:") {
		t.Fatalf("notes not rendered:\n%s", sb.String())
	}
}

func TestJSONShape(t *testing.T) {
	bag := diag.NewBag(8)
	bag.Add(diag.Infof(diag.ObsTimings, "", "reduce took 1ms"))

	var sb strings.Builder
	if err := JSON(&sb, bag); err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, want := range []string{`"severity": "INFO"`, `"code": "OBS6001"`} {
		if !strings.Contains(sb.String(), want) {
			t.Fatalf("missing %s in:\n%s", want, sb.String())
		}
	}
}
