package trace

import (
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeTarget, false},
		{LevelDetail, ScopeTarget, true},
		{LevelDetail, ScopeTerm, false},
		{LevelDebug, ScopeTerm, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("detail"); err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel(detail) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Fatalf("invalid level must error")
	}
}

func TestStreamTracerFiltersByScope(t *testing.T) {
	var sb strings.Builder
	tr := NewStreamTracer(&sb, LevelPhase, FormatText)

	sp := Begin(tr, ScopePhase, "reduce", 0)
	sp.End("ok")
	Begin(tr, ScopeTerm, "rewrite", 0).End("")

	out := sb.String()
	if !strings.Contains(out, "reduce") {
		t.Fatalf("phase span not written:\n%s", out)
	}
	if strings.Contains(out, "rewrite") {
		t.Fatalf("term-scope span must be filtered at phase level:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var sb strings.Builder
	tr := NewStreamTracer(&sb, LevelDebug, FormatNDJSON)
	Begin(tr, ScopeDriver, "emit", 0).WithExtra("targets", "3").End("done")

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want begin+end lines, got %d:\n%s", len(lines), sb.String())
	}
	if !strings.Contains(lines[1], `"targets":"3"`) {
		t.Fatalf("extra not encoded: %s", lines[1])
	}
}

func TestNopSpanIsSafe(t *testing.T) {
	sp := Begin(Nop, ScopeDriver, "x", 0)
	if d := sp.WithExtra("k", "v").End("detail"); d != 0 {
		t.Fatalf("nop span must report zero duration")
	}
}
