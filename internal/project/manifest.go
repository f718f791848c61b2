package project

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"chime/internal/diag"
)

// DefaultSampleRate is used when the manifest leaves [emit].sample_rate
// unset.
const DefaultSampleRate = 48000.0

// Manifest is a parsed chime.toml plus its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the chime.toml layout.
type Config struct {
	Package PackageConfig  `toml:"package"`
	Emit    EmitConfig     `toml:"emit"`
	Targets []TargetConfig `toml:"target"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type EmitConfig struct {
	// Samples per second; the generated state record's period field
	// is seeded with its reciprocal.
	SampleRate float64 `toml:"sample_rate"`
	// Output directory for emitted artifacts, relative to the root.
	Out string `toml:"out"`
}

// TargetConfig names one term artifact to compile.
type TargetConfig struct {
	Name string `toml:"name"`
	// Path to the input term artifact, relative to the root.
	Term string `toml:"term"`
	// Entry binding; defaults to the target name.
	Entry string `toml:"entry"`
	// Bindings exempt from inlining and renaming.
	Keep []string `toml:"keep"`
}

// Period returns the seconds-per-sample value for the manifest.
func (m *Manifest) Period() float64 {
	return 1 / m.Config.Emit.SampleRate
}

// OutDir resolves the output directory against the project root.
func (m *Manifest) OutDir() string {
	out := m.Config.Emit.Out
	if out == "" {
		out = "build"
	}
	return filepath.Join(m.Root, filepath.FromSlash(out))
}

// TermPath resolves a target's term artifact against the project root.
func (m *Manifest) TermPath(t TargetConfig) string {
	return filepath.Join(m.Root, filepath.FromSlash(t.Term))
}

// Load parses and validates the manifest at path. Problems are
// reported to r; ok is false when any were errors.
func Load(path string, r diag.Reporter) (*Manifest, bool) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		errf(r, diag.ProjBadManifest, path, "failed to parse TOML: %v", err)
		return nil, false
	}
	m := &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}
	if !validate(m, meta, r) {
		return nil, false
	}
	applyDefaults(m)
	return m, true
}

func validate(m *Manifest, meta toml.MetaData, r diag.Reporter) bool {
	ok := true
	path := m.Path
	if !meta.IsDefined("package", "name") || strings.TrimSpace(m.Config.Package.Name) == "" {
		errf(r, diag.ProjBadManifest, path, "missing [package].name")
		ok = false
	} else if !IsValidIdent(m.Config.Package.Name) {
		errf(r, diag.ProjBadManifest, path, "[package].name %q is not a valid identifier", m.Config.Package.Name)
		ok = false
	}
	if meta.IsDefined("emit", "sample_rate") && m.Config.Emit.SampleRate <= 0 {
		errf(r, diag.ProjBadSampleRate, path, "[emit].sample_rate must be positive, got %v", m.Config.Emit.SampleRate)
		ok = false
	}
	if len(m.Config.Targets) == 0 {
		errf(r, diag.ProjMissingEntry, path, "no [[target]] sections")
		ok = false
	}
	seen := make(map[string]bool, len(m.Config.Targets))
	for i, t := range m.Config.Targets {
		subject := fmt.Sprintf("%s: target %d", path, i)
		if strings.TrimSpace(t.Name) == "" {
			errf(r, diag.ProjMissingEntry, subject, "missing name")
			ok = false
			continue
		}
		if !IsValidIdent(t.Name) {
			errf(r, diag.ProjBadManifest, subject, "name %q is not a valid identifier", t.Name)
			ok = false
		}
		if seen[t.Name] {
			errf(r, diag.ProjDuplicateTarget, subject, "duplicate target %q", t.Name)
			ok = false
		}
		seen[t.Name] = true
		if strings.TrimSpace(t.Term) == "" {
			errf(r, diag.ProjMissingEntry, subject, "target %q has no term path", t.Name)
			ok = false
		}
		if t.Entry != "" && !IsValidIdent(t.Entry) {
			errf(r, diag.ProjBadManifest, subject, "entry %q is not a valid identifier", t.Entry)
			ok = false
		}
		for _, k := range t.Keep {
			if !IsValidIdent(k) {
				errf(r, diag.ProjBadManifest, subject, "keep name %q is not a valid identifier", k)
				ok = false
			}
		}
	}
	return ok
}

func applyDefaults(m *Manifest) {
	if m.Config.Emit.SampleRate == 0 {
		m.Config.Emit.SampleRate = DefaultSampleRate
	}
	for i := range m.Config.Targets {
		if m.Config.Targets[i].Entry == "" {
			m.Config.Targets[i].Entry = m.Config.Targets[i].Name
		}
	}
}

func errf(r diag.Reporter, code diag.Code, subject, format string, args ...any) {
	r.Report(diag.Errorf(code, subject, format, args...))
}

// IsValidIdent reports whether name is usable as an entry, keep, or
// target identifier.
func IsValidIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
