package project

import (
	"fmt"
	"os"
	"path/filepath"
)

const manifestTemplate = `[package]
name = %q

[emit]
sample_rate = 48000
out = "build"

[[target]]
name = "voice"
term = "terms/voice.mp"
`

// WriteStarter creates a starter chime.toml in dir. It refuses to
// overwrite an existing manifest.
func WriteStarter(dir, name string) (string, error) {
	if name == "" {
		name = filepath.Base(dir)
	}
	if !IsValidIdent(name) {
		return "", fmt.Errorf("project: %q is not a valid package name", name)
	}
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("project: %s already exists", path)
	}
	if err := os.WriteFile(path, []byte(fmt.Sprintf(manifestTemplate, name)), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
