// Package diagfmt renders collected diagnostics for humans and tools.
package diagfmt

// PrettyOpts controls the human-readable rendering.
type PrettyOpts struct {
	// Color enables ANSI colors. The caller decides based on the
	// destination (TTY detection, --color flag).
	Color bool
	// Verbose includes notes attached to each diagnostic.
	Verbose bool
}
