package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"chime/internal/diag"
)

// Pretty renders diagnostics in a human-readable form, one per line:
//
//	<SEV> [<CODE>] <subject>: <message>
//
// followed by indented notes when Verbose is set. The caller is
// expected to Sort the bag first.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s [%s]", severityLabel(d.Severity, opts.Color), d.Code.ID())
		if d.Subject != "" {
			fmt.Fprintf(w, " %s:", d.Subject)
		}
		fmt.Fprintf(w, " %s\n", d.Message)
		if !opts.Verbose {
			continue
		}
		for _, n := range d.Notes {
			if n.Subject != "" {
				fmt.Fprintf(w, "    note: %s: %s\n", n.Subject, n.Msg)
			} else {
				fmt.Fprintf(w, "    note: %s\n", n.Msg)
			}
		}
	}
}

func severityLabel(sev diag.Severity, colorize bool) string {
	if !colorize {
		return sev.String()
	}
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(sev.String())
	case diag.SevWarning:
		return color.New(color.FgYellow).Sprint(sev.String())
	default:
		return color.New(color.FgCyan).Sprint(sev.String())
	}
}
