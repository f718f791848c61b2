package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chime/internal/artifact"
	"chime/internal/ir"
	"chime/internal/term"
	"chime/internal/types"
)

var dumpKind string

func init() {
	dumpCmd.Flags().StringVar(&dumpKind, "kind", "auto", "artifact kind (auto|ir|term)")
}

var dumpCmd = &cobra.Command{
	Use:   "dump <artifact>",
	Short: "Print a term or IR artifact in readable form",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]
	kind := dumpKind
	if kind == "auto" {
		if strings.HasSuffix(path, ".ir.mp") {
			kind = "ir"
		} else {
			kind = "term"
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	switch kind {
	case "ir":
		payload, err := artifact.Decode(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return ir.Dump(out, payload.Decls, ir.DumpOptions{})
	case "term":
		in := types.NewInterner()
		t, err := artifact.DecodeTerm(f, in)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return term.Dump(out, in, t)
	default:
		return fmt.Errorf("unsupported kind %q (must be auto, ir or term)", dumpKind)
	}
}
