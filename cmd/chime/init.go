package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"chime/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new chime project",
	Long: `Initialize a new chime project by creating a project manifest
(chime.toml) and a terms/ directory for input artifacts. If [path|name]
is omitted, initializes the current directory. If a non-existing name
is provided, a directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if !project.IsValidIdent(name) {
		name = "chime_project"
	}

	manifestPath, err := project.WriteStarter(target, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(target, "terms"), 0o755); err != nil {
		return fmt.Errorf("failed to create terms directory: %w", err)
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized chime project in %s\n", rel)
	fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", filepath.Base(manifestPath))
	fmt.Fprintf(cmd.OutOrStdout(), "  - terms/\n")
	return nil
}
