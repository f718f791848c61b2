package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chime/internal/artifact"
	"chime/internal/diag"
	"chime/internal/diagfmt"
	"chime/internal/driver"
	"chime/internal/project"
)

var (
	emitProjectDir string
	emitOutDir     string
	emitJobs       int
	emitNoCache    bool
	emitOnly       []string
	emitJSON       bool
)

func init() {
	emitCmd.Flags().StringVarP(&emitProjectDir, "project", "p", "", "project directory (defaults to walking up from cwd)")
	emitCmd.Flags().StringVarP(&emitOutDir, "out", "o", "", "output directory (overrides [emit].out)")
	emitCmd.Flags().IntVarP(&emitJobs, "jobs", "j", 0, "parallel compilations (0 = GOMAXPROCS)")
	emitCmd.Flags().BoolVar(&emitNoCache, "no-cache", false, "bypass the artifact cache")
	emitCmd.Flags().StringSliceVar(&emitOnly, "target", nil, "compile only the named targets")
	emitCmd.Flags().BoolVar(&emitJSON, "json", false, "emit diagnostics as JSON")
}

var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Compile the project's term artifacts to IR",
	Args:  cobra.NoArgs,
	RunE:  runEmit,
}

func runEmit(cmd *cobra.Command, args []string) error {
	colorize := useColor(cmd)
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	manifest, bag, err := loadManifest(maxDiagnostics)
	if err != nil {
		reportBag(cmd, bag, colorize, timings)
		return err
	}

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var cache *artifact.DiskCache
	if !emitNoCache {
		if cache, err = artifact.OpenDiskCache("chime"); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: artifact cache unavailable: %v\n", err)
		}
	}

	targets, err := selectTargets(manifest)
	if err != nil {
		return err
	}

	results, err := driver.CompileAll(cmd.Context(), targets, driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Jobs:           emitJobs,
		Tracer:         tracer,
		Cache:          cache,
		Timings:        timings,
	})
	if err != nil {
		return err
	}

	outDir := manifest.OutDir()
	if emitOutDir != "" {
		outDir = emitOutDir
	}

	failed := 0
	for i := range results {
		res := &results[i]
		if res.Err == nil {
			driver.WriteResult(outDir, res)
		}
		reportBag(cmd, res.Bag, colorize, timings)
		switch {
		case res.Err != nil:
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %v\n", res.Name, res.Err)
		case res.Bag.HasErrors():
			failed++
		case !quiet && res.Cached:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: up to date\n", res.Name)
		case !quiet:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d declarations\n", res.Name, len(res.Payload.Decls))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(results))
	}
	return nil
}

func loadManifest(maxDiagnostics int) (*project.Manifest, *diag.Bag, error) {
	startDir := emitProjectDir
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, err
		}
		startDir = wd
	}
	path, ok, err := project.FindChimeToml(startDir)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("no %s found from %s upward", project.ManifestName, startDir)
	}
	bag := diag.NewBag(maxDiagnostics)
	manifest, ok := project.Load(path, &diag.BagReporter{Bag: bag})
	if !ok {
		return nil, bag, fmt.Errorf("invalid manifest %s", path)
	}
	return manifest, bag, nil
}

func selectTargets(m *project.Manifest) ([]driver.Target, error) {
	wanted := make(map[string]bool, len(emitOnly))
	for _, n := range emitOnly {
		wanted[n] = true
	}
	var targets []driver.Target
	for _, t := range m.Config.Targets {
		if len(wanted) > 0 && !wanted[t.Name] {
			continue
		}
		delete(wanted, t.Name)
		targets = append(targets, driver.Target{
			Name:     t.Name,
			Entry:    t.Entry,
			Keep:     t.Keep,
			TermPath: m.TermPath(t),
		})
	}
	for n := range wanted {
		return nil, fmt.Errorf("unknown target %q", n)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets selected")
	}
	return targets, nil
}

func reportBag(cmd *cobra.Command, bag *diag.Bag, colorize, verbose bool) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	bag.Sort()
	bag.Dedup()
	if emitJSON {
		if err := diagfmt.JSON(cmd.ErrOrStderr(), bag); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: render diagnostics: %v\n", err)
		}
		return
	}
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, diagfmt.PrettyOpts{Color: colorize, Verbose: verbose})
}
