package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"orn/internal/consttable"
	"orn/internal/diag"
	"orn/internal/diagfmt"
	"orn/internal/driver"
	"orn/internal/observ"
	"orn/internal/source"
)

var updateConstCmd = &cobra.Command{
	Use:   "update-const [flags]",
	Short: "Rewrite Move sources against the constant table",
	Long: `Resolve the constant table and bring every Move source under the given
paths in line with it: accessor functions become constants, call sites lose
their parentheses, stale imports are pruned and the generated block is
refreshed.`,
	Args: cobra.NoArgs,
	RunE: runUpdateConst,
}

func init() {
	updateConstCmd.Flags().StringArrayP("path", "p", nil, "file, directory or glob to update (repeatable; default from orn.toml or .)")
	updateConstCmd.Flags().StringP("table", "t", "", "constant table (default from orn.toml or const_values.toml above the working directory)")
	updateConstCmd.Flags().Bool("check", false, "report files that would change without writing them")
	updateConstCmd.Flags().Bool("stdout", false, "print rewritten sources to stdout instead of writing files")
	updateConstCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	updateConstCmd.Flags().Bool("strict", false, "treat circular constant references as fatal")
	updateConstCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	updateConstCmd.Flags().String("format", "text", "output format (text|json)")
	updateConstCmd.Flags().Bool("cache", false, "skip files already in sync with this table (experimental)")
	updateConstCmd.Flags().Bool("clear-cache", false, "drop cached results of every table before running")
	updateConstCmd.Flags().Bool("no-update-check", false, "do not check the registry for a newer orn")
}

type updateFlags struct {
	paths         []string
	table         string
	check         bool
	stdout        bool
	jobs          int
	strict        bool
	ui            uiMode
	format        string
	cache         bool
	clearCache    bool
	noUpdateCheck bool
}

func readUpdateFlags(cmd *cobra.Command) (updateFlags, error) {
	var (
		f   updateFlags
		err error
	)
	flags := cmd.Flags()
	if f.paths, err = flags.GetStringArray("path"); err != nil {
		return f, fmt.Errorf("failed to get path flag: %w", err)
	}
	if f.table, err = flags.GetString("table"); err != nil {
		return f, fmt.Errorf("failed to get table flag: %w", err)
	}
	if f.check, err = flags.GetBool("check"); err != nil {
		return f, fmt.Errorf("failed to get check flag: %w", err)
	}
	if f.stdout, err = flags.GetBool("stdout"); err != nil {
		return f, fmt.Errorf("failed to get stdout flag: %w", err)
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.strict, err = flags.GetBool("strict"); err != nil {
		return f, fmt.Errorf("failed to get strict flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	if f.format, err = flags.GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	if f.cache, err = flags.GetBool("cache"); err != nil {
		return f, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if f.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return f, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if f.noUpdateCheck, err = flags.GetBool("no-update-check"); err != nil {
		return f, fmt.Errorf("failed to get no-update-check flag: %w", err)
	}

	if f.check && f.stdout {
		return f, fmt.Errorf("--stdout cannot be used with --check")
	}
	if f.format != "text" && f.format != "json" {
		return f, fmt.Errorf("unsupported output format %q (must be text or json)", f.format)
	}
	if f.stdout && f.format != "text" {
		return f, fmt.Errorf("--stdout is only supported with text output")
	}
	if f.jobs < 0 {
		return f, fmt.Errorf("--jobs must not be negative")
	}
	return f, nil
}

func runUpdateConst(cmd *cobra.Command, args []string) error {
	f, err := readUpdateFlags(cmd)
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.printTimings()

	ctx := cmd.Context()
	cfg := s.config.Update
	if !cmd.Flags().Changed("jobs") {
		f.jobs = cfg.Jobs
	}
	f.strict = f.strict || cfg.Strict
	f.cache = f.cache || cfg.Cache

	// в --stdout stdout занят исходниками
	diagOut, tty := s.stdout, os.Stdout
	if f.stdout {
		diagOut, tty = s.stderr, os.Stderr
	}

	tableBag := diag.NewBag(s.maxDiagnostics)
	if s.config.Notify.Enabled && !f.noUpdateCheck && !f.stdout && f.format == "text" && !s.quiet {
		checkForUpdate(ctx, s.stderr, s.config.Notify.Registry, s.logger)
	}

	table, res, err := s.loadTable(f.table, diag.BagReporter{Bag: tableBag})
	if err != nil {
		return err
	}
	if err := res.Err(f.strict); err != nil {
		tableBag.Sort()
		_ = printDiagnostics(diagOut, tableBag, s, f.format == "json", tty)
		return err
	}

	var files []string
	err = s.timer.Track(observ.PhaseCollect, func() (string, error) {
		var err error
		files, err = driver.CollectFiles(ctx, updatePatterns(f.paths, s), driver.MoveExt)
		return fmt.Sprintf("%d files", len(files)), err
	})
	if err != nil {
		return err
	}
	if len(files) == 0 && !s.quiet {
		fmt.Fprintf(s.stderr, "%s: no %s files found\n", toolName, driver.MoveExt)
	}

	opts := driver.UpdateOptions{
		Mode:           driver.ModeWrite,
		Jobs:           f.jobs,
		MaxDiagnostics: s.maxDiagnostics,
		Logger:         s.logger.Named("driver"),
	}
	switch {
	case f.check:
		opts.Mode = driver.ModeCheck
	case f.stdout:
		opts.Mode = driver.ModeStdout
	}
	if f.cache && !f.stdout {
		cache, err := driver.OpenCache(toolName, table.Digest())
		if err != nil {
			s.logger.Warn("cache disabled", "error", err)
		} else {
			opts.Cache = cache
		}
	}
	if f.clearCache {
		cache := opts.Cache
		if cache == nil {
			cache, err = driver.OpenCache(toolName, table.Digest())
		}
		if err == nil {
			err = cache.DropAll()
		}
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		s.logger.Debug("cache cleared")
	}

	var results []driver.FileResult
	idx := s.timer.Begin(observ.PhaseRewrite)
	if shouldUseTUI(f.ui, !f.stdout && f.format == "text") && len(files) > 0 {
		results, err = runUpdateWithUI(ctx, "orn update-const", table, files, opts)
	} else {
		results, err = driver.UpdateFiles(ctx, table, files, opts)
	}
	s.timer.End(idx, fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return err
	}

	return reportUpdate(s, f, table, tableBag, results, diagOut, tty)
}

// updatePatterns picks --path values, then the manifest's [update].paths,
// then the working directory.
func updatePatterns(paths []string, s *session) []string {
	if len(paths) > 0 {
		return paths
	}
	if s.manifest != nil {
		return s.manifest.UpdatePaths()
	}
	return s.config.Update.Paths
}

type fileReport struct {
	Path      string   `json:"path"`
	Changed   bool     `json:"changed"`
	Cached    bool     `json:"cached,omitempty"`
	Error     string   `json:"error,omitempty"`
	Placement string   `json:"placement,omitempty"`
	Used      []string `json:"used,omitempty"`
	Pruned    []string `json:"pruned,omitempty"`
	Unused    []string `json:"unused,omitempty"`
}

type updateReport struct {
	Mode        string                    `json:"mode"`
	Table       string                    `json:"table"`
	Files       []fileReport              `json:"files"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

func reportUpdate(s *session, f updateFlags, table *consttable.Table, tableBag *diag.Bag, results []driver.FileResult, diagOut io.Writer, tty *os.File) error {
	bag := diag.NewBag(s.maxDiagnostics)
	bag.Merge(tableBag)

	var failed, changed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		if r.Changed {
			changed++
		}
		bag.Merge(r.Bag)
	}
	bag.Sort()

	switch {
	case f.format == "json":
		if err := renderUpdateJSON(s.stdout, f, table, bag, results, s); err != nil {
			return err
		}
	case f.stdout:
		for _, r := range results {
			if r.Err == nil {
				_, _ = s.stdout.Write(r.Output)
			}
		}
		if err := printDiagnostics(diagOut, bag, s, false, tty); err != nil {
			return err
		}
	default:
		if !s.quiet && !f.check {
			for _, r := range results {
				if r.Changed && r.Err == nil {
					fmt.Fprintf(diagOut, "%s: updated\n", displayPath(r.Path, s.cwd))
				}
			}
		}
		if err := printDiagnostics(diagOut, bag, s, false, tty); err != nil {
			return err
		}
	}

	if failed > 0 {
		s.logger.Error("some files could not be updated", "failed", failed)
		return errSilent
	}
	if f.check && changed > 0 {
		if f.format == "text" && !s.quiet {
			fmt.Fprintf(s.stderr, "%s: %d file(s) out of date\n", toolName, changed)
		}
		return errSilent
	}
	return nil
}

// printDiagnostics writes bag to w; quiet drops info-level findings. Text
// output leaves out RewriteUpdated, those files get their own line.
func printDiagnostics(w io.Writer, bag *diag.Bag, s *session, asJSON bool, tty *os.File) error {
	filtered := diag.NewBag(s.maxDiagnostics)
	for _, d := range bag.Items() {
		if s.quiet && d.Severity < diag.SevWarning {
			continue
		}
		if !asJSON && d.Code == diag.RewriteUpdated {
			continue
		}
		filtered.Add(d)
	}
	bag = filtered
	if asJSON {
		return diagfmt.JSON(w, bag, diagfmt.JSONOpts{PathMode: diagfmt.PathModeRelative, BaseDir: s.cwd, Max: s.maxDiagnostics})
	}
	return diagfmt.Pretty(w, bag, diagfmt.PrettyOpts{
		Color:    s.color(tty),
		PathMode: diagfmt.PathModeRelative,
		BaseDir:  s.cwd,
	})
}

func renderUpdateJSON(w io.Writer, f updateFlags, table *consttable.Table, bag *diag.Bag, results []driver.FileResult, s *session) error {
	mode := "write"
	if f.check {
		mode = "check"
	}
	report := updateReport{
		Mode:        mode,
		Table:       displayPath(table.Origin(), s.cwd),
		Files:       make([]fileReport, 0, len(results)),
		Diagnostics: diagfmt.BuildDiagnosticsOutput(bag, diagfmt.JSONOpts{PathMode: diagfmt.PathModeRelative, BaseDir: s.cwd}),
	}
	for _, r := range results {
		fr := fileReport{
			Path:    displayPath(r.Path, s.cwd),
			Changed: r.Changed,
			Cached:  r.Cached,
			Used:    r.Rewrite.Used,
			Pruned:  r.Rewrite.Pruned,
			Unused:  r.Rewrite.Unused,
		}
		if r.Err != nil {
			fr.Error = r.Err.Error()
		} else if !r.Cached {
			fr.Placement = r.Rewrite.BlockPlacement.String()
		}
		report.Files = append(report.Files, fr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func displayPath(path, base string) string {
	if rel, err := source.RelativePath(path, base); err == nil {
		return rel
	}
	return path
}
