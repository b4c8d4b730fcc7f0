package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"orn/internal/consttable"
	"orn/internal/diag"
	"orn/internal/diagfmt"
	"orn/internal/logging"
	"orn/internal/observ"
	"orn/internal/project"
)

// session holds what every command needs: global flags, the project config
// and the logger.
type session struct {
	cwd            string
	manifest       *project.Manifest // nil without orn.toml
	config         project.Config
	logger         hclog.Logger
	timer          *observ.Timer
	colorMode      string
	quiet          bool
	showTimings    bool
	maxDiagnostics int
	stdout         io.Writer
	stderr         io.Writer
}

func newSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()

	colorMode, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	if _, err := diagfmt.ColorEnabled(colorMode, nil); err != nil {
		return nil, err
	}
	level := logging.Level(logLevel)
	if !logging.ValidLevel(level) {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	logger := logging.NewLogger(toolName, level, cmd.ErrOrStderr())

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	manifest, ok, err := project.LoadManifest(cwd)
	if err != nil {
		return nil, err
	}
	cfg := project.DefaultConfig()
	if ok {
		cfg = manifest.Config
		logger.Debug("loaded manifest", "path", manifest.Path)
	}

	s := &session{
		cwd:            cwd,
		manifest:       manifest,
		config:         cfg,
		logger:         logger,
		colorMode:      colorMode,
		quiet:          quiet,
		showTimings:    showTimings,
		maxDiagnostics: maxDiagnostics,
		stdout:         cmd.OutOrStdout(),
		stderr:         cmd.ErrOrStderr(),
	}
	if showTimings {
		s.timer = observ.NewTimer()
	}
	return s, nil
}

// loadTable locates, loads and resolves the constant table. Reference
// problems go to r.
func (s *session) loadTable(explicit string, r diag.Reporter) (*consttable.Table, consttable.Resolution, error) {
	var (
		table *consttable.Table
		res   consttable.Resolution
	)
	err := s.timer.Track(observ.PhaseLoadTable, func() (string, error) {
		path, err := project.LocateTable(explicit, s.manifest, s.cwd)
		if err != nil {
			return "", err
		}
		table, err = consttable.Load(path)
		if err != nil {
			return "", err
		}
		s.logger.Debug("loaded constant table", "path", path, "constants", table.Len())
		return fmt.Sprintf("%d constants", table.Len()), nil
	})
	if err != nil {
		return nil, res, err
	}

	_ = s.timer.Track(observ.PhaseResolve, func() (string, error) {
		res = consttable.Resolve(table, diag.NewDedupReporter(r))
		return fmt.Sprintf("%d passes", res.Passes), nil
	})
	s.logger.Debug("resolved table", "passes", res.Passes, "converged", res.Converged,
		"unresolved", len(res.Unresolved), "cycles", len(res.Cycles))
	return table, res, nil
}

func (s *session) color(f *os.File) bool {
	// значение уже проверено в newSession
	enabled, _ := diagfmt.ColorEnabled(s.colorMode, f)
	return enabled
}

func (s *session) printTimings() {
	if s.showTimings {
		fmt.Fprint(s.stderr, s.timer.Summary())
	}
}
