package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"orn/internal/diagfmt"
	"orn/internal/version"
)

const versionTagline = "one table, every module in step"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show orn build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("message", false, "include git commit message")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "include all build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

// buildInfo is what `orn version` prints. Optional fields stay empty unless
// asked for.
type buildInfo struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Tagline    string `json:"tagline"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	want := make(map[string]bool, 3)
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}
	for _, name := range []string{"hash", "message", "date"} {
		on, err := cmd.Flags().GetBool(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		want[name] = on || full
	}

	info := currentBuild(want)
	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err := diagfmt.ColorEnabled(colorMode, os.Stdout)
	if err != nil {
		return err
	}
	info.writePretty(out, useColor, want)
	return nil
}

func currentBuild(want map[string]bool) buildInfo {
	info := buildInfo{
		Tool:    toolName,
		Version: orUnknown(version.Version, "dev"),
		Tagline: versionTagline,
	}
	if want["hash"] {
		info.GitCommit = orUnknown(version.GitCommit, "unknown")
	}
	if want["message"] {
		info.GitMessage = orUnknown(version.GitMessage, "unknown")
	}
	if want["date"] {
		info.BuildDate = orUnknown(version.BuildDate, "unknown")
	}
	return info
}

func (b buildInfo) writePretty(w io.Writer, useColor bool, want map[string]bool) {
	fmt.Fprintf(w, "%s %s: %s\n", b.Tool, version.Colored(b.Version, useColor), b.Tagline)
	extra := false
	for _, row := range []struct {
		key, label, value string
	}{
		{"hash", "commit", b.GitCommit},
		{"message", "message", b.GitMessage},
		{"date", "built", b.BuildDate},
	} {
		if want[row.key] {
			fmt.Fprintf(w, "%-8s %s\n", row.label+":", row.value)
			extra = true
		}
	}
	if !extra {
		fmt.Fprintln(w, "pass --hash, --message, --date or --full for build details")
	}
}

func orUnknown(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
