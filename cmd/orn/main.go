package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"orn/internal/version"
)

const toolName = "orn"

// errSilent ends a command with exit code 1 after its output has already
// explained why.
var errSilent = errors.New("")

var rootCmd = &cobra.Command{
	Use:   "orn",
	Short: "Keep Move constants in sync with a single table",
	Long: `orn resolves a TOML table of named constants and rewrites Move sources
so that every constant they use is declared in one generated block.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(updateConstCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace|debug|info|warn|error), defaults to $ORN_LOG_LEVEL or warn")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
}

// main runs the root command. Any returned error exits with status 1.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", toolName, err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
