package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"orn/internal/consttable"
	"orn/internal/diag"
)

var tableCmd = &cobra.Command{
	Use:   "table [flags]",
	Short: "Print the resolved constant table",
	Long:  `Resolve the constant table and print it with dependencies listed before the constants that use them`,
	Args:  cobra.NoArgs,
	RunE:  runTable,
}

func init() {
	tableCmd.Flags().StringP("table", "t", "", "constant table (default from orn.toml or const_values.toml above the working directory)")
	tableCmd.Flags().String("format", "text", "output format (text|json)")
	tableCmd.Flags().Bool("strict", false, "treat circular constant references as fatal")
}

type tableEntry struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	Comment    string `json:"comment,omitempty"`
	Unresolved bool   `json:"unresolved,omitempty"`
	Cyclic     bool   `json:"cyclic,omitempty"`
}

type tablePayload struct {
	Table     string       `json:"table"`
	Passes    int          `json:"passes"`
	Converged bool         `json:"converged"`
	Constants []tableEntry `json:"constants"`
}

func runTable(cmd *cobra.Command, args []string) error {
	explicit, err := cmd.Flags().GetString("table")
	if err != nil {
		return fmt.Errorf("failed to get table flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported output format %q (must be text or json)", format)
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return fmt.Errorf("failed to get strict flag: %w", err)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.printTimings()

	bag := diag.NewBag(s.maxDiagnostics)
	table, res, err := s.loadTable(explicit, diag.BagReporter{Bag: bag})
	if err != nil {
		return err
	}
	bag.Sort()

	entries := tableEntries(table, res)
	out := s.stdout
	if format == "json" {
		payload := tablePayload{
			Table:     displayPath(table.Origin(), s.cwd),
			Passes:    res.Passes,
			Converged: res.Converged,
			Constants: entries,
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
	} else {
		renderTableText(out, entries)
	}
	if err := printDiagnostics(s.stderr, bag, s, false, os.Stderr); err != nil {
		return err
	}
	return res.Err(strict || s.config.Update.Strict)
}

// tableEntries lists constants in dependency order; names caught in cycles
// come last.
func tableEntries(table *consttable.Table, res consttable.Resolution) []tableEntry {
	names := make([]string, 0, table.Len())
	names = append(names, res.Order...)
	names = append(names, res.Cycles...)

	out := make([]tableEntry, 0, len(names))
	for _, name := range names {
		d, ok := table.Get(name)
		if !ok {
			continue
		}
		out = append(out, tableEntry{
			Name:       d.Name,
			Type:       d.Type,
			Value:      d.Value,
			Comment:    d.Comment,
			Unresolved: slices.Contains(res.Unresolved, name),
			Cyclic:     slices.Contains(res.Cycles, name),
		})
	}
	return out
}

func renderTableText(w io.Writer, entries []tableEntry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s: %s = %s", e.Name, e.Type, e.Value)
		if e.Unresolved {
			fmt.Fprint(w, "  (unresolved)")
		}
		fmt.Fprintln(w)
	}
}
