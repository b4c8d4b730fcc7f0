// Package rewrite brings a Move source file in line with the constant table:
// accessor functions become constants, call sites lose their parentheses,
// stale imports are pruned and a generated block of `const` declarations is
// placed between the markers.
//
// Rewrite is pure apart from the reporter and never fails; text it does not
// understand is left as it is. Running it on its own output changes nothing.
package rewrite

import (
	"sort"

	"orn/internal/consttable"
	"orn/internal/diag"
)

type Options struct {
	// Reporter receives one ConstUnused info per table name not used in the
	// file. May be nil.
	Reporter diag.Reporter
	// Path is stamped onto reported diagnostics.
	Path string
}

type Result struct {
	Text    string
	Changed bool

	Used     []string
	Declared []string
	Pruned   []string
	Unused   []string

	BlockPlacement Placement
}

// Rewrite runs the pipeline over src.
func Rewrite(src string, table *consttable.Table, opts Options) Result {
	text, declared := stripAccessors(src, table)
	text, hasMarkers := resetBlock(text)
	text, used, cleanup := normalizeUsages(text, table, declared)
	text, pruned := pruneImports(text, cleanup)

	usedNames := sortedKeys(used)
	block := RenderBlock(usedNames, table)
	text, placement := placeBlock(text, block, hasMarkers, len(usedNames) > 0)
	if placement == PlacementNone && len(usedNames) > 0 {
		diag.ReportWarning(opts.Reporter, diag.RewriteNoModuleBrace, opts.Path, "",
			"no module brace found, constant block not inserted")
	}

	unused := reportUnused(table, used, opts)

	return Result{
		Text:           text,
		Changed:        text != src,
		Used:           usedNames,
		Declared:       sortedKeys(declared),
		Pruned:         pruned,
		Unused:         unused,
		BlockPlacement: placement,
	}
}

func reportUnused(table *consttable.Table, used map[string]bool, opts Options) []string {
	var unused []string
	for _, name := range table.Names() {
		if used[name] {
			continue
		}
		unused = append(unused, name)
		diag.ReportInfo(opts.Reporter, diag.ConstUnused, opts.Path, name, "Unused: "+name)
	}
	return unused
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
