package rewrite

import (
	"regexp"
	"strings"

	"orn/internal/consttable"
)

// accessorPattern matches a zero-argument function returning a single value
// with a body free of braces, e.g.
//
//	public(friend) inline fun MAX_SUPPLY(): u64 { 1000 }
//
// Leading whitespace and attributes on the preceding lines belong to the
// match so that removal does not leave a gap behind.
var accessorPattern = regexp.MustCompile(
	`(?m)\s*^[ \t]*` +
		`(?:#\[[^\]\n]*\][ \t]*\n?[ \t]*)*` +
		`(?:public(?:[ \t]*\([ \t]*\w+[ \t]*\))?\s+)?` +
		`(?:inline\s+)?` +
		`fun\s+([A-Z][A-Z0-9_]*)\s*\(\s*\)\s*:\s*([^{};()=]+?)\s*` +
		`\{[^{}]*\}[ \t]*`)

// stripAccessors removes accessor functions named after table constants and
// returns the names it removed.
func stripAccessors(src string, table *consttable.Table) (string, map[string]bool) {
	declared := make(map[string]bool)
	matches := accessorPattern.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src, declared
	}
	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, m := range matches {
		name := src[m[2]:m[3]]
		if !table.Has(name) {
			continue
		}
		declared[name] = true
		b.WriteString(src[last:m[0]])
		last = m[1]
	}
	b.WriteString(src[last:])
	return b.String(), declared
}
