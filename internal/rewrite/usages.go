package rewrite

import (
	"regexp"
	"sort"
	"strings"

	"orn/internal/consttable"
)

// usagePattern builds the alternation of table names, longest first so that
// a name never shadows a longer one sharing its prefix.
func usagePattern(table *consttable.Table) *regexp.Regexp {
	names := table.Names()
	if len(names) == 0 {
		return nil
	}
	sort.SliceStable(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b(\(\))?`)
}

// normalizeUsages rewrites every `NAME()` call of a table constant to the
// bare NAME. Occurrences in comment lines and use statements are left alone.
// It returns the names referenced anywhere in code and the names that were
// called without a local accessor, whose imports must go.
func normalizeUsages(src string, table *consttable.Table, declared map[string]bool) (string, map[string]bool, map[string]bool) {
	used := make(map[string]bool)
	cleanup := make(map[string]bool)
	re := usagePattern(table)
	if re == nil {
		return src, used, cleanup
	}
	comments := commentLines(src)
	uses := useStatements(src, comments)

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(src, -1) {
		if within(comments, m[0]) || within(uses, m[0]) {
			continue
		}
		name := src[m[2]:m[3]]
		used[name] = true
		if m[4] < 0 {
			continue
		}
		if !declared[name] {
			cleanup[name] = true
		}
		b.WriteString(src[last:m[0]])
		b.WriteString(name)
		last = m[1]
	}
	b.WriteString(src[last:])
	return b.String(), used, cleanup
}
