package rewrite

import (
	"regexp"
	"sort"
	"strings"
)

// span is a half-open byte range [start, end) of the text being rewritten.
type span struct {
	start, end int
}

var (
	commentLinePattern = regexp.MustCompile(`(?m)^[ \t]*//.*$`)
	useStmtPattern     = regexp.MustCompile(`\buse\s+[^;]*;`)
)

// commentLines returns the spans of lines whose first non-blank characters
// are a line comment marker.
func commentLines(src string) []span {
	return toSpans(commentLinePattern.FindAllStringIndex(src, -1))
}

// useStatements returns the spans of `use ...;` statements. A statement must
// open its line or follow a `{`, `}` or `;` on it; "use" in a comment never
// counts.
func useStatements(src string, comments []span) []span {
	var out []span
	for pos := 0; pos < len(src); {
		m := useStmtPattern.FindStringIndex(src[pos:])
		if m == nil {
			break
		}
		start, end := pos+m[0], pos+m[1]
		prefix := src[lineStart(src, start):start]
		if within(comments, start) || strings.Contains(prefix, "//") {
			// "use" в тексте комментария: продолжаем со следующей строки
			pos = lineEnd(src, start)
			continue
		}
		if !statementStart(prefix) {
			pos = start + len("use")
			continue
		}
		out = append(out, span{start: start, end: end})
		pos = end
	}
	return out
}

// statementStart reports whether a statement may begin after prefix, the
// text between the line start and the statement.
func statementStart(prefix string) bool {
	p := strings.TrimRight(prefix, " \t")
	if p == "" || isBlank(p) {
		return true
	}
	switch p[len(p)-1] {
	case '{', '}', ';':
		return true
	}
	return false
}

func toSpans(idx [][]int) []span {
	out := make([]span, 0, len(idx))
	for _, m := range idx {
		out = append(out, span{start: m[0], end: m[1]})
	}
	return out
}

// within reports whether pos falls in one of the sorted, non-overlapping spans.
func within(spans []span, pos int) bool {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].end > pos })
	return i < len(spans) && spans[i].start <= pos
}

func lineStart(s string, pos int) int {
	return strings.LastIndexByte(s[:pos], '\n') + 1
}

// lineEnd returns the index just past the newline ending the line holding
// pos, or len(s) on the last line.
func lineEnd(s string, pos int) int {
	if i := strings.IndexByte(s[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(s)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// nextNonSpace returns the index of the first non-whitespace byte at or after
// pos, or len(s).
func nextNonSpace(s string, pos int) int {
	for pos < len(s) && isSpace(s[pos]) {
		pos++
	}
	return pos
}

// prevNonSpace returns the index of the last non-whitespace byte before pos,
// or -1.
func prevNonSpace(s string, pos int) int {
	pos--
	for pos >= 0 && isSpace(s[pos]) {
		pos--
	}
	return pos
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// splitLines splits s after every newline; the last element has no newline
// when s does not end with one.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.SplitAfter(strings.TrimSuffix(s, "\n"), "\n")
}
