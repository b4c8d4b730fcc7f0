package rewrite

import (
	"regexp"
	"sort"
	"strings"
)

var (
	useKeywordPattern = regexp.MustCompile(`^use\s+`)
	emptyGroupPattern = regexp.MustCompile(`\{\s*\}`)
)

// pruneImports drops every name in cleanup from the use statements of src.
// It returns the rewritten text and the names it actually removed.
func pruneImports(src string, cleanup map[string]bool) (string, []string) {
	names := make([]string, 0, len(cleanup))
	for n := range cleanup {
		names = append(names, n)
	}
	sort.Strings(names)

	var pruned []string
	for _, name := range names {
		word := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		removed := false
		uses := useStatements(src, commentLines(src))
		// с конца, чтобы индексы более ранних операторов не съезжали
		for i := len(uses) - 1; i >= 0; i-- {
			s := uses[i]
			stmt, changed, empty := removeFromUse(src[s.start:s.end], word)
			if !changed {
				continue
			}
			removed = true
			if empty {
				src = dropStatement(src, s)
				continue
			}
			src = src[:s.start] + stmt + src[s.end:]
		}
		if removed {
			pruned = append(pruned, name)
		}
	}
	return src, pruned
}

// removeFromUse removes the first leaf occurrence of word from a single use
// statement. empty reports that nothing importable is left and the whole
// statement should go.
func removeFromUse(stmt string, word *regexp.Regexp) (string, bool, bool) {
	kw := useKeywordPattern.FindStringIndex(stmt)
	if kw == nil {
		return stmt, false, false
	}
	body := kw[1]
	for _, m := range word.FindAllStringIndex(stmt, -1) {
		if m[0] < body {
			continue
		}
		next := nextNonSpace(stmt, m[1])
		if next >= len(stmt) || !strings.ContainsRune(",};", rune(stmt[next])) {
			continue
		}
		if p := prevNonSpace(stmt, m[0]); p >= 0 && stmt[p] != ':' && stmt[p] != '{' && stmt[p] != ',' {
			// `X as NAME` и прочие формы не трогаем
			continue
		}
		start, top := itemStart(stmt, m[0], body)
		if top {
			return "", true, true
		}
		stmt = removeItem(stmt, start, m[1])
		stmt, empty := collapseGroups(stmt, body)
		return stmt, true, empty
	}
	return stmt, false, false
}

// itemStart walks back from pos to the delimiter opening the current list
// item. top is true when pos belongs to the statement's only path.
func itemStart(stmt string, pos, body int) (int, bool) {
	k := pos - 1
	for k >= body && stmt[k] != '{' && stmt[k] != ',' {
		k--
	}
	if k < body {
		return body, true
	}
	return nextNonSpace(stmt, k+1), false
}

// removeItem cuts the list item [start, end) together with one separator.
func removeItem(stmt string, start, end int) string {
	next := nextNonSpace(stmt, end)
	if next < len(stmt) && stmt[next] == ',' {
		after := nextNonSpace(stmt, next+1)
		if after < len(stmt) && stmt[after] == '}' {
			// последний элемент с висячей запятой
			prev := prevNonSpace(stmt, start)
			return stmt[:prev+1] + stmt[next+1:]
		}
		return stmt[:start] + stmt[after:]
	}
	if prev := prevNonSpace(stmt, start); prev >= 0 && stmt[prev] == ',' {
		return stmt[:prev] + stmt[end:]
	}
	return stmt[:start] + stmt[end:]
}

// collapseGroups removes `path::{}` items until none is left. empty reports
// that the statement's top-level group became empty.
func collapseGroups(stmt string, body int) (string, bool) {
	for {
		m := emptyGroupPattern.FindStringIndex(stmt)
		if m == nil {
			return stmt, false
		}
		start, top := itemStart(stmt, m[0], body)
		if top {
			return stmt, true
		}
		stmt = removeItem(stmt, start, m[1])
	}
}

// dropStatement removes the statement s, and its whole line when nothing
// else shares it.
func dropStatement(src string, s span) string {
	ls := lineStart(src, s.start)
	le := lineEnd(src, s.end)
	if isBlank(src[ls:s.start]) && isBlank(src[s.end:le]) {
		return src[:ls] + src[le:]
	}
	end := s.end
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[:s.start] + src[end:]
}
