package rewrite

import (
	"regexp"
	"strings"
)

// Placement says where the constant block ended up.
type Placement uint8

const (
	PlacementNone Placement = iota
	PlacementExisting
	PlacementAfterImports
	PlacementAfterBrace
)

func (p Placement) String() string {
	switch p {
	case PlacementExisting:
		return "existing"
	case PlacementAfterImports:
		return "after-imports"
	case PlacementAfterBrace:
		return "after-brace"
	default:
		return "none"
	}
}

var headerPattern = regexp.MustCompile(`(?m)^[ \t]*(?:module|script)\b[^{;]*\{`)

// placeBlock puts block into src. hasMarkers means resetBlock left a
// canonical empty pair in src, which is always reused. Otherwise a block is
// only inserted when something is used.
func placeBlock(src, block string, hasMarkers, anyUsed bool) (string, Placement) {
	if hasMarkers {
		return strings.Replace(src, emptyBlock, block, 1), PlacementExisting
	}
	if !anyUsed {
		return src, PlacementNone
	}
	comments := commentLines(src)
	if pos, ok := afterImports(src, useStatements(src, comments)); ok {
		return insertAt(src, pos, "\n"+block), PlacementAfterImports
	}
	if pos, ok := afterBrace(src, comments); ok {
		if src[pos-1] == '\n' {
			return insertAt(src, pos, block), PlacementAfterBrace
		}
		// код на строке со скобкой переносим под блок с обычным отступом
		rest := pos
		for rest < len(src) && (src[rest] == ' ' || src[rest] == '\t') {
			rest++
		}
		return src[:pos] + "\n" + block + indent + src[rest:], PlacementAfterBrace
	}
	return src, PlacementNone
}

// afterImports returns the start of the line following the first run of use
// statements. Comment and blank lines may sit between the statements but a
// trailing run of them does not belong to the block of imports.
func afterImports(src string, uses []span) (int, bool) {
	starts := make(map[int]span, len(uses))
	first := -1
	for _, s := range uses {
		ls := lineStart(src, s.start)
		if !isBlank(src[ls:s.start]) {
			continue
		}
		starts[ls] = s
		if first < 0 {
			first = s.end
		}
	}
	if first < 0 {
		return 0, false
	}
	end := lineEnd(src, first)
	for pos := end; pos < len(src); {
		next := lineEnd(src, pos)
		line := src[pos:next]
		if s, ok := starts[pos]; ok {
			end = lineEnd(src, s.end)
			pos = end
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "//") {
			break
		}
		pos = next
	}
	return end, true
}

// afterBrace returns the insertion point just below the first module or
// script header, or below the first brace outside comment lines.
func afterBrace(src string, comments []span) (int, bool) {
	brace := -1
	for _, m := range headerPattern.FindAllStringIndex(src, -1) {
		if !within(comments, m[0]) {
			brace = m[1] - 1
			break
		}
	}
	if brace < 0 {
		for i := 0; i < len(src); i++ {
			if src[i] == '{' && !within(comments, i) {
				brace = i
				break
			}
		}
	}
	if brace < 0 {
		return 0, false
	}
	le := lineEnd(src, brace)
	rest := strings.TrimSpace(src[brace+1 : le])
	if (rest == "" || strings.HasPrefix(rest, "//")) && strings.HasSuffix(src[:le], "\n") {
		return le, true
	}
	return brace + 1, true
}

// insertAt places text at pos, on its own lines.
func insertAt(src string, pos int, text string) string {
	if pos > 0 && src[pos-1] != '\n' {
		text = "\n" + text
	}
	if pos < len(src) && src[pos] != '\n' {
		text += "\n"
	}
	return src[:pos] + text + src[pos:]
}
