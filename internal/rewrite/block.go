package rewrite

import (
	"strings"

	"orn/internal/consttable"
)

const (
	indent = "    "

	beginMarkerText = "// This line is used for generating constants DO NOT REMOVE!"
	endMarkerText   = "// End of generating constants!"

	// BeginMarker opens the generated constant block.
	BeginMarker = indent + beginMarkerText + "\n"
	// EndMarker closes the generated constant block.
	EndMarker = indent + endMarkerText + "\n"

	emptyBlock = BeginMarker + EndMarker
)

func isBeginMarker(line string) bool {
	return strings.TrimSpace(line) == beginMarkerText
}

func isEndMarker(line string) bool {
	return strings.TrimSpace(line) == endMarkerText
}

// RenderBlock formats the constant block for names, which must be sorted.
// Names missing from the table are skipped.
func RenderBlock(names []string, table *consttable.Table) string {
	var b strings.Builder
	b.WriteString(BeginMarker)
	for _, name := range names {
		def, ok := table.Get(name)
		if !ok {
			continue
		}
		if def.Comment != "" {
			for _, line := range strings.Split(def.Comment, "\n") {
				line = strings.TrimRight(line, " \t\r")
				if line == "" {
					b.WriteString(indent + "//\n")
					continue
				}
				b.WriteString(indent + "// " + line + "\n")
			}
		}
		b.WriteString(indent + "const " + name + ": " + def.Type + " = " + def.Value + ";\n")
	}
	b.WriteString(EndMarker)
	return b.String()
}

// resetBlock empties the first begin/end marker pair and rewrites it in
// canonical form. Later pairs are dropped together with their contents and
// marker lines without a partner are dropped on their own. It reports whether
// a block survived.
func resetBlock(src string) (string, bool) {
	lines := splitLines(src)
	var (
		out  strings.Builder
		kept bool
	)
	out.Grow(len(src))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case isBeginMarker(line):
			end := -1
			for j := i + 1; j < len(lines); j++ {
				if isBeginMarker(lines[j]) {
					break
				}
				if isEndMarker(lines[j]) {
					end = j
					break
				}
			}
			if end < 0 {
				// открывающий маркер без пары
				continue
			}
			if !kept {
				out.WriteString(emptyBlock)
				kept = true
			}
			i = end
		case isEndMarker(line):
			continue
		default:
			out.WriteString(line)
		}
	}
	return out.String(), kept
}
