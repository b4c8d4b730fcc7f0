package diagfmt

import "orn/internal/source"

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
	// PathModeAsIs prints paths exactly as the driver reported them.
	PathModeAsIs
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string // для PathModeRelative, по умолчанию рабочая директория
	ShowTitle bool   // добавить описание кода после сообщения
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Max      int // обрезка вывода, не Bag
}

func formatPath(path string, mode PathMode, baseDir string) string {
	if path == "" {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
		return source.FormatPath(path, "absolute", "")
	case PathModeRelative:
		return source.FormatPath(path, "relative", baseDir)
	case PathModeBasename:
		return source.FormatPath(path, "basename", "")
	case PathModeAuto:
		return source.FormatPath(path, "auto", "")
	default:
		return path
	}
}
