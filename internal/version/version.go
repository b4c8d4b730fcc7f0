package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the orn CLI.
// These variables can be overridden at build time via -ldflags.

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders v with its major, minor and patch parts coloured.
// Anything that is not a dotted triple comes back unchanged.
func Colored(v string, enabled bool) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if !enabled || len(parts) != 3 {
		return v
	}
	paint := func(c *color.Color, s string) string {
		c.EnableColor()
		return c.Sprint(s)
	}
	out := paint(versionMajorColor, parts[0]) + "." +
		paint(versionMinorColor, parts[1]) + "." +
		paint(versionPatchColor, parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
