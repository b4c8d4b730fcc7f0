// Package logging builds the hclog logger used for diagnostics about the
// tool itself. Findings about constants and files go through diag instead.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLogLevel overrides the default log level.
	EnvLogLevel = "ORN_LOG_LEVEL"
	// EnvJSONLog switches to JSON output when set to 1.
	EnvJSONLog = "ORN_JSON_LOG"

	defaultLevel = "warn"
)

// NewLogger creates a new hclog logger with standard settings.
func NewLogger(name, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: os.Getenv(EnvJSONLog) == "1",
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// Level picks the log level: the flag value when set, then ORN_LOG_LEVEL,
// then warn.
func Level(flag string) string {
	if level := strings.TrimSpace(flag); level != "" {
		return level
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		return level
	}
	return defaultLevel
}

// ValidLevel reports whether level names an hclog level.
func ValidLevel(level string) bool {
	return hclog.LevelFromString(level) != hclog.NoLevel
}
