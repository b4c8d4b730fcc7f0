package diagfmt

import (
	"encoding/json"
	"io"

	"orn/internal/diag"
)

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Subject  string `json:"subject,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for _, d := range items[:maxItems] {
		diagnostics = append(diagnostics, DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			File:     formatPath(d.Path, opts.PathMode, opts.BaseDir),
			Subject:  d.Subject,
		})
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(items)}
}

// JSON пишет диагностики как один JSON-объект.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, opts))
}
