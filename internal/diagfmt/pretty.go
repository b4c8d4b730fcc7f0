package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"orn/internal/diag"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает одну строку:
// <path>: <SEV> <CODE>: <Message>
// Префикс пути опускается для диагностик без файла.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if err := prettyOne(w, d, p, opts); err != nil {
			return err
		}
	}
	return nil
}

// PrettyOne prints a single diagnostic in the Pretty format.
func PrettyOne(w io.Writer, d diag.Diagnostic, opts PrettyOpts) error {
	return prettyOne(w, d, newPalette(opts.Color), opts)
}

func prettyOne(w io.Writer, d diag.Diagnostic, p palette, opts PrettyOpts) error {
	line := ""
	if path := formatPath(d.Path, opts.PathMode, opts.BaseDir); path != "" {
		line = p.path.Sprint(path) + ": "
	}
	line += p.severity(d.Severity).Sprint(d.Severity.String()) + " " +
		p.code.Sprint(d.Code.ID()) + ": " + d.Message
	if opts.ShowTitle {
		line += p.title.Sprint(" (" + d.Code.Title() + ")")
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

type palette struct {
	path, code, title    *color.Color
	info, warning, fail *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		path:    mk(color.Bold),
		code:    mk(color.FgHiBlack),
		title:   mk(color.Faint),
		info:    mk(color.FgCyan, color.Bold),
		warning: mk(color.FgYellow, color.Bold),
		fail:    mk(color.FgRed, color.Bold),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.fail
	case diag.SevWarning:
		return p.warning
	default:
		return p.info
	}
}
