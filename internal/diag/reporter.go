package diag

// Reporter: минимальный контракт получения диагностик от фаз.
// Реализации: BagReporter (кладёт в Bag), NopReporter, DedupReporter, MultiReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportInfo is a shortcut for SevInfo diagnostics.
func ReportInfo(r Reporter, code Code, path, subject, msg string) {
	report(r, SevInfo, code, path, subject, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, path, subject, msg string) {
	report(r, SevWarning, code, path, subject, msg)
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, path, subject, msg string) {
	report(r, SevError, code, path, subject, msg)
}

func report(r Reporter, sev Severity, code Code, path, subject, msg string) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Path:     path,
		Subject:  subject,
	})
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// MultiReporter fans a diagnostic out to every wrapped reporter.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

// PathReporter stamps Path onto diagnostics that do not carry one.
type PathReporter struct {
	Path string
	Next Reporter
}

func (r PathReporter) Report(d Diagnostic) {
	if r.Next == nil {
		return
	}
	if d.Path == "" {
		d.Path = r.Path
	}
	r.Next.Report(d)
}
