package diag

// Diagnostic is a single finding produced while resolving the constant table
// or rewriting a file. Path is empty for table-wide findings.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	// Subject names the constant the diagnostic is about, if any.
	Subject string
}
