// Package diag defines the diagnostic model shared by the table resolver,
// the source rewriter and the batch driver.
//
// # Purpose
//
//   - Provide deterministic data structures for findings such as unused
//     constants, unresolved values, reference cycles and per-file I/O errors.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform any formatting or IO. Rendering lives in
// internal/diagfmt; the driver decides which bag a file reports into.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Path – the file the finding belongs to, empty for table-wide findings.
//   - Subject – the constant name the finding is about, if any.
//
// # Emitting diagnostics
//
// Producers receive a Reporter and call Report directly or through the
// ReportInfo/ReportWarning/ReportError helpers. BagReporter aggregates into a
// Bag, which supports sorting, deduplication and filtering. PathReporter lets
// the driver stamp the file path onto findings from path-agnostic code such
// as the rewriter.
package diag
