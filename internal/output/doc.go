// Package output formats analysis results for display or machine
// consumption.
//
// [Sections] renders a result as the three markdown blocks callers display
// side by side: local checks, model analysis and the fixed version.
//
// Four writer formats are supported:
//   - text: human-readable terminal output with color (default)
//   - markdown: the three sections as one document
//   - json: full structured result
//   - yaml: full structured result
//
// Use [GetWriter] to obtain a [Writer] for a given format string, or
// [WriteResult] to write to a file path or stdout.
package output
