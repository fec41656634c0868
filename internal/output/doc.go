// Package output formats redaction and scan reports for display or machine
// consumption.
//
// Two formats are supported:
//   - text: human-readable terminal output (default)
//   - json: full structured JSON report
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.WriteReport] or [Writer.WriteScan]. [WriteTo] handles choosing
// between a file and stdout.
package output
