// Package cli wires together the Cobra command tree for the scrub binary.
//
// It defines the root command and all subcommands (redact, scan, config,
// cache, version), binds flags, reads configuration, builds the redaction
// pipeline from it, and returns deterministic exit codes.
package cli
