// Package pipeline redacts screenshot files end to end.
//
// A [Pipeline] loads an image, checks that its directory is writable,
// downscales images larger than the configured limit, and then races the
// detection work (OCR, per-line scanning, region building, redaction)
// against a timeout. Only once the winner is known is anything written:
// [Pipeline.RedactInPlace] atomically replaces the original file, while
// [Pipeline.RedactAndSave] writes a sibling named redact-<name>[-<n>].<ext>.
//
// When the timeout wins, in-place mode fails with [ErrTimedOut] and leaves the
// original untouched; copy mode saves an unredacted copy under the same
// naming scheme so the user's request still produces a file.
//
// The pipeline holds no per-image lock. Callers must not run two
// invocations for the same file concurrently.
package pipeline
