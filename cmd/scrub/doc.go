// Scrub is a local CLI that redacts personal information from screenshots.
//
// It reads text recognized in each image (from a JSON sidecar written by an
// OCR tool, or from an HTTP recognizer), detects emails, phone numbers,
// addresses, names, card numbers, passwords, API keys and custom terms, and
// blurs or pixelates the matching areas.
//
// Usage:
//
//	scrub redact shot.png               # writes redact-shot.png next to it
//	scrub redact --in-place *.png       # replaces each image atomically
//	scrub redact --style pixelate a.jpg # pixelate instead of blur
//	scrub scan "call me at 555-123-4567" # report hits in plain text
//	scrub config show                   # print the effective configuration
package main
