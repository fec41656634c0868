// Package detect finds sensitive fragments in single lines of OCR text.
//
// Detectors are stateless and pure: each takes a line and returns typed
// [Hit] values whose spans are half-open UTF-8 byte ranges into that line.
// [Sensitive] runs the structural detectors (mentions, channels, emails,
// phones, links, addresses, transit info, long numeric IDs, custom terms),
// [CreditCards] validates card-shaped digit runs with the Luhn checksum, and
// [Secrets] flags password-like tokens and API keys. [All] combines the three.
//
// Long digit runs pass through a date/time guard so that dates, compact
// YYYYMMDD stamps, ISO timestamps and times of day are not flagged as IDs.
//
// A [Scanner] adds optional external [Classifier] implementations (for
// example a named-entity sidecar) on top of [All].
package detect
