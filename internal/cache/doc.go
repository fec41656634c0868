// Package cache provides a file-based cache for text recognition results.
//
// Entries are keyed by a SHA-256 hash of the recognition engine URL and the
// encoded image bytes, so the same screenshot is only sent to a remote
// recognizer once per TTL. Each entry stores the raw JSON payload returned by
// the recognizer, a creation timestamp and a TTL in seconds. Expired entries
// are dropped on read and counted by [Cache.GetStats].
//
// The default cache directory is $XDG_CACHE_HOME/scrub (or the OS-appropriate
// equivalent). Cached payloads contain recognized screen text, so
// `scrub cache clear` should be used after redacting sensitive material.
package cache
