// Package config loads and merges scrub configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SCRUB_STYLE, SCRUB_OCR_URL, SCRUB_TIMEOUT_SECONDS, etc.),
//     including any set by a .env file in the working directory
//  3. Config file ($XDG_CONFIG_HOME/scrub/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write one, and
// [SetField] to update a single dotted key such as "limits.timeoutSeconds".
package config
