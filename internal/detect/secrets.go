package detect

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const minSecretRunes = 6

// passwordKeywords gate the password heuristics; lines without one of these
// are never scanned for password-like tokens.
var passwordKeywords = []string{
	"password", "passwd", "passcode", "pwd", "secret", "key", "token",
	"credential", "auth", "login",
}

// nonSecrets are values that commonly follow a keyword without being secret.
var nonSecrets = map[string]bool{
	"true": true, "false": true, "null": true, "nil": true, "none": true,
	"undefined": true, "example": true, "test": true, "testing": true,
	"sample": true, "placeholder": true, "required": true, "optional": true,
	"hidden": true, "string": true, "value": true, "password": true,
	"secret": true, "token": true, "changed": true, "enabled": true,
	"disabled": true, "forgot": true, "expired": true, "incorrect": true,
	"invalid": true,
}

var (
	// assignmentRe captures the token following ':', '=', '->' or 'is'.
	assignmentRe = regexp.MustCompile(`(?i)(?:->|:|=|\bis\b)\s*("[^"]+"|'[^']+'|\S+)`)
	quotedRe     = regexp.MustCompile(`"([^"]{6,})"|'([^']{6,})'`)
	apiRunRe     = regexp.MustCompile(`[A-Za-z0-9_-]{20,}`)
	apiContext   = regexp.MustCompile(`(?i)api|token|key`)
)

// knownSecretPatterns match well-known credential shapes anywhere in a line.
// group selects the submatch that holds the secret (0 = whole match).
var knownSecretPatterns = []struct {
	re    *regexp.Regexp
	group int
}{
	// AWS access key IDs
	{regexp.MustCompile(`AKIA[0-9A-Z]{16}`), 0},
	// Bearer tokens
	{regexp.MustCompile(`(?i)Bearer\s+([A-Za-z0-9._-]{20,})`), 1},
	// JWTs (three base64 segments separated by dots)
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`), 0},
	// GitHub tokens
	{regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`), 0},
	// Slack tokens
	{regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`), 0},
	// Anthropic and OpenAI API keys
	{regexp.MustCompile(`sk-(?:ant-)?[A-Za-z0-9_-]{20,}`), 0},
	// Private key blocks
	{regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`), 0},
}

// Secrets returns password-like tokens and API keys found in line.
func Secrets(line string) []Hit {
	var hits []Hit
	lower := strings.ToLower(line)
	if hasPasswordKeyword(lower) {
		hits = append(hits, passwords(line)...)
	}
	if apiContext.MatchString(line) {
		hits = append(hits, matchesOf(apiRunRe.FindAllStringIndex(line, -1), APIKey)...)
	}
	for _, p := range knownSecretPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(line, -1) {
			start, end := m[2*p.group], m[2*p.group+1]
			if start < 0 {
				continue
			}
			hits = append(hits, Hit{Span: Span{Start: start, End: end}, Kind: APIKey})
		}
	}
	return Dedupe(hits)
}

func hasPasswordKeyword(lower string) bool {
	for _, kw := range passwordKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func passwords(line string) []Hit {
	var hits []Hit
	for _, m := range assignmentRe.FindAllStringSubmatchIndex(line, -1) {
		if sp, ok := trimToken(line, Span{Start: m[2], End: m[3]}); ok && looksSecret(line[sp.Start:sp.End]) {
			hits = append(hits, Hit{Span: sp, Kind: Password})
		}
	}
	for _, m := range quotedRe.FindAllStringSubmatchIndex(line, -1) {
		start, end := m[2], m[3]
		if start < 0 {
			start, end = m[4], m[5]
		}
		sp := Span{Start: start, End: end}
		if looksSecret(line[sp.Start:sp.End]) {
			hits = append(hits, Hit{Span: sp, Kind: Password})
		}
	}
	return hits
}

// trimToken strips surrounding quotes and trailing punctuation from the token
// at sp and reports whether anything is left.
func trimToken(line string, sp Span) (Span, bool) {
	for sp.Start < sp.End && (line[sp.Start] == '"' || line[sp.Start] == '\'') {
		sp.Start++
	}
	for sp.End > sp.Start && strings.ContainsRune(`"',;.)]}`, rune(line[sp.End-1])) {
		sp.End--
	}
	return sp, sp.End > sp.Start
}

// looksSecret applies the password acceptance rule: at least six runes, not a
// known harmless word, not an already-masked value, and either mixing two of
// letters, digits and symbols or being at least sixteen runes long.
func looksSecret(tok string) bool {
	n := utf8.RuneCountInString(tok)
	if n < minSecretRunes {
		return false
	}
	if nonSecrets[strings.ToLower(tok)] {
		return false
	}
	if strings.Trim(tok, "*•·") == "" {
		return false
	}
	var letters, digits, symbols bool
	for _, r := range tok {
		switch {
		case unicode.IsLetter(r):
			letters = true
		case unicode.IsDigit(r):
			digits = true
		case !unicode.IsSpace(r):
			symbols = true
		}
	}
	classes := 0
	for _, c := range []bool{letters, digits, symbols} {
		if c {
			classes++
		}
	}
	return classes >= 2 || n >= 16
}
