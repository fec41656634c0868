package detect

import (
	"regexp"
	"strconv"
)

const monthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

// datePatterns match date and time shapes that must never be reported as
// numeric identifiers or phone numbers.
var datePatterns = []*regexp.Regexp{
	// ISO-8601 timestamp
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:?\d{2})?`),
	// Y-M-D
	regexp.MustCompile(`\b\d{4}[-/.]\d{1,2}[-/.]\d{1,2}\b`),
	// D-M-Y and M-D-Y
	regexp.MustCompile(`\b\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}\b`),
	// YYYYMMDD
	regexp.MustCompile(`\b(?:19|20)\d{2}(?:0[1-9]|1[0-2])(?:0[1-9]|[12]\d|3[01])\b`),
	// time of day
	regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?(?:\s?[AaPp]\.?[Mm]\.?)?`),
	// January 15, 2024 / Jan 15th
	regexp.MustCompile(`(?i)\b(?:` + monthNames + `)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`),
	// 15 January 2024
	regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:` + monthNames + `)\.?,?\s+\d{4}\b`),
}

// dateContext matches words that make a short line likely to be about a date
// or time. The match is line-wide, not tied to the digit run's position.
var dateContext = regexp.MustCompile(`(?i)\b(?:mon(?:day)?|tue(?:s(?:day)?)?|wed(?:nesday)?|thu(?:rs(?:day)?)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?|` +
	monthNames + `|am|pm|a\.m\.|p\.m\.|today|date|time)\b`)

const shortLineLimit = 100

// dateSpans returns every date- or time-shaped range in line.
func dateSpans(line string) []Span {
	var spans []Span
	for _, re := range datePatterns {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			spans = append(spans, Span{Start: loc[0], End: loc[1]})
		}
	}
	return spans
}

// IsDateLike reports whether the digit run at sp in line should be treated as
// a date or time rather than an identifier.
func IsDateLike(line string, sp Span) bool {
	return isDateLike(line, sp, dateSpans(line))
}

func isDateLike(line string, sp Span, dates []Span) bool {
	for _, d := range dates {
		if sp.Overlaps(d) {
			return true
		}
	}
	digits := line[sp.Start:sp.End]
	n := len(digits)
	if n == 8 && isCompactDate(digits) {
		return true
	}
	if (n == 7 || n == 8) && len(line) < shortLineLimit && dateContext.MatchString(line) {
		return true
	}
	return false
}

// isCompactDate reports whether s is a plausible YYYYMMDD date.
func isCompactDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return false
	}
	month, err := strconv.Atoi(s[4:6])
	if err != nil {
		return false
	}
	day, err := strconv.Atoi(s[6:])
	if err != nil {
		return false
	}
	return year >= 1900 && year <= 2100 && month >= 1 && month <= 12 && day >= 1 && day <= 31
}
