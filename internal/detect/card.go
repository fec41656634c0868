package detect

import "regexp"

// cardRe matches 13 to 19 digits, optionally separated by single spaces or dashes.
var cardRe = regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`)

// CreditCards returns card-number candidates that pass the Luhn checksum.
func CreditCards(line string) []Hit {
	var hits []Hit
	for _, loc := range cardRe.FindAllStringIndex(line, -1) {
		digits := stripNonDigits(line[loc[0]:loc[1]])
		if len(digits) < 13 || len(digits) > 19 {
			continue
		}
		if !Luhn(digits) {
			continue
		}
		hits = append(hits, Hit{Span: Span{Start: loc[0], End: loc[1]}, Kind: CreditCard})
	}
	return Dedupe(hits)
}

// Luhn reports whether the digit string passes the Luhn checksum: every
// second digit from the right is doubled (subtracting 9 when the result
// exceeds 9) and the total must be divisible by 10. Non-digit input fails.
func Luhn(digits string) bool {
	if digits == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func stripNonDigits(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b = append(b, s[i])
		}
	}
	return string(b)
}
