package detect

import (
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

var (
	mentionRe = regexp.MustCompile(`@\w+`)
	channelRe = regexp.MustCompile(`#\w+`)

	// emailRe tolerates a single space either side of the @, which OCR
	// frequently inserts.
	emailRe = regexp.MustCompile(`(?i)[a-z0-9._%+-]+ ?@ ?[a-z0-9-]+(?:\.[a-z0-9-]+)*\.[a-z]{2,}`)

	phoneRe = regexp.MustCompile(`(?:\+\d{1,3}[\s.-]?)?(?:\(\d{1,4}\)[\s.-]?|\b\d{1,4}[\s.-])\d{2,4}[\s.-]\d{2,4}(?:[\s.-]\d{2,4})?\b`)

	addressRes = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,6}\s+(?:[A-Z][A-Za-z0-9.'-]*\s+){1,4}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Way|Place|Pl|Terrace|Parkway|Pkwy|Highway|Hwy|Circle|Cir|Square|Sq)\b\.?(?:,?\s+(?:Apt|Suite|Ste|Unit|#)\.?\s*[A-Za-z0-9-]+)?(?:,\s*[A-Z][A-Za-z .'-]*,?\s+[A-Z]{2}\s+\d{5}(?:-\d{4})?)?`),
		regexp.MustCompile(`(?i)\bP\.?\s?O\.?\s+Box\s+\d+`),
		regexp.MustCompile(`\b[A-Z][A-Za-z.'-]+(?:\s[A-Z][A-Za-z.'-]+)?,\s+[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`),
	}

	flightRe      = regexp.MustCompile(`(?i)\b(?:flight|flt)\.?\s*(?:no\.?|number|#)?\s*[A-Z0-9]{2}\s?\d{1,4}\b`)
	carrierCodeRe = regexp.MustCompile(`\b[A-Z]{2}\s?\d{3,4}\b`)
	travelContext = regexp.MustCompile(`(?i)\b(?:boarding|gate|seat|departs?|arrives?|departure|arrival|itinerary|pnr|airline)\b`)
	longDigitsRe  = regexp.MustCompile(`\d{7,}`)
	strictURLRe   = xurls.Strict()
	relaxedURLRe  = xurls.Relaxed()
	gluedDomainRe = regexp.MustCompile(`(?i)\b[a-z0-9-]+(?:\.[a-z0-9-]+)*\.(?:com|net|org|io|dev|app|co|us|uk|de|fr|me|ai|gov|edu|info|biz)`)
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// Sensitive runs the structural detectors over line and returns the
// deduplicated hits sorted by span start. Detector order matters: when two
// detectors report the same span, the earlier one decides the kind.
func Sensitive(line string, customTerms []string) []Hit {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	dates := dateSpans(line)

	var hits []Hit
	hits = append(hits, matchesOf(mentionRe.FindAllStringIndex(line, -1), Mention)...)
	hits = append(hits, matchesOf(channelRe.FindAllStringIndex(line, -1), Channel)...)
	hits = append(hits, classify(line, dates)...)
	hits = append(hits, matchesOf(emailRe.FindAllStringIndex(line, -1), Email)...)
	hits = append(hits, urlFallback(line, hits)...)
	hits = append(hits, LongNumbers(line)...)
	hits = append(hits, MatchTerms(line, customTerms)...)
	return Dedupe(hits)
}

// classify is the combined phone, link, address and transit classifier.
func classify(line string, dates []Span) []Hit {
	var hits []Hit
	for _, loc := range phoneRe.FindAllStringIndex(line, -1) {
		sp := Span{Start: loc[0], End: loc[1]}
		if n := countDigits(line[sp.Start:sp.End]); n < minPhoneDigits || n > maxPhoneDigits {
			continue
		}
		if isDateLike(line, sp, dates) {
			continue
		}
		hits = append(hits, Hit{Span: sp, Kind: Phone})
	}
	hits = append(hits, matchesOf(strictURLRe.FindAllStringIndex(line, -1), URL)...)
	for _, re := range addressRes {
		hits = append(hits, matchesOf(re.FindAllStringIndex(line, -1), Address)...)
	}
	hits = append(hits, matchesOf(flightRe.FindAllStringIndex(line, -1), Transit)...)
	if travelContext.MatchString(line) {
		hits = append(hits, matchesOf(carrierCodeRe.FindAllStringIndex(line, -1), Transit)...)
	}
	return hits
}

// urlFallback catches protocol-less domains, then domains that OCR glued to
// the following word ("example.comand"), extending the match through the
// glued characters. Glued matches are only kept when they overlap nothing
// already found.
func urlFallback(line string, existing []Hit) []Hit {
	var hits []Hit
	for _, loc := range relaxedURLRe.FindAllStringIndex(line, -1) {
		sp := Span{Start: loc[0], End: loc[1]}
		if strings.Contains(line[sp.Start:sp.End], "@") {
			continue
		}
		hits = append(hits, Hit{Span: sp, Kind: URL})
	}
	for _, loc := range gluedDomainRe.FindAllStringIndex(line, -1) {
		end := loc[1]
		for end < len(line) && !isSpaceByte(line[end]) {
			end++
		}
		sp := Span{Start: loc[0], End: end}
		if overlapsAny(sp, existing) || overlapsAny(sp, hits) {
			continue
		}
		hits = append(hits, Hit{Span: sp, Kind: URL})
	}
	return hits
}

// LongNumbers flags runs of seven or more digits that the date/time guard
// does not recognise as dates or times.
func LongNumbers(line string) []Hit {
	locs := longDigitsRe.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	dates := dateSpans(line)
	var hits []Hit
	for _, loc := range locs {
		sp := Span{Start: loc[0], End: loc[1]}
		if isDateLike(line, sp, dates) {
			continue
		}
		hits = append(hits, Hit{Span: sp, Kind: LongNumericID})
	}
	return hits
}

// All runs every built-in detector over line. The card and secret detectors
// run first so their kinds win over a generic long number on the same span.
func All(line string, customTerms []string) []Hit {
	var hits []Hit
	hits = append(hits, CreditCards(line)...)
	hits = append(hits, Secrets(line)...)
	hits = append(hits, Sensitive(line, customTerms)...)
	return Dedupe(hits)
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
