package detect

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// minFuzzyRunes is the shortest term that is matched approximately. Shorter
// terms only match exactly, since a one-edit window of two runes matches
// almost anything.
const minFuzzyRunes = 4

// NormalizeTerms trims, NFKC-normalises and deduplicates custom terms,
// dropping empty entries. Order is preserved.
func NormalizeTerms(terms []string) []string {
	var out []string
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(norm.NFKC.String(t))
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// MatchTerms finds custom terms in line. Each term is first searched for as a
// case-insensitive substring; only when that fails is a window of the term's
// length slid across the line, accepting windows within one edit of the term.
func MatchTerms(line string, terms []string) []Hit {
	if len(terms) == 0 || line == "" {
		return nil
	}
	runes, offsets := foldedRunes(line)
	var hits []Hit
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		want, _ := foldedRunes(term)
		kind := CustomTerm(term)
		spans := exactMatches(runes, want)
		if len(spans) == 0 && len(want) >= minFuzzyRunes {
			spans = fuzzyMatches(runes, want)
		}
		for _, rs := range spans {
			hits = append(hits, Hit{
				Span: Span{Start: offsets[rs.Start], End: offsets[rs.End]},
				Kind: kind,
			})
		}
	}
	return hits
}

// foldedRunes lower-cases s rune by rune and returns the runes together with
// the byte offset of every rune boundary (len(runes)+1 entries).
func foldedRunes(s string) ([]rune, []int) {
	runes := make([]rune, 0, utf8.RuneCountInString(s))
	offsets := make([]int, 0, cap(runes)+1)
	for i, r := range s {
		runes = append(runes, unicode.ToLower(r))
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))
	return runes, offsets
}

// exactMatches returns non-overlapping rune ranges where want occurs in hay.
func exactMatches(hay, want []rune) []Span {
	var out []Span
	n := len(want)
	if n == 0 {
		return nil
	}
	for i := 0; i+n <= len(hay); {
		if equalRunes(hay[i:i+n], want) {
			out = append(out, Span{Start: i, End: i + n})
			i += n
			continue
		}
		i++
	}
	return out
}

func fuzzyMatches(hay, want []rune) []Span {
	var out []Span
	n := len(want)
	for i := 0; i+n <= len(hay); {
		if editDistance(hay[i:i+n], want) <= 1 {
			out = append(out, Span{Start: i, End: i + n})
			i += n
			continue
		}
		i++
	}
	return out
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
