package detect

import (
	"fmt"
	"sort"
)

// Category names the class of a detected fragment.
type Category string

const (
	CategoryMention          Category = "mention"
	CategoryChannel          Category = "channel"
	CategoryEmail            Category = "email"
	CategoryPhone            Category = "phone"
	CategoryURL              Category = "url"
	CategoryAddress          Category = "address"
	CategoryTransit          Category = "transit"
	CategoryPersonalName     Category = "personal_name"
	CategoryOrganizationName Category = "organization_name"
	CategoryCustomTerm       Category = "custom_term"
	CategoryLongNumericID    Category = "long_numeric_id"
	CategoryCreditCard       Category = "credit_card"
	CategoryPassword         Category = "password"
	CategoryAPIKey           Category = "api_key"
)

// Kind classifies a hit. Only CategoryCustomTerm carries a payload (Term).
// Kind is comparable, so == compares the payload as well as the category.
type Kind struct {
	Category Category `json:"category"`
	Term     string   `json:"term,omitempty"`
}

// Predeclared kinds for the payload-free categories.
var (
	Mention          = Kind{Category: CategoryMention}
	Channel          = Kind{Category: CategoryChannel}
	Email            = Kind{Category: CategoryEmail}
	Phone            = Kind{Category: CategoryPhone}
	URL              = Kind{Category: CategoryURL}
	Address          = Kind{Category: CategoryAddress}
	Transit          = Kind{Category: CategoryTransit}
	PersonalName     = Kind{Category: CategoryPersonalName}
	OrganizationName = Kind{Category: CategoryOrganizationName}
	LongNumericID    = Kind{Category: CategoryLongNumericID}
	CreditCard       = Kind{Category: CategoryCreditCard}
	Password         = Kind{Category: CategoryPassword}
	APIKey           = Kind{Category: CategoryAPIKey}
)

// CustomTerm returns the kind for a user-configured term.
func CustomTerm(name string) Kind {
	return Kind{Category: CategoryCustomTerm, Term: name}
}

func (k Kind) String() string {
	if k.Category == CategoryCustomTerm {
		return fmt.Sprintf("%s(%s)", k.Category, k.Term)
	}
	return string(k.Category)
}

// Span is a half-open byte range [Start, End) into a line.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Touches reports whether s and o overlap or share an edge.
func (s Span) Touches(o Span) bool {
	return s.Start <= o.End && o.Start <= s.End
}

// Overlaps reports whether s and o share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Hit is one detected sensitive fragment. Two hits are considered the same
// detection when their spans are equal, whatever their kinds.
type Hit struct {
	Span Span `json:"span"`
	Kind Kind `json:"kind"`
}

// Text returns the fragment of line covered by the hit.
func (h Hit) Text(line string) string {
	if h.Span.Start < 0 || h.Span.End > len(line) || h.Span.Start > h.Span.End {
		return ""
	}
	return line[h.Span.Start:h.Span.End]
}

// Dedupe drops hits whose span equals an earlier hit's span and returns the
// survivors sorted by span start (ties broken by span end). The first
// occurrence of a span wins, so detector order decides the kind.
func Dedupe(hits []Hit) []Hit {
	if len(hits) == 0 {
		return nil
	}
	seen := make(map[Span]bool, len(hits))
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if seen[h.Span] {
			continue
		}
		seen[h.Span] = true
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Span.Start != out[j].Span.Start {
			return out[i].Span.Start < out[j].Span.Start
		}
		return out[i].Span.End < out[j].Span.End
	})
	return out
}

// validHits filters out hits with spans outside line or empty spans.
func validHits(line string, hits []Hit) []Hit {
	out := hits[:0:0]
	for _, h := range hits {
		if h.Span.Start < 0 || h.Span.End > len(line) || h.Span.Start >= h.Span.End {
			continue
		}
		out = append(out, h)
	}
	return out
}

func overlapsAny(sp Span, hits []Hit) bool {
	for _, h := range hits {
		if sp.Overlaps(h.Span) {
			return true
		}
	}
	return false
}

func matchesOf(locs [][]int, kind Kind) []Hit {
	hits := make([]Hit, 0, len(locs))
	for _, loc := range locs {
		hits = append(hits, Hit{Span: Span{Start: loc[0], End: loc[1]}, Kind: kind})
	}
	return hits
}
