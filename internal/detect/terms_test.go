package detect

import "testing"

func TestMatchTerms(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		terms []string
		want  []string
	}{
		{"exact case-insensitive", "Project Falcon launch", []string{"falcon"}, []string{"Falcon"}},
		{"every occurrence", "falcon FALCON", []string{"Falcon"}, []string{"falcon", "FALCON"}},
		{"one substitution", "Project Falcnn launch", []string{"falcon"}, []string{"Falcnn"}},
		{"two edits rejected", "Project Fxlcnn launch", []string{"falcon"}, nil},
		{"short terms exact only", "xb", []string{"ab"}, nil},
		{"multibyte offsets", "Café Zürich office", []string{"zürich"}, []string{"Zürich"}},
		{"no terms", "anything", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := MatchTerms(tt.line, tt.terms)
			if len(hits) != len(tt.want) {
				t.Fatalf("MatchTerms = %v, want %v", hits, tt.want)
			}
			for i, h := range hits {
				if got := h.Text(tt.line); got != tt.want[i] {
					t.Errorf("hit %d = %q, want %q", i, got, tt.want[i])
				}
				if h.Kind.Category != CategoryCustomTerm {
					t.Errorf("kind = %v", h.Kind)
				}
			}
		})
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
	}
	for _, tt := range tests {
		if got := editDistance([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
