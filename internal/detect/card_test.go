package detect

import "testing"

func TestLuhn(t *testing.T) {
	tests := []struct {
		digits string
		want   bool
	}{
		{"4242424242424242", true},
		{"4242424242424241", false},
		{"4111111111111111", true},
		{"378282246310005", true},
		{"6011111111111117", true},
		{"1234567812345678", false},
		{"", false},
		{"4242-4242", false},
	}
	for _, tt := range tests {
		if got := Luhn(tt.digits); got != tt.want {
			t.Errorf("Luhn(%q) = %v, want %v", tt.digits, got, tt.want)
		}
	}
}

func TestCreditCards(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "Card 4242424242424242", []string{"4242424242424242"}},
		{"spaces", "Card: 4242 4242 4242 4242", []string{"4242 4242 4242 4242"}},
		{"dashes", "4111-1111-1111-1111 exp 12/27", []string{"4111-1111-1111-1111"}},
		{"bad checksum", "Card 4242424242424241", nil},
		{"too short", "Code 424242424242", nil},
		{"too long", "Ref 42424242424242424242", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := CreditCards(tt.line)
			if len(hits) != len(tt.want) {
				t.Fatalf("CreditCards(%q) = %v, want %v", tt.line, hits, tt.want)
			}
			for i, h := range hits {
				if h.Kind != CreditCard {
					t.Errorf("kind = %v", h.Kind)
				}
				if got := h.Text(tt.line); got != tt.want[i] {
					t.Errorf("hit %d = %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}
