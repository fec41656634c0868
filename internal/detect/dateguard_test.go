package detect

import "testing"

func TestLongNumbers_DateGuard(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"ISO date", "Posted 2024-01-15", nil},
		{"compact date", "Build 20241215", nil},
		{"ISO timestamp", "at 2024-01-15T14:30:00Z", nil},
		{"time of day", "Alarm 14:30:00", nil},
		{"month name", "January 15, 2024", nil},
		{"short line with weekday", "Monday 1234567", nil},
		{"plain id", "Order 123456789012345", []string{"123456789012345"}},
		{"seven digits", "Account 1234567", []string{"1234567"}},
		{"invalid compact date", "Order 21001301", []string{"21001301"}},
		{"glued to letters", "ID:abc98765432", []string{"98765432"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := LongNumbers(tt.line)
			if len(hits) != len(tt.want) {
				t.Fatalf("LongNumbers(%q) = %v, want %v", tt.line, hits, tt.want)
			}
			for i, h := range hits {
				if h.Kind != LongNumericID {
					t.Errorf("kind = %v, want long_numeric_id", h.Kind)
				}
				if got := h.Text(tt.line); got != tt.want[i] {
					t.Errorf("hit %d = %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestLongNumbers_ShortLineHeuristicIsLineWide(t *testing.T) {
	long := "Account 1234567 " +
		"padding padding padding padding padding padding padding padding padding padding padding today"
	if len(long) < shortLineLimit {
		t.Fatalf("test line too short: %d", len(long))
	}
	if hits := LongNumbers(long); len(hits) != 1 {
		t.Errorf("long line: LongNumbers = %v, want one hit", hits)
	}
	if hits := LongNumbers("Account 1234567 today"); len(hits) != 0 {
		t.Errorf("short line: LongNumbers = %v, want none", hits)
	}
}

func TestIsCompactDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"20241215", true},
		{"19000101", true},
		{"21001231", true},
		{"18991231", false},
		{"20241315", false},
		{"20241200", false},
		{"20241232", false},
		{"2024121", false},
	}
	for _, tt := range tests {
		if got := isCompactDate(tt.in); got != tt.want {
			t.Errorf("isCompactDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsDateLike(t *testing.T) {
	line := "Invoice 20240115"
	if !IsDateLike(line, Span{Start: 8, End: 16}) {
		t.Error("compact date should be date-like")
	}
	line = "Invoice 98765432109"
	if IsDateLike(line, Span{Start: 8, End: 19}) {
		t.Error("eleven-digit id should not be date-like")
	}
}
