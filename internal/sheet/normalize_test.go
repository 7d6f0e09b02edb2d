package sheet

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseSmartNumber(t *testing.T) {
	tests := []struct {
		name  string
		cell  string
		want  string
		valid bool
	}{
		{"comma grouping", "5,800", "5800", true},
		{"comma decimal", "12,5", "12.5", true},
		{"dot grouping comma decimal", "1.384,92", "1384.92", true},
		{"comma grouping dot decimal", "107,000.00", "107000", true},
		{"multiple comma groups", "1,234,567.89", "1234567.89", true},
		{"dot grouping", "2.500", "2500", true},
		{"dot decimal", "12.5", "12.5", true},
		{"plain integer", "42", "42", true},
		{"embedded whitespace", " 5,800 ", "5800", true},
		{"empty", "", "", false},
		{"text", "Sub Total", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSmartNumber(tt.cell)
			if got.Valid != tt.valid {
				t.Fatalf("ParseSmartNumber(%q) valid = %v, want %v", tt.cell, got.Valid, tt.valid)
			}
			if tt.valid && !got.Decimal.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseSmartNumber(%q) = %s, want %s", tt.cell, got.Decimal, tt.want)
			}
		})
	}
}

func TestIsPlainInteger(t *testing.T) {
	tests := []struct {
		cell string
		want bool
	}{
		{"1", true},
		{" 23 ", true},
		{"007", true},
		{"", false},
		{"1.5", false},
		{"-1", false},
		{"SL0126000001", false},
	}

	for _, tt := range tests {
		if got := IsPlainInteger(tt.cell); got != tt.want {
			t.Errorf("IsPlainInteger(%q) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestIsBlankRow(t *testing.T) {
	if !IsBlankRow([]string{"", "  ", "\t"}) {
		t.Error("row of whitespace cells should be blank")
	}
	if IsBlankRow([]string{"", "x"}) {
		t.Error("row with content should not be blank")
	}
	if !IsBlankRow(nil) {
		t.Error("nil row should be blank")
	}
}
