package sheet

import (
	"testing"
	"time"
)

func TestParseDayMonthYear(t *testing.T) {
	tests := []struct {
		cell string
		want *time.Time
	}{
		{"18/01/2026", datePtr(2026, 1, 18)},
		{"6/2/2026", datePtr(2026, 2, 6)},
		{"18-01-2026", datePtr(2026, 1, 18)},
		{"32/01/2026", nil},
		{"18/13/2026", nil},
		{"0/01/2026", nil},
		{"18/01/26", nil},
		{"2026-01-18", nil},
		{"", nil},
		{"Tanggal", nil},
	}

	for _, tt := range tests {
		got := ParseDayMonthYear(tt.cell)
		switch {
		case got == nil && tt.want != nil:
			t.Errorf("ParseDayMonthYear(%q) = nil, want %v", tt.cell, tt.want)
		case got != nil && tt.want == nil:
			t.Errorf("ParseDayMonthYear(%q) = %v, want nil", tt.cell, got)
		case got != nil && !got.Equal(*tt.want):
			t.Errorf("ParseDayMonthYear(%q) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	raw := "Periode 18/01/2026 Sampai 06/02/2026"
	p := ParsePeriod(raw)

	if p.Raw != raw {
		t.Errorf("Raw = %q, want %q", p.Raw, raw)
	}
	if p.From == nil || !p.From.Equal(*datePtr(2026, 1, 18)) {
		t.Errorf("From = %v, want 2026-01-18", p.From)
	}
	if p.To == nil || !p.To.Equal(*datePtr(2026, 2, 6)) {
		t.Errorf("To = %v, want 2026-02-06", p.To)
	}
}

func TestParsePeriodNoMatch(t *testing.T) {
	p := ParsePeriod("JL. RAYA PASAR 12")
	if p.From != nil || p.To != nil {
		t.Errorf("non-period text should leave From/To nil, got %v %v", p.From, p.To)
	}
	if p.Raw != "JL. RAYA PASAR 12" {
		t.Errorf("Raw should be preserved, got %q", p.Raw)
	}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
