package sheet

import (
	"regexp"
	"strconv"
	"time"
)

var (
	dayMonthYearRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	periodRe       = regexp.MustCompile(`(?i)Periode\s+(\d{1,2}/\d{1,2}/\d{4})\s+Sampai\s+(\d{1,2}/\d{1,2}/\d{4})`)
)

// ParseDayMonthYear parses "D/M/YYYY" or "D-M-YYYY" into a UTC calendar date.
// Day > 31 or month > 12 is rejected. Returns nil when the cell is not a date.
func ParseDayMonthYear(cell string) *time.Time {
	s := Normalize(cell)
	if s == "" {
		return nil
	}

	m := dayMonthYearRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	dd, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	yyyy, _ := strconv.Atoi(m[3])
	if dd < 1 || dd > 31 || mm < 1 || mm > 12 {
		return nil
	}

	t := time.Date(yyyy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	return &t
}

// Period is the free-text reporting range on the sheet's meta row,
// e.g. "Periode 18/01/2026 Sampai 06/02/2026".
type Period struct {
	Raw  string
	From *time.Time
	To   *time.Time
}

// ParsePeriod extracts the from/to dates from a period phrase. The raw text
// is always preserved; From/To stay nil when the phrase does not match.
func ParsePeriod(raw string) Period {
	p := Period{Raw: raw}

	m := periodRe.FindStringSubmatch(raw)
	if m == nil {
		return p
	}

	p.From = ParseDayMonthYear(m[1])
	p.To = ParseDayMonthYear(m[2])
	return p
}
