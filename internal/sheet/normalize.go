// Package sheet reads spreadsheet exports as grids of text cells and parses
// the locale-ambiguous values they carry. The retail application emits
// numbers with mixed Indonesian/English separators ("5,800", "12,5",
// "1.384,92", "107,000.00"), so numeric parsing disambiguates thousand
// grouping from decimal points before handing values downstream.
package sheet

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	commaGroupingRe = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
	dotGroupingRe   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	plainIntegerRe  = regexp.MustCompile(`^\d+$`)
)

// Normalize trims a raw cell to plain text. Missing cells are empty strings.
func Normalize(cell string) string {
	return strings.TrimSpace(cell)
}

// IsBlankRow reports whether every cell of the row is empty after trimming.
func IsBlankRow(row []string) bool {
	for _, c := range row {
		if Normalize(c) != "" {
			return false
		}
	}
	return true
}

// IsPlainInteger reports whether the cell is a bare non-negative integer,
// which is how line-item rows announce themselves.
func IsPlainInteger(cell string) bool {
	return plainIntegerRe.MatchString(Normalize(cell))
}

// ParseSmartNumber parses a numeric cell whose thousand/decimal separators
// are ambiguous. When both "," and "." occur, whichever appears last is the
// decimal point and the other is stripped as grouping. A lone separator is
// grouping only when the digits match strict 3-digit groups ("5,800" yes,
// "12,5" no). Returns an invalid NullDecimal for empty or unparsable input.
func ParseSmartNumber(cell string) decimal.NullDecimal {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.NullDecimal{}
	}

	s = whitespaceRe.ReplaceAllString(s, "")

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			// "107,000.00"
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// "1.384,92"
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
	case hasComma:
		// "5,800" is grouping, "12,5" is a decimal
		if commaGroupingRe.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	case hasDot:
		// "1.234" is grouping, "12.5" stays as-is
		if dotGroupingRe.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
