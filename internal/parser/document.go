// Package parser turns the raw text grid of a spreadsheet export into a
// sequence of structured documents. The exports have no fixed schema: each
// supported report shape (a document family) is recognized by the fixed label
// tokens its rows carry, and a single-pass state machine groups rows into
// header + line items + optional summary.
package parser

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/sheet"
)

// SheetMeta is the free-form positional metadata on row 0 of a sheet.
type SheetMeta struct {
	App         string
	ReportTitle string
	Address     string
	Phone       string
	Period      *sheet.Period
}

// Header is the recognized label block of one document.
type Header struct {
	InvoiceNumber    string
	CounterpartyName string
	OperatorName     string
	Location         string
	Date             *time.Time
	DueDate          *time.Time
}

// LineItem is one row of a document's item table. Numeric fields stay null
// when the cell is absent; zero-defaulting happens only at ingestion.
type LineItem struct {
	Sequence  int
	Code      string
	Name      string
	Quantity  decimal.NullDecimal
	UnitLabel string
	UnitPrice decimal.NullDecimal
	CostPrice decimal.NullDecimal
	Discount  decimal.NullDecimal
	Profit    decimal.NullDecimal
	LineTotal decimal.NullDecimal
}

// Summary is the optional totals row of a document.
type Summary struct {
	Notes    string
	SubTotal decimal.NullDecimal
	Discount decimal.NullDecimal
	Total    decimal.NullDecimal
}

// Document is one logical business transaction extracted from a sheet.
type Document struct {
	Header    Header
	LineItems []LineItem
	Summary   *Summary
}

// Family describes how one report shape classifies and parses its rows.
// Line-item rows are recognized uniformly by their leading sequence number;
// everything else is family-specific.
type Family interface {
	Name() string
	Direction() domain.TransactionDirection
	IsHeaderRow(row []string) bool
	IsSummaryRow(row []string) bool
	ParseMeta(row []string) SheetMeta
	ParseHeader(row []string) Header
	ParseSummary(row []string) Summary
	ParseLineItem(row []string) (LineItem, bool)
}

// cell returns the i-th cell of a row, or "" when the row is shorter.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func contains(row []string, token string) bool {
	for _, c := range row {
		if c == token {
			return true
		}
	}
	return false
}

// labelValue scans the row for a recognized label cell immediately followed
// by a colon cell and returns the cell after the colon. Label positions vary
// between exports, so fields are never read by fixed column offset.
func labelValue(row []string, label string) (string, bool) {
	for i, c := range row {
		if c != label {
			continue
		}
		if cell(row, i+1) != ":" {
			continue
		}
		return cell(row, i+2), true
	}
	return "", false
}
