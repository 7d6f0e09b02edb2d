package parser

import (
	"regexp"

	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/sheet"
)

var ledgerInvoiceRe = regexp.MustCompile(`(?i)^SL\d+$`)

// SalesLedger is the "PENJUALAN" export. Unlike the other families its header
// row carries no label block: the invoice number itself leads the row,
// followed by the item-table column headers.
type SalesLedger struct{}

func (SalesLedger) Name() string                           { return "sales-ledger" }
func (SalesLedger) Direction() domain.TransactionDirection { return domain.DirectionSale }

func (SalesLedger) IsHeaderRow(row []string) bool {
	hasInvoice := ledgerInvoiceRe.MatchString(cell(row, 0))
	hasTableHead := contains(row, "No") &&
		contains(row, "Kode") &&
		contains(row, "Nama") &&
		contains(row, "Kts") &&
		contains(row, "Sat")
	return hasInvoice && hasTableHead
}

func (SalesLedger) IsSummaryRow(row []string) bool {
	return cell(row, 0) == "Sub Total" && contains(row, "Total")
}

// ParseMeta returns an empty meta block; the ledger export carries no
// sheet-level metadata row.
func (SalesLedger) ParseMeta(row []string) SheetMeta {
	return SheetMeta{}
}

func (SalesLedger) ParseHeader(row []string) Header {
	return Header{InvoiceNumber: cell(row, 0)}
}

func (SalesLedger) ParseSummary(row []string) Summary {
	return Summary{
		SubTotal: sheet.ParseSmartNumber(cell(row, 1)),
		Discount: sheet.ParseSmartNumber(cell(row, 3)),
		Total:    sheet.ParseSmartNumber(cell(row, 5)),
	}
}

// ParseLineItem reads the ten-column ledger layout:
// No | Kode | Nama | Kts | Sat | Harga Pokok | Harga Jual | Diskon | Laba | Jumlah.
func (SalesLedger) ParseLineItem(row []string) (LineItem, bool) {
	seq := sheet.ParseSmartNumber(cell(row, 0))
	if !seq.Valid {
		return LineItem{}, false
	}

	item := LineItem{
		Sequence:  int(seq.Decimal.IntPart()),
		Code:      cell(row, 1),
		Name:      cell(row, 2),
		Quantity:  sheet.ParseSmartNumber(cell(row, 3)),
		UnitLabel: cell(row, 4),
		CostPrice: sheet.ParseSmartNumber(cell(row, 5)),
		UnitPrice: sheet.ParseSmartNumber(cell(row, 6)),
		Discount:  sheet.ParseSmartNumber(cell(row, 7)),
		Profit:    sheet.ParseSmartNumber(cell(row, 8)),
		LineTotal: sheet.ParseSmartNumber(cell(row, 9)),
	}

	if item.Code == "" && item.Name == "" {
		return LineItem{}, false
	}
	return item, true
}
