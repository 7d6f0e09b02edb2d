package parser

import (
	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/sheet"
)

// PurchaseInvoice is the "PEMBELIAN" export.
type PurchaseInvoice struct{}

func (PurchaseInvoice) Name() string                           { return "purchase" }
func (PurchaseInvoice) Direction() domain.TransactionDirection { return domain.DirectionPurchase }

func (PurchaseInvoice) IsHeaderRow(row []string) bool {
	return contains(row, "Nomor") &&
		contains(row, ":") &&
		contains(row, "No") && contains(row, "Kode") && contains(row, "Nama")
}

func (PurchaseInvoice) IsSummaryRow(row []string) bool {
	return contains(row, "Keterangan") && contains(row, "Total")
}

func (PurchaseInvoice) ParseMeta(row []string) SheetMeta {
	return SheetMeta{
		App:         cell(row, 0),
		ReportTitle: cell(row, 1),
		Address:     cell(row, 2),
		Phone:       cell(row, 3),
	}
}

func (p PurchaseInvoice) ParseHeader(row []string) Header {
	h := Header{}
	if v, ok := labelValue(row, "Nomor"); ok {
		h.InvoiceNumber = v
	}
	if v, ok := labelValue(row, "Admin"); ok {
		h.OperatorName = v
	}
	if v, ok := labelValue(row, "Tanggal"); ok {
		h.Date = sheet.ParseDayMonthYear(v)
	}
	if v, ok := labelValue(row, "Pemasok"); ok {
		h.CounterpartyName = v
	}
	if v, ok := labelValue(row, "Jatuh Tempo"); ok {
		h.DueDate = sheet.ParseDayMonthYear(v)
	}

	// The supplier location is the stray cell immediately preceding the
	// table-header "No" token, provided it is not itself a label or colon.
	for i, c := range row {
		if c != "No" || i == 0 {
			continue
		}
		candidate := cell(row, i-1)
		if candidate != "" && candidate != ":" && !p.isLabel(candidate) {
			h.Location = candidate
		}
		break
	}

	return h
}

func (PurchaseInvoice) isLabel(s string) bool {
	switch s {
	case "Nomor", "Admin", "Tanggal", "Pemasok", "Jatuh Tempo":
		return true
	}
	return false
}

// ParseSummary reads the label-keyed totals row:
// "Keterangan : <notes> ... Sub Total : <num> Diskon : <num> Total : <num>".
func (PurchaseInvoice) ParseSummary(row []string) Summary {
	s := Summary{}
	if v, ok := labelValue(row, "Keterangan"); ok {
		s.Notes = v
	}
	if v, ok := labelValue(row, "Sub Total"); ok {
		s.SubTotal = sheet.ParseSmartNumber(v)
	}
	if v, ok := labelValue(row, "Diskon"); ok {
		s.Discount = sheet.ParseSmartNumber(v)
	}
	if v, ok := labelValue(row, "Total"); ok {
		s.Total = sheet.ParseSmartNumber(v)
	}
	return s
}

// ParseLineItem reads No | Kode | Nama | Kuantitas | Sat | Harga Beli | Diskon | Jumlah.
func (PurchaseInvoice) ParseLineItem(row []string) (LineItem, bool) {
	return parseEightColumnItem(row)
}
