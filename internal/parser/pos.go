package parser

import (
	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/sheet"
)

// PointOfSale is the "LAPORAN POINT OF SALES" receipt export. The metadata
// block and the item-table header share one physical row, so a header row
// must carry both the label tokens and the column headers.
type PointOfSale struct{}

func (PointOfSale) Name() string                           { return "point-of-sales" }
func (PointOfSale) Direction() domain.TransactionDirection { return domain.DirectionSale }

func (PointOfSale) IsHeaderRow(row []string) bool {
	hasLabels := contains(row, "Nomor") &&
		contains(row, "Pelanggan") &&
		contains(row, "Tanggal") &&
		contains(row, "Kasir")
	hasTableHead := contains(row, "No") &&
		contains(row, "Kode") &&
		contains(row, "Nama") &&
		contains(row, "Kuantitas")
	return hasLabels && hasTableHead
}

func (PointOfSale) IsSummaryRow(row []string) bool {
	return cell(row, 0) == "Sub Total" && contains(row, "Total")
}

func (PointOfSale) ParseMeta(row []string) SheetMeta {
	meta := SheetMeta{
		App:         cell(row, 0),
		ReportTitle: cell(row, 1),
		Address:     cell(row, 2),
		Phone:       cell(row, 4),
	}
	if raw := cell(row, 3); raw != "" {
		p := sheet.ParsePeriod(raw)
		meta.Period = &p
	}
	return meta
}

func (PointOfSale) ParseHeader(row []string) Header {
	h := Header{}
	if v, ok := labelValue(row, "Nomor"); ok {
		h.InvoiceNumber = v
	}
	if v, ok := labelValue(row, "Pelanggan"); ok {
		h.CounterpartyName = v
	}
	if v, ok := labelValue(row, "Tanggal"); ok {
		h.Date = sheet.ParseDayMonthYear(v)
	}
	if v, ok := labelValue(row, "Kasir"); ok {
		h.OperatorName = v
	}
	return h
}

// ParseSummary reads the POS totals row, which is positional:
// "Sub Total", <num>, "Diskon", <num>, "Total", <num>.
func (PointOfSale) ParseSummary(row []string) Summary {
	return Summary{
		SubTotal: sheet.ParseSmartNumber(cell(row, 1)),
		Discount: sheet.ParseSmartNumber(cell(row, 3)),
		Total:    sheet.ParseSmartNumber(cell(row, 5)),
	}
}

// ParseLineItem reads No | Kode | Nama | Kuantitas | Sat | Harga | Diskon | Jumlah.
func (PointOfSale) ParseLineItem(row []string) (LineItem, bool) {
	return parseEightColumnItem(row)
}

// parseEightColumnItem covers the POS receipt and purchase invoice layouts,
// which share the same eight columns. The row is discarded when the sequence
// cell is not numeric or when both code and name are empty.
func parseEightColumnItem(row []string) (LineItem, bool) {
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
		UnitPrice: sheet.ParseSmartNumber(cell(row, 5)),
		Discount:  sheet.ParseSmartNumber(cell(row, 6)),
		LineTotal: sheet.ParseSmartNumber(cell(row, 7)),
	}

	if item.Code == "" && item.Name == "" {
		return LineItem{}, false
	}
	return item, true
}
