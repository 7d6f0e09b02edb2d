package parser

import (
	"testing"

	"github.com/shopspring/decimal"
)

func posHeaderRow(invoice, customer, date, cashier string) []string {
	return []string{
		"Nomor", ":", invoice,
		"Pelanggan", ":", customer,
		"Tanggal", ":", date,
		"Kasir", ":", cashier,
		"No", "Kode", "Nama", "Kuantitas", "Sat", "Harga", "Diskon", "Jumlah",
	}
}

func TestAssemblePointOfSale(t *testing.T) {
	grid := [][]string{
		{"HASMART", "LAPORAN POINT OF SALES", "JL. RAYA PASAR 12", "Periode 18/01/2026 Sampai 06/02/2026", "0812-3456"},
		{"catatan bebas"}, // filler before the first header is dropped
		posHeaderRow("CB0126000005", "UMUM", "18/01/2026", "TUTI"),
		{"1", "100001", "INDOMIE GORENG", "2", "PCS", "2,900", "0", "5,800"},
		{"2", "100002", "TEH BOTOL", "1", "BTL", "4,500", "0", "4,500"},
		{"Sub Total", "10,300", "Diskon", "0", "Total", "10,300"},
		{""},
		posHeaderRow("CB0126000006", "BUDI", "19/01/2026", "SARI"),
		{"1", "100003", "SABUN MANDI", "3", "PCS", "3,000", "500", "8,500"},
		{"Sub Total", "9,000", "Diskon", "500", "Total", "8,500"},
	}

	meta, docs := Assemble(grid, PointOfSale{})

	if meta.ReportTitle != "LAPORAN POINT OF SALES" {
		t.Errorf("ReportTitle = %q", meta.ReportTitle)
	}
	if meta.Period == nil || meta.Period.From == nil {
		t.Fatal("period should be parsed from the meta row")
	}

	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}

	first := docs[0]
	if first.Header.InvoiceNumber != "CB0126000005" {
		t.Errorf("invoice = %q", first.Header.InvoiceNumber)
	}
	if first.Header.CounterpartyName != "UMUM" || first.Header.OperatorName != "TUTI" {
		t.Errorf("header = %+v", first.Header)
	}
	if first.Header.Date == nil {
		t.Error("date should be parsed")
	}
	if len(first.LineItems) != 2 {
		t.Fatalf("got %d line items, want 2", len(first.LineItems))
	}
	item := first.LineItems[0]
	if item.Code != "100001" || item.Name != "INDOMIE GORENG" {
		t.Errorf("item = %+v", item)
	}
	if !item.UnitPrice.Decimal.Equal(decimal.NewFromInt(2900)) {
		t.Errorf("unit price = %s", item.UnitPrice.Decimal)
	}
	if first.Summary == nil {
		t.Fatal("summary should attach to the first document")
	}
	if !first.Summary.Total.Decimal.Equal(decimal.NewFromInt(10300)) {
		t.Errorf("total = %s", first.Summary.Total.Decimal)
	}

	second := docs[1]
	if second.Header.InvoiceNumber != "CB0126000006" {
		t.Errorf("invoice = %q", second.Header.InvoiceNumber)
	}
	if len(second.LineItems) != 1 || second.Summary == nil {
		t.Errorf("second doc = %+v", second)
	}
}

func TestAssembleFinalDocumentWithoutSummary(t *testing.T) {
	grid := [][]string{
		{"HASMART", "LAPORAN POINT OF SALES", "", "", ""},
		posHeaderRow("CB0126000007", "UMUM", "20/01/2026", "TUTI"),
		{"1", "100001", "INDOMIE GORENG", "1", "PCS", "2,900", "0", "2,900"},
	}

	_, docs := Assemble(grid, PointOfSale{})
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if docs[0].Summary != nil {
		t.Error("summary should be nil when the sheet ends mid-document")
	}
}

func TestAssemblePurchaseInvoice(t *testing.T) {
	grid := [][]string{
		{"HASMART", "PEMBELIAN", "JL. RAYA PASAR 12", "0812-3456"},
		{
			"Nomor", ":", "BL0126000012",
			"Admin", ":", "ADMIN",
			"Tanggal", ":", "18/01/2026",
			"Pemasok", ":", "PT SUMBER MAKMUR",
			"Jatuh Tempo", ":", "17/02/2026",
			"GUDANG BARAT",
			"No", "Kode", "Nama", "Kuantitas", "Sat", "Harga Beli", "Diskon", "Jumlah",
		},
		{"1", "200001", "MINYAK GORENG 1L", "10", "DUS", "107,000.00", "0", "1,070,000"},
		{"Keterangan", ":", "pengiriman pagi", "Sub Total", ":", "1,070,000", "Diskon", ":", "0", "Total", ":", "1,070,000"},
	}

	_, docs := Assemble(grid, PurchaseInvoice{})
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}

	doc := docs[0]
	h := doc.Header
	if h.InvoiceNumber != "BL0126000012" {
		t.Errorf("invoice = %q", h.InvoiceNumber)
	}
	if h.CounterpartyName != "PT SUMBER MAKMUR" {
		t.Errorf("supplier = %q", h.CounterpartyName)
	}
	if h.Location != "GUDANG BARAT" {
		t.Errorf("location = %q", h.Location)
	}
	if h.DueDate == nil {
		t.Error("due date should be parsed")
	}

	if len(doc.LineItems) != 1 {
		t.Fatalf("got %d line items, want 1", len(doc.LineItems))
	}
	if !doc.LineItems[0].UnitPrice.Decimal.Equal(decimal.NewFromInt(107000)) {
		t.Errorf("unit price = %s", doc.LineItems[0].UnitPrice.Decimal)
	}

	if doc.Summary == nil {
		t.Fatal("summary should be parsed")
	}
	if doc.Summary.Notes != "pengiriman pagi" {
		t.Errorf("notes = %q", doc.Summary.Notes)
	}
	if !doc.Summary.Total.Decimal.Equal(decimal.NewFromInt(1070000)) {
		t.Errorf("total = %s", doc.Summary.Total.Decimal)
	}
}

func TestAssembleSalesLedger(t *testing.T) {
	grid := [][]string{
		{"SL0126000001", "No", "Kode", "Nama", "Kts", "Sat", "Harga Pokok", "Harga Jual", "Diskon", "Laba", "Jumlah"},
		{"1", "100001", "INDOMIE GORENG", "5", "PCS", "2,500", "2,900", "0", "2,000", "14,500"},
		{"Sub Total", "14,500", "Diskon", "0", "Total", "14,500"},
		{"SL0126000002", "No", "Kode", "Nama", "Kts", "Sat", "Harga Pokok", "Harga Jual", "Diskon", "Laba", "Jumlah"},
		{"1", "100002", "TEH BOTOL", "2", "BTL", "3,800", "4,500", "0", "1,400", "9,000"},
		{"Sub Total", "9,000", "Diskon", "0", "Total", "9,000"},
	}

	meta, docs := Assemble(grid, SalesLedger{})

	if meta.ReportTitle != "" {
		t.Errorf("ledger meta should be empty, got %q", meta.ReportTitle)
	}

	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].Header.InvoiceNumber != "SL0126000001" {
		t.Errorf("invoice = %q", docs[0].Header.InvoiceNumber)
	}
	if docs[1].Header.InvoiceNumber != "SL0126000002" {
		t.Errorf("invoice = %q", docs[1].Header.InvoiceNumber)
	}

	if len(docs[1].LineItems) != 1 {
		t.Fatalf("got %d line items, want 1", len(docs[1].LineItems))
	}
	item := docs[1].LineItems[0]
	if !item.CostPrice.Decimal.Equal(decimal.NewFromInt(3800)) {
		t.Errorf("cost price = %s", item.CostPrice.Decimal)
	}
	if !item.Profit.Decimal.Equal(decimal.NewFromInt(1400)) {
		t.Errorf("profit = %s", item.Profit.Decimal)
	}
}
