package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/parser"
	"github.com/hasmart/retail-ingest/internal/repository"
	"github.com/hasmart/retail-ingest/internal/repository/memory"
	"github.com/hasmart/retail-ingest/internal/valuation"
)

func newTestCoordinator(t *testing.T, store repository.Store) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(store, valuation.NewEngine(zerolog.Nop()), zerolog.Nop(), Options{})
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	return c
}

func num(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func purchaseDoc(invoice, supplier string) parser.Document {
	return parser.Document{
		Header: parser.Header{
			InvoiceNumber:    invoice,
			CounterpartyName: supplier,
			OperatorName:     "ADMIN",
		},
		LineItems: []parser.LineItem{
			{
				Sequence:  1,
				Code:      "200001",
				Name:      "MINYAK GORENG 1L",
				Quantity:  num(10),
				UnitLabel: "PCS",
				UnitPrice: num(100),
				Discount:  num(0),
				LineTotal: num(1000),
			},
		},
		Summary: &parser.Summary{
			SubTotal: num(1000),
			Discount: num(0),
			Total:    num(1000),
		},
	}
}

func posDoc(invoice, customer string) parser.Document {
	return parser.Document{
		Header: parser.Header{
			InvoiceNumber:    invoice,
			CounterpartyName: customer,
			OperatorName:     "TUTI",
		},
		LineItems: []parser.LineItem{
			{
				Sequence:  1,
				Code:      "100001",
				Name:      "INDOMIE GORENG",
				Quantity:  num(2),
				UnitLabel: "PCS",
				UnitPrice: num(2900),
				Discount:  num(0),
				LineTotal: num(5800),
			},
		},
		Summary: &parser.Summary{
			SubTotal: num(5800),
			Discount: num(0),
			Total:    num(5800),
		},
	}
}

func TestRunCreatesPurchaseWithEntities(t *testing.T) {
	store := memory.New()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	sum, err := c.Run(ctx, parser.PurchaseInvoice{}, []parser.Document{purchaseDoc("BL0126000012", "PT Sumber Makmur")})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Created != 1 || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}

	rec, err := store.FindTransactionByInvoice(ctx, domain.DirectionPurchase, "BL0126000012")
	if err != nil {
		t.Fatalf("transaction not recorded: %v", err)
	}
	if rec.SupplierID == nil {
		t.Fatal("purchase should carry a supplier")
	}
	if !rec.TotalAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("total = %s", rec.TotalAmount)
	}

	sup, err := store.FindSupplierByName(ctx, "PT SUMBER MAKMUR")
	if err != nil {
		t.Fatal("supplier should be auto-created with uppercased name")
	}
	if sup.Code != "PT SUMBER MAKMUR" {
		t.Errorf("supplier code = %q", sup.Code)
	}

	item, err := store.FindCatalogItemByCode(ctx, "200001")
	if err != nil {
		t.Fatal("catalog item should be auto-created")
	}
	if item.SupplierID != sup.ID {
		t.Error("auto-created item should inherit the document's supplier")
	}
	// first purchase into empty stock, incoming cost becomes the average
	if !item.AverageBuyPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("average buy price = %s, want 100", item.AverageBuyPrice)
	}

	branch, err := store.DefaultBranch(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := store.StockAt(item.ID, branch.ID); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("stock = %s, want 10", got)
	}

	audits := store.Audits()
	if len(audits) != 1 || audits[0].Action != domain.AuditCreate {
		t.Errorf("audits = %+v", audits)
	}
	if audits[0].PayloadBefore != nil {
		t.Error("create audit should have no before payload")
	}
}

func TestRunIsIdempotentPerInvoice(t *testing.T) {
	store := memory.New()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	docs := []parser.Document{purchaseDoc("BL0126000012", "PT SUMBER MAKMUR")}

	if _, err := c.Run(ctx, parser.PurchaseInvoice{}, docs); err != nil {
		t.Fatal(err)
	}
	sum, err := c.Run(ctx, parser.PurchaseInvoice{}, docs)
	if err != nil {
		t.Fatal(err)
	}

	if sum.Created != 0 || sum.Skipped != 1 {
		t.Fatalf("second run summary = %+v", sum)
	}
	if store.TransactionCount() != 1 {
		t.Errorf("transaction count = %d, want 1", store.TransactionCount())
	}

	item, err := store.FindCatalogItemByCode(ctx, "200001")
	if err != nil {
		t.Fatal(err)
	}
	branch, _ := store.DefaultBranch(ctx, "")
	if got := store.StockAt(item.ID, branch.ID); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("stock after duplicate run = %s, want 10", got)
	}
	if !item.AverageBuyPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("average after duplicate run = %s, want 100", item.AverageBuyPrice)
	}
}

func TestRunSaleDecrementsStockWithoutValuation(t *testing.T) {
	store := memory.New()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	sum, err := c.Run(ctx, parser.PointOfSale{}, []parser.Document{posDoc("CB0126000005", "")})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Created != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	// empty customer falls back to the walk-in member
	if _, err := store.FindMemberByName(ctx, "UMUM"); err != nil {
		t.Error("walk-in member should be auto-created")
	}

	item, err := store.FindCatalogItemByCode(ctx, "100001")
	if err != nil {
		t.Fatal(err)
	}
	branch, _ := store.DefaultBranch(ctx, "")
	if got := store.StockAt(item.ID, branch.ID); !got.Equal(decimal.NewFromInt(-2)) {
		t.Errorf("stock = %s, want -2", got)
	}
	// sales never move the cost basis
	if !item.AverageBuyPrice.IsZero() {
		t.Errorf("average buy price = %s, want 0", item.AverageBuyPrice)
	}
}

func TestRunGeneratesKeyForMissingInvoice(t *testing.T) {
	store := memory.New()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	doc := posDoc("", "UMUM")
	sum, err := c.Run(ctx, parser.PointOfSale{}, []parser.Document{doc, doc})
	if err != nil {
		t.Fatal(err)
	}

	// without a natural key the documents cannot be deduplicated against
	// each other, so both are created under distinct placeholder keys
	if sum.Created != 2 || sum.Skipped != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if store.TransactionCount() != 2 {
		t.Errorf("transaction count = %d, want 2", store.TransactionCount())
	}
}

// auditFailStore fails the final audit write of every document, exercising
// the per-document rollback path.
type auditFailStore struct {
	*memory.Store
}

func (s auditFailStore) Atomically(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.Atomically(ctx, func(inner repository.Store) error {
		return fn(auditFailStore{inner.(*memory.Store)})
	})
}

func (s auditFailStore) CreateAuditEntry(ctx context.Context, e domain.AuditEntry) error {
	return errors.New("audit write failed")
}

func TestRunRollsBackFailedDocument(t *testing.T) {
	store := memory.New()
	c := newTestCoordinator(t, auditFailStore{store})
	ctx := context.Background()

	sum, err := c.Run(ctx, parser.PurchaseInvoice{}, []parser.Document{purchaseDoc("BL0126000012", "PT SUMBER MAKMUR")})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Failed != 1 || sum.Created != 0 {
		t.Fatalf("summary = %+v", sum)
	}

	// everything the document wrote must be gone
	if store.TransactionCount() != 0 {
		t.Errorf("transaction count = %d, want 0", store.TransactionCount())
	}
	if _, err := store.FindSupplierByName(ctx, "PT SUMBER MAKMUR"); !errors.Is(err, repository.ErrNotFound) {
		t.Error("auto-created supplier should be rolled back")
	}
	if _, err := store.FindCatalogItemByCode(ctx, "200001"); !errors.Is(err, repository.ErrNotFound) {
		t.Error("auto-created item should be rolled back")
	}
}

func TestReconcileRewritesTotalsFromLineItems(t *testing.T) {
	store := memory.New()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	if _, err := c.Run(ctx, parser.PurchaseInvoice{}, []parser.Document{purchaseDoc("BL0126000012", "PT SUMBER MAKMUR")}); err != nil {
		t.Fatal(err)
	}

	item, err := store.FindCatalogItemByCode(ctx, "200001")
	if err != nil {
		t.Fatal(err)
	}

	// second export of the same invoice with corrected quantity and price
	updated := purchaseDoc("BL0126000012", "PT SUMBER MAKMUR")
	updated.LineItems[0].Quantity = num(12)
	updated.LineItems[0].UnitPrice = num(110)
	updated.LineItems[0].Discount = num(20)
	updated.LineItems[0].LineTotal = num(1320)
	// summary row disagrees on purpose; reconcile must ignore it
	updated.Summary = &parser.Summary{SubTotal: num(9999), Discount: num(0), Total: num(9999)}

	sum, err := c.Reconcile(ctx, parser.PurchaseInvoice{}, []parser.Document{updated})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Updated != 1 || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}

	rec, err := store.FindTransactionByInvoice(ctx, domain.DirectionPurchase, "BL0126000012")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.SubTotalAmount.Equal(decimal.NewFromInt(1320)) {
		t.Errorf("sub total = %s, want 1320", rec.SubTotalAmount)
	}
	if !rec.DiscountAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("discount = %s, want 20", rec.DiscountAmount)
	}
	if !rec.TotalAmount.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("total = %s, want 1300", rec.TotalAmount)
	}

	lis, err := store.ListLineItems(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lis) != 1 {
		t.Fatalf("line items = %d, want 1", len(lis))
	}
	li := lis[0]
	if li.CatalogItemID != item.ID {
		t.Fatal("line item pairs by catalog item")
	}
	if !li.Quantity.Equal(decimal.NewFromInt(12)) || !li.UnitPrice.Equal(decimal.NewFromInt(110)) {
		t.Errorf("line item = %+v", li)
	}
	if !li.BaseQuantity.Equal(decimal.NewFromInt(12)) {
		t.Errorf("base quantity = %s, want 12", li.BaseQuantity)
	}
	// the frozen cost snapshot never changes on reconcile
	if !li.RecordedBuyPrice.IsZero() {
		t.Errorf("recorded buy price = %s, want 0", li.RecordedBuyPrice)
	}

	audits := store.Audits()
	last := audits[len(audits)-1]
	if last.Action != domain.AuditUpdate || last.PayloadBefore == nil {
		t.Errorf("last audit = %+v", last)
	}
}

func TestReconcileSkipsUnknownInvoice(t *testing.T) {
	store := memory.New()
	c := newTestCoordinator(t, store)

	sum, err := c.Reconcile(context.Background(), parser.PurchaseInvoice{}, []parser.Document{
		purchaseDoc("BL9999999999", "PT SUMBER MAKMUR"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Skipped != 1 || sum.Updated != 0 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestDetectFamily(t *testing.T) {
	posGrid := [][]string{
		{"HASMART", "LAPORAN POINT OF SALES", "", "", ""},
		{
			"Nomor", ":", "CB0126000005", "Pelanggan", ":", "UMUM",
			"Tanggal", ":", "18/01/2026", "Kasir", ":", "TUTI",
			"No", "Kode", "Nama", "Kuantitas", "Sat", "Harga", "Diskon", "Jumlah",
		},
	}
	purchaseGrid := [][]string{
		{"HASMART", "PEMBELIAN", "", ""},
		{"Nomor", ":", "BL0126000012", "Tanggal", ":", "18/01/2026", "No", "Kode", "Nama"},
	}
	ledgerGrid := [][]string{
		{"SL0126000001", "No", "Kode", "Nama", "Kts", "Sat"},
	}

	tests := []struct {
		name string
		grid [][]string
		want string
	}{
		{"pos", posGrid, "point-of-sales"},
		{"purchase", purchaseGrid, "purchase"},
		{"ledger", ledgerGrid, "sales-ledger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			family, err := DetectFamily(tt.grid)
			if err != nil {
				t.Fatal(err)
			}
			if family.Name() != tt.want {
				t.Errorf("family = %s, want %s", family.Name(), tt.want)
			}
		})
	}

	if _, err := DetectFamily([][]string{{"just", "noise"}}); !errors.Is(err, ErrUnknownLayout) {
		t.Error("noise grid should not classify")
	}
}
