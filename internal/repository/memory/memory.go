// Package memory is an in-memory Store used by tests. Atomically snapshots
// the whole state and restores it when fn fails, mirroring the rollback
// behavior of the postgres store closely enough for coordinator tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/repository"
)

type stockKey struct {
	itemID   int64
	branchID int64
}

type Store struct {
	mu sync.Mutex

	nextID int64

	branches   map[int64]domain.Branch
	categories map[int64]domain.Category
	operators  map[int64]domain.Operator
	suppliers  map[int64]domain.Supplier
	members    map[int64]domain.Member
	items      map[int64]domain.CatalogItem
	variants   map[int64]domain.UnitVariant
	txs        map[int64]domain.TransactionRecord
	lineItems  map[int64]domain.TransactionLineItem
	stock      map[stockKey]decimal.Decimal
	audits     []domain.AuditEntry
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		branches:   map[int64]domain.Branch{},
		categories: map[int64]domain.Category{},
		operators:  map[int64]domain.Operator{},
		suppliers:  map[int64]domain.Supplier{},
		members:    map[int64]domain.Member{},
		items:      map[int64]domain.CatalogItem{},
		variants:   map[int64]domain.UnitVariant{},
		txs:        map[int64]domain.TransactionRecord{},
		lineItems:  map[int64]domain.TransactionLineItem{},
		stock:      map[stockKey]decimal.Decimal{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) snapshot() *Store {
	c := New()
	c.nextID = s.nextID
	for k, v := range s.branches {
		c.branches[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.operators {
		c.operators[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.txs {
		c.txs[k] = v
	}
	for k, v := range s.lineItems {
		c.lineItems[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	c.audits = append(c.audits, s.audits...)
	return c
}

func (s *Store) restore(snap *Store) {
	s.nextID = snap.nextID
	s.branches = snap.branches
	s.categories = snap.categories
	s.operators = snap.operators
	s.suppliers = snap.suppliers
	s.members = snap.members
	s.items = snap.items
	s.variants = snap.variants
	s.txs = snap.txs
	s.lineItems = snap.lineItems
	s.stock = snap.stock
	s.audits = snap.audits
}

func (s *Store) Atomically(ctx context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) DefaultBranch(ctx context.Context, preferredName string) (domain.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first *domain.Branch
	for _, b := range s.branches {
		b := b
		if preferredName != "" && strings.EqualFold(b.Name, preferredName) {
			return b, nil
		}
		if first == nil || b.ID < first.ID {
			first = &b
		}
	}
	if first != nil {
		return *first, nil
	}

	created := domain.Branch{ID: s.id(), Name: "MAIN", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.branches[created.ID] = created
	return created, nil
}

func (s *Store) PlaceholderCategory(ctx context.Context) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Code == "MISSING" {
			return c, nil
		}
	}
	created := domain.Category{ID: s.id(), Code: "MISSING", Name: "Missing Category"}
	s.categories[created.ID] = created
	return created, nil
}

func (s *Store) PlaceholderSupplier(ctx context.Context) (domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sup := range s.suppliers {
		if sup.Code == "MISSING" {
			return sup, nil
		}
	}
	created := domain.Supplier{ID: s.id(), Code: "MISSING", Name: "Missing Supplier"}
	s.suppliers[created.ID] = created
	return created, nil
}

func (s *Store) FindOperatorByName(ctx context.Context, name string) (*domain.Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range s.operators {
		if strings.EqualFold(op.Name, name) {
			op := op
			return &op, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateOperator(ctx context.Context, op domain.Operator) (domain.Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op.ID = s.id()
	op.CreatedAt = time.Now()
	op.UpdatedAt = op.CreatedAt
	s.operators[op.ID] = op
	return op, nil
}

func (s *Store) FindSupplierByName(ctx context.Context, name string) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sup := range s.suppliers {
		if strings.EqualFold(sup.Name, name) {
			sup := sup
			return &sup, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateSupplier(ctx context.Context, sup domain.Supplier) (domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sup.ID = s.id()
	sup.CreatedAt = time.Now()
	sup.UpdatedAt = sup.CreatedAt
	s.suppliers[sup.ID] = sup
	return sup, nil
}

func (s *Store) FindMemberByName(ctx context.Context, name string) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if strings.EqualFold(m.Name, name) {
			m := m
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateMember(ctx context.Context, m domain.Member) (domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.id()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	s.members[m.ID] = m
	return m, nil
}

func (s *Store) GetCatalogItem(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (s *Store) FindCatalogItemByCode(ctx context.Context, code string) (*domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if strings.EqualFold(item.Code, code) {
			item := item
			return &item, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateCatalogItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.id()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	s.items[item.ID] = item
	return item, nil
}

func (s *Store) UpdateAverageBuyPrice(ctx context.Context, itemID int64, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return repository.ErrNotFound
	}
	item.AverageBuyPrice = price
	item.UpdatedAt = time.Now()
	s.items[itemID] = item
	return nil
}

func (s *Store) FindUnitVariant(ctx context.Context, itemID int64, unitLabel string) (*domain.UnitVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.variants {
		if v.CatalogItemID == itemID && strings.EqualFold(v.UnitLabel, unitLabel) {
			v := v
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateUnitVariant(ctx context.Context, v domain.UnitVariant) (domain.UnitVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v.ID = s.id()
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	s.variants[v.ID] = v
	return v, nil
}

func (s *Store) ListUnitVariants(ctx context.Context, itemID int64) ([]domain.UnitVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.UnitVariant
	for _, v := range s.variants {
		if v.CatalogItemID == itemID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Store) UpdateUnitVariantPricing(ctx context.Context, variantID int64, buyPrice, profitAmount, profitPercentage decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[variantID]
	if !ok {
		return repository.ErrNotFound
	}
	v.BuyPrice = buyPrice
	v.ProfitAmount = profitAmount
	v.ProfitPercentage = profitPercentage
	v.UpdatedAt = time.Now()
	s.variants[variantID] = v
	return nil
}

func (s *Store) FindTransactionByInvoice(ctx context.Context, direction domain.TransactionDirection, invoiceNumber string) (*domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.txs {
		if tx.Direction == direction && tx.InvoiceNumber == invoiceNumber {
			tx := tx
			return &tx, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateTransaction(ctx context.Context, rec domain.TransactionRecord) (domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.id()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = rec.CreatedAt
	s.txs[rec.ID] = rec
	return rec, nil
}

func (s *Store) UpdateTransactionTotals(ctx context.Context, id int64, subTotal, discount, total decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok {
		return repository.ErrNotFound
	}
	tx.SubTotalAmount = subTotal
	tx.DiscountAmount = discount
	tx.TotalAmount = total
	tx.UpdatedAt = time.Now()
	s.txs[id] = tx
	return nil
}

func (s *Store) CreateLineItem(ctx context.Context, li domain.TransactionLineItem) (domain.TransactionLineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	li.ID = s.id()
	li.CreatedAt = time.Now()
	li.UpdatedAt = li.CreatedAt
	s.lineItems[li.ID] = li
	return li, nil
}

func (s *Store) ListLineItems(ctx context.Context, transactionID int64) ([]domain.TransactionLineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.TransactionLineItem
	for _, li := range s.lineItems {
		if li.TransactionID == transactionID {
			out = append(out, li)
		}
	}
	return out, nil
}

func (s *Store) UpdateLineItem(ctx context.Context, li domain.TransactionLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lineItems[li.ID]; !ok {
		return repository.ErrNotFound
	}
	li.UpdatedAt = time.Now()
	s.lineItems[li.ID] = li
	return nil
}

func (s *Store) IncrementStock(ctx context.Context, itemID, branchID int64, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := stockKey{itemID: itemID, branchID: branchID}
	s.stock[k] = s.stock[k].Add(delta)
	return nil
}

func (s *Store) AggregateStock(ctx context.Context, itemID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for k, qty := range s.stock {
		if k.itemID == itemID {
			total = total.Add(qty)
		}
	}
	return total, nil
}

func (s *Store) CreateAuditEntry(ctx context.Context, e domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.id()
	e.CreatedAt = time.Now()
	s.audits = append(s.audits, e)
	return nil
}

// Test helpers

// TransactionCount reports how many transaction records exist.
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

// Audits returns all recorded audit entries.
func (s *Store) Audits() []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditEntry(nil), s.audits...)
}

// StockAt reports recorded stock for an item at a branch.
func (s *Store) StockAt(itemID, branchID int64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[stockKey{itemID: itemID, branchID: branchID}]
}

// DeleteCatalogItem removes an item outright; tests use it to simulate the
// item vanishing between resolution and valuation.
func (s *Store) DeleteCatalogItem(itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, itemID)
}
