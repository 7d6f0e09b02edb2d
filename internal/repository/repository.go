// Package repository defines the persistence contract the ingestion and
// valuation code runs against. The postgres implementation is the real
// store; the memory implementation backs tests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hasmart/retail-ingest/internal/domain"
)

var (
	// ErrNotFound is returned by Find* methods when no row matches.
	ErrNotFound = errors.New("not found")
)

// Store is the unit-of-work surface for ingestion. Atomically runs fn against
// a store bound to one database transaction; every write inside either fully
// commits or fully rolls back.
type Store interface {
	Atomically(ctx context.Context, fn func(Store) error) error

	// Reference data
	DefaultBranch(ctx context.Context, preferredName string) (domain.Branch, error)
	PlaceholderCategory(ctx context.Context) (domain.Category, error)
	PlaceholderSupplier(ctx context.Context) (domain.Supplier, error)

	// Operators, matched case-insensitively by name
	FindOperatorByName(ctx context.Context, name string) (*domain.Operator, error)
	CreateOperator(ctx context.Context, op domain.Operator) (domain.Operator, error)

	// Counterparties
	FindSupplierByName(ctx context.Context, name string) (*domain.Supplier, error)
	CreateSupplier(ctx context.Context, s domain.Supplier) (domain.Supplier, error)
	FindMemberByName(ctx context.Context, name string) (*domain.Member, error)
	CreateMember(ctx context.Context, m domain.Member) (domain.Member, error)

	// Catalog
	GetCatalogItem(ctx context.Context, id int64) (*domain.CatalogItem, error)
	FindCatalogItemByCode(ctx context.Context, code string) (*domain.CatalogItem, error)
	CreateCatalogItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error)
	UpdateAverageBuyPrice(ctx context.Context, itemID int64, price decimal.Decimal) error

	// Unit variants, unit labels matched case-insensitively within one item
	FindUnitVariant(ctx context.Context, itemID int64, unitLabel string) (*domain.UnitVariant, error)
	CreateUnitVariant(ctx context.Context, v domain.UnitVariant) (domain.UnitVariant, error)
	ListUnitVariants(ctx context.Context, itemID int64) ([]domain.UnitVariant, error)
	UpdateUnitVariantPricing(ctx context.Context, variantID int64, buyPrice, profitAmount, profitPercentage decimal.Decimal) error

	// Transactions
	FindTransactionByInvoice(ctx context.Context, direction domain.TransactionDirection, invoiceNumber string) (*domain.TransactionRecord, error)
	CreateTransaction(ctx context.Context, rec domain.TransactionRecord) (domain.TransactionRecord, error)
	UpdateTransactionTotals(ctx context.Context, id int64, subTotal, discount, total decimal.Decimal) error
	CreateLineItem(ctx context.Context, li domain.TransactionLineItem) (domain.TransactionLineItem, error)
	ListLineItems(ctx context.Context, transactionID int64) ([]domain.TransactionLineItem, error)
	UpdateLineItem(ctx context.Context, li domain.TransactionLineItem) error

	// Stock, in base units per (item, branch)
	IncrementStock(ctx context.Context, itemID, branchID int64, delta decimal.Decimal) error
	AggregateStock(ctx context.Context, itemID int64) (decimal.Decimal, error)

	// Audit
	CreateAuditEntry(ctx context.Context, e domain.AuditEntry) error
}

// ReportStore is the read-only surface the report API serves from. Only the
// postgres store implements it; reporting never writes.
type ReportStore interface {
	PurchaseReport(ctx context.Context, from, to time.Time) ([]domain.PurchaseReportRow, error)
	SalesReport(ctx context.Context, from, to time.Time) ([]domain.SalesReportRow, error)
	ItemReport(ctx context.Context) ([]domain.ItemReportRow, error)
	OverallSummary(ctx context.Context, from, to time.Time) (domain.OverallSummary, error)
}
