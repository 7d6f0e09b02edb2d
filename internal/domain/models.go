package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection distinguishes the two sides a document can land on.
type TransactionDirection string

const (
	DirectionSale     TransactionDirection = "SALE"
	DirectionPurchase TransactionDirection = "PURCHASE"
)

// Branch is a physical store location. Stock is tracked per branch.
type Branch struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Operator is a user of the retail application (cashier or admin).
type Operator struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	IsSuperUser  bool      `json:"is_super_user" db:"is_super_user"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Supplier is the counterparty on purchase documents.
type Supplier struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Member is the counterparty on sales documents ("Umum" for walk-ins).
type Member struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Category groups catalog items. Items auto-created during ingestion land in
// the placeholder category with code "MISSING".
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CatalogItem is a sellable/purchasable item. AverageBuyPrice is the rolling
// weighted-average cost per base unit and is never negative.
type CatalogItem struct {
	ID              int64           `json:"id" db:"id"`
	Code            string          `json:"code" db:"code"`
	Name            string          `json:"name" db:"name"`
	IsActive        bool            `json:"is_active" db:"is_active"`
	AverageBuyPrice decimal.Decimal `json:"average_buy_price" db:"average_buy_price"`
	CategoryID      int64           `json:"category_id" db:"category_id"`
	SupplierID      int64           `json:"supplier_id" db:"supplier_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// UnitVariant is one selling unit of a catalog item. ConversionFactor is the
// number of base units in one of this variant; BuyPrice, ProfitAmount and
// ProfitPercentage are derived from the item's rolling average cost.
type UnitVariant struct {
	ID               int64           `json:"id" db:"id"`
	CatalogItemID    int64           `json:"catalog_item_id" db:"catalog_item_id"`
	UnitLabel        string          `json:"unit_label" db:"unit_label"`
	ConversionFactor decimal.Decimal `json:"conversion_factor" db:"conversion_factor"`
	IsBaseUnit       bool            `json:"is_base_unit" db:"is_base_unit"`
	SellPrice        decimal.Decimal `json:"sell_price" db:"sell_price"`
	BuyPrice         decimal.Decimal `json:"buy_price" db:"buy_price"`
	ProfitAmount     decimal.Decimal `json:"profit_amount" db:"profit_amount"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage" db:"profit_percentage"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// StockLevel is the recorded stock of one item at one branch, in base units.
type StockLevel struct {
	ID            int64           `json:"id" db:"id"`
	CatalogItemID int64           `json:"catalog_item_id" db:"catalog_item_id"`
	BranchID      int64           `json:"branch_id" db:"branch_id"`
	RecordedStock decimal.Decimal `json:"recorded_stock" db:"recorded_stock"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// TransactionRecord is one persisted business transaction, keyed by the
// human-readable invoice number.
type TransactionRecord struct {
	ID              int64                `json:"id" db:"id"`
	InvoiceNumber   string               `json:"invoice_number" db:"invoice_number"`
	Direction       TransactionDirection `json:"direction" db:"direction"`
	BranchID        int64                `json:"branch_id" db:"branch_id"`
	OperatorID      int64                `json:"operator_id" db:"operator_id"`
	SupplierID      *int64               `json:"supplier_id,omitempty" db:"supplier_id"`
	MemberID        *int64               `json:"member_id,omitempty" db:"member_id"`
	SubTotalAmount  decimal.Decimal      `json:"sub_total_amount" db:"sub_total_amount"`
	DiscountAmount  decimal.Decimal      `json:"discount_amount" db:"discount_amount"`
	TotalAmount     decimal.Decimal      `json:"total_amount" db:"total_amount"`
	Notes           string               `json:"notes" db:"notes"`
	TransactionDate time.Time            `json:"transaction_date" db:"transaction_date"`
	DueDate         *time.Time           `json:"due_date,omitempty" db:"due_date"`
	CreatedAt       time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" db:"updated_at"`

	LineItems []TransactionLineItem `json:"line_items,omitempty" db:"-"`
}

// TransactionLineItem snapshots one document row. RecordedBuyPrice is the
// item's average cost scaled to the variant at the time of recording; it is
// never recomputed retroactively.
type TransactionLineItem struct {
	ID               int64           `json:"id" db:"id"`
	TransactionID    int64           `json:"transaction_id" db:"transaction_id"`
	CatalogItemID    int64           `json:"catalog_item_id" db:"catalog_item_id"`
	UnitVariantID    int64           `json:"unit_variant_id" db:"unit_variant_id"`
	Quantity         decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price" db:"unit_price"`
	RecordedBuyPrice decimal.Decimal `json:"recorded_buy_price" db:"recorded_buy_price"`
	DiscountAmount   decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	Conversion       decimal.Decimal `json:"conversion" db:"conversion"`
	BaseQuantity     decimal.Decimal `json:"base_quantity" db:"base_quantity"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// AuditAction is the kind of change an audit entry records.
type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
)

// AuditEntry captures the before/after state of a transaction write.
type AuditEntry struct {
	ID            int64       `json:"id" db:"id"`
	Action        AuditAction `json:"action" db:"action"`
	ModelType     string      `json:"model_type" db:"model_type"`
	ModelID       int64       `json:"model_id" db:"model_id"`
	OperatorID    int64       `json:"operator_id" db:"operator_id"`
	PayloadBefore []byte      `json:"payload_before,omitempty" db:"payload_before"`
	PayloadAfter  []byte      `json:"payload_after,omitempty" db:"payload_after"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}
