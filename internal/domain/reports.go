package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Read-side shapes served by the report API. These aggregate persisted
// transactions; they are never written.

type PurchaseReportRow struct {
	InvoiceNumber   string          `json:"invoice_number" db:"invoice_number"`
	SupplierName    string          `json:"supplier_name" db:"supplier_name"`
	OperatorName    string          `json:"operator_name" db:"operator_name"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	SubTotalAmount  decimal.Decimal `json:"sub_total_amount" db:"sub_total_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	ItemCount       int             `json:"item_count" db:"item_count"`
}

type SalesReportRow struct {
	InvoiceNumber   string          `json:"invoice_number" db:"invoice_number"`
	MemberName      string          `json:"member_name" db:"member_name"`
	OperatorName    string          `json:"operator_name" db:"operator_name"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	SubTotalAmount  decimal.Decimal `json:"sub_total_amount" db:"sub_total_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	ItemCount       int             `json:"item_count" db:"item_count"`
}

type ItemReportRow struct {
	Code             string          `json:"code" db:"code"`
	Name             string          `json:"name" db:"name"`
	AverageBuyPrice  decimal.Decimal `json:"average_buy_price" db:"average_buy_price"`
	TotalStock       decimal.Decimal `json:"total_stock" db:"total_stock"`
	StockValue       decimal.Decimal `json:"stock_value" db:"stock_value"`
	VariantCount     int             `json:"variant_count" db:"variant_count"`
	LastPurchaseDate *time.Time      `json:"last_purchase_date,omitempty" db:"last_purchase_date"`
}

type OverallSummary struct {
	SalesCount      int             `json:"sales_count" db:"sales_count"`
	SalesTotal      decimal.Decimal `json:"sales_total" db:"sales_total"`
	PurchaseCount   int             `json:"purchase_count" db:"purchase_count"`
	PurchaseTotal   decimal.Decimal `json:"purchase_total" db:"purchase_total"`
	GrossProfit     decimal.Decimal `json:"gross_profit" db:"gross_profit"`
	ActiveItems     int             `json:"active_items" db:"active_items"`
	TotalStockValue decimal.Decimal `json:"total_stock_value" db:"total_stock_value"`
}
