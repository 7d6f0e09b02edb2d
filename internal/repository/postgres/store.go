package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/repository"
)

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func (s *Store) DefaultBranch(ctx context.Context, preferredName string) (domain.Branch, error) {
	var b domain.Branch

	if preferredName != "" {
		err := sqlx.GetContext(ctx, s.q, &b,
			`SELECT * FROM branches WHERE LOWER(name) = LOWER($1) LIMIT 1`, preferredName)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return b, fmt.Errorf("find branch %q: %w", preferredName, err)
		}
	}

	err := sqlx.GetContext(ctx, s.q, &b, `SELECT * FROM branches ORDER BY id LIMIT 1`)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return b, fmt.Errorf("find first branch: %w", err)
	}

	err = sqlx.GetContext(ctx, s.q, &b, `
		INSERT INTO branches (name, address)
		VALUES ('MAIN', '')
		RETURNING *`)
	if err != nil {
		return b, fmt.Errorf("create default branch: %w", err)
	}
	return b, nil
}

func (s *Store) PlaceholderCategory(ctx context.Context) (domain.Category, error) {
	var c domain.Category
	err := sqlx.GetContext(ctx, s.q, &c, `
		INSERT INTO categories (code, name)
		VALUES ('MISSING', 'Missing Category')
		ON CONFLICT (code) DO UPDATE SET updated_at = NOW()
		RETURNING *`)
	if err != nil {
		return c, fmt.Errorf("resolve placeholder category: %w", err)
	}
	return c, nil
}

func (s *Store) PlaceholderSupplier(ctx context.Context) (domain.Supplier, error) {
	var sup domain.Supplier
	err := sqlx.GetContext(ctx, s.q, &sup, `
		INSERT INTO suppliers (code, name, address)
		VALUES ('MISSING', 'Missing Supplier', '')
		ON CONFLICT (code) DO UPDATE SET updated_at = NOW()
		RETURNING *`)
	if err != nil {
		return sup, fmt.Errorf("resolve placeholder supplier: %w", err)
	}
	return sup, nil
}

func (s *Store) FindOperatorByName(ctx context.Context, name string) (*domain.Operator, error) {
	var op domain.Operator
	err := sqlx.GetContext(ctx, s.q, &op,
		`SELECT * FROM operators WHERE LOWER(name) = LOWER($1) LIMIT 1`, name)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &op, nil
}

func (s *Store) CreateOperator(ctx context.Context, op domain.Operator) (domain.Operator, error) {
	err := sqlx.GetContext(ctx, s.q, &op, `
		INSERT INTO operators (name, password_hash, is_active, is_super_user)
		VALUES ($1, $2, $3, $4)
		RETURNING *`,
		op.Name, op.PasswordHash, op.IsActive, op.IsSuperUser)
	if err != nil {
		return op, fmt.Errorf("insert operator: %w", err)
	}
	return op, nil
}

func (s *Store) FindSupplierByName(ctx context.Context, name string) (*domain.Supplier, error) {
	var sup domain.Supplier
	err := sqlx.GetContext(ctx, s.q, &sup,
		`SELECT * FROM suppliers WHERE LOWER(name) = LOWER($1) LIMIT 1`, name)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &sup, nil
}

func (s *Store) CreateSupplier(ctx context.Context, sup domain.Supplier) (domain.Supplier, error) {
	err := sqlx.GetContext(ctx, s.q, &sup, `
		INSERT INTO suppliers (code, name, address)
		VALUES ($1, $2, $3)
		RETURNING *`,
		sup.Code, sup.Name, sup.Address)
	if err != nil {
		return sup, fmt.Errorf("insert supplier: %w", err)
	}
	return sup, nil
}

func (s *Store) FindMemberByName(ctx context.Context, name string) (*domain.Member, error) {
	var m domain.Member
	err := sqlx.GetContext(ctx, s.q, &m,
		`SELECT * FROM members WHERE LOWER(name) = LOWER($1) LIMIT 1`, name)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &m, nil
}

func (s *Store) CreateMember(ctx context.Context, m domain.Member) (domain.Member, error) {
	err := sqlx.GetContext(ctx, s.q, &m, `
		INSERT INTO members (code, name)
		VALUES ($1, $2)
		RETURNING *`,
		m.Code, m.Name)
	if err != nil {
		return m, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

func (s *Store) GetCatalogItem(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	err := sqlx.GetContext(ctx, s.q, &item,
		`SELECT * FROM catalog_items WHERE id = $1`, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &item, nil
}

func (s *Store) FindCatalogItemByCode(ctx context.Context, code string) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	err := sqlx.GetContext(ctx, s.q, &item,
		`SELECT * FROM catalog_items WHERE code = UPPER($1) LIMIT 1`, code)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &item, nil
}

func (s *Store) CreateCatalogItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	err := sqlx.GetContext(ctx, s.q, &item, `
		INSERT INTO catalog_items (code, name, is_active, average_buy_price, category_id, supplier_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`,
		item.Code, item.Name, item.IsActive, item.AverageBuyPrice, item.CategoryID, item.SupplierID)
	if err != nil {
		return item, fmt.Errorf("insert catalog item: %w", err)
	}
	return item, nil
}

func (s *Store) UpdateAverageBuyPrice(ctx context.Context, itemID int64, price decimal.Decimal) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE catalog_items SET average_buy_price = $2, updated_at = NOW() WHERE id = $1`,
		itemID, price)
	if err != nil {
		return fmt.Errorf("update average buy price: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) FindUnitVariant(ctx context.Context, itemID int64, unitLabel string) (*domain.UnitVariant, error) {
	var v domain.UnitVariant
	err := sqlx.GetContext(ctx, s.q, &v, `
		SELECT * FROM unit_variants
		WHERE catalog_item_id = $1 AND LOWER(unit_label) = LOWER($2)
		LIMIT 1`,
		itemID, unitLabel)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &v, nil
}

func (s *Store) CreateUnitVariant(ctx context.Context, v domain.UnitVariant) (domain.UnitVariant, error) {
	err := sqlx.GetContext(ctx, s.q, &v, `
		INSERT INTO unit_variants
			(catalog_item_id, unit_label, conversion_factor, is_base_unit,
			 sell_price, buy_price, profit_amount, profit_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *`,
		v.CatalogItemID, v.UnitLabel, v.ConversionFactor, v.IsBaseUnit,
		v.SellPrice, v.BuyPrice, v.ProfitAmount, v.ProfitPercentage)
	if err != nil {
		return v, fmt.Errorf("insert unit variant: %w", err)
	}
	return v, nil
}

func (s *Store) ListUnitVariants(ctx context.Context, itemID int64) ([]domain.UnitVariant, error) {
	var out []domain.UnitVariant
	err := sqlx.SelectContext(ctx, s.q, &out,
		`SELECT * FROM unit_variants WHERE catalog_item_id = $1 ORDER BY id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list unit variants: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateUnitVariantPricing(ctx context.Context, variantID int64, buyPrice, profitAmount, profitPercentage decimal.Decimal) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE unit_variants
		SET buy_price = $2, profit_amount = $3, profit_percentage = $4, updated_at = NOW()
		WHERE id = $1`,
		variantID, buyPrice, profitAmount, profitPercentage)
	if err != nil {
		return fmt.Errorf("update unit variant pricing: %w", err)
	}
	return nil
}

func (s *Store) FindTransactionByInvoice(ctx context.Context, direction domain.TransactionDirection, invoiceNumber string) (*domain.TransactionRecord, error) {
	var rec domain.TransactionRecord
	err := sqlx.GetContext(ctx, s.q, &rec, `
		SELECT * FROM transaction_records
		WHERE direction = $1 AND invoice_number = $2
		LIMIT 1`,
		direction, invoiceNumber)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &rec, nil
}

func (s *Store) CreateTransaction(ctx context.Context, rec domain.TransactionRecord) (domain.TransactionRecord, error) {
	err := sqlx.GetContext(ctx, s.q, &rec, `
		INSERT INTO transaction_records
			(invoice_number, direction, branch_id, operator_id, supplier_id, member_id,
			 sub_total_amount, discount_amount, total_amount, notes, transaction_date, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING *`,
		rec.InvoiceNumber, rec.Direction, rec.BranchID, rec.OperatorID, rec.SupplierID, rec.MemberID,
		rec.SubTotalAmount, rec.DiscountAmount, rec.TotalAmount, rec.Notes, rec.TransactionDate, rec.DueDate)
	if err != nil {
		return rec, fmt.Errorf("insert transaction: %w", err)
	}
	return rec, nil
}

func (s *Store) UpdateTransactionTotals(ctx context.Context, id int64, subTotal, discount, total decimal.Decimal) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE transaction_records
		SET sub_total_amount = $2, discount_amount = $3, total_amount = $4, updated_at = NOW()
		WHERE id = $1`,
		id, subTotal, discount, total)
	if err != nil {
		return fmt.Errorf("update transaction totals: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) CreateLineItem(ctx context.Context, li domain.TransactionLineItem) (domain.TransactionLineItem, error) {
	err := sqlx.GetContext(ctx, s.q, &li, `
		INSERT INTO transaction_line_items
			(transaction_id, catalog_item_id, unit_variant_id, quantity, unit_price,
			 recorded_buy_price, discount_amount, total_amount, conversion, base_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING *`,
		li.TransactionID, li.CatalogItemID, li.UnitVariantID, li.Quantity, li.UnitPrice,
		li.RecordedBuyPrice, li.DiscountAmount, li.TotalAmount, li.Conversion, li.BaseQuantity)
	if err != nil {
		return li, fmt.Errorf("insert line item: %w", err)
	}
	return li, nil
}

func (s *Store) ListLineItems(ctx context.Context, transactionID int64) ([]domain.TransactionLineItem, error) {
	var out []domain.TransactionLineItem
	err := sqlx.SelectContext(ctx, s.q, &out,
		`SELECT * FROM transaction_line_items WHERE transaction_id = $1 ORDER BY id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateLineItem(ctx context.Context, li domain.TransactionLineItem) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE transaction_line_items
		SET quantity = $2, unit_price = $3, discount_amount = $4, total_amount = $5,
		    base_quantity = $6, updated_at = NOW()
		WHERE id = $1`,
		li.ID, li.Quantity, li.UnitPrice, li.DiscountAmount, li.TotalAmount, li.BaseQuantity)
	if err != nil {
		return fmt.Errorf("update line item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) IncrementStock(ctx context.Context, itemID, branchID int64, delta decimal.Decimal) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO stock_levels (catalog_item_id, branch_id, recorded_stock)
		VALUES ($1, $2, $3)
		ON CONFLICT (catalog_item_id, branch_id)
		DO UPDATE SET recorded_stock = stock_levels.recorded_stock + EXCLUDED.recorded_stock,
		              updated_at = NOW()`,
		itemID, branchID, delta)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	return nil
}

func (s *Store) AggregateStock(ctx context.Context, itemID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := sqlx.GetContext(ctx, s.q, &total,
		`SELECT COALESCE(SUM(recorded_stock), 0) FROM stock_levels WHERE catalog_item_id = $1`, itemID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("aggregate stock: %w", err)
	}
	return total, nil
}

func (s *Store) CreateAuditEntry(ctx context.Context, e domain.AuditEntry) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO audit_entries (action, model_type, model_id, operator_id, payload_before, payload_after)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.Action, e.ModelType, e.ModelID, e.OperatorID, e.PayloadBefore, e.PayloadAfter)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
