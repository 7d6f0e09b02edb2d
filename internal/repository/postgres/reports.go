package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hasmart/retail-ingest/internal/domain"
)

// Read-side aggregations over persisted transactions. These run against the
// pool (never inside an ingest transaction) and only ever read.

func (s *Store) PurchaseReport(ctx context.Context, from, to time.Time) ([]domain.PurchaseReportRow, error) {
	var out []domain.PurchaseReportRow
	err := sqlx.SelectContext(ctx, s.q, &out, `
		SELECT t.invoice_number,
		       COALESCE(sup.name, '') AS supplier_name,
		       o.name                 AS operator_name,
		       t.transaction_date,
		       t.sub_total_amount,
		       t.discount_amount,
		       t.total_amount,
		       COUNT(li.id)           AS item_count
		FROM transaction_records t
		JOIN operators o             ON o.id = t.operator_id
		LEFT JOIN suppliers sup      ON sup.id = t.supplier_id
		LEFT JOIN transaction_line_items li ON li.transaction_id = t.id
		WHERE t.direction = 'PURCHASE'
		  AND t.transaction_date >= $1
		  AND t.transaction_date < $2
		GROUP BY t.id, sup.name, o.name
		ORDER BY t.transaction_date, t.invoice_number`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("purchase report: %w", err)
	}
	return out, nil
}

func (s *Store) SalesReport(ctx context.Context, from, to time.Time) ([]domain.SalesReportRow, error) {
	var out []domain.SalesReportRow
	err := sqlx.SelectContext(ctx, s.q, &out, `
		SELECT t.invoice_number,
		       COALESCE(m.name, '') AS member_name,
		       o.name               AS operator_name,
		       t.transaction_date,
		       t.sub_total_amount,
		       t.discount_amount,
		       t.total_amount,
		       COUNT(li.id)         AS item_count
		FROM transaction_records t
		JOIN operators o             ON o.id = t.operator_id
		LEFT JOIN members m          ON m.id = t.member_id
		LEFT JOIN transaction_line_items li ON li.transaction_id = t.id
		WHERE t.direction = 'SALE'
		  AND t.transaction_date >= $1
		  AND t.transaction_date < $2
		GROUP BY t.id, m.name, o.name
		ORDER BY t.transaction_date, t.invoice_number`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}
	return out, nil
}

func (s *Store) ItemReport(ctx context.Context) ([]domain.ItemReportRow, error) {
	var out []domain.ItemReportRow
	err := sqlx.SelectContext(ctx, s.q, &out, `
		SELECT i.code,
		       i.name,
		       i.average_buy_price,
		       COALESCE(SUM(sl.recorded_stock), 0)                      AS total_stock,
		       COALESCE(SUM(sl.recorded_stock), 0) * i.average_buy_price AS stock_value,
		       (SELECT COUNT(*) FROM unit_variants v WHERE v.catalog_item_id = i.id) AS variant_count,
		       (SELECT MAX(t.transaction_date)
		        FROM transaction_records t
		        JOIN transaction_line_items li ON li.transaction_id = t.id
		        WHERE li.catalog_item_id = i.id AND t.direction = 'PURCHASE') AS last_purchase_date
		FROM catalog_items i
		LEFT JOIN stock_levels sl ON sl.catalog_item_id = i.id
		WHERE i.is_active
		GROUP BY i.id
		ORDER BY i.code`)
	if err != nil {
		return nil, fmt.Errorf("item report: %w", err)
	}
	return out, nil
}

func (s *Store) OverallSummary(ctx context.Context, from, to time.Time) (domain.OverallSummary, error) {
	var sum domain.OverallSummary
	err := sqlx.GetContext(ctx, s.q, &sum, `
		SELECT
			COUNT(*) FILTER (WHERE direction = 'SALE')                          AS sales_count,
			COALESCE(SUM(total_amount) FILTER (WHERE direction = 'SALE'), 0)    AS sales_total,
			COUNT(*) FILTER (WHERE direction = 'PURCHASE')                      AS purchase_count,
			COALESCE(SUM(total_amount) FILTER (WHERE direction = 'PURCHASE'), 0) AS purchase_total,
			COALESCE((SELECT SUM((li.unit_price - li.recorded_buy_price) * li.quantity - li.discount_amount)
			          FROM transaction_line_items li
			          JOIN transaction_records tr ON tr.id = li.transaction_id
			          WHERE tr.direction = 'SALE'
			            AND tr.transaction_date >= $1 AND tr.transaction_date < $2), 0) AS gross_profit,
			(SELECT COUNT(*) FROM catalog_items WHERE is_active)                AS active_items,
			COALESCE((SELECT SUM(sl.recorded_stock * i.average_buy_price)
			          FROM stock_levels sl
			          JOIN catalog_items i ON i.id = sl.catalog_item_id), 0)    AS total_stock_value
		FROM transaction_records
		WHERE transaction_date >= $1 AND transaction_date < $2`,
		from, to)
	if err != nil {
		return sum, fmt.Errorf("overall summary: %w", err)
	}
	return sum, nil
}
