package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/parser"
	"github.com/hasmart/retail-ingest/internal/repository"
)

// Reconcile runs the update flow: documents whose invoice number is already
// recorded get their totals recomputed from the document's own line items and
// their matching line items overwritten, paired by catalog-item code.
// Recorded buy prices stay frozen, non-matching line items are left
// untouched, and documents with no recorded counterpart are skipped.
func (c *Coordinator) Reconcile(ctx context.Context, family parser.Family, docs []parser.Document) (Summary, error) {
	var sum Summary

	for _, doc := range docs {
		invoice := strings.TrimSpace(doc.Header.InvoiceNumber)
		if invoice == "" {
			sum.Skipped++
			c.log.Info().Msg("document without invoice number, nothing to reconcile")
			continue
		}

		err := c.store.Atomically(ctx, func(s repository.Store) error {
			return c.reconcileDocument(ctx, s, family, doc, invoice)
		})

		switch {
		case err == nil:
			sum.Updated++
		case errors.Is(err, repository.ErrNotFound):
			sum.Skipped++
			c.log.Info().Str("invoice", invoice).Msg("invoice not recorded, skipping reconcile")
		default:
			sum.Failed++
			c.log.Error().Err(err).Str("invoice", invoice).Msg("reconcile failed, rolled back")
		}
	}

	c.log.Info().
		Str("family", family.Name()).
		Int("updated", sum.Updated).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Msg("reconcile run finished")

	return sum, nil
}

func (c *Coordinator) reconcileDocument(ctx context.Context, s repository.Store, family parser.Family, doc parser.Document, invoice string) error {
	existing, err := s.FindTransactionByInvoice(ctx, family.Direction(), invoice)
	if err != nil {
		return err
	}

	before := *existing

	// Unlike the create flow, totals come from the line items themselves,
	// not from the document's summary row.
	subTotal, discount := decimal.Zero, decimal.Zero
	for _, item := range doc.LineItems {
		subTotal = subTotal.Add(valueOrZero(item.LineTotal))
		discount = discount.Add(valueOrZero(item.Discount))
	}
	total := subTotal.Sub(discount)

	if err := s.UpdateTransactionTotals(ctx, existing.ID, subTotal, discount, total); err != nil {
		return fmt.Errorf("update totals of %s: %w", invoice, err)
	}

	recorded, err := s.ListLineItems(ctx, existing.ID)
	if err != nil {
		return fmt.Errorf("list line items of %s: %w", invoice, err)
	}

	byItemID := make(map[int64]domain.TransactionLineItem, len(recorded))
	for _, li := range recorded {
		byItemID[li.CatalogItemID] = li
	}

	for _, item := range doc.LineItems {
		code := strings.ToUpper(strings.TrimSpace(item.Code))
		catalogItem, err := s.FindCatalogItemByCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("find item %q: %w", code, err)
		}

		li, ok := byItemID[catalogItem.ID]
		if !ok {
			continue
		}

		li.Quantity = valueOrZero(item.Quantity)
		li.UnitPrice = valueOrZero(item.UnitPrice)
		li.DiscountAmount = valueOrZero(item.Discount)
		li.TotalAmount = valueOrZero(item.LineTotal)
		li.BaseQuantity = li.Quantity.Mul(li.Conversion)

		if err := s.UpdateLineItem(ctx, li); err != nil {
			return fmt.Errorf("update line item %d: %w", li.ID, err)
		}
	}

	after := *existing
	after.SubTotalAmount = subTotal
	after.DiscountAmount = discount
	after.TotalAmount = total

	return c.audit(ctx, s, domain.AuditUpdate, after, &before)
}
