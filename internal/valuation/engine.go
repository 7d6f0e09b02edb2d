// Package valuation maintains the rolling weighted-average cost of catalog
// items and propagates it to every unit variant's derived profit figures.
package valuation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hasmart/retail-ingest/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// CatalogStore is the slice of the persistence layer the engine needs.
type CatalogStore interface {
	GetCatalogItem(ctx context.Context, id int64) (*domain.CatalogItem, error)
	AggregateStock(ctx context.Context, itemID int64) (decimal.Decimal, error)
	UpdateAverageBuyPrice(ctx context.Context, itemID int64, price decimal.Decimal) error
	ListUnitVariants(ctx context.Context, itemID int64) ([]domain.UnitVariant, error)
	UpdateUnitVariantPricing(ctx context.Context, variantID int64, buyPrice, profitAmount, profitPercentage decimal.Decimal) error
}

type Engine struct {
	log zerolog.Logger
}

func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

// RefreshCost recomputes the item's average buy price after a stock movement
// and pushes the result into every variant's derived pricing.
//
// The caller must have applied the stock delta already: the aggregate stock
// read here is the stock AFTER incomingBaseQty. isOverride hard-sets the
// price, ignoring stock and quantity. A negative incomingBaseQty backs a
// prior purchase out of the cost basis; when that reconstruction would go
// negative the prior price is kept, so the persisted average is never
// negative. The item must exist — a missing item aborts the caller's unit of
// work.
func (e *Engine) RefreshCost(ctx context.Context, store CatalogStore, itemID int64, incomingBaseQty, incomingUnitCost decimal.Decimal, isOverride bool) error {
	item, err := store.GetCatalogItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("valuation: load item %d: %w", itemID, err)
	}

	stockAfter, err := store.AggregateStock(ctx, itemID)
	if err != nil {
		return fmt.Errorf("valuation: aggregate stock of item %d: %w", itemID, err)
	}

	newAvg := item.AverageBuyPrice

	switch {
	case isOverride:
		newAvg = incomingUnitCost

	case incomingBaseQty.IsZero():
		// no stock movement, no price change

	case incomingBaseQty.IsPositive():
		newAvg = blendIncoming(item.AverageBuyPrice, stockAfter, incomingBaseQty, incomingUnitCost)

	default:
		newAvg = backOutRemoved(item.AverageBuyPrice, stockAfter, incomingBaseQty, incomingUnitCost)
	}

	if !newAvg.Equal(item.AverageBuyPrice) {
		if err := store.UpdateAverageBuyPrice(ctx, itemID, newAvg); err != nil {
			return fmt.Errorf("valuation: update average of item %d: %w", itemID, err)
		}
		e.log.Debug().
			Int64("item_id", itemID).
			Str("old_average", item.AverageBuyPrice.String()).
			Str("new_average", newAvg.String()).
			Msg("average buy price updated")
	}

	// Variant pricing is refreshed whether or not the average moved, so a
	// manually edited sell price always gets consistent profit figures.
	variants, err := store.ListUnitVariants(ctx, itemID)
	if err != nil {
		return fmt.Errorf("valuation: list variants of item %d: %w", itemID, err)
	}

	for _, v := range variants {
		buyPrice := newAvg.Mul(v.ConversionFactor)
		profitAmount := v.SellPrice.Sub(buyPrice)
		profitPercentage := decimal.Zero
		if buyPrice.IsPositive() {
			profitPercentage = profitAmount.Div(buyPrice).Mul(hundred)
		}

		if err := store.UpdateUnitVariantPricing(ctx, v.ID, buyPrice, profitAmount, profitPercentage); err != nil {
			return fmt.Errorf("valuation: update variant %d of item %d: %w", v.ID, itemID, err)
		}
	}

	return nil
}

// blendIncoming handles a stock increase: when this purchase established the
// entire current stock the incoming cost becomes the average outright,
// otherwise old and incoming value are blended stock-weighted.
func blendIncoming(currentAvg, stockAfter, incomingQty, incomingCost decimal.Decimal) decimal.Decimal {
	stockBefore := stockAfter.Sub(incomingQty)
	if stockBefore.LessThanOrEqual(decimal.Zero) {
		return incomingCost
	}
	if stockAfter.LessThanOrEqual(decimal.Zero) {
		return incomingCost
	}

	oldValue := currentAvg.Mul(stockBefore)
	newValue := incomingCost.Mul(incomingQty)
	return oldValue.Add(newValue).Div(stockAfter)
}

// backOutRemoved handles a deletion/reversal (negative quantity): the
// pre-deletion total value is reconstructed, the removed value subtracted,
// and the remainder spread over the current stock. A cost basis that was
// never positive, or a result that would go negative, keeps the prior price.
func backOutRemoved(currentAvg, stockAfter, incomingQty, incomingCost decimal.Decimal) decimal.Decimal {
	stockBeforeDelete := stockAfter.Sub(incomingQty)
	if stockBeforeDelete.LessThanOrEqual(decimal.Zero) {
		return currentAvg
	}
	if stockAfter.LessThanOrEqual(decimal.Zero) {
		return currentAvg
	}

	removedQty := incomingQty.Abs()
	totalBefore := currentAvg.Mul(stockBeforeDelete)
	removedValue := incomingCost.Mul(removedQty)

	remaining := totalBefore.Sub(removedValue).Div(stockAfter)
	if remaining.IsNegative() {
		return currentAvg
	}
	return remaining
}
