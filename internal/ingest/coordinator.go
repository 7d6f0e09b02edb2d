// Package ingest maps parsed documents onto persistent entities exactly once
// per invoice number. Documents are processed strictly sequentially: later
// documents' valuation depends on earlier documents' stock and cost for the
// same catalog item, so there is no intra-run parallelism here.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/parser"
	"github.com/hasmart/retail-ingest/internal/repository"
	"github.com/hasmart/retail-ingest/internal/valuation"
)

const (
	fallbackOperatorName = "ADMIN"
	fallbackMemberName   = "UMUM"
	auditModelType       = "TRANSACTION_RECORD"
)

// errDuplicate aborts a document's unit of work without treating it as a
// failure; nothing has been written when it is raised.
var errDuplicate = errors.New("invoice already recorded")

// Summary counts per-document outcomes for one run.
type Summary struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

type Options struct {
	// BranchName selects the ingestion branch; empty means first branch.
	BranchName string
	// DefaultPassword is hashed once per run for auto-created operators.
	DefaultPassword string
}

type Coordinator struct {
	store  repository.Store
	engine *valuation.Engine
	log    zerolog.Logger
	opts   Options

	passwordHash string
}

func NewCoordinator(store repository.Store, engine *valuation.Engine, log zerolog.Logger, opts Options) (*Coordinator, error) {
	if opts.DefaultPassword == "" {
		opts.DefaultPassword = "12345678"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}

	return &Coordinator{
		store:        store,
		engine:       engine,
		log:          log,
		opts:         opts,
		passwordHash: string(hash),
	}, nil
}

// Run ingests documents in sheet order under the create flow: a document
// whose invoice number is already recorded is skipped whole, everything else
// is written inside one atomic unit per document. A failed document rolls
// back and the run continues.
func (c *Coordinator) Run(ctx context.Context, family parser.Family, docs []parser.Document) (Summary, error) {
	var sum Summary

	for _, doc := range docs {
		invoice := naturalKey(doc.Header.InvoiceNumber)

		err := c.store.Atomically(ctx, func(s repository.Store) error {
			return c.ingestDocument(ctx, s, family, doc, invoice)
		})

		switch {
		case err == nil:
			sum.Created++
		case errors.Is(err, errDuplicate):
			sum.Skipped++
			c.log.Info().Str("invoice", invoice).Msg("invoice already recorded, skipping")
		default:
			sum.Failed++
			c.log.Error().Err(err).Str("invoice", invoice).Msg("document failed, rolled back")
		}
	}

	c.log.Info().
		Str("family", family.Name()).
		Int("created", sum.Created).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Msg("ingest run finished")

	return sum, nil
}

// naturalKey returns the invoice number, or a synthesized placeholder that
// cannot collide with genuine invoices when the document carries none.
func naturalKey(invoiceNumber string) string {
	if strings.TrimSpace(invoiceNumber) != "" {
		return strings.TrimSpace(invoiceNumber)
	}
	return "MISSING-" + uuid.NewString()
}

func (c *Coordinator) ingestDocument(ctx context.Context, s repository.Store, family parser.Family, doc parser.Document, invoice string) error {
	direction := family.Direction()

	if _, err := s.FindTransactionByInvoice(ctx, direction, invoice); err == nil {
		return errDuplicate
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("dedupe check for %s: %w", invoice, err)
	}

	branch, err := s.DefaultBranch(ctx, c.opts.BranchName)
	if err != nil {
		return fmt.Errorf("resolve branch: %w", err)
	}

	operator, err := c.resolveOperator(ctx, s, doc.Header.OperatorName)
	if err != nil {
		return err
	}

	rec := domain.TransactionRecord{
		InvoiceNumber:   invoice,
		Direction:       direction,
		BranchID:        branch.ID,
		OperatorID:      operator.ID,
		SubTotalAmount:  valueOrZero(summaryOf(doc).SubTotal),
		DiscountAmount:  valueOrZero(summaryOf(doc).Discount),
		TotalAmount:     valueOrZero(summaryOf(doc).Total),
		Notes:           summaryOf(doc).Notes,
		TransactionDate: dateOrNow(doc.Header.Date),
		DueDate:         doc.Header.DueDate,
	}

	switch direction {
	case domain.DirectionPurchase:
		supplier, res, err := c.resolveSupplier(ctx, s, doc.Header)
		if err != nil {
			return err
		}
		if res == repository.ResolutionCreated {
			c.log.Info().Str("supplier", supplier.Name).Msg("created missing supplier")
		}
		rec.SupplierID = &supplier.ID
	default:
		name := doc.Header.CounterpartyName
		if name == "" {
			name = fallbackMemberName
		}
		member, res, err := repository.ResolveMember(ctx, s, name)
		if err != nil {
			return err
		}
		if res == repository.ResolutionCreated {
			c.log.Info().Str("member", member.Name).Msg("created missing member")
		}
		rec.MemberID = &member.ID
	}

	rec, err = s.CreateTransaction(ctx, rec)
	if err != nil {
		return fmt.Errorf("create transaction %s: %w", invoice, err)
	}

	for _, item := range doc.LineItems {
		li, err := c.ingestLineItem(ctx, s, rec, branch, item)
		if err != nil {
			return fmt.Errorf("line %d of %s: %w", item.Sequence, invoice, err)
		}
		rec.LineItems = append(rec.LineItems, li)
	}

	return c.audit(ctx, s, domain.AuditCreate, rec, nil)
}

func (c *Coordinator) ingestLineItem(ctx context.Context, s repository.Store, rec domain.TransactionRecord, branch domain.Branch, item parser.LineItem) (domain.TransactionLineItem, error) {
	supplierID := int64(0)
	if rec.SupplierID != nil {
		// auto-created items on a purchase inherit the document's supplier
		supplierID = *rec.SupplierID
	} else {
		placeholder, err := s.PlaceholderSupplier(ctx)
		if err != nil {
			return domain.TransactionLineItem{}, fmt.Errorf("placeholder supplier: %w", err)
		}
		supplierID = placeholder.ID
	}

	category, err := s.PlaceholderCategory(ctx)
	if err != nil {
		return domain.TransactionLineItem{}, fmt.Errorf("placeholder category: %w", err)
	}

	catalogItem, itemRes, err := repository.ResolveCatalogItem(ctx, s, item.Code, item.Name, category.ID, supplierID)
	if err != nil {
		return domain.TransactionLineItem{}, err
	}
	if itemRes == repository.ResolutionCreated {
		c.log.Info().Str("code", catalogItem.Code).Str("name", catalogItem.Name).Msg("created missing catalog item")
	}

	variant, variantRes, err := repository.ResolveUnitVariant(ctx, s, catalogItem.ID, item.UnitLabel)
	if err != nil {
		return domain.TransactionLineItem{}, err
	}
	if variantRes == repository.ResolutionCreated {
		// no conversion data in the source documents, factor 1 is assumed
		c.log.Warn().
			Str("code", catalogItem.Code).
			Str("unit", variant.UnitLabel).
			Msg("created unit variant with assumed conversion factor 1")
	}

	qty := valueOrZero(item.Quantity)
	unitPrice := valueOrZero(item.UnitPrice)
	conversion := variant.ConversionFactor
	baseQty := qty.Mul(conversion)

	li := domain.TransactionLineItem{
		TransactionID:    rec.ID,
		CatalogItemID:    catalogItem.ID,
		UnitVariantID:    variant.ID,
		Quantity:         qty,
		UnitPrice:        unitPrice,
		RecordedBuyPrice: catalogItem.AverageBuyPrice.Mul(conversion),
		DiscountAmount:   valueOrZero(item.Discount),
		TotalAmount:      valueOrZero(item.LineTotal),
		Conversion:       conversion,
		BaseQuantity:     baseQty,
	}

	li, err = s.CreateLineItem(ctx, li)
	if err != nil {
		return domain.TransactionLineItem{}, fmt.Errorf("create line item: %w", err)
	}

	switch rec.Direction {
	case domain.DirectionPurchase:
		if err := s.IncrementStock(ctx, catalogItem.ID, branch.ID, baseQty); err != nil {
			return domain.TransactionLineItem{}, fmt.Errorf("increment stock: %w", err)
		}

		unitCost := unitPrice
		if conversion.IsPositive() && !conversion.Equal(decimal.NewFromInt(1)) {
			unitCost = unitPrice.Div(conversion)
		}
		if err := c.engine.RefreshCost(ctx, s, catalogItem.ID, baseQty, unitCost, false); err != nil {
			return domain.TransactionLineItem{}, err
		}

	case domain.DirectionSale:
		if err := s.IncrementStock(ctx, catalogItem.ID, branch.ID, baseQty.Neg()); err != nil {
			return domain.TransactionLineItem{}, fmt.Errorf("decrement stock: %w", err)
		}
	}

	return li, nil
}

func (c *Coordinator) resolveOperator(ctx context.Context, s repository.Store, name string) (domain.Operator, error) {
	if strings.TrimSpace(name) == "" {
		name = fallbackOperatorName
	}

	op, res, err := repository.ResolveOperator(ctx, s, name, c.passwordHash)
	if err != nil {
		return domain.Operator{}, err
	}
	if res == repository.ResolutionCreated {
		c.log.Info().Str("operator", op.Name).Msg("created missing operator")
	}
	return op, nil
}

func (c *Coordinator) resolveSupplier(ctx context.Context, s repository.Store, h parser.Header) (domain.Supplier, repository.Resolution, error) {
	if strings.TrimSpace(h.CounterpartyName) == "" {
		sup, err := s.PlaceholderSupplier(ctx)
		return sup, repository.ResolutionFound, err
	}
	return repository.ResolveSupplier(ctx, s, h.CounterpartyName, h.Location)
}

func (c *Coordinator) audit(ctx context.Context, s repository.Store, action domain.AuditAction, after domain.TransactionRecord, before *domain.TransactionRecord) error {
	payloadAfter, err := json.Marshal(after)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	entry := domain.AuditEntry{
		Action:       action,
		ModelType:    auditModelType,
		ModelID:      after.ID,
		OperatorID:   after.OperatorID,
		PayloadAfter: payloadAfter,
	}
	if before != nil {
		payloadBefore, err := json.Marshal(before)
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}
		entry.PayloadBefore = payloadBefore
	}

	if err := s.CreateAuditEntry(ctx, entry); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

func summaryOf(doc parser.Document) parser.Summary {
	if doc.Summary == nil {
		return parser.Summary{}
	}
	return *doc.Summary
}

func valueOrZero(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}

func dateOrNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}
