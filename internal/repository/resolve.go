package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hasmart/retail-ingest/internal/domain"
)

// Resolution tags whether a resolve-or-create call found an existing entity
// or had to create a placeholder, so callers can log and tests can assert
// which path was taken.
type Resolution int

const (
	ResolutionFound Resolution = iota
	ResolutionCreated
)

func (r Resolution) String() string {
	if r == ResolutionCreated {
		return "created"
	}
	return "found"
}

// ResolveOperator finds an operator by case-insensitive name, creating an
// active non-superuser with the given password hash when none exists.
func ResolveOperator(ctx context.Context, s Store, name, passwordHash string) (domain.Operator, Resolution, error) {
	op, err := s.FindOperatorByName(ctx, name)
	if err == nil {
		return *op, ResolutionFound, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Operator{}, ResolutionFound, fmt.Errorf("find operator %q: %w", name, err)
	}

	created, err := s.CreateOperator(ctx, domain.Operator{
		Name:         strings.ToUpper(strings.TrimSpace(name)),
		PasswordHash: passwordHash,
		IsActive:     true,
	})
	if err != nil {
		return domain.Operator{}, ResolutionCreated, fmt.Errorf("create operator %q: %w", name, err)
	}
	return created, ResolutionCreated, nil
}

// ResolveSupplier finds a supplier by name, creating one with the uppercased
// name as both name and code when missing. The address is only applied on
// creation; an existing supplier's address is left alone.
func ResolveSupplier(ctx context.Context, s Store, name, address string) (domain.Supplier, Resolution, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))

	sup, err := s.FindSupplierByName(ctx, upper)
	if err == nil {
		return *sup, ResolutionFound, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Supplier{}, ResolutionFound, fmt.Errorf("find supplier %q: %w", name, err)
	}

	created, err := s.CreateSupplier(ctx, domain.Supplier{
		Name:    upper,
		Code:    upper,
		Address: address,
	})
	if err != nil {
		return domain.Supplier{}, ResolutionCreated, fmt.Errorf("create supplier %q: %w", name, err)
	}
	return created, ResolutionCreated, nil
}

// ResolveMember finds a member by name, creating one with the uppercased name
// as both name and code when missing.
func ResolveMember(ctx context.Context, s Store, name string) (domain.Member, Resolution, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))

	m, err := s.FindMemberByName(ctx, upper)
	if err == nil {
		return *m, ResolutionFound, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Member{}, ResolutionFound, fmt.Errorf("find member %q: %w", name, err)
	}

	created, err := s.CreateMember(ctx, domain.Member{Name: upper, Code: upper})
	if err != nil {
		return domain.Member{}, ResolutionCreated, fmt.Errorf("create member %q: %w", name, err)
	}
	return created, ResolutionCreated, nil
}

// ResolveCatalogItem finds an item by uppercased code, creating an active
// zero-cost item under the given category/supplier when missing.
func ResolveCatalogItem(ctx context.Context, s Store, code, name string, categoryID, supplierID int64) (domain.CatalogItem, Resolution, error) {
	upper := strings.ToUpper(strings.TrimSpace(code))

	item, err := s.FindCatalogItemByCode(ctx, upper)
	if err == nil {
		return *item, ResolutionFound, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.CatalogItem{}, ResolutionFound, fmt.Errorf("find item %q: %w", code, err)
	}

	created, err := s.CreateCatalogItem(ctx, domain.CatalogItem{
		Code:            upper,
		Name:            name,
		IsActive:        true,
		AverageBuyPrice: decimal.Zero,
		CategoryID:      categoryID,
		SupplierID:      supplierID,
	})
	if err != nil {
		return domain.CatalogItem{}, ResolutionCreated, fmt.Errorf("create item %q: %w", code, err)
	}
	return created, ResolutionCreated, nil
}

// ResolveUnitVariant finds a variant by case-insensitive unit label within
// the item, creating one with conversion factor 1 and zeroed prices when
// missing. The source documents carry no conversion data, so a first-seen
// unit is assumed to be the base unit.
func ResolveUnitVariant(ctx context.Context, s Store, itemID int64, unitLabel string) (domain.UnitVariant, Resolution, error) {
	upper := strings.ToUpper(strings.TrimSpace(unitLabel))

	v, err := s.FindUnitVariant(ctx, itemID, upper)
	if err == nil {
		return *v, ResolutionFound, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.UnitVariant{}, ResolutionFound, fmt.Errorf("find variant %q of item %d: %w", unitLabel, itemID, err)
	}

	created, err := s.CreateUnitVariant(ctx, domain.UnitVariant{
		CatalogItemID:    itemID,
		UnitLabel:        upper,
		ConversionFactor: decimal.NewFromInt(1),
		IsBaseUnit:       true,
		SellPrice:        decimal.Zero,
		BuyPrice:         decimal.Zero,
		ProfitAmount:     decimal.Zero,
		ProfitPercentage: decimal.Zero,
	})
	if err != nil {
		return domain.UnitVariant{}, ResolutionCreated, fmt.Errorf("create variant %q of item %d: %w", unitLabel, itemID, err)
	}
	return created, ResolutionCreated, nil
}
