package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hasmart/retail-ingest/internal/cache"
	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/repository"
)

// ReportService serves read-side aggregations, memoizing them in the report
// cache. Cache failures degrade to a direct query, they never fail a request.
type ReportService struct {
	store repository.ReportStore
	cache cache.ReportCache
}

func NewReportService(store repository.ReportStore, reportCache cache.ReportCache) *ReportService {
	if reportCache == nil {
		reportCache = cache.NewNoopReportCache()
	}
	return &ReportService{
		store: store,
		cache: reportCache,
	}
}

func (s *ReportService) Purchases(ctx context.Context, from, to time.Time) ([]domain.PurchaseReportRow, error) {
	params := rangeParams(from, to)

	var rows []domain.PurchaseReportRow
	if hit := s.cacheGet(ctx, "purchases", params, &rows); hit {
		return rows, nil
	}

	rows, err := s.store.PurchaseReport(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("purchase report: %w", err)
	}

	s.cacheSet(ctx, "purchases", params, rows)
	return rows, nil
}

func (s *ReportService) Sales(ctx context.Context, from, to time.Time) ([]domain.SalesReportRow, error) {
	params := rangeParams(from, to)

	var rows []domain.SalesReportRow
	if hit := s.cacheGet(ctx, "sales", params, &rows); hit {
		return rows, nil
	}

	rows, err := s.store.SalesReport(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}

	s.cacheSet(ctx, "sales", params, rows)
	return rows, nil
}

func (s *ReportService) Items(ctx context.Context) ([]domain.ItemReportRow, error) {
	var rows []domain.ItemReportRow
	if hit := s.cacheGet(ctx, "items", nil, &rows); hit {
		return rows, nil
	}

	rows, err := s.store.ItemReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("item report: %w", err)
	}

	s.cacheSet(ctx, "items", nil, rows)
	return rows, nil
}

func (s *ReportService) Summary(ctx context.Context, from, to time.Time) (domain.OverallSummary, error) {
	params := rangeParams(from, to)

	var sum domain.OverallSummary
	if hit := s.cacheGet(ctx, "summary", params, &sum); hit {
		return sum, nil
	}

	sum, err := s.store.OverallSummary(ctx, from, to)
	if err != nil {
		return sum, fmt.Errorf("overall summary: %w", err)
	}

	s.cacheSet(ctx, "summary", params, sum)
	return sum, nil
}

// Invalidate drops every cached report. The ingest watcher calls this after a
// successful import so the next request sees fresh numbers.
func (s *ReportService) Invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate report cache")
	}
}

func (s *ReportService) cacheGet(ctx context.Context, report string, params []string, dest any) bool {
	hit, err := s.cache.Get(ctx, report, params, dest)
	if err != nil {
		log.Warn().Err(err).Str("report", report).Msg("report cache read failed")
		return false
	}
	return hit
}

func (s *ReportService) cacheSet(ctx context.Context, report string, params []string, payload any) {
	if err := s.cache.Set(ctx, report, params, payload); err != nil {
		log.Warn().Err(err).Str("report", report).Msg("report cache write failed")
	}
}

func rangeParams(from, to time.Time) []string {
	return []string{from.Format(time.RFC3339), to.Format(time.RFC3339)}
}
