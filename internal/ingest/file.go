package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/hasmart/retail-ingest/internal/parser"
	"github.com/hasmart/retail-ingest/internal/sheet"
)

// ErrUnknownLayout means no known export family claimed any row of the grid.
var ErrUnknownLayout = errors.New("unrecognized spreadsheet layout")

// Probe order matters: the POS header also satisfies the purchase family's
// looser predicate, so the more specific families are tried first and keep
// ties.
var families = []parser.Family{
	parser.SalesLedger{},
	parser.PointOfSale{},
	parser.PurchaseInvoice{},
}

// DetectFamily probes the grid with every known export family and returns the
// one whose header predicate claims the most rows.
func DetectFamily(grid [][]string) (parser.Family, error) {
	var (
		best      parser.Family
		bestCount int
	)
	for _, family := range families {
		count := 0
		for _, row := range grid {
			if family.IsHeaderRow(row) {
				count++
			}
		}
		if count > bestCount {
			best = family
			bestCount = count
		}
	}
	if best == nil {
		return nil, ErrUnknownLayout
	}
	return best, nil
}

// IngestFile reads a workbook from disk and runs the full pipeline on it.
// When family is nil the export family is detected from the grid.
func (c *Coordinator) IngestFile(ctx context.Context, path string, family parser.Family) (Summary, error) {
	grid, err := sheet.ReadGrid(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read %s: %w", path, err)
	}

	if family == nil {
		family, err = DetectFamily(grid)
		if err != nil {
			return Summary{}, fmt.Errorf("detect layout of %s: %w", path, err)
		}
	}

	meta, docs := parser.Assemble(grid, family)
	ev := c.log.Info().
		Str("file", path).
		Str("family", family.Name()).
		Int("documents", len(docs))
	if meta.Period != nil {
		ev = ev.Str("period", meta.Period.Raw)
	}
	ev.Msg("workbook parsed")

	return c.Run(ctx, family, docs)
}
