package parser

import (
	"github.com/hasmart/retail-ingest/internal/sheet"
)

// Assemble walks the grid once, in row order, and groups rows into documents.
// Row 0 is sheet-level metadata, unless it already classifies as a header
// (the ledger export carries no meta row). A header row closes the active
// document (if any) and opens a new one; summary and line-item rows attach to
// the active document; anything before the first header, and any row that
// matches no classification, is skipped as filler. The final active document
// is emitted at end of sheet even when it collected no line items.
func Assemble(grid [][]string, family Family) (SheetMeta, []Document) {
	var meta SheetMeta
	start := 0
	if len(grid) > 0 && !family.IsHeaderRow(grid[0]) {
		meta = family.ParseMeta(grid[0])
		start = 1
	}

	docs := []Document{}
	var current *Document

	for i := start; i < len(grid); i++ {
		row := grid[i]
		if sheet.IsBlankRow(row) {
			continue
		}

		if family.IsHeaderRow(row) {
			if current != nil {
				docs = append(docs, *current)
			}
			current = &Document{Header: family.ParseHeader(row)}
			continue
		}

		if current == nil {
			continue
		}

		if family.IsSummaryRow(row) {
			s := family.ParseSummary(row)
			current.Summary = &s
			continue
		}

		if sheet.IsPlainInteger(cell(row, 0)) {
			if item, ok := family.ParseLineItem(row); ok {
				current.LineItems = append(current.LineItems, item)
			}
			continue
		}
	}

	if current != nil {
		docs = append(docs, *current)
	}

	return meta, docs
}
