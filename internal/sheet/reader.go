package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned when the workbook has no sheets to read.
var ErrNoSheet = fmt.Errorf("workbook has no sheets")

// ReadGrid reads the first sheet of a workbook as a grid of normalized text
// cells. Cells are read as displayed text, never as native numerics, and
// blank rows are dropped so downstream classification only sees real rows.
func ReadGrid(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSheet)
	}

	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer iter.Close()

	var grid [][]string
	for iter.Next() {
		cells, err := iter.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", path, err)
		}

		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = Normalize(c)
		}
		if IsBlankRow(row) {
			continue
		}
		grid = append(grid, row)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", path, err)
	}

	return grid, nil
}
