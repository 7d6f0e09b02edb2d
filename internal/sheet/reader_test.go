package sheet

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "export.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadGrid(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"HASMART", "LAPORAN POINT OF SALES"},
		{"", "  ", ""}, // blank row, dropped
		{" Nomor ", ":", "CB0126000005"},
	})

	grid, err := ReadGrid(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(grid) != 2 {
		t.Fatalf("got %d rows, want 2 (blank row dropped)", len(grid))
	}
	if grid[0][0] != "HASMART" {
		t.Errorf("grid[0][0] = %q", grid[0][0])
	}
	if grid[1][0] != "Nomor" {
		t.Errorf("cells should be trimmed, got %q", grid[1][0])
	}
}

func TestReadGridMissingFile(t *testing.T) {
	if _, err := ReadGrid(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
