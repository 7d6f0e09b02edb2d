package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/hasmart/retail-ingest/internal/config"
	"github.com/hasmart/retail-ingest/internal/domain"
	"github.com/hasmart/retail-ingest/internal/repository/memory"
	"github.com/hasmart/retail-ingest/internal/storage"
)

// stubStorage serves a fixed object listing and hands out one local workbook
// for every download.
type stubStorage struct {
	objects   []storage.ObjectInfo
	source    string
	downloads []string
	uploads   []string
}

func (s *stubStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return s.objects, nil
}

func (s *stubStorage) DownloadObject(ctx context.Context, key, destPath string) error {
	s.downloads = append(s.downloads, key)
	data, err := os.ReadFile(s.source)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (s *stubStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	s.uploads = append(s.uploads, key)
	return nil
}

var _ storage.ObjectStorage = (*stubStorage)(nil)

func writePurchaseWorkbook(t *testing.T) string {
	t.Helper()

	rows := [][]any{
		{"HASMART", "PEMBELIAN", "JL. RAYA PASAR 12", "021-555"},
		{
			"Nomor", ":", "BL0126000012", "Tanggal", ":", "18/01/2026",
			"Pemasok", ":", "PT SUMBER MAKMUR", "Admin", ":", "ADMIN",
			"No", "Kode", "Nama", "Kuantitas", "Sat", "Harga Beli", "Diskon", "Jumlah",
		},
		{"1", "200001", "MINYAK GORENG 1L", "10", "PCS", "100", "0", "1,000"},
		{"Keterangan", ":", "", "Sub Total", ":", "1,000", "Diskon", ":", "0", "Total", ":", "1,000"},
	}

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

	path := filepath.Join(t.TempDir(), "invoices.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWatcherPollIngestsAndArchives(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	stub := &stubStorage{
		source: writePurchaseWorkbook(t),
		objects: []storage.ObjectInfo{
			{Key: "exports/invoices.xlsx"},
			{Key: "exports/readme.txt"},
			{Key: "processed/old.xlsx"},
		},
	}

	w := NewWatcher(stub, newTestCoordinator(t, store), config.DropboxConfig{
		Prefix:      "exports/",
		DownloadDir: t.TempDir(),
	}, zerolog.Nop())

	ingested := 0
	w.OnIngested = func(ctx context.Context) { ingested++ }

	if err := w.poll(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := store.FindTransactionByInvoice(ctx, domain.DirectionPurchase, "BL0126000012"); err != nil {
		t.Fatalf("workbook was not ingested: %v", err)
	}
	if ingested != 1 {
		t.Errorf("OnIngested ran %d times, want 1", ingested)
	}

	// Only the workbook key is downloaded; the text file and anything already
	// under the processed prefix are marked seen without a download.
	if len(stub.downloads) != 1 || stub.downloads[0] != "exports/invoices.xlsx" {
		t.Errorf("downloads = %v", stub.downloads)
	}
	if len(stub.uploads) != 1 || stub.uploads[0] != "processed/invoices.xlsx" {
		t.Errorf("uploads = %v, want the workbook archived under processed/", stub.uploads)
	}

	// A second poll over the same listing is a no-op: every key is seen.
	if err := w.poll(ctx); err != nil {
		t.Fatal(err)
	}
	if len(stub.downloads) != 1 || len(stub.uploads) != 1 || ingested != 1 {
		t.Errorf("second poll should not reprocess: downloads=%v uploads=%v ingested=%d",
			stub.downloads, stub.uploads, ingested)
	}
}
