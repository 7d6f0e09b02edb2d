package ingest

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hasmart/retail-ingest/internal/config"
	"github.com/hasmart/retail-ingest/internal/storage"
)

// archivePrefix is where successfully ingested exports are copied to inside
// the bucket, out of the polled prefix.
const archivePrefix = "processed/"

// Watcher polls an S3-compatible drop-box for new spreadsheet exports,
// downloads them and feeds them through the coordinator. Objects are tracked
// by key, so a restart re-examines the bucket but ingestion stays idempotent
// at the invoice level anyway.
type Watcher struct {
	storage     storage.ObjectStorage
	coordinator *Coordinator
	cfg         config.DropboxConfig
	log         zerolog.Logger

	// OnIngested runs after each successfully imported workbook.
	OnIngested func(ctx context.Context)

	seen map[string]struct{}
}

func NewWatcher(store storage.ObjectStorage, coordinator *Coordinator, cfg config.DropboxConfig, log zerolog.Logger) *Watcher {
	return &Watcher{
		storage:     store,
		coordinator: coordinator,
		cfg:         cfg,
		log:         log,
		seen:        make(map[string]struct{}),
	}
}

// Run blocks until ctx is cancelled, polling at the configured interval.
func (w *Watcher) Run(ctx context.Context) error {
	interval := time.Duration(w.cfg.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	w.log.Info().
		Str("bucket", w.cfg.Bucket).
		Str("prefix", w.cfg.Prefix).
		Dur("interval", interval).
		Msg("drop-box watcher started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.poll(ctx); err != nil {
			w.log.Error().Err(err).Msg("drop-box poll failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) poll(ctx context.Context) error {
	objects, err := w.storage.ListObjects(ctx, w.cfg.Prefix)
	if err != nil {
		return err
	}

	for _, object := range objects {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, ok := w.seen[object.Key]; ok {
			continue
		}
		if strings.HasPrefix(object.Key, archivePrefix) {
			w.seen[object.Key] = struct{}{}
			continue
		}
		if !strings.EqualFold(path.Ext(object.Key), ".xlsx") {
			w.log.Debug().Str("key", object.Key).Msg("ignoring non-workbook drop-box object")
			w.seen[object.Key] = struct{}{}
			continue
		}

		if err := w.process(ctx, object); err != nil {
			w.log.Error().Err(err).Str("key", object.Key).Msg("failed to ingest drop-box object")
			continue
		}
		w.seen[object.Key] = struct{}{}
	}

	return nil
}

func (w *Watcher) process(ctx context.Context, object storage.ObjectInfo) error {
	localPath := filepath.Join(w.cfg.DownloadDir, path.Base(object.Key))
	if err := w.storage.DownloadObject(ctx, object.Key, localPath); err != nil {
		return err
	}

	summary, err := w.coordinator.IngestFile(ctx, localPath, nil)
	if err != nil {
		return err
	}

	w.log.Info().
		Str("key", object.Key).
		Int("created", summary.Created).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("drop-box object ingested")

	w.archive(ctx, object.Key, localPath)

	if w.OnIngested != nil {
		w.OnIngested(ctx)
	}
	return nil
}

// archive copies an ingested workbook under the processed prefix so the
// bucket itself records what has been handled. Failure is logged, not fatal:
// the object is already marked seen and ingestion is idempotent anyway.
func (w *Watcher) archive(ctx context.Context, key, localPath string) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		w.log.Warn().Err(err).Str("key", key).Msg("could not read workbook for archiving")
		return
	}
	archiveKey := archivePrefix + path.Base(key)
	if err := w.storage.UploadObject(ctx, archiveKey, data); err != nil {
		w.log.Warn().Err(err).Str("key", archiveKey).Msg("could not archive workbook")
	}
}
