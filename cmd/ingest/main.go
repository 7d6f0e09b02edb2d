package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hasmart/retail-ingest/internal/ingest"
	"github.com/hasmart/retail-ingest/internal/parser"
	"github.com/hasmart/retail-ingest/internal/repository/postgres"
	"github.com/hasmart/retail-ingest/internal/sheet"
	"github.com/hasmart/retail-ingest/internal/valuation"
	"github.com/hasmart/retail-ingest/pkg/logger"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		newDBURLFlag(),
		&cli.StringFlag{
			Name:    "branch",
			Usage:   "Branch name transactions are booked under",
			EnvVars: []string{"INGEST_BRANCH_NAME"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Default password for auto-created operators",
			EnvVars: []string{"INGEST_DEFAULT_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (trace, debug, info, warn, error)",
			Value:   "info",
			EnvVars: []string{"LOG_LEVEL"},
		},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, postgres.OpenDB(sqlx.NewDb(db, "pgx")))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func newCoordinator(c *cli.Context) (*ingest.Coordinator, error) {
	logger.SetLevel(c.String("log-level"))

	db, ok := c.Context.Value(dbKey).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}

	return ingest.NewCoordinator(postgres.NewStore(db), valuation.NewEngine(logger.Log), logger.Log, ingest.Options{
		BranchName:      c.String("branch"),
		DefaultPassword: c.String("password"),
	})
}

func runImport(c *cli.Context, family parser.Family) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one workbook path is required")
	}

	coordinator, err := newCoordinator(c)
	if err != nil {
		return err
	}

	for _, path := range c.Args().Slice() {
		if _, err := coordinator.IngestFile(c.Context, path, family); err != nil {
			return err
		}
	}
	return nil
}

// parsedFile is a workbook already assembled into documents, ready for
// sequential ingestion.
type parsedFile struct {
	path   string
	family parser.Family
	docs   []parser.Document
}

// runImportAll parses every workbook concurrently, then ingests them one at a
// time so per-document transactions never interleave across files.
func runImportAll(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one workbook path is required")
	}

	coordinator, err := newCoordinator(c)
	if err != nil {
		return err
	}

	paths := c.Args().Slice()
	parsed := make([]parsedFile, len(paths))

	g, _ := errgroup.WithContext(c.Context)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			grid, err := sheet.ReadGrid(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			family, err := ingest.DetectFamily(grid)
			if err != nil {
				return fmt.Errorf("detect layout of %s: %w", path, err)
			}
			_, docs := parser.Assemble(grid, family)

			parsed[i] = parsedFile{path: path, family: family, docs: docs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, file := range parsed {
		summary, err := coordinator.Run(c.Context, file.family, file.docs)
		if err != nil {
			return err
		}
		logger.Log.Info().
			Str("file", file.path).
			Str("family", file.family.Name()).
			Int("created", summary.Created).
			Int("skipped", summary.Skipped).
			Int("failed", summary.Failed).
			Msg("workbook ingested")
	}
	return nil
}

func runReconcile(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one workbook path is required")
	}

	coordinator, err := newCoordinator(c)
	if err != nil {
		return err
	}

	for _, path := range c.Args().Slice() {
		grid, err := sheet.ReadGrid(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		family, err := ingest.DetectFamily(grid)
		if err != nil {
			return fmt.Errorf("detect layout of %s: %w", path, err)
		}
		_, docs := parser.Assemble(grid, family)

		summary, err := coordinator.Reconcile(c.Context, family, docs)
		if err != nil {
			return err
		}
		logger.Log.Info().
			Str("file", path).
			Int("updated", summary.Updated).
			Int("skipped", summary.Skipped).
			Msg("workbook reconciled")
	}
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("could not load .env file")
	}

	app := &cli.App{
		Name:  "ingest",
		Usage: "Import retail spreadsheet exports into the catalog",
		Commands: []*cli.Command{
			{
				Name:      "pos",
				Usage:     "Import point-of-sales receipt exports",
				ArgsUsage: "FILE...",
				Flags:     commonFlags(),
				Before:    initDB,
				After:     closeDB,
				Action: func(c *cli.Context) error {
					return runImport(c, parser.PointOfSale{})
				},
			},
			{
				Name:      "purchase",
				Usage:     "Import purchase invoice exports",
				ArgsUsage: "FILE...",
				Flags:     commonFlags(),
				Before:    initDB,
				After:     closeDB,
				Action: func(c *cli.Context) error {
					return runImport(c, parser.PurchaseInvoice{})
				},
			},
			{
				Name:      "sales",
				Usage:     "Import sales ledger exports",
				ArgsUsage: "FILE...",
				Flags:     commonFlags(),
				Before:    initDB,
				After:     closeDB,
				Action: func(c *cli.Context) error {
					return runImport(c, parser.SalesLedger{})
				},
			},
			{
				Name:      "all",
				Usage:     "Import a mixed batch of exports, detecting each layout",
				ArgsUsage: "FILE...",
				Flags:     commonFlags(),
				Before:    initDB,
				After:     closeDB,
				Action:    runImportAll,
			},
			{
				Name:      "reconcile",
				Usage:     "Re-apply totals and line details for invoices already recorded",
				ArgsUsage: "FILE...",
				Flags:     commonFlags(),
				Before:    initDB,
				After:     closeDB,
				Action:    runReconcile,
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("ingest failed")
	}
}
