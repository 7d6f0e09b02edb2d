package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/semaphore"

	"github.com/hasmart/retail-ingest/internal/config"
	"github.com/hasmart/retail-ingest/internal/repository"
)

// DB wraps the connection pool with a semaphore bounding concurrent
// transactional work.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// NewDB opens a connection pool against the configured database.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(10),
	}, nil
}

// OpenDB wraps an already-open pool; the ingest CLI opens its own connection.
func OpenDB(db *sqlx.DB) *DB {
	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(10),
	}
}

// Store implements repository.Store and repository.ReportStore over postgres.
// A Store is either bound to the pool or, inside Atomically, to one
// transaction.
type Store struct {
	db *DB
	q  sqlx.ExtContext
}

func NewStore(db *DB) *Store {
	return &Store{db: db, q: db.DB}
}

var (
	_ repository.Store       = (*Store)(nil)
	_ repository.ReportStore = (*Store)(nil)
)

// Atomically runs fn against a transaction-bound store. Nested calls reuse
// the surrounding transaction.
func (s *Store) Atomically(ctx context.Context, fn func(repository.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	if err := s.db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer s.db.sem.Release(1)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(&Store{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}
