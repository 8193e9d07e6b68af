// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/loomworks/seam/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateAnalysis(ctx context.Context, a *store.Analysis) error {
	return queryCreateAnalysis(ctx, s.db, a)
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*store.Analysis, error) {
	return queryGetAnalysis(ctx, s.db, id)
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter store.AnalysisFilter) ([]*store.Analysis, int, error) {
	return queryListAnalyses(ctx, s.db, filter)
}

func (s *PostgresStore) DeleteAnalysis(ctx context.Context, id string) error {
	return queryDeleteAnalysis(ctx, s.db, id)
}

func (s *PostgresStore) CreateFix(ctx context.Context, f *store.Fix) error {
	return queryCreateFix(ctx, s.db, f)
}

func (s *PostgresStore) ListFixes(ctx context.Context, analysisID string) ([]*store.Fix, error) {
	return queryListFixes(ctx, s.db, analysisID)
}

func (s *PostgresStore) GetStats(ctx context.Context) (*store.Stats, error) {
	return queryGetStats(ctx, s.db)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateAnalysis(ctx context.Context, a *store.Analysis) error {
	return queryCreateAnalysis(ctx, s.tx, a)
}

func (s *txStore) GetAnalysis(ctx context.Context, id string) (*store.Analysis, error) {
	return queryGetAnalysis(ctx, s.tx, id)
}

func (s *txStore) ListAnalyses(ctx context.Context, filter store.AnalysisFilter) ([]*store.Analysis, int, error) {
	return queryListAnalyses(ctx, s.tx, filter)
}

func (s *txStore) DeleteAnalysis(ctx context.Context, id string) error {
	return queryDeleteAnalysis(ctx, s.tx, id)
}

func (s *txStore) CreateFix(ctx context.Context, f *store.Fix) error {
	return queryCreateFix(ctx, s.tx, f)
}

func (s *txStore) ListFixes(ctx context.Context, analysisID string) ([]*store.Fix, error) {
	return queryListFixes(ctx, s.tx, analysisID)
}

func (s *txStore) GetStats(ctx context.Context) (*store.Stats, error) {
	return queryGetStats(ctx, s.tx)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
