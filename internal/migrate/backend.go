package migrate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend tracks the schema revision in a single-row table, the way
// Alembic keeps alembic_version.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend wraps an existing pool.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

func (b *PostgresBackend) EnsureVersionTable(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_revision (
			revision TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure version table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) CurrentRevision(ctx context.Context) (string, error) {
	var revision string
	err := b.pool.QueryRow(ctx, `SELECT revision FROM schema_revision LIMIT 1`).Scan(&revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("read current revision: %w", err)
	}
	return revision, nil
}

func (b *PostgresBackend) SetRevision(ctx context.Context, revision string) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin revision update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM schema_revision`); err != nil {
		return fmt.Errorf("clear revision: %w", err)
	}
	if revision != "" {
		if _, err := tx.Exec(ctx, `INSERT INTO schema_revision (revision) VALUES ($1)`, revision); err != nil {
			return fmt.Errorf("write revision: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (b *PostgresBackend) ExecSQL(ctx context.Context, sql string) error {
	if _, err := b.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

// MemoryBackend records executed SQL and the revision pointer in memory;
// used by tests and dry runs.
type MemoryBackend struct {
	mu       sync.Mutex
	revision string
	Executed []string
}

// NewMemoryBackend creates an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) EnsureVersionTable(context.Context) error { return nil }

func (b *MemoryBackend) CurrentRevision(context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revision, nil
}

func (b *MemoryBackend) SetRevision(_ context.Context, revision string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revision = revision
	return nil
}

func (b *MemoryBackend) ExecSQL(_ context.Context, sql string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Executed = append(b.Executed, sql)
	return nil
}
