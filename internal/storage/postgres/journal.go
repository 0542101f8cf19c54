package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courierlabs/podproof/internal/domain/model"
)

// db is the subset of pgxpool.Pool the journal uses. Kept narrow so tests
// can substitute a mock pool.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// Journal persists submission outcomes to PostgreSQL. It is an operator
// tool: request handling never depends on it, and the commerce platform
// stays the system of record.
type Journal struct {
	pool   db
	logger *slog.Logger
}

// New creates the journal with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Journal, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	journal := &Journal{pool: pool, logger: logger}
	if err := journal.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return journal, nil
}

// Close releases database resources.
func (j *Journal) Close() {
	if j.pool != nil {
		j.pool.Close()
	}
}

func (j *Journal) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS submission_audit (
            id SERIAL PRIMARY KEY,
            order_number TEXT NOT NULL,
            customer_name TEXT NOT NULL,
            stage TEXT NOT NULL,
            photo_url TEXT NOT NULL DEFAULT '',
            signature_url TEXT NOT NULL DEFAULT '',
            detail TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_submission_audit_order ON submission_audit(order_number, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := j.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Append inserts one outcome row.
func (j *Journal) Append(ctx context.Context, entry model.AuditEntry) error {
	const query = `INSERT INTO submission_audit
        (order_number, customer_name, stage, photo_url, signature_url, detail, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := j.pool.Exec(ctx, query,
		entry.OrderNumber,
		entry.CustomerName,
		string(entry.Stage),
		entry.PhotoURL,
		entry.SignatureURL,
		entry.Detail,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// NoopJournal discards entries. Used when no database is configured.
type NoopJournal struct{}

// Append drops the entry.
func (NoopJournal) Append(context.Context, model.AuditEntry) error { return nil }
