package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/infrastructure/resilience"
)

// schemaLockKey serializes bootstrap DDL across api, worker and CLI startups.
const schemaLockKey int64 = 2026031401

type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func OpenDB(ctx context.Context, dsn string, opts PoolOptions) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = opts.MaxOpenConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = 30 * time.Minute
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS departments (
	department_id BIGINT PRIMARY KEY,
	department_name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS categories (
	category_id BIGINT PRIMARY KEY,
	category_name TEXT NOT NULL,
	category_code TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	department_id BIGINT NOT NULL REFERENCES departments(department_id),
	keywords JSONB NOT NULL DEFAULT '[]'::jsonb,
	priority_weight INTEGER NOT NULL DEFAULT 1,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS petitions (
	petition_id BIGSERIAL PRIMARY KEY,
	citizen_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	short_description TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL,
	state TEXT NOT NULL,
	district TEXT NOT NULL,
	taluk TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	is_public BOOLEAN NOT NULL DEFAULT TRUE,
	department_id BIGINT NOT NULL,
	department TEXT NOT NULL,
	category_id BIGINT,
	category TEXT,
	urgency_level TEXT NOT NULL,
	classification_confidence INTEGER NOT NULL DEFAULT 0,
	manually_classified BOOLEAN NOT NULL DEFAULT FALSE,
	submitted_at TIMESTAMPTZ NOT NULL,
	due_date TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS petition_reclassifications (
	id BIGSERIAL PRIMARY KEY,
	petition_id BIGINT NOT NULL REFERENCES petitions(petition_id) ON DELETE CASCADE,
	previous_department_id BIGINT NOT NULL,
	previous_category_id BIGINT,
	new_department_id BIGINT NOT NULL,
	new_category_id BIGINT,
	officer_id TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_categories_department_id ON categories(department_id);
CREATE INDEX IF NOT EXISTS idx_categories_code ON categories(category_code);
CREATE INDEX IF NOT EXISTS idx_petitions_department_id ON petitions(department_id);
CREATE INDEX IF NOT EXISTS idx_petitions_category_id ON petitions(category_id);
CREATE INDEX IF NOT EXISTS idx_petitions_urgency ON petitions(urgency_level);
CREATE INDEX IF NOT EXISTS idx_reclassifications_petition ON petition_reclassifications(petition_id, created_at);
`

// EnsureSchema creates the catalog and petition tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// classifyPostgresError retries connection-level failures only.
func classifyPostgresError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) || isConnectionError(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

func isConnectionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception, 57P01..03: server shutting down.
		return len(pgErr.Code) == 5 && (pgErr.Code[:2] == "08" || pgErr.Code[:3] == "57P")
	}
	if pgconn.SafeToRetry(err) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// wrapDBError marks connection failures as temporary so callers can answer 503.
func wrapDBError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if class := classifyPostgresError(err); class.Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
