// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wanted-applier/internal/common/config"
	apperrors "wanted-applier/internal/common/errors"
	"wanted-applier/internal/models"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

const createApplicationsTable = `
CREATE TABLE IF NOT EXISTS applications (
	run_id      UUID        NOT NULL,
	listing_id  BIGINT      NOT NULL,
	instance_id TEXT        NOT NULL,
	email       TEXT        NOT NULL,
	resume_id   TEXT        NOT NULL,
	applied_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, listing_id)
)`

const insertApplication = `
INSERT INTO applications (run_id, listing_id, instance_id, email, resume_id, applied_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (run_id, listing_id) DO NOTHING`

// Ledger records every submitted application. The board stays the authority
// on what was applied to; the ledger is a local history.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// EnsureSchema creates the applications table when missing.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, createApplicationsTable); err != nil {
		return fmt.Errorf("create applications table: %w", err)
	}
	return nil
}

// Record implements models.ApplicationRecorder.
func (l *Ledger) Record(ctx context.Context, app *models.Application) error {
	_, err := l.db.ExecContext(ctx, insertApplication,
		app.RunID,
		int64(app.ListingID),
		app.InstanceID,
		app.Email,
		app.ResumeID,
		app.AppliedAt,
	)
	if err != nil {
		return apperrors.NewLedgerWriteError(int64(app.ListingID), err)
	}
	return nil
}
