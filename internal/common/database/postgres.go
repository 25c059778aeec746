// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"loan-intake/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL connection the offer recorder writes through.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a connection pool. sql.Open does not dial.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

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

// Schema creates the tables the offer recorder needs.
const Schema = `
CREATE TABLE IF NOT EXISTS loan_offers (
    offer_id       UUID PRIMARY KEY,
    application_id TEXT NOT NULL UNIQUE,
    city           TEXT NOT NULL,
    employment     TEXT NOT NULL,
    property_type  TEXT NOT NULL,
    lenders        TEXT[] NOT NULL,
    amount         BIGINT NOT NULL,
    emi            BIGINT NOT NULL,
    roi            NUMERIC(5,2) NOT NULL,
    tenure_years   INTEGER NOT NULL,
    application    JSONB NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
    id          BIGSERIAL PRIMARY KEY,
    entity_type TEXT NOT NULL,
    entity_id   TEXT NOT NULL,
    action      TEXT NOT NULL,
    details     JSONB,
    created_at  TIMESTAMPTZ NOT NULL
);
`

// Migrate applies Schema.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
