// Package store provides storage backends for DialogPipe.
//
// This file implements a PostgreSQL-backed key-value store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	slog.Debug("Opening Postgres database connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	slog.Debug("Postgres database opened")

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}
	slog.Debug("Postgres ping successful")

	// Run migrations to ensure the records table exists
	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// Read retrieves records for the given keys.
func (s *PostgresStore) Read(ctx context.Context, keys []string) (map[string]map[string]any, error) {
	result := make(map[string]map[string]any)
	for _, key := range keys {
		var data string
		err := s.db.QueryRowContext(ctx, `SELECT data FROM kv_records WHERE key = $1`, key).Scan(&data)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			slog.Error("PostgresStore Read query failed", "error", err, "key", key)
			return nil, fmt.Errorf("failed to query record for key %s: %w", key, err)
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			slog.Error("PostgresStore Read unmarshal failed", "error", err, "key", key)
			return nil, fmt.Errorf("failed to decode record for key %s: %w", key, err)
		}
		result[key] = record
	}
	slog.Debug("PostgresStore Read succeeded", "requested", len(keys), "found", len(result))
	return result, nil
}

// Write stores or replaces records.
func (s *PostgresStore) Write(ctx context.Context, changes map[string]map[string]any) error {
	now := time.Now()
	for key, record := range changes {
		data, err := json.Marshal(record)
		if err != nil {
			slog.Error("PostgresStore Write marshal failed", "error", err, "key", key)
			return fmt.Errorf("failed to encode record for key %s: %w", key, err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO kv_records (key, data, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
			key, string(data), now)
		if err != nil {
			slog.Error("PostgresStore Write failed", "error", err, "key", key)
			return fmt.Errorf("failed to write record for key %s: %w", key, err)
		}
	}
	slog.Debug("PostgresStore Write succeeded", "count", len(changes))
	return nil
}

// Delete removes records for the given keys.
func (s *PostgresStore) Delete(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_records WHERE key = $1`, key); err != nil {
			slog.Error("PostgresStore Delete failed", "error", err, "key", key)
			return fmt.Errorf("failed to delete record for key %s: %w", key, err)
		}
	}
	slog.Debug("PostgresStore Delete succeeded", "count", len(keys))
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
