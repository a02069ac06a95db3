// Package store provides storage backends for DialogPipe.
//
// This file implements an SQLite-backed key-value store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	slog.Debug("SQLite database directory verified/created", "dir", dir)

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	slog.Debug("SQLite database opened")

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}
	slog.Debug("SQLite ping successful")

	// Run migrations to ensure tables exist
	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// Read retrieves records for the given keys.
func (s *SQLiteStore) Read(ctx context.Context, keys []string) (map[string]map[string]any, error) {
	result := make(map[string]map[string]any)
	for _, key := range keys {
		var data string
		err := s.db.QueryRowContext(ctx, `SELECT data FROM kv_records WHERE key = ?`, key).Scan(&data)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			slog.Error("SQLiteStore Read query failed", "error", err, "key", key)
			return nil, fmt.Errorf("failed to query record for key %s: %w", key, err)
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			slog.Error("SQLiteStore Read unmarshal failed", "error", err, "key", key)
			return nil, fmt.Errorf("failed to decode record for key %s: %w", key, err)
		}
		result[key] = record
	}
	slog.Debug("SQLiteStore Read succeeded", "requested", len(keys), "found", len(result))
	return result, nil
}

// Write stores or replaces records.
func (s *SQLiteStore) Write(ctx context.Context, changes map[string]map[string]any) error {
	now := time.Now()
	for key, record := range changes {
		data, err := json.Marshal(record)
		if err != nil {
			slog.Error("SQLiteStore Write marshal failed", "error", err, "key", key)
			return fmt.Errorf("failed to encode record for key %s: %w", key, err)
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO kv_records (key, data, updated_at) VALUES (?, ?, ?)`,
			key, string(data), now)
		if err != nil {
			slog.Error("SQLiteStore Write failed", "error", err, "key", key)
			return fmt.Errorf("failed to write record for key %s: %w", key, err)
		}
	}
	slog.Debug("SQLiteStore Write succeeded", "count", len(changes))
	return nil
}

// Delete removes records for the given keys.
func (s *SQLiteStore) Delete(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_records WHERE key = ?`, key); err != nil {
			slog.Error("SQLiteStore Delete failed", "error", err, "key", key)
			return fmt.Errorf("failed to delete record for key %s: %w", key, err)
		}
	}
	slog.Debug("SQLiteStore Delete succeeded", "count", len(keys))
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	} else {
		slog.Debug("SQLite database connection closed successfully")
	}
	return err
}
