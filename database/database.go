package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"gpustats/models"
)

// DB is the catalog store connection together with its SQL dialect
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the catalog store. driver is "sqlite" (dsn is a file path)
// or "postgres" (dsn is a connection URL).
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" && !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One writer for the whole run
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// CreateTables creates the product table with its key column if it doesn't exist.
// Attribute columns are added later, one per source, and never removed.
func (db *DB) CreateTables(ctx context.Context, table string) error {
	if !models.ValidIdentifier(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY)`, Quote(table))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Quote quotes an identifier that already passed models.ValidIdentifier
func Quote(identifier string) string {
	return `"` + identifier + `"`
}
