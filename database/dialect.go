package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"gpustats/models"
)

// Dialect hides the SQL differences between the supported stores
type Dialect interface {
	Name() string
	DriverName() string
	Placeholder(n int) string
	ColumnType(kind models.AttributeKind) string
	// IsDuplicateColumn reports whether err means ADD COLUMN hit an existing column
	IsDuplicateColumn(err error) bool
}

// DialectFor returns the dialect for a configured driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite":
		return sqliteDialect{}, nil
	case "postgres":
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string             { return "sqlite" }
func (sqliteDialect) DriverName() string       { return "sqlite" }
func (sqliteDialect) Placeholder(n int) string { return "?" }

func (sqliteDialect) ColumnType(kind models.AttributeKind) string {
	if kind == models.KindNumber {
		return "REAL"
	}
	return "TEXT"
}

func (sqliteDialect) IsDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}

// duplicateColumn is the SQLSTATE for "column already exists"
const duplicateColumn = "42701"

type postgresDialect struct{}

func (postgresDialect) Name() string             { return "postgres" }
func (postgresDialect) DriverName() string       { return "postgres" }
func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) ColumnType(kind models.AttributeKind) string {
	if kind == models.KindNumber {
		return "DOUBLE PRECISION"
	}
	return "TEXT"
}

func (postgresDialect) IsDuplicateColumn(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == duplicateColumn
}
