package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"rocket-admin/internal/metadata"
)

// Dialect abstracts database-specific SQL generation, introspection, and
// error mapping.
type Dialect interface {
	// Name returns "postgres" or "sqlite"; it doubles as the metadata adapter key.
	Name() string

	// DriverName returns the database/sql driver name ("pgx" or "sqlite").
	DriverName() string

	// NewParamBuilder creates a dialect-aware parameter builder.
	NewParamBuilder() ParamBuilder

	// Configure runs per-connection setup right after the pool is opened.
	Configure(ctx context.Context, db *sql.DB) error

	// UsersTableSQL returns the DDL for the admin_users table.
	UsersTableSQL() string

	// TableExists checks whether a table exists.
	TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error)

	// DescribeTable returns the table's columns in ordinal order.
	DescribeTable(ctx context.Context, db *sql.DB, tableName string) ([]metadata.NativeColumn, error)

	// MapError inspects a driver error and returns a well-known sentinel error if applicable.
	MapError(err error) error
}

// ParamBuilder accumulates query parameters and generates dialect-specific placeholders.
type ParamBuilder interface {
	// Add appends a value and returns the placeholder string.
	Add(v any) string

	// Params returns all accumulated parameter values.
	Params() []any

	// Count returns the number of parameters added so far.
	Count() int
}

// NewDialect creates a Dialect for the given driver name ("postgres" or "sqlite").
func NewDialect(driver string) (Dialect, error) {
	switch driver {
	case "sqlite":
		return &SQLiteDialect{}, nil
	case "postgres", "":
		return &PostgresDialect{}, nil
	default:
		return nil, metadata.ConfigError("unsupported database driver %q", driver)
	}
}

// QuoteIdent quotes a table or column name. Both dialects use ANSI double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// --- PostgreSQL ParamBuilder ---

type pgParamBuilder struct {
	params []any
	n      int
}

func (p *pgParamBuilder) Add(v any) string {
	p.n++
	p.params = append(p.params, v)
	return fmt.Sprintf("$%d", p.n)
}

func (p *pgParamBuilder) Params() []any { return p.params }
func (p *pgParamBuilder) Count() int    { return p.n }

// --- SQLite ParamBuilder ---

type sqliteParamBuilder struct {
	params []any
	n      int
}

func (p *sqliteParamBuilder) Add(v any) string {
	p.n++
	p.params = append(p.params, v)
	return fmt.Sprintf("?%d", p.n)
}

func (p *sqliteParamBuilder) Params() []any { return p.params }
func (p *sqliteParamBuilder) Count() int    { return p.n }
