package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"rocket-admin/internal/metadata"
)

// PostgresDialect implements Dialect for PostgreSQL via pgx/stdlib.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "pgx" }

func (d *PostgresDialect) NewParamBuilder() ParamBuilder {
	return &pgParamBuilder{}
}

func (d *PostgresDialect) Configure(context.Context, *sql.DB) error { return nil }

func (d *PostgresDialect) UsersTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS admin_users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
}

func (d *PostgresDialect) TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = $1 AND table_schema = current_schema())`,
		tableName,
	).Scan(&exists)
	return exists, err
}

const pgColumnsSQL = `
SELECT c.column_name, c.data_type, c.udt_name, c.is_nullable, COALESCE(c.column_default, ''), c.is_identity
FROM information_schema.columns c
WHERE c.table_name = $1 AND c.table_schema = current_schema()
ORDER BY c.ordinal_position`

const pgPrimaryKeySQL = `
SELECT kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name
 AND tc.table_schema = kcu.table_schema
 AND tc.table_name = kcu.table_name
WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_name = $1 AND tc.table_schema = current_schema()`

const pgEnumSQL = `
SELECT e.enumlabel
FROM pg_type t
JOIN pg_enum e ON e.enumtypid = t.oid
WHERE t.typname = $1
ORDER BY e.enumsortorder`

func (d *PostgresDialect) DescribeTable(ctx context.Context, db *sql.DB, tableName string) ([]metadata.NativeColumn, error) {
	pks, err := d.primaryKeys(ctx, db, tableName)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, pgColumnsSQL, tableName)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", tableName, err)
	}
	defer rows.Close()

	var cols []metadata.NativeColumn
	enumTypes := make(map[int]string)
	for rows.Next() {
		var name, dataType, udtName, nullable, dflt, identity string
		if err := rows.Scan(&name, &dataType, &udtName, &nullable, &dflt, &identity); err != nil {
			return nil, err
		}
		col := metadata.NativeColumn{
			Name:          name,
			SQLName:       name,
			NativeType:    dataType,
			NotNull:       nullable == "NO",
			PrimaryKey:    pks[name],
			Default:       dflt,
			AutoIncrement: identity == "YES" || strings.HasPrefix(dflt, "nextval("),
		}
		if dataType == "USER-DEFINED" {
			enumTypes[len(cols)] = udtName
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, typ := range enumTypes {
		values, err := d.enumValues(ctx, db, typ)
		if err != nil {
			return nil, err
		}
		cols[i].EnumValues = values
	}
	return cols, nil
}

func (d *PostgresDialect) primaryKeys(ctx context.Context, db *sql.DB, tableName string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, pgPrimaryKeySQL, tableName)
	if err != nil {
		return nil, fmt.Errorf("primary key of %s: %w", tableName, err)
	}
	defer rows.Close()

	pks := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		pks[name] = true
	}
	return pks, rows.Err()
}

func (d *PostgresDialect) enumValues(ctx context.Context, db *sql.DB, typeName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, pgEnumSQL, typeName)
	if err != nil {
		return nil, fmt.Errorf("enum %s: %w", typeName, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (d *PostgresDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	errStr := err.Error()
	if strings.Contains(errStr, "23505") || strings.Contains(errStr, "duplicate key") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}
