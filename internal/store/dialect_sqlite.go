package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"rocket-admin/internal/metadata"
)

// SQLiteDialect implements Dialect for SQLite via modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) NewParamBuilder() ParamBuilder {
	return &sqliteParamBuilder{}
}

// Configure enables WAL and foreign keys. A single open connection keeps
// writes serialized and an in-memory database alive.
func (d *SQLiteDialect) Configure(ctx context.Context, db *sql.DB) error {
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	return nil
}

func (d *SQLiteDialect) UsersTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS admin_users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
}

func (d *SQLiteDialect) TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?1",
		tableName,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *SQLiteDialect) DescribeTable(ctx context.Context, db *sql.DB, tableName string) ([]metadata.NativeColumn, error) {
	var ddl string
	err := db.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE type='table' AND name=?1", tableName,
	).Scan(&ddl)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", tableName, err)
	}
	enums := parseCheckEnums(ddl)

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", tableName, err)
	}
	defer rows.Close()

	var cols []metadata.NativeColumn
	pkCount := 0
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		if pk > 0 {
			pkCount++
		}
		cols = append(cols, metadata.NativeColumn{
			Name:       name,
			SQLName:    name,
			NativeType: colType,
			NotNull:    notNull == 1,
			PrimaryKey: pk > 0,
			Default:    dfltValue.String,
			EnumValues: enums[strings.ToLower(name)],
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// A lone INTEGER PRIMARY KEY aliases the rowid and is assigned on insert.
	if pkCount == 1 {
		for i := range cols {
			if cols[i].PrimaryKey && strings.EqualFold(strings.TrimSpace(cols[i].NativeType), "INTEGER") {
				cols[i].AutoIncrement = true
			}
		}
	}
	return cols, nil
}

var checkInPattern = regexp.MustCompile(`(?i)CHECK\s*\(\s*["` + "`" + `\[]?(\w+)["` + "`" + `\]]?\s+IN\s*\(([^)]*)\)\s*\)`)

// parseCheckEnums finds `CHECK (col IN ('a', 'b'))` constraints in a CREATE
// TABLE statement, keyed by lowercased column name.
func parseCheckEnums(ddl string) map[string][]string {
	out := make(map[string][]string)
	for _, m := range checkInPattern.FindAllStringSubmatch(ddl, -1) {
		var values []string
		for _, part := range strings.Split(m[2], ",") {
			v := strings.TrimSpace(part)
			if len(v) < 2 || v[0] != '\'' || v[len(v)-1] != '\'' {
				values = nil
				break
			}
			values = append(values, strings.ReplaceAll(v[1:len(v)-1], "''", "'"))
		}
		if len(values) > 0 {
			out[strings.ToLower(m[1])] = values
		}
	}
	return out
}

func (d *SQLiteDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "constraint failed: UNIQUE") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}
