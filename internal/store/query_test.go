package store

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rocket-admin/internal/metadata"
)

func TestBuildSelectSQL(t *testing.T) {
	stmt, err := BuildSelectSQL(&PostgresDialect{}, "cards", metadata.Query{
		Filters: []metadata.Filter{{Column: "rarity", Value: "rare"}, {Column: "power", Operator: "gte", Value: int64(3)}},
		OrderBy: []metadata.Order{{Column: "id", Desc: true}},
		Limit:   20,
		Offset:  40,
	})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "cards" WHERE "rarity" = $1 AND "power" >= $2 ORDER BY "id" DESC LIMIT $3 OFFSET $4`, stmt.SQL)
	assert.Equal(t, []any{"rare", int64(3), 20, 40}, stmt.Params)

	stmt, err = BuildSelectSQL(&SQLiteDialect{}, "sale_orders", metadata.Query{})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "sale_orders"`, stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestBuildWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		filter metadata.Filter
		want   string
	}{
		{"null eq", metadata.Filter{Column: "deleted_at"}, `"deleted_at" IS NULL`},
		{"null neq", metadata.Filter{Column: "deleted_at", Operator: "neq"}, `"deleted_at" IS NOT NULL`},
		{"like", metadata.Filter{Column: "name", Operator: "like", Value: "A%"}, `"name" LIKE ?1`},
		{"in", metadata.Filter{Column: "id", Operator: "in", Value: []any{1, 2}}, `"id" IN (?1, ?2)`},
		{"empty in", metadata.Filter{Column: "id", Operator: "in", Value: []any{}}, `1 = 0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildWhereClause(tt.filter, (&SQLiteDialect{}).NewParamBuilder())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := buildWhereClause(metadata.Filter{Column: "id", Operator: "between"}, (&SQLiteDialect{}).NewParamBuilder())
	assert.Error(t, err)
}

func TestBuildInsertSQL(t *testing.T) {
	stmt := BuildInsertSQL(&PostgresDialect{}, "cards", metadata.Record{
		"power": int64(3),
		"name":  "Ace",
		"attrs": map[string]any{"suit": "spades"},
	})
	assert.Equal(t, `INSERT INTO "cards" ("attrs", "name", "power") VALUES ($1, $2, $3) RETURNING *`, stmt.SQL)
	assert.Equal(t, []any{`{"suit":"spades"}`, "Ace", int64(3)}, stmt.Params)

	stmt = BuildInsertSQL(&SQLiteDialect{}, "cards", metadata.Record{})
	assert.Equal(t, `INSERT INTO "cards" DEFAULT VALUES RETURNING *`, stmt.SQL)
}

func TestBuildUpdateAndDeleteSQL(t *testing.T) {
	stmt := BuildUpdateSQL(&SQLiteDialect{}, "cards", "id", int64(7), metadata.Record{"name": "King", "foil": false})
	assert.Equal(t, `UPDATE "cards" SET "foil" = ?1, "name" = ?2 WHERE "id" = ?3 RETURNING *`, stmt.SQL)
	assert.Equal(t, []any{false, "King", int64(7)}, stmt.Params)

	stmt = BuildDeleteSQL(&PostgresDialect{}, "cards", "id", int64(7))
	assert.Equal(t, `DELETE FROM "cards" WHERE "id" = $1`, stmt.SQL)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"cards"`, QuoteIdent("cards"))
	assert.Equal(t, `"we""ird"`, QuoteIdent(`we"ird`))
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Store{DB: db, Dialect: &PostgresDialect{}}, mock
}

func TestStore_SelectAndCount(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := t.Context()

	mock.ExpectQuery(`SELECT * FROM "cards" ORDER BY "id" ASC LIMIT $1 OFFSET $2`).
		WithArgs(int64(20), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), []byte("Ace")))
	mock.ExpectQuery(`SELECT COUNT(*) FROM "cards"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	rows, err := s.Select(ctx, "cards", metadata.Query{OrderBy: []metadata.Order{{Column: "id"}}, Limit: 20})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ace", rows[0]["name"])

	n, err := s.Count(ctx, "cards", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO "cards" ("name") VALUES ($1) RETURNING *`).
		WithArgs("Ace").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := s.Insert(t.Context(), "cards", metadata.Record{"name": "Ace"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUniqueViolation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_MissingRows(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := t.Context()

	mock.ExpectQuery(`UPDATE "cards" SET "name" = $1 WHERE "id" = $2 RETURNING *`).
		WithArgs("King", int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectExec(`DELETE FROM "cards" WHERE "id" = $1`).
		WithArgs(int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.Update(ctx, "cards", "id", int64(999), metadata.Record{"name": "King"})
	assert.ErrorIs(t, err, metadata.ErrRecordNotFound)

	err = s.Delete(ctx, "cards", "id", int64(999))
	assert.ErrorIs(t, err, metadata.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseCheckEnums(t *testing.T) {
	ddl := `CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		status TEXT NOT NULL CHECK (status IN ('pending', 'paid', 'it''s late')),
		"Kind" TEXT CHECK("Kind" IN ('a','b')),
		qty INTEGER CHECK (qty IN (1, 2))
	)`
	enums := parseCheckEnums(ddl)
	assert.Equal(t, []string{"pending", "paid", "it's late"}, enums["status"])
	assert.Equal(t, []string{"a", "b"}, enums["kind"])
	_, ok := enums["qty"]
	assert.False(t, ok, "non-string lists are not enums")
}
