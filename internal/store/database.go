package store

import (
	"context"
	"errors"
	"fmt"

	"rocket-admin/internal/metadata"
)

var _ metadata.Database = (*Store)(nil)
var _ metadata.TableSource = (*Store)(nil)

// Table introspects a live table into a dialect-specific schema.
func (s *Store) Table(ctx context.Context, name string) (metadata.Table, error) {
	exists, err := s.Dialect.TableExists(ctx, s.DB, name)
	if err != nil {
		return nil, fmt.Errorf("check table %s: %w", name, err)
	}
	if !exists {
		return nil, metadata.ConfigError("table %q does not exist", name)
	}
	cols, err := s.Dialect.DescribeTable(ctx, s.DB, name)
	if err != nil {
		return nil, err
	}
	return &metadata.TableSchema{Name: name, Dialect: s.Dialect.Name(), Columns: cols}, nil
}

func (s *Store) Select(ctx context.Context, table string, q metadata.Query) ([]metadata.Record, error) {
	stmt, err := BuildSelectSQL(s.Dialect, table, q)
	if err != nil {
		return nil, err
	}
	rows, err := QueryRows(ctx, s.DB, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, MapError(s.Dialect, err)
	}
	return rows, nil
}

func (s *Store) Count(ctx context.Context, table string, filters []metadata.Filter) (int64, error) {
	stmt, err := BuildCountSQL(s.Dialect, table, filters)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.DB.QueryRowContext(ctx, stmt.SQL, stmt.Params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, MapError(s.Dialect, err))
	}
	return n, nil
}

func (s *Store) Insert(ctx context.Context, table string, values metadata.Record) (metadata.Record, error) {
	stmt := BuildInsertSQL(s.Dialect, table, values)
	row, err := QueryRow(ctx, s.DB, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, MapError(s.Dialect, err)
	}
	return row, nil
}

// Update writes values to one row. An empty update returns the row as stored.
func (s *Store) Update(ctx context.Context, table, pkColumn string, id any, values metadata.Record) (metadata.Record, error) {
	if len(values) == 0 {
		return s.findOne(ctx, table, pkColumn, id)
	}
	stmt := BuildUpdateSQL(s.Dialect, table, pkColumn, id, values)
	row, err := QueryRow(ctx, s.DB, stmt.SQL, stmt.Params...)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, MapError(s.Dialect, err)
	}
	return row, nil
}

func (s *Store) Delete(ctx context.Context, table, pkColumn string, id any) error {
	stmt := BuildDeleteSQL(s.Dialect, table, pkColumn, id)
	n, err := Exec(ctx, s.DB, stmt.SQL, stmt.Params...)
	if err != nil {
		return MapError(s.Dialect, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, table, pkColumn string, id any) (metadata.Record, error) {
	rows, err := s.Select(ctx, table, metadata.Query{
		Filters: []metadata.Filter{{Column: pkColumn, Value: id}},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}
