package store

import (
	"fmt"
	"sort"
	"strings"

	"rocket-admin/internal/metadata"
)

// Statement is a parameterized SQL statement.
type Statement struct {
	SQL    string
	Params []any
}

// BuildSelectSQL builds a parameterized SELECT over every column of table.
func BuildSelectSQL(d Dialect, table string, q metadata.Query) (Statement, error) {
	pb := d.NewParamBuilder()

	sql := "SELECT * FROM " + QuoteIdent(table)
	where, err := buildWhere(q.Filters, pb)
	if err != nil {
		return Statement{}, err
	}
	sql += where

	if len(q.OrderBy) > 0 {
		parts := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, QuoteIdent(o.Column)+" "+dir)
		}
		sql += " ORDER BY " + strings.Join(parts, ", ")
	}

	if q.Limit > 0 {
		limit := pb.Add(q.Limit)
		offset := pb.Add(q.Offset)
		sql += fmt.Sprintf(" LIMIT %s OFFSET %s", limit, offset)
	}

	return Statement{SQL: sql, Params: pb.Params()}, nil
}

// BuildCountSQL builds a COUNT query with the same filters as the select.
func BuildCountSQL(d Dialect, table string, filters []metadata.Filter) (Statement, error) {
	pb := d.NewParamBuilder()
	where, err := buildWhere(filters, pb)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: "SELECT COUNT(*) FROM " + QuoteIdent(table) + where, Params: pb.Params()}, nil
}

// BuildInsertSQL builds an INSERT returning the stored row. Columns are
// emitted in sorted order so the statement is deterministic.
func BuildInsertSQL(d Dialect, table string, values metadata.Record) Statement {
	pb := d.NewParamBuilder()
	keys := sortedKeys(values)
	if len(keys) == 0 {
		return Statement{SQL: fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", QuoteIdent(table))}
	}

	cols := make([]string, len(keys))
	phs := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = QuoteIdent(k)
		phs[i] = pb.Add(bindValue(values[k]))
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		QuoteIdent(table), strings.Join(cols, ", "), strings.Join(phs, ", "))
	return Statement{SQL: sql, Params: pb.Params()}
}

// BuildUpdateSQL builds an UPDATE of one row by primary key returning the
// stored row. values must not be empty.
func BuildUpdateSQL(d Dialect, table, pkColumn string, id any, values metadata.Record) Statement {
	pb := d.NewParamBuilder()
	keys := sortedKeys(values)

	sets := make([]string, len(keys))
	for i, k := range keys {
		sets[i] = fmt.Sprintf("%s = %s", QuoteIdent(k), pb.Add(bindValue(values[k])))
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING *",
		QuoteIdent(table), strings.Join(sets, ", "), QuoteIdent(pkColumn), pb.Add(id))
	return Statement{SQL: sql, Params: pb.Params()}
}

// BuildDeleteSQL builds a DELETE of one row by primary key.
func BuildDeleteSQL(d Dialect, table, pkColumn string, id any) Statement {
	pb := d.NewParamBuilder()
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", QuoteIdent(table), QuoteIdent(pkColumn), pb.Add(id))
	return Statement{SQL: sql, Params: pb.Params()}
}

func buildWhere(filters []metadata.Filter, pb ParamBuilder) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		clause, err := buildWhereClause(f, pb)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return " WHERE " + strings.Join(clauses, " AND "), nil
}

func buildWhereClause(f metadata.Filter, pb ParamBuilder) (string, error) {
	col := QuoteIdent(f.Column)
	switch f.Operator {
	case "eq", "":
		if f.Value == nil {
			return col + " IS NULL", nil
		}
		return fmt.Sprintf("%s = %s", col, pb.Add(bindValue(f.Value))), nil
	case "neq":
		if f.Value == nil {
			return col + " IS NOT NULL", nil
		}
		return fmt.Sprintf("%s != %s", col, pb.Add(bindValue(f.Value))), nil
	case "gt":
		return fmt.Sprintf("%s > %s", col, pb.Add(bindValue(f.Value))), nil
	case "gte":
		return fmt.Sprintf("%s >= %s", col, pb.Add(bindValue(f.Value))), nil
	case "lt":
		return fmt.Sprintf("%s < %s", col, pb.Add(bindValue(f.Value))), nil
	case "lte":
		return fmt.Sprintf("%s <= %s", col, pb.Add(bindValue(f.Value))), nil
	case "like":
		return fmt.Sprintf("%s LIKE %s", col, pb.Add(bindValue(f.Value))), nil
	case "in":
		values, ok := f.Value.([]any)
		if !ok {
			return "", fmt.Errorf("filter %s: in expects a list", f.Column)
		}
		if len(values) == 0 {
			return "1 = 0", nil
		}
		phs := make([]string, len(values))
		for i, v := range values {
			phs[i] = pb.Add(bindValue(v))
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(phs, ", ")), nil
	default:
		return "", fmt.Errorf("filter %s: unknown operator %q", f.Column, f.Operator)
	}
}

func sortedKeys(r metadata.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
