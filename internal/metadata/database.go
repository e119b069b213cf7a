package metadata

import (
	"context"
	"encoding/json"
	"time"
)

// Record is a row keyed by column name (or SQL name at the Database boundary).
type Record map[string]any

type Filter struct {
	Column   string
	Operator string // eq (default), neq, gt, gte, lt, lte, like
	Value    any
}

type Order struct {
	Column string
	Desc   bool
}

type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
	Offset  int
}

// Database is the storage capability the admin panel needs. Records crossing
// this boundary are keyed by SQL column name. Lookups by id that match no row
// return ErrRecordNotFound.
type Database interface {
	Select(ctx context.Context, table string, q Query) ([]Record, error)
	Count(ctx context.Context, table string, filters []Filter) (int64, error)
	Insert(ctx context.Context, table string, values Record) (Record, error)
	Update(ctx context.Context, table, pkColumn string, id any, values Record) (Record, error)
	Delete(ctx context.Context, table, pkColumn string, id any) error
}

// ToRow re-keys a record from column names to SQL names, dropping unknown keys.
func (cs Columns) ToRow(rec Record) Record {
	row := make(Record, len(rec))
	for _, c := range cs {
		if v, ok := rec[c.Name]; ok {
			row[c.SQLName] = v
		}
	}
	return row
}

// FromRow re-keys a database row from SQL names to column names and
// normalizes driver values to the column's type tag.
func (cs Columns) FromRow(row Record) Record {
	rec := make(Record, len(cs))
	for _, c := range cs {
		v, ok := row[c.SQLName]
		if !ok {
			continue
		}
		rec[c.Name] = normalizeValue(c, v)
	}
	return rec
}

// FromRows applies FromRow to every row.
func (cs Columns) FromRows(rows []Record) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = cs.FromRow(row)
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeValue(c ColumnMeta, v any) any {
	if v == nil {
		return nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch c.DataType {
	case TypeBoolean:
		switch val := v.(type) {
		case int64:
			return val != 0
		case int:
			return val != 0
		case float64:
			return val != 0
		case string:
			return val == "1" || val == "t" || val == "true"
		}
	case TypeInteger:
		switch val := v.(type) {
		case int16:
			return int64(val)
		case int32:
			return int64(val)
		case int:
			return int64(val)
		case float64:
			return int64(val)
		}
	case TypeTimestamp:
		if s, ok := v.(string); ok {
			if t, ok := parseTime(s); ok {
				return t
			}
		}
	case TypeJSON:
		if s, ok := v.(string); ok {
			var parsed any
			if err := json.Unmarshal([]byte(s), &parsed); err == nil {
				return parsed
			}
		}
	}
	return v
}
