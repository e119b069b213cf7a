package metadata

import (
	"strings"
)

// DataType is the dialect-independent type tag of a column.
type DataType string

const (
	TypeText      DataType = "text"
	TypeInteger   DataType = "integer"
	TypeBoolean   DataType = "boolean"
	TypeTimestamp DataType = "timestamp"
	TypeJSON      DataType = "json"
	TypeEnum      DataType = "enum"
)

// ColumnMeta describes one table column. It is computed once per resource by a
// dialect adapter and never mutated afterwards.
type ColumnMeta struct {
	Name         string   `json:"name"`
	SQLName      string   `json:"sql_name"`
	DataType     DataType `json:"data_type"`
	IsNullable   bool     `json:"is_nullable"`
	IsPrimaryKey bool     `json:"is_primary_key"`
	HasDefault   bool     `json:"has_default"`
	EnumValues   []string `json:"enum_values,omitempty"`
}

// IsPassword reports whether the column holds a password-like value.
func (c ColumnMeta) IsPassword() bool {
	return IsPasswordColumn(c.Name)
}

// Label returns a human label for headings and form labels.
func (c ColumnMeta) Label() string {
	return HumanizeName(c.Name)
}

// Columns is the ordered column list of a table.
type Columns []ColumnMeta

// Get returns the column with the given name, or nil.
func (cs Columns) Get(name string) *ColumnMeta {
	for i := range cs {
		if cs[i].Name == name {
			return &cs[i]
		}
	}
	return nil
}

// Has returns true if a column with the given name exists.
func (cs Columns) Has(name string) bool {
	return cs.Get(name) != nil
}

// PrimaryKey returns the first primary key column, or nil.
func (cs Columns) PrimaryKey() *ColumnMeta {
	for i := range cs {
		if cs[i].IsPrimaryKey {
			return &cs[i]
		}
	}
	return nil
}

// Names returns the column names in declaration order.
func (cs Columns) Names() []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return names
}

// FindUpdatedAt returns the updatedAt/updated_at column, or nil.
func (cs Columns) FindUpdatedAt() *ColumnMeta {
	for i := range cs {
		if isUpdatedAtName(cs[i].Name) {
			return &cs[i]
		}
	}
	return nil
}

// HumanizeName turns a column or table identifier into a title-cased label:
// "created_at" and "createdAt" both become "Created At".
func HumanizeName(name string) string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case r >= 'A' && r <= 'Z' && i > 0 && runes[i-1] >= 'a' && runes[i-1] <= 'z':
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}
