package metadata

import (
	"sort"
	"sync"
)

// Adapter extracts ColumnMeta from a dialect-specific table definition.
type Adapter interface {
	// Dialect returns the dialect name, e.g. "postgres" or "sqlite".
	Dialect() string

	// ExtractColumns returns one ColumnMeta per declared column, in
	// declaration order. Tables without a column catalog are rejected.
	ExtractColumns(table Table) (Columns, error)
}

// TypeMapper maps a native column to a normalized type tag. Enum detection
// happens before the mapper is consulted.
type TypeMapper func(nc NativeColumn) DataType

// catalogAdapter is the shared extraction logic; dialects only differ in
// their type mapping.
type catalogAdapter struct {
	dialect string
	mapType TypeMapper
}

// NewAdapter builds an Adapter for a dialect from its type mapping.
func NewAdapter(dialect string, mapType TypeMapper) Adapter {
	return &catalogAdapter{dialect: dialect, mapType: mapType}
}

func (a *catalogAdapter) Dialect() string { return a.dialect }

func (a *catalogAdapter) ExtractColumns(table Table) (Columns, error) {
	if table == nil {
		return nil, ConfigError("%s adapter: nil table", a.dialect)
	}
	catalog, ok := table.(ColumnCatalog)
	if !ok {
		return nil, ConfigError("%s adapter: table %q does not expose a column catalog", a.dialect, table.SQLName())
	}
	natives := catalog.NativeColumns()
	if len(natives) == 0 {
		return nil, ConfigError("%s adapter: table %q declares no columns", a.dialect, table.SQLName())
	}

	seen := make(map[string]bool, len(natives))
	cols := make(Columns, 0, len(natives))
	for _, nc := range natives {
		name := nc.Name
		if name == "" {
			name = nc.SQLName
		}
		sqlName := nc.SQLName
		if sqlName == "" {
			sqlName = name
		}
		if name == "" {
			return nil, ConfigError("%s adapter: table %q has a column without a name", a.dialect, table.SQLName())
		}
		if seen[name] {
			return nil, ConfigError("%s adapter: table %q declares column %q twice", a.dialect, table.SQLName(), name)
		}
		seen[name] = true

		col := ColumnMeta{
			Name:         name,
			SQLName:      sqlName,
			IsNullable:   !nc.NotNull,
			IsPrimaryKey: nc.PrimaryKey,
			HasDefault:   nc.Default != "" || nc.AutoIncrement,
		}
		if len(nc.EnumValues) > 0 {
			col.DataType = TypeEnum
			col.EnumValues = append([]string(nil), nc.EnumValues...)
		} else {
			col.DataType = a.mapType(nc)
			if col.DataType == "" || col.DataType == TypeEnum {
				col.DataType = TypeText
			}
		}
		cols = append(cols, col)
	}
	return cols, nil
}

var (
	adaptersMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter makes an adapter available through AdapterFor.
func RegisterAdapter(a Adapter) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	adapters[a.Dialect()] = a
}

// AdapterFor returns the adapter registered for a dialect.
func AdapterFor(dialect string) (Adapter, error) {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	a, ok := adapters[dialect]
	if !ok {
		return nil, ConfigError("unsupported dialect: %q", dialect)
	}
	return a, nil
}

// Dialects lists registered dialect names, sorted.
func Dialects() []string {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterAdapter(NewAdapter("postgres", PostgresType))
	RegisterAdapter(NewAdapter("sqlite", SQLiteType))
}
