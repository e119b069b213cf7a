package metadata

// Table is an opaque handle to a table's schema object. Only the database
// capability and the dialect adapters look inside it.
type Table interface {
	SQLName() string
}

// ColumnCatalog is implemented by table handles that expose their column
// definitions. Adapters refuse tables that do not implement it.
type ColumnCatalog interface {
	NativeColumns() []NativeColumn
}

// NativeColumn is one column as a dialect declares it.
type NativeColumn struct {
	Name          string   `json:"name"`
	SQLName       string   `json:"sql_name"`
	NativeType    string   `json:"native_type"`
	NotNull       bool     `json:"not_null"`
	PrimaryKey    bool     `json:"primary_key"`
	AutoIncrement bool     `json:"auto_increment"`
	Default       string   `json:"default,omitempty"`
	EnumValues    []string `json:"enum_values,omitempty"`
}

// TableSchema is a dialect-specific table definition, either declared in code
// or produced by introspecting a live database.
type TableSchema struct {
	Name    string         `json:"name"`
	Dialect string         `json:"dialect"`
	Columns []NativeColumn `json:"columns"`
}

func (t *TableSchema) SQLName() string { return t.Name }

func (t *TableSchema) NativeColumns() []NativeColumn { return t.Columns }

var (
	_ Table         = (*TableSchema)(nil)
	_ ColumnCatalog = (*TableSchema)(nil)
)
