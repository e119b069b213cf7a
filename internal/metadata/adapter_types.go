package metadata

import "strings"

// PostgresType maps information_schema data types (and udt names) to type tags.
func PostgresType(nc NativeColumn) DataType {
	switch baseType(nc.NativeType) {
	case "text", "character varying", "varchar", "character", "char", "bpchar", "uuid", "citext", "name":
		return TypeText
	case "integer", "int", "int2", "int4", "int8", "smallint", "bigint",
		"serial", "serial4", "serial8", "bigserial", "smallserial":
		return TypeInteger
	case "boolean", "bool":
		return TypeBoolean
	case "date", "timestamp", "timestamptz", "timestamp without time zone", "timestamp with time zone":
		return TypeTimestamp
	case "json", "jsonb":
		return TypeJSON
	default:
		return TypeText
	}
}

// SQLiteType maps declared SQLite column types to type tags. SQLite accepts
// any declared type name, so only the common spellings are recognized.
func SQLiteType(nc NativeColumn) DataType {
	switch baseType(nc.NativeType) {
	case "text", "varchar", "char", "clob", "string", "nvarchar", "character varying":
		return TypeText
	case "integer", "int", "bigint", "smallint", "tinyint", "mediumint", "number":
		return TypeInteger
	case "boolean", "bool":
		return TypeBoolean
	case "date", "datetime", "timestamp":
		return TypeTimestamp
	case "json", "jsonb":
		return TypeJSON
	default:
		return TypeText
	}
}

// baseType lowercases a native type and drops length modifiers: "VARCHAR(255)" -> "varchar".
func baseType(native string) string {
	t := strings.ToLower(strings.TrimSpace(native))
	if i := strings.IndexByte(t, '('); i >= 0 {
		rest := ""
		if j := strings.IndexByte(t[i:], ')'); j >= 0 {
			rest = t[i+j+1:]
		}
		t = strings.TrimSpace(t[:i]) + rest
	}
	return strings.Join(strings.Fields(t), " ")
}
