package metadata

import "strings"

// IsPasswordColumn reports whether a column name contains "password", case-insensitively.
// Such columns never appear on index or show views and are masked in forms.
func IsPasswordColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "password")
}

func isCreatedAtName(name string) bool {
	return name == "createdAt" || name == "created_at"
}

func isUpdatedAtName(name string) bool {
	return name == "updatedAt" || name == "updated_at"
}

// IsAutoManaged reports whether the system or database sets the column: the
// primary key, and createdAt/updatedAt columns that have a database default.
func IsAutoManaged(c ColumnMeta) bool {
	if c.IsPrimaryKey {
		return true
	}
	return (isCreatedAtName(c.Name) || isUpdatedAtName(c.Name)) && c.HasDefault
}

// VisibleColumns applies the index/show visibility rules: password columns
// are always dropped; then a whitelist (in whitelist order) wins over a
// blacklist; with neither, every remaining column is shown.
func VisibleColumns(cols Columns, view ViewOptions) Columns {
	if len(view.Columns) > 0 {
		out := make(Columns, 0, len(view.Columns))
		for _, name := range view.Columns {
			c := cols.Get(name)
			if c == nil || c.IsPassword() {
				continue
			}
			out = append(out, *c)
		}
		return out
	}

	excluded := toSet(view.Exclude)
	out := make(Columns, 0, len(cols))
	for _, c := range cols {
		if c.IsPassword() || excluded[c.Name] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FormColumns returns the fields rendered on create/edit forms: never
// auto-managed, never createdAt, optionally narrowed by the form view lists
// and by permitParams. ParseFormValues reads exactly these columns.
func FormColumns(cols Columns, view ViewOptions, permitParams []string) Columns {
	var candidates Columns
	if len(view.Columns) > 0 {
		for _, name := range view.Columns {
			if c := cols.Get(name); c != nil {
				candidates = append(candidates, *c)
			}
		}
	} else {
		excluded := toSet(view.Exclude)
		for _, c := range cols {
			if !excluded[c.Name] {
				candidates = append(candidates, c)
			}
		}
	}

	out := make(Columns, 0, len(candidates))
	for _, c := range candidates {
		if !formWritable(c, permitParams) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// formWritable reports whether a submitted value for c is ever stored.
// createdAt is set once by the database or the caller, never from a form.
func formWritable(c ColumnMeta, permitParams []string) bool {
	return !IsAutoManaged(c) && !isCreatedAtName(c.Name) && Permitted(c.Name, permitParams)
}

// Permitted reports whether a submitted field may be written. A nil
// permitParams list permits every column.
func Permitted(name string, permitParams []string) bool {
	if permitParams == nil {
		return true
	}
	for _, p := range permitParams {
		if p == name {
			return true
		}
	}
	return false
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
