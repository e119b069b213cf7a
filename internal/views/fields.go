package views

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"rocket-admin/internal/metadata"
)

const (
	displayTimeLayout = "2006-01-02 15:04:05"
	inputTimeLayout   = "2006-01-02T15:04:05"
	indexCellMaxRunes = 80
)

// FormatCell renders a record value as display text for its column.
func FormatCell(col metadata.ColumnMeta, v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case time.Time:
		return val.Format(displayTimeLayout)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}

// FieldInput is one form control, derived from a column and the current value.
type FieldInput struct {
	Name     string
	Label    string
	Kind     string // text, number, checkbox, select, textarea, datetime-local, password
	Value    string
	Checked  bool
	Required bool
	Hint     string
	Error    string
	Options  []Option
}

type Option struct {
	Value    string
	Selected bool
}

// BuildFields maps form columns to inputs filled from rec, which may be nil.
// Password inputs never carry a value and are optional when editing.
func BuildFields(cols metadata.Columns, rec metadata.Record, edit bool, errs []metadata.FieldError) []FieldInput {
	fieldErrs := make(map[string]string, len(errs))
	for _, e := range errs {
		fieldErrs[e.Field] = e.Message
	}

	fields := make([]FieldInput, 0, len(cols))
	for _, c := range cols {
		v := rec[c.Name]
		f := FieldInput{
			Name:     c.Name,
			Label:    c.Label(),
			Required: !c.IsNullable && !c.HasDefault,
			Error:    fieldErrs[c.Name],
		}

		switch {
		case c.IsPassword():
			f.Kind = "password"
			if edit {
				f.Required = false
				f.Hint = "Leave blank to keep the current value."
			}
		case c.DataType == metadata.TypeBoolean:
			f.Kind = "checkbox"
			f.Required = false
			f.Checked, _ = v.(bool)
		case c.DataType == metadata.TypeInteger:
			f.Kind = "number"
			f.Value = FormatCell(c, v)
		case c.DataType == metadata.TypeTimestamp:
			f.Kind = "datetime-local"
			if t, ok := v.(time.Time); ok {
				f.Value = t.UTC().Format(inputTimeLayout)
			}
		case c.DataType == metadata.TypeJSON:
			f.Kind = "textarea"
			if v != nil {
				b, err := json.MarshalIndent(v, "", "  ")
				if err == nil {
					f.Value = string(b)
				}
			}
		case c.DataType == metadata.TypeEnum:
			f.Kind = "select"
			current := FormatCell(c, v)
			for _, ev := range c.EnumValues {
				f.Options = append(f.Options, Option{Value: ev, Selected: ev == current})
			}
		default:
			f.Kind = "text"
			f.Value = FormatCell(c, v)
		}
		fields = append(fields, f)
	}
	return fields
}
