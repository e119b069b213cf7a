package metadata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseFormValues converts submitted form fields into a record keyed by
// column name, coercing each value by the column's type tag. Auto-managed
// columns and columns outside permitParams never appear in the result.
//
// Absent boolean fields are false. Malformed JSON becomes nil. Malformed
// integers and timestamps, and missing values for NOT NULL columns without a
// default, are reported as a Validation error; the partially parsed record is
// still returned.
func ParseFormValues(raw map[string]string, cols Columns, permitParams []string) (Record, error) {
	rec := make(Record)
	var fieldErrs []FieldError

	for _, c := range cols {
		if !formWritable(c, permitParams) {
			continue
		}
		val, present := raw[c.Name]

		switch c.DataType {
		case TypeBoolean:
			rec[c.Name] = present && val == "true"
			continue

		case TypeInteger:
			if !present || strings.TrimSpace(val) == "" {
				rec[c.Name] = nil
				break
			}
			n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				rec[c.Name] = nil
				fieldErrs = append(fieldErrs, FieldError{
					Field:   c.Name,
					Message: fmt.Sprintf("%s must be a whole number", c.Label()),
				})
				continue
			}
			rec[c.Name] = n

		case TypeJSON:
			if !present || strings.TrimSpace(val) == "" {
				rec[c.Name] = nil
				break
			}
			var parsed any
			if err := json.Unmarshal([]byte(val), &parsed); err != nil {
				rec[c.Name] = nil
				break
			}
			rec[c.Name] = parsed

		case TypeTimestamp:
			if !present || strings.TrimSpace(val) == "" {
				rec[c.Name] = nil
				break
			}
			t, ok := parseTime(strings.TrimSpace(val))
			if !ok {
				rec[c.Name] = nil
				fieldErrs = append(fieldErrs, FieldError{
					Field:   c.Name,
					Message: fmt.Sprintf("%s must be a valid date", c.Label()),
				})
				continue
			}
			rec[c.Name] = t.UTC().Truncate(time.Second)

		case TypeEnum:
			if !present || val == "" {
				rec[c.Name] = nil
				break
			}
			if !containsString(c.EnumValues, val) {
				rec[c.Name] = nil
				fieldErrs = append(fieldErrs, FieldError{
					Field:   c.Name,
					Message: fmt.Sprintf("%s must be one of %s", c.Label(), strings.Join(c.EnumValues, ", ")),
				})
				continue
			}
			rec[c.Name] = val

		default:
			if !present {
				rec[c.Name] = nil
				break
			}
			rec[c.Name] = val
		}

		if rec[c.Name] == nil && !c.IsNullable && !c.HasDefault {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   c.Name,
				Message: fmt.Sprintf("%s is required", c.Label()),
			})
		}
	}

	if len(fieldErrs) > 0 {
		return rec, ValidationError(fieldErrs)
	}
	return rec, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
