package metadata

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TableNameToRoutePath derives the URL segment for a table: sale_orders -> sale-orders.
func TableNameToRoutePath(tableName string) string {
	return strings.ReplaceAll(tableName, "_", "-")
}

// TableNameToDisplayName derives the singular human label for a table:
// sale_orders -> "Sale Order", cards -> "Card". Singularization is naive and
// strips exactly one trailing "s".
func TableNameToDisplayName(tableName string) string {
	name := TableNameToPluralName(tableName)
	return strings.TrimSuffix(name, "s")
}

// TableNameToPluralName title-cases the words of a table name without
// singularizing: sale_orders -> "Sale Orders".
func TableNameToPluralName(tableName string) string {
	parts := strings.Split(tableName, "_")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		words = append(words, titleWord(p))
	}
	return strings.Join(words, " ")
}

// Slugify derives an action URL slug: lowercased, spaces to hyphens, anything
// that is not [a-z0-9-] removed. "Mark as Paid!" -> "mark-as-paid".
func Slugify(name string) string {
	lower := strings.ToLower(name)
	lower = strings.ReplaceAll(lower, " ", "-")
	var b strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func titleWord(w string) string {
	return cases.Title(language.English).String(w)
}
