package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNameToRoutePath(t *testing.T) {
	assert.Equal(t, "sale-orders", TableNameToRoutePath("sale_orders"))
	assert.Equal(t, "cards", TableNameToRoutePath("cards"))
	assert.Equal(t, "a-b-c", TableNameToRoutePath("a_b_c"))
}

func TestTableNameToDisplayName(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"sale_orders", "Sale Order"},
		{"cards", "Card"},
		{"person", "Person"},
		{"order_items", "Order Item"},
		{"status", "Statu"}, // naive singularization
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.want, TableNameToDisplayName(tt.table))
		})
	}
	assert.Equal(t, "Sale Orders", TableNameToPluralName("sale_orders"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "mark-as-paid", Slugify("Mark as Paid!"))
	assert.Equal(t, "export-csv", Slugify("Export CSV"))
	assert.Equal(t, "re-send-2", Slugify("Re-send #2"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestHumanizeName(t *testing.T) {
	assert.Equal(t, "Created At", HumanizeName("created_at"))
	assert.Equal(t, "Created At", HumanizeName("createdAt"))
	assert.Equal(t, "Id", HumanizeName("id"))
}
