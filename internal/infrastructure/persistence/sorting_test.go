package persistence

import (
	"testing"

	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestSortColumns_Order(t *testing.T) {
	tests := []struct {
		name     string
		filter   shared.Filter
		wantCol  string
		wantDesc bool
	}{
		{"empty uses fallback descending", shared.Filter{}, "name", true},
		{"allowed column ascending", shared.Filter{OrderBy: "quantity", OrderDir: "asc"}, "quantity", false},
		{"direction is case insensitive", shared.Filter{OrderBy: "size", OrderDir: " ASC "}, "size", false},
		{"unknown direction sorts descending", shared.Filter{OrderBy: "size", OrderDir: "sideways"}, "size", true},
		{"unknown column falls back", shared.Filter{OrderBy: "password", OrderDir: "asc"}, "name", false},
		{"injection attempt falls back", shared.Filter{OrderBy: "name; DROP TABLE articles;--"}, "name", true},
		{"surrounding whitespace is ignored", shared.Filter{OrderBy: "  unit_price "}, "unit_price", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := articleSort.order(tt.filter)
			assert.Equal(t, tt.wantCol, got.Column.Name)
			assert.Equal(t, tt.wantDesc, got.Desc)
		})
	}
}

func TestSortColumns_PerTable(t *testing.T) {
	assert.Equal(t, "role", personSort.order(shared.Filter{OrderBy: "role"}).Column.Name)
	assert.Equal(t, "name", personSort.order(shared.Filter{OrderBy: "quantity"}).Column.Name)
	assert.Equal(t, "balance", movementSort.order(shared.Filter{OrderBy: "balance"}).Column.Name)
	assert.Equal(t, "created_at", movementSort.order(shared.Filter{OrderBy: "name"}).Column.Name)
}
