package persistence

import (
	"strings"

	"github.com/mpvestiario/backend/internal/domain/shared"
	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list query may order by
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+1)
	allowed[fallback] = struct{}{}
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return sortColumns{allowed: allowed, fallback: fallback}
}

// order resolves the filter's ordering. Unknown columns fall back to the
// default; anything but "asc" sorts descending.
func (s sortColumns) order(filter shared.Filter) clause.OrderByColumn {
	column := strings.TrimSpace(filter.OrderBy)
	if _, ok := s.allowed[column]; !ok {
		column = s.fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(filter.OrderDir), "asc"),
	}
}

var (
	articleSort = newSortColumns("name",
		"id", "created_at", "updated_at", "group_name", "size",
		"supplier", "supplier_code", "season", "type", "unit_price", "quantity")
	personSort   = newSortColumns("name", "id", "created_at", "updated_at", "role", "active")
	movementSort = newSortColumns("created_at", "id", "type", "delta", "balance")
)
