package shared

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collator is not safe for concurrent use
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Italian, collate.IgnoreCase, collate.IgnoreDiacritics)
)

// CompareNames orders strings the way an Italian reader expects:
// case and accents are ignored, so "àncora" sorts next to "ancora".
func CompareNames(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// SortNames sorts strings in place with Italian collation
func SortNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return CompareNames(names[i], names[j]) < 0
	})
}
