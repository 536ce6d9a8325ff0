package article

import (
	"strconv"
	"strings"
)

var letterSizes = map[string]int{
	"XXS":  0,
	"XS":   1,
	"S":    2,
	"M":    3,
	"L":    4,
	"XL":   5,
	"XXL":  6,
	"2XL":  6,
	"XXXL": 7,
	"3XL":  7,
	"4XL":  8,
	"5XL":  9,
}

// CompareSizes orders garment sizes: letter sizes by fit, numeric sizes by
// value after all letter sizes, anything else alphabetically at the end.
func CompareSizes(a, b string) int {
	ka, kb := sizeKey(a), sizeKey(b)
	if ka.class != kb.class {
		return ka.class - kb.class
	}
	if ka.rank != kb.rank {
		if ka.rank < kb.rank {
			return -1
		}
		return 1
	}
	return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
}

type sizeRank struct {
	class int
	rank  float64
}

func sizeKey(size string) sizeRank {
	s := strings.ToUpper(strings.TrimSpace(size))
	if r, ok := letterSizes[s]; ok {
		return sizeRank{class: 0, rank: float64(r)}
	}
	if n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return sizeRank{class: 1, rank: n}
	}
	return sizeRank{class: 2}
}
