package market

import (
	"strconv"
	"strings"
)

// Price column spellings seen across table generations.
var (
	minPriceAliases   = []string{"min_price", "min price", "min"}
	maxPriceAliases   = []string{"max_price", "max price", "max"}
	modalPriceAliases = []string{"modal_price", "modal price", "price"}
)

// PriceBounds scans a table for the historical min/max observed price,
// considering the min, modal and max price columns per row. ok is false when
// no row carried a parseable price.
func PriceBounds(lines []string) (min, max float64, ok bool) {
	if len(lines) == 0 {
		return 0, 0, false
	}

	cells := strings.Split(lines[0], ",")
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = strings.ToLower(cleanCell(c))
	}

	find := func(aliases []string) int {
		for i, h := range headers {
			for _, alias := range aliases {
				if h == alias {
					return i
				}
			}
		}
		return -1
	}

	idxMin := find(minPriceAliases)
	idxMax := find(maxPriceAliases)
	idxModal := find(modalPriceAliases)

	for _, line := range lines[1:] {
		for _, idx := range []int{idxMin, idxModal, idxMax} {
			cell := safeCell(line, idx)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			if !ok {
				min, max, ok = v, v, true
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max, ok
}
