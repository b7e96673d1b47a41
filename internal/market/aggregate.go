package market

import (
	"sort"
	"strings"
)

// Scope selects which semantic field an aggregation groups by.
type Scope string

const (
	ScopeStates    Scope = "states"
	ScopeDistricts Scope = "districts"
	ScopeVarieties Scope = "varieties"
	ScopeMarkets   Scope = "markets"
)

// ParseScope validates a raw scope value, defaulting to states when empty.
func ParseScope(raw string) (Scope, bool) {
	if raw == "" {
		return ScopeStates, true
	}
	s := Scope(strings.ToLower(raw))
	switch s {
	case ScopeStates, ScopeDistricts, ScopeVarieties, ScopeMarkets:
		return s, true
	}
	return "", false
}

// Filter restricts aggregation to rows matching the set fields
// (case-insensitive exact match). Zero values mean unfiltered.
type Filter struct {
	State    string
	District string
}

// Result is the aggregation answer returned to callers. Commodity is empty
// for the legacy single-commodity operation and omitted from its JSON.
type Result struct {
	Commodity Commodity `json:"commodity,omitempty"`
	Scope     Scope     `json:"scope"`
	Items     []string  `json:"items"`
}

// AggregateUnique streams data rows and returns each distinct candidate value
// once, de-duplicated case-insensitively (first-seen casing kept as the
// display form) and sorted ascending.
func AggregateUnique(lines []string, scope Scope, filter Filter) Result {
	display := make(map[string]string) // lowercase key -> first-seen casing

	forEachCandidate(lines, scope, filter, func(key string) {
		lower := strings.ToLower(key)
		if _, seen := display[lower]; !seen {
			display[lower] = key
		}
	})

	items := make([]string, 0, len(display))
	for _, v := range display {
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i]), strings.ToLower(items[j])
		if a == b {
			return items[i] < items[j]
		}
		return a < b
	})

	return Result{Scope: scope, Items: items}
}

// AggregateRanked streams data rows and returns candidate values ordered by
// descending occurrence count, ties broken by first-insertion order. Keys are
// exact strings; no case folding. This is the legacy single-commodity policy
// and must stay observably distinct from AggregateUnique.
func AggregateRanked(lines []string, scope Scope, filter Filter) Result {
	counts := make(map[string]int)
	var order []string

	forEachCandidate(lines, scope, filter, func(key string) {
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	})

	items := make([]string, len(order))
	copy(items, order)
	sort.SliceStable(items, func(i, j int) bool {
		return counts[items[i]] > counts[items[j]]
	})

	return Result{Scope: scope, Items: items}
}

// forEachCandidate applies the filters row by row and hands every non-empty
// candidate key for the scope to fn.
func forEachCandidate(lines []string, scope Scope, filter Filter, fn func(key string)) {
	if len(lines) == 0 {
		return
	}
	idx := ResolveHeader(lines[0])

	for _, line := range lines[1:] {
		state := safeCell(line, idx.State)
		district := safeCell(line, idx.District)

		if filter.State != "" && !strings.EqualFold(state, filter.State) {
			continue
		}
		if filter.District != "" && !strings.EqualFold(district, filter.District) {
			continue
		}

		var key string
		switch scope {
		case ScopeStates:
			key = state
		case ScopeDistricts:
			key = district
		case ScopeVarieties:
			key = safeCell(line, idx.Variety)
		default:
			key = safeCell(line, idx.Market)
		}
		if key == "" {
			continue
		}
		fn(key)
	}
}
