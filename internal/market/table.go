// Package market resolves commodity metadata from flat CSV tables.
//
// The tables are plain comma-delimited text with a header row. Cells are
// trimmed and stripped of one pair of enclosing quotes; commas embedded
// inside quoted fields are not handled. That mirrors the files as produced
// upstream and is a known limitation.
package market

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidCommodity is returned for identifiers outside the allow-list.
	ErrInvalidCommodity = errors.New("invalid commodity")

	// ErrEmptyDataset is returned when a table has no data rows.
	ErrEmptyDataset = errors.New("empty dataset")
)

// Commodity is a validated commodity identifier.
type Commodity string

const (
	Onion  Commodity = "onion"
	Potato Commodity = "potato"
	Wheat  Commodity = "wheat"
	Rice   Commodity = "rice"
)

// Commodities lists every supported commodity.
var Commodities = []Commodity{Onion, Potato, Wheat, Rice}

// ParseCommodity validates a raw identifier against the allow-list.
func ParseCommodity(raw string) (Commodity, error) {
	c := Commodity(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case Onion, Potato, Wheat, Rice:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCommodity, raw)
}

// LoadTable reads the table for a commodity from dir as ordered lines,
// header first. Empty lines (including a trailing newline) are dropped.
// A missing file or a table without data rows is ErrEmptyDataset; tables
// are re-read on every call and never cached.
func LoadTable(dir string, commodity Commodity) ([]string, error) {
	path := filepath.Join(dir, string(commodity)+".csv")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, commodity)
	}

	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) <= 1 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, commodity)
	}
	return lines, nil
}

// FieldIndex maps semantic fields to column positions; -1 means the column
// is absent from this table, which is not an error.
type FieldIndex struct {
	State    int
	District int
	Market   int
	Variety  int
	Grade    int
	Date     int
}

// Historical header spellings, tried in order.
var (
	stateAliases    = []string{"Your_State", "state"}
	districtAliases = []string{"Your_District", "district"}
	marketAliases   = []string{"Your_Market", "market"}
	varietyAliases  = []string{"Your_Variety", "variety"}
	gradeAliases    = []string{"Your_Grade", "grade"}
	dateAliases     = []string{"Your_Date", "date"}
)

// ResolveHeader builds a FieldIndex from the header line.
func ResolveHeader(headerLine string) FieldIndex {
	cells := strings.Split(headerLine, ",")
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = cleanCell(c)
	}

	find := func(aliases []string) int {
		for _, alias := range aliases {
			for i, h := range headers {
				if strings.EqualFold(h, alias) {
					return i
				}
			}
		}
		return -1
	}

	return FieldIndex{
		State:    find(stateAliases),
		District: find(districtAliases),
		Market:   find(marketAliases),
		Variety:  find(varietyAliases),
		Grade:    find(gradeAliases),
		Date:     find(dateAliases),
	}
}

// safeCell extracts the cell at idx from a data row. Out-of-bounds or
// negative indexes yield "" so short or malformed rows never raise.
func safeCell(line string, idx int) string {
	if idx < 0 {
		return ""
	}
	parts := strings.Split(line, ",")
	if idx >= len(parts) {
		return ""
	}
	return cleanCell(parts[idx])
}

// cleanCell trims whitespace and strips a single pair of enclosing quotes.
func cleanCell(cell string) string {
	cell = strings.TrimSpace(cell)
	if len(cell) >= 2 && cell[0] == '"' && cell[len(cell)-1] == '"' {
		cell = cell[1 : len(cell)-1]
	}
	return cell
}
