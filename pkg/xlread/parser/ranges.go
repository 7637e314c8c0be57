package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Range is a rectangular cell area with 1-based inclusive bounds.
// The zero Range is empty.
type Range struct {
	R1, C1 int
	R2, C2 int
}

// IsEmpty reports whether the range covers no cells.
func (r Range) IsEmpty() bool {
	return r.R1 == 0 || r.C1 == 0
}

// Contains reports whether the cell at (row, col) lies inside the range.
func (r Range) Contains(row, col int) bool {
	if r.IsEmpty() {
		return false
	}
	return row >= r.R1 && row <= r.R2 && col >= r.C1 && col <= r.C2
}

// Extend grows the range to cover (row, col).
func (r Range) Extend(row, col int) Range {
	if r.IsEmpty() {
		return Range{R1: row, C1: col, R2: row, C2: col}
	}
	r.R1 = min(r.R1, row)
	r.C1 = min(r.C1, col)
	r.R2 = max(r.R2, row)
	r.C2 = max(r.C2, col)
	return r
}

// String renders the range in A1 notation, e.g. "A1:D10".
func (r Range) String() string {
	if r.IsEmpty() {
		return ""
	}
	start, _ := excelize.CoordinatesToCellName(r.C1, r.R1)
	end, _ := excelize.CoordinatesToCellName(r.C2, r.R2)
	if start == end {
		return start
	}
	return start + ":" + end
}

// ParseRange parses a dimension reference such as "$A$1:$D$10" or "B2".
// An empty reference yields the empty Range.
func ParseRange(ref string) (Range, error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	if ref == "" {
		return Range{}, nil
	}

	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return Range{}, fmt.Errorf("invalid range %q", ref)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	if len(parts) == 1 {
		return Range{R1: startRow, C1: startCol, R2: startRow, C2: startCol}, nil
	}

	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}

	return Range{
		R1: min(startRow, endRow),
		C1: min(startCol, endCol),
		R2: max(startRow, endRow),
		C2: max(startCol, endCol),
	}, nil
}
