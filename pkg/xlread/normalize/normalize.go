// Package normalize converts parsed sheets into header-keyed row records.
package normalize

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ukaji3/xlread-go/pkg/xlread/models"
	"github.com/ukaji3/xlread-go/pkg/xlread/parser"
	"github.com/xuri/excelize/v2"
)

// FallbackPrefix prefixes the positional key used for columns without a header.
const FallbackPrefix = "__EMPTY_"

var (
	// ErrOutOfRange indicates a cell outside the sheet's addressed range.
	ErrOutOfRange = errors.New("cell reference outside the sheet range")
	// ErrRowOrder indicates rows that are not in ascending source order.
	ErrRowOrder = errors.New("rows out of order")
)

// DuplicateHeaderPolicy decides how repeated header names are keyed.
type DuplicateHeaderPolicy string

const (
	// DuplicateSuffix keeps the first name and keys later repeats as "Name_1", "Name_2", ...
	DuplicateSuffix DuplicateHeaderPolicy = "suffix"
	// DuplicateLastWins keys repeats with the same name; the rightmost value wins.
	DuplicateLastWins DuplicateHeaderPolicy = "last"
)

// ParsePolicy validates a policy name. The empty string selects DuplicateSuffix.
func ParsePolicy(s string) (DuplicateHeaderPolicy, error) {
	switch DuplicateHeaderPolicy(s) {
	case "", DuplicateSuffix:
		return DuplicateSuffix, nil
	case DuplicateLastWins:
		return DuplicateLastWins, nil
	default:
		return "", fmt.Errorf("invalid duplicate header policy %q (must be suffix or last)", s)
	}
}

// Options configures normalization.
type Options struct {
	Duplicates DuplicateHeaderPolicy
	// BlankRows emits an empty record for data rows without values instead of skipping them.
	BlankRows bool
}

// Normalize converts a parsed sheet into row records keyed by the header row.
//
// The header row is the first row with a non-empty cell; earlier rows are
// discarded. A sheet with no such row yields an empty, non-nil table.
func Normalize(sheet *parser.ParsedSheet, opts Options) (models.SheetTable, error) {
	table := models.SheetTable{}
	if sheet == nil {
		return table, nil
	}
	if err := checkStructure(sheet); err != nil {
		return nil, err
	}

	headerAt := -1
	for i, row := range sheet.Rows {
		if !row.IsEmpty() {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return table, nil
	}

	headers := newHeaderIndex(sheet.Rows[headerAt], opts.Duplicates)
	prev := sheet.Rows[headerAt].Index

	for _, row := range sheet.Rows[headerAt+1:] {
		if opts.BlankRows {
			// Rows missing from the grid are blank rows too.
			for gap := prev + 1; gap < row.Index; gap++ {
				table = append(table, models.RowRecord{})
			}
		}
		prev = row.Index

		record := models.RowRecord{}
		for _, cell := range row.Cells {
			if cell.Value.IsEmpty() {
				continue
			}
			record[headers.key(cell.Col)] = cell.Value.Any()
		}
		if len(record) == 0 && !opts.BlankRows {
			continue
		}
		table = append(table, record)
	}

	return table, nil
}

// checkStructure verifies every cell lies inside the sheet range and the
// grid, and that rows ascend.
func checkStructure(sheet *parser.ParsedSheet) error {
	prev := 0
	for _, row := range sheet.Rows {
		if row.Index <= prev {
			return fmt.Errorf("%w: row %d follows row %d", ErrRowOrder, row.Index, prev)
		}
		prev = row.Index

		for _, cell := range row.Cells {
			if cell.Row != row.Index {
				return fmt.Errorf("%w: cell at row %d listed under row %d", ErrRowOrder, cell.Row, row.Index)
			}
			if cell.Row < 1 || cell.Row > excelize.TotalRows || cell.Col < 1 || cell.Col > excelize.MaxColumns {
				return fmt.Errorf("%w: R%dC%d is outside the worksheet grid", ErrOutOfRange, cell.Row, cell.Col)
			}
			if !sheet.Range.Contains(cell.Row, cell.Col) {
				name, _ := excelize.CoordinatesToCellName(cell.Col, cell.Row)
				return fmt.Errorf("%w: %s not in %q", ErrOutOfRange, name, sheet.Range.String())
			}
		}
	}
	return nil
}

// headerIndex resolves column numbers to record keys.
type headerIndex struct {
	keys     map[int]string
	used     map[string]bool
	policy   DuplicateHeaderPolicy
	fallback map[int]string
}

func newHeaderIndex(row parser.Row, policy DuplicateHeaderPolicy) *headerIndex {
	if policy == "" {
		policy = DuplicateSuffix
	}
	h := &headerIndex{
		keys:     make(map[int]string, len(row.Cells)),
		used:     make(map[string]bool, len(row.Cells)),
		policy:   policy,
		fallback: make(map[int]string),
	}

	for _, cell := range row.Cells {
		if cell.Value.IsEmpty() {
			continue
		}
		h.keys[cell.Col] = h.claim(cell.Value.Text())
	}
	return h
}

// key returns the record key for col, falling back to a positional key for
// columns the header row leaves empty or does not reach.
func (h *headerIndex) key(col int) string {
	if k, ok := h.keys[col]; ok {
		return k
	}
	if k, ok := h.fallback[col]; ok {
		return k
	}
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		name = strconv.Itoa(col)
	}
	k := h.unique(FallbackPrefix + name)
	h.used[k] = true
	h.fallback[col] = k
	return k
}

// claim registers a header name according to the duplicate policy.
func (h *headerIndex) claim(name string) string {
	if h.policy == DuplicateLastWins {
		h.used[name] = true
		return name
	}
	k := h.unique(name)
	h.used[k] = true
	return k
}

func (h *headerIndex) unique(name string) string {
	if !h.used[name] {
		return name
	}
	for n := 1; ; n++ {
		candidate := name + "_" + strconv.Itoa(n)
		if !h.used[candidate] {
			return candidate
		}
	}
}
