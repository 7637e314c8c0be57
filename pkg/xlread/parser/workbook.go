package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlread-go/pkg/xlread/models"
)

// Workbook is the in-memory result of parsing a spreadsheet container.
type Workbook struct {
	// SheetNames lists sheets in the order the document declares them.
	SheetNames []string
	// Sheets maps every name in SheetNames to its parsed cells.
	Sheets map[string]*ParsedSheet
}

// Validate checks that every declared name has a sheet and that names are
// unique. Names are compared case-insensitively, as spreadsheet applications do.
func (w *Workbook) Validate() error {
	seen := make(map[string]bool, len(w.SheetNames))
	for _, name := range w.SheetNames {
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateSheet, name)
		}
		seen[key] = true
		if _, ok := w.Sheets[name]; !ok {
			return fmt.Errorf("%w: %q", ErrMissingSheetData, name)
		}
	}
	return nil
}

// ParsedSheet holds one sheet's cell grid.
type ParsedSheet struct {
	Name string
	// Range is the addressed area of the sheet. Every cell lies inside it.
	Range Range
	// Rows are the non-empty rows in ascending order.
	Rows []Row
}

// Row is one source row. Index is 1-based.
type Row struct {
	Index int
	Cells []Cell
}

// Cell is one non-empty cell. Row and Col are 1-based.
type Cell struct {
	Row   int
	Col   int
	Value models.Value
}

// IsEmpty reports whether the row holds no values.
func (r Row) IsEmpty() bool {
	for _, c := range r.Cells {
		if !c.Value.IsEmpty() {
			return false
		}
	}
	return true
}
