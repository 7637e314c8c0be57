// Package models defines the data structures delivered to callers.
package models

// Result is the aggregate deliverable of one read: the sheet names in the
// order the document declares them, plus the normalized table of each sheet.
type Result struct {
	// SheetNames lists sheets in authored order.
	SheetNames []string `json:"sheetNames"`
	// Sheets maps sheet name to its normalized rows.
	Sheets map[string]SheetTable `json:"sheets"`
}

// Sheet returns the table for name and whether the workbook declares it.
func (r *Result) Sheet(name string) (SheetTable, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.Sheets[name]
	return t, ok
}
