package models

// RowRecord maps a column header to a cell value.
// Values are string, float64 or bool; absent cells have no key.
type RowRecord map[string]any

// SheetTable is the ordered sequence of records for one sheet.
type SheetTable []RowRecord
