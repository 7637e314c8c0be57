package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/xlread-go/pkg/xlread/models"
	"github.com/xuri/excelize/v2"
)

// placeholderDimension is the dimension written by producers that do not
// track the used range, excelize among them.
const placeholderDimension = "A1"

// ExtractCells loads a worksheet's non-empty cells with their types.
// A declared dimension is kept as the sheet's range, so cells outside it are
// reported by normalization. A missing, unparsable or placeholder dimension
// is replaced by the extent of the loaded cells.
func ExtractCells(f *excelize.File, sheetName string) (*ParsedSheet, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	sheet := &ParsedSheet{Name: sheetName}
	declared := false
	if dim, err := f.GetSheetDimension(sheetName); err == nil {
		dim = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(dim), "$", ""))
		if r, err := ParseRange(dim); err == nil && !r.IsEmpty() && dim != placeholderDimension {
			sheet.Range = r
			declared = true
		}
	}

	for rowIdx, row := range rows {
		rowNum := rowIdx + 1 // 1-based row index
		var cells []Cell

		for colIdx, raw := range row {
			if raw == "" {
				continue
			}
			colNum := colIdx + 1
			cellName, err := excelize.CoordinatesToCellName(colNum, rowNum)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheetName, cellName)
			if err != nil {
				return nil, err
			}

			value := typedValue(cellType, raw)
			if value.IsEmpty() {
				continue
			}
			cells = append(cells, Cell{Row: rowNum, Col: colNum, Value: value})
			if !declared {
				sheet.Range = sheet.Range.Extend(rowNum, colNum)
			}
		}

		if len(cells) > 0 {
			sheet.Rows = append(sheet.Rows, Row{Index: rowNum, Cells: cells})
		}
	}

	return sheet, nil
}

// typedValue converts a raw cell value according to its stored type.
// Untyped cells hold numbers in OOXML; anything unparsable stays text.
func typedValue(cellType excelize.CellType, raw string) models.Value {
	switch cellType {
	case excelize.CellTypeBool:
		switch raw {
		case "1", "TRUE", "true":
			return models.BoolValue(true)
		case "0", "FALSE", "false":
			return models.BoolValue(false)
		}
		return models.StringValue(raw)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return parseNumber(raw)
	default:
		return models.StringValue(raw)
	}
}

// parseNumber returns a numeric value, or the original text when raw is not a
// finite number. NaN and INF are valid xsd:double but have no JSON form.
func parseNumber(raw string) models.Value {
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return models.NumberValue(f)
	}
	return models.StringValue(raw)
}
