package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelizeParser_PreservesSheetOrder(t *testing.T) {
	data := newWorkbookBytes(t, func(f *excelize.File) {
		require.NoError(t, f.SetSheetName("Sheet1", "Zeta"))
		for _, name := range []string{"Alpha", "Mid"} {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		require.NoError(t, f.SetCellValue("Mid", "B2", "x"))
	})

	wb, err := NewExcelizeParser(Options{}).Parse(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, wb.SheetNames)
	require.NoError(t, wb.Validate())
	assert.Empty(t, wb.Sheets["Zeta"].Rows)
	require.Len(t, wb.Sheets["Mid"].Rows, 1)
	assert.Equal(t, 2, wb.Sheets["Mid"].Rows[0].Cells[0].Col)
}

func TestExcelizeParser_ZeroSheets(t *testing.T) {
	data := buildPackage(t, map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"_rels/.rels":         rootRelsXML,
		"xl/workbook.xml":     workbookXML(),
	})

	wb, err := NewExcelizeParser(Options{}).Parse(data)
	require.NoError(t, err)
	assert.Empty(t, wb.SheetNames)
	assert.Empty(t, wb.Sheets)
}

func TestExcelizeParser_Errors(t *testing.T) {
	valid := newWorkbookBytes(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	})

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "plain text",
			data:    []byte("hello, world"),
			wantErr: ErrNotContainer,
		},
		{
			name:    "empty input",
			data:    nil,
			wantErr: ErrNotContainer,
		},
		{
			name:    "truncated archive",
			data:    valid[:len(valid)/2],
			wantErr: ErrCorruptArchive,
		},
		{
			name:    "corrupt compound file",
			data:    append(append([]byte{}, oleMagic...), 0x00, 0x01, 0x02),
			wantErr: ErrCorruptArchive,
		},
		{
			name: "missing workbook part",
			data: buildPackage(t, map[string]string{
				"[Content_Types].xml": contentTypesXML,
				"_rels/.rels":         rootRelsXML,
			}),
			wantErr: ErrMissingWorkbook,
		},
		{
			name: "sheet without relationship",
			data: buildPackage(t, map[string]string{
				"[Content_Types].xml": contentTypesXML,
				"_rels/.rels":         rootRelsXML,
				"xl/workbook.xml":     workbookXML("Data"),
			}),
			wantErr: ErrMissingSheetData,
		},
		{
			name: "sheet part missing from archive",
			data: buildPackage(t, map[string]string{
				"[Content_Types].xml": contentTypesXML,
				"_rels/.rels":         rootRelsXML,
				"xl/workbook.xml":     workbookXML("Data"),
				"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
</Relationships>`,
			}),
			wantErr: ErrMissingSheetData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb, err := NewExcelizeParser(Options{}).Parse(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, wb)
		})
	}
}

func TestExcelizeParser_EncryptedWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Secret"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf, excelize.Options{Password: "hunter2"}))
	require.True(t, bytes.HasPrefix(buf.Bytes(), oleMagic))

	_, err := NewExcelizeParser(Options{}).Parse(buf.Bytes())
	assert.ErrorIs(t, err, ErrEncrypted)

	wb, err := NewExcelizeParser(Options{Password: "hunter2"}).Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1"}, wb.SheetNames)
	require.Len(t, wb.Sheets["Sheet1"].Rows, 1)
	assert.Equal(t, "Secret", wb.Sheets["Sheet1"].Rows[0].Cells[0].Value.Str)
}

func TestWorkbookValidate(t *testing.T) {
	wb := &Workbook{
		SheetNames: []string{"A", "A"},
		Sheets:     map[string]*ParsedSheet{"A": {Name: "A"}},
	}
	assert.ErrorIs(t, wb.Validate(), ErrDuplicateSheet)

	wb = &Workbook{SheetNames: []string{"A", "B"}, Sheets: map[string]*ParsedSheet{"A": {Name: "A"}}}
	assert.ErrorIs(t, wb.Validate(), ErrMissingSheetData)

	wb = &Workbook{
		SheetNames: []string{"Data", "data"},
		Sheets:     map[string]*ParsedSheet{"Data": {Name: "Data"}, "data": {Name: "data"}},
	}
	assert.ErrorIs(t, wb.Validate(), ErrDuplicateSheet, "names differing only in case collide")
}

func TestExcelizeParser_RejectsPathLikeSheetNames(t *testing.T) {
	for _, name := range []string{"../../escaped", `..\escaped`, "a/b", " "} {
		t.Run(name, func(t *testing.T) {
			_, err := NewExcelizeParser(Options{}).Parse(singleSheetPackage(t, name, worksheetXML("", "")))
			assert.ErrorIs(t, err, ErrInvalidSheetName)
		})
	}
}
