package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRelativePath(t *testing.T) {
	tests := []struct {
		target   string
		baseDir  string
		expected string
	}{
		{"worksheets/sheet1.xml", "xl", "xl/worksheets/sheet1.xml"},
		{"/xl/worksheets/sheet2.xml", "xl", "xl/worksheets/sheet2.xml"},
		{"../customXml/item1.xml", "xl", "customXml/item1.xml"},
		{"xl/workbook.xml", "", "xl/workbook.xml"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, resolveRelativePath(tt.target, tt.baseDir), "resolveRelativePath(%q, %q)", tt.target, tt.baseDir)
	}
}

func TestSheetParts_CustomWorkbookLocation(t *testing.T) {
	data := buildPackage(t, map[string]string{
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="/book/main.xml"/>
</Relationships>`,
		"book/main.xml": workbookXML("Second", "First", "Chart"),
		"book/_rels/main.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="sheets/b.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="sheets/a.xml"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/chartsheet" Target="charts/c.xml"/>
</Relationships>`,
		"book/sheets/a.xml": "<worksheet/>",
		"book/sheets/b.xml": "<worksheet/>",
		"book/charts/c.xml": "<chartsheet/>",
	})

	pkg, err := openPackage(data)
	require.NoError(t, err)

	parts, err := pkg.sheetParts()
	require.NoError(t, err)
	assert.Equal(t, []sheetPart{
		{Name: "Second", Path: "book/sheets/b.xml", Kind: partWorksheet},
		{Name: "First", Path: "book/sheets/a.xml", Kind: partWorksheet},
		{Name: "Chart", Path: "book/charts/c.xml", Kind: partChartsheet},
	}, parts)
}

func TestParseWorkbookSheets_Malformed(t *testing.T) {
	_, err := parseWorkbookSheets([]byte(`<workbook><sheets><sheet name="A"`))
	assert.Error(t, err)
}
