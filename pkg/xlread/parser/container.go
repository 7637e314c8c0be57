// Package parser interprets spreadsheet containers and loads their cell grids.
package parser

import (
	"bytes"
	"fmt"

	"github.com/richardlehane/mscfb"
	"github.com/xuri/excelize/v2"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ContainerParser turns raw container bytes into a Workbook.
type ContainerParser interface {
	Parse(data []byte) (*Workbook, error)
}

// Options configures the default container parser.
type Options struct {
	// Password opens encrypted workbooks.
	Password string
	// UnzipSizeLimit caps the uncompressed package size. Zero keeps the excelize default.
	UnzipSizeLimit int64
}

// ExcelizeParser reads OOXML workbooks with excelize after checking the
// package structure itself.
type ExcelizeParser struct {
	opts Options
}

// NewExcelizeParser creates a parser with the given options.
func NewExcelizeParser(opts Options) *ExcelizeParser {
	return &ExcelizeParser{opts: opts}
}

var _ ContainerParser = (*ExcelizeParser)(nil)

// Parse interprets data as a spreadsheet container.
// Sheet order follows the workbook's declaration order.
func (p *ExcelizeParser) Parse(data []byte) (*Workbook, error) {
	pkgBytes, err := p.unwrap(data)
	if err != nil {
		return nil, err
	}

	pkg, err := openPackage(pkgBytes)
	if err != nil {
		return nil, err
	}

	parts, err := pkg.sheetParts()
	if err != nil {
		return nil, err
	}

	wb := &Workbook{
		SheetNames: make([]string, 0, len(parts)),
		Sheets:     make(map[string]*ParsedSheet, len(parts)),
	}
	if len(parts) == 0 {
		return wb, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(pkgBytes), excelize.Options{
		UnzipSizeLimit: p.opts.UnzipSizeLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer f.Close()

	for _, part := range parts {
		sheet := &ParsedSheet{Name: part.Name}
		if part.Kind.hasCells() {
			sheet, err = ExtractCells(f, part.Name)
			if err != nil {
				return nil, fmt.Errorf("sheet %q: %w", part.Name, err)
			}
		}
		wb.SheetNames = append(wb.SheetNames, part.Name)
		wb.Sheets[part.Name] = sheet
	}

	if err := wb.Validate(); err != nil {
		return nil, err
	}
	return wb, nil
}

// unwrap returns the zip package bytes, decrypting OLE-wrapped packages.
func (p *ExcelizeParser) unwrap(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return data, nil
	case bytes.HasPrefix(data, oleMagic):
		return p.openCompound(data)
	default:
		return nil, ErrNotContainer
	}
}

// openCompound classifies an OLE compound file by the streams it holds.
func (p *ExcelizeParser) openCompound(data []byte) ([]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	var encrypted, legacy bool
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "EncryptedPackage":
			encrypted = true
		case "Workbook", "Book":
			legacy = true
		}
	}

	switch {
	case encrypted:
		if p.opts.Password == "" {
			return nil, fmt.Errorf("%w: a password is required", ErrEncrypted)
		}
		out, err := excelize.Decrypt(data, &excelize.Options{Password: p.opts.Password})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncrypted, err)
		}
		return out, nil
	case legacy:
		return nil, fmt.Errorf("%w: legacy BIFF (.xls) workbook", ErrUnsupportedVersion)
	default:
		return nil, fmt.Errorf("%w: compound file holds no workbook stream", ErrNotContainer)
	}
}
