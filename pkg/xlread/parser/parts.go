package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

const defaultWorkbookPath = "xl/workbook.xml"

// partKind is the relationship type a sheet's data section is stored as.
type partKind string

const (
	partWorksheet   partKind = "worksheet"
	partChartsheet  partKind = "chartsheet"
	partDialogsheet partKind = "dialogsheet"
	partMacrosheet  partKind = "xlMacrosheet"
)

// hasCells reports whether the part kind stores a cell grid.
func (k partKind) hasCells() bool {
	return k == partWorksheet || k == partMacrosheet
}

// sheetPart describes where a declared sheet keeps its data.
type sheetPart struct {
	Name string
	Path string
	Kind partKind
}

type relationship struct {
	Type   string
	Target string
	Mode   string
}

// zipPackage indexes the parts of an OOXML package by lower-cased name.
type zipPackage struct {
	files map[string]*zip.File
}

func openPackage(data []byte) (*zipPackage, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	pkg := &zipPackage{files: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		pkg.files[strings.ToLower(strings.TrimPrefix(f.Name, "/"))] = f
	}
	return pkg, nil
}

func (p *zipPackage) has(name string) bool {
	_, ok := p.files[strings.ToLower(name)]
	return ok
}

// read returns the part's bytes, or nil when the part does not exist.
func (p *zipPackage) read(name string) ([]byte, error) {
	f, ok := p.files[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, name, err)
	}
	return b, nil
}

// sheetParts resolves every declared sheet to its data part, in workbook order.
// A declared sheet whose part is missing is an error.
func (p *zipPackage) sheetParts() ([]sheetPart, error) {
	workbookPath, err := p.workbookPath()
	if err != nil {
		return nil, err
	}

	workbookXML, err := p.read(workbookPath)
	if err != nil {
		return nil, err
	}
	if workbookXML == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingWorkbook, workbookPath)
	}

	declared, err := parseWorkbookSheets(workbookXML)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, workbookPath, err)
	}
	if len(declared) == 0 {
		return nil, nil
	}

	relsPath := relsPathFor(workbookPath)
	relsXML, err := p.read(relsPath)
	if err != nil {
		return nil, err
	}
	rels, err := parseRelationships(relsXML)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, relsPath, err)
	}

	baseDir := path.Dir(workbookPath)
	parts := make([]sheetPart, 0, len(declared))
	for _, ds := range declared {
		if err := checkSheetName(ds.name); err != nil {
			return nil, err
		}
		rel, ok := rels[ds.rID]
		if !ok || strings.EqualFold(rel.Mode, "External") {
			return nil, fmt.Errorf("%w: %q", ErrMissingSheetData, ds.name)
		}
		partPath := resolveRelativePath(rel.Target, baseDir)
		if !p.has(partPath) {
			return nil, fmt.Errorf("%w: %q (%s)", ErrMissingSheetData, ds.name, partPath)
		}
		parts = append(parts, sheetPart{
			Name: ds.name,
			Path: partPath,
			Kind: relKind(rel.Type),
		})
	}
	return parts, nil
}

// checkSheetName rejects names no spreadsheet application writes. Sheet names
// end up in file names, so path separators are never accepted.
func checkSheetName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidSheetName, name)
	}
	return nil
}

// workbookPath finds the main workbook part through the package relationships.
func (p *zipPackage) workbookPath() (string, error) {
	rootRels, err := p.read("_rels/.rels")
	if err != nil {
		return "", err
	}
	if rootRels != nil {
		rels, err := parseRelationships(rootRels)
		if err == nil {
			for _, rel := range rels {
				if strings.HasSuffix(rel.Type, "/officeDocument") {
					return resolveRelativePath(rel.Target, ""), nil
				}
			}
		}
	}
	return defaultWorkbookPath, nil
}

type declaredSheet struct {
	name string
	rID  string
}

// parseWorkbookSheets returns the <sheet> entries of workbook.xml in document order.
func parseWorkbookSheets(data []byte) ([]declaredSheet, error) {
	var result []declaredSheet
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var ds declaredSheet
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "name":
				ds.name = attr.Value
			case "id":
				ds.rID = attr.Value
			}
		}
		if ds.name == "" {
			return nil, errors.New("sheet element without a name")
		}
		result = append(result, ds)
	}

	return result, nil
}

// parseRelationships maps relationship Id to its type and target.
func parseRelationships(data []byte) (map[string]relationship, error) {
	result := make(map[string]relationship)
	if data == nil {
		return result, nil
	}
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id string
		var rel relationship
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Id":
				id = attr.Value
			case "Type":
				rel.Type = attr.Value
			case "Target":
				rel.Target = attr.Value
			case "TargetMode":
				rel.Mode = attr.Value
			}
		}
		if id != "" {
			result[id] = rel
		}
	}

	return result, nil
}

func relKind(relType string) partKind {
	switch {
	case strings.HasSuffix(relType, "/chartsheet"):
		return partChartsheet
	case strings.HasSuffix(relType, "/dialogsheet"):
		return partDialogsheet
	case strings.HasSuffix(relType, "/xlMacrosheet"):
		return partMacrosheet
	default:
		return partWorksheet
	}
}

func relsPathFor(partPath string) string {
	return path.Join(path.Dir(partPath), "_rels", path.Base(partPath)+".rels")
}

// resolveRelativePath resolves a relationship target against the source part's directory.
// Absolute targets are rooted at the package.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(baseDir, target), "/")
}
