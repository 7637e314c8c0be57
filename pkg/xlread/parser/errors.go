package parser

import "errors"

var (
	// ErrNotContainer indicates the bytes are neither a zip package nor an OLE compound file.
	ErrNotContainer = errors.New("not a spreadsheet container")

	// ErrCorruptArchive indicates a truncated or unreadable zip package.
	ErrCorruptArchive = errors.New("corrupt or truncated archive")

	// ErrUnsupportedVersion indicates a legacy BIFF (.xls) workbook.
	ErrUnsupportedVersion = errors.New("unsupported container version")

	// ErrEncrypted indicates a password-protected workbook opened without a password.
	ErrEncrypted = errors.New("workbook is encrypted")

	// ErrMissingWorkbook indicates the package has no workbook part.
	ErrMissingWorkbook = errors.New("missing workbook part")

	// ErrMissingSheetData indicates a declared sheet with no data section.
	ErrMissingSheetData = errors.New("sheet has no data section")

	// ErrInvalidSheetName indicates a declared sheet name that is empty or holds a path separator.
	ErrInvalidSheetName = errors.New("invalid sheet name")

	// ErrDuplicateSheet indicates the workbook declares the same sheet name twice,
	// compared case-insensitively.
	ErrDuplicateSheet = errors.New("duplicate sheet name")
)
