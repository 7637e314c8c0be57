// Package mcptool serves workbook conversion as an MCP tool over stdio.
package mcptool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ukaji3/xlread-go/pkg/xlread"
	"github.com/ukaji3/xlread-go/pkg/xlread/models"
	"github.com/ukaji3/xlread-go/pkg/xlread/normalize"
)

// MetadataReadWorkbook describes the read_workbook tool.
var MetadataReadWorkbook = &mcp.Tool{
	Name: "read_workbook",
	Description: "Convert a base64-encoded spreadsheet (xlsx, xlsm) into per-sheet row records. " +
		"The first non-empty row of each sheet supplies the keys of its records. " +
		"Returns the sheet names in document order and, per sheet, an array of records.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"data"},
		"properties": map[string]interface{}{
			"data": map[string]interface{}{
				"type":        "string",
				"description": "Base64 workbook content, optionally as a data: URL",
			},
			"duplicate_headers": map[string]interface{}{
				"type":        "string",
				"description": "How repeated header names are keyed: suffix (Name, Name_1) or last (the rightmost column wins).",
				"enum":        []string{"suffix", "last"},
			},
			"blank_rows": map[string]interface{}{
				"type":        "boolean",
				"description": "Keep blank data rows as empty records.",
			},
			"password": map[string]interface{}{
				"type":        "string",
				"description": "Password for an encrypted workbook.",
			},
		},
	},
}

// InputReadWorkbook is the input for the read_workbook tool.
type InputReadWorkbook struct {
	Data             string `json:"data"`
	DuplicateHeaders string `json:"duplicate_headers,omitempty"`
	BlankRows        bool   `json:"blank_rows,omitempty"`
	Password         string `json:"password,omitempty"`
}

// OutputReadWorkbook is the output for the read_workbook tool.
type OutputReadWorkbook struct {
	// SheetNames lists every sheet in document order.
	SheetNames []string `json:"sheetNames"`
	// Sheets maps each sheet name to its records.
	Sheets map[string]models.SheetTable `json:"sheets"`
}

// Handler runs read_workbook calls on top of a set of base read options.
type Handler struct {
	base xlread.Options
}

// NewHandler creates a Handler. Per-call arguments override base.
func NewHandler(base xlread.Options) *Handler {
	return &Handler{base: base}
}

// ReadWorkbook converts input.Data and waits for the result or ctx.
func (h *Handler) ReadWorkbook(ctx context.Context, _ *mcp.CallToolRequest, input InputReadWorkbook) (*mcp.CallToolResult, OutputReadWorkbook, error) {
	if input.Data == "" {
		return nil, OutputReadWorkbook{}, fmt.Errorf("data is required")
	}

	opts := h.base
	if input.DuplicateHeaders != "" {
		policy, err := normalize.ParsePolicy(input.DuplicateHeaders)
		if err != nil {
			return nil, OutputReadWorkbook{}, err
		}
		opts.DuplicateHeaders = policy
	}
	if input.BlankRows {
		opts.BlankRows = true
	}
	if input.Password != "" {
		opts.Password = input.Password
	}

	result, err := xlread.Submit(input.Data, opts).WaitContext(ctx)
	if err != nil {
		return nil, OutputReadWorkbook{}, err
	}

	return nil, OutputReadWorkbook{
		SheetNames: result.SheetNames,
		Sheets:     result.Sheets,
	}, nil
}
