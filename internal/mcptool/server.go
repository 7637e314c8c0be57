package mcptool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ukaji3/xlread-go/pkg/xlread"
)

// NewServer builds an MCP server exposing read_workbook.
func NewServer(version string, base xlread.Options) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "xlread", Version: version}, nil)
	mcp.AddTool(server, MetadataReadWorkbook, NewHandler(base).ReadWorkbook)
	return server
}

// ServeStdio runs the server on stdin/stdout until ctx is done or the client disconnects.
func ServeStdio(ctx context.Context, version string, base xlread.Options) error {
	return NewServer(version, base).Run(ctx, &mcp.StdioTransport{})
}
