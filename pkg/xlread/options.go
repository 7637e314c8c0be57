// Package xlread converts base64-encoded spreadsheet documents into per-sheet
// row records.
package xlread

import (
	"io"
	"log/slog"

	"github.com/ukaji3/xlread-go/pkg/xlread/normalize"
	"github.com/ukaji3/xlread-go/pkg/xlread/parser"
)

// Options configures a Reader.
type Options struct {
	// DuplicateHeaders selects how repeated header names are keyed (default: suffix).
	DuplicateHeaders normalize.DuplicateHeaderPolicy
	// BlankRows keeps blank data rows as empty records.
	BlankRows bool
	// Password opens encrypted workbooks.
	Password string
	// MaxPayloadBytes rejects larger encoded payloads. Zero disables the limit.
	MaxPayloadBytes int64
	// Parser replaces the default excelize-based container parser.
	Parser parser.ContainerParser
	// Logger receives invocation logs. If nil, logs are discarded.
	Logger *slog.Logger
}

// DefaultOptions returns default read options.
func DefaultOptions() Options {
	return Options{
		DuplicateHeaders: normalize.DuplicateSuffix,
	}
}

func (o Options) containerParser() parser.ContainerParser {
	if o.Parser != nil {
		return o.Parser
	}
	return parser.NewExcelizeParser(parser.Options{Password: o.Password})
}

func (o Options) normalizeOptions() normalize.Options {
	policy := o.DuplicateHeaders
	if policy == "" {
		policy = normalize.DuplicateSuffix
	}
	return normalize.Options{
		Duplicates: policy,
		BlankRows:  o.BlankRows,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
