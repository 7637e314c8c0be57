package xlread

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ukaji3/xlread-go/pkg/xlread/models"
	"github.com/ukaji3/xlread-go/pkg/xlread/normalize"
	"github.com/ukaji3/xlread-go/pkg/xlread/parser"
)

// Reader runs the decode, parse and normalize pipeline.
// A Reader holds no per-invocation state and is safe for concurrent use.
type Reader struct {
	parser     parser.ContainerParser
	norm       normalize.Options
	maxPayload int64
	log        *slog.Logger
}

// NewReader creates a Reader from opts.
func NewReader(opts Options) *Reader {
	return &Reader{
		parser:     opts.containerParser(),
		norm:       opts.normalizeOptions(),
		maxPayload: opts.MaxPayloadBytes,
		log:        opts.logger(),
	}
}

// Read converts an encoded document synchronously.
// Errors are *StageError values; nothing partial is returned on failure.
func (r *Reader) Read(payload string) (*models.Result, error) {
	if r.maxPayload > 0 && int64(len(payload)) > r.maxPayload {
		return nil, newStageError(StageDecode, "",
			fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrPayloadTooLarge, len(payload), r.maxPayload))
	}

	data, err := Decode(payload)
	if err != nil {
		return nil, err
	}

	wb, err := r.parser.Parse(data)
	if err != nil {
		return nil, newStageError(StageParse, "", err)
	}
	if wb == nil {
		return nil, newStageError(StageParse, "", errors.New("parser returned no workbook"))
	}
	if err := wb.Validate(); err != nil {
		return nil, newStageError(StageParse, "", err)
	}

	result := &models.Result{
		SheetNames: slices.Clone(wb.SheetNames),
		Sheets:     make(map[string]models.SheetTable, len(wb.SheetNames)),
	}
	if result.SheetNames == nil {
		result.SheetNames = []string{}
	}

	for _, name := range wb.SheetNames {
		table, err := normalize.Normalize(wb.Sheets[name], r.norm)
		if err != nil {
			return nil, newStageError(StageNormalize, name, err)
		}
		result.Sheets[name] = table
	}

	return result, nil
}

// Read converts an encoded document synchronously with opts.
func Read(payload string, opts Options) (*models.Result, error) {
	return NewReader(opts).Read(payload)
}
