package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/xlread-go/internal/config"
	"github.com/ukaji3/xlread-go/pkg/xlread"
	"github.com/ukaji3/xlread-go/pkg/xlread/models"
	"github.com/ukaji3/xlread-go/pkg/xlread/output"
)

// readFlags holds the flags of the read command.
type readFlags struct {
	outputPath       string
	pretty           bool
	sheetsDir        string
	raw              bool
	duplicateHeaders string
	blankRows        bool
	password         string
	concurrency      int
}

func newReadCmd(g *globalFlags) *cobra.Command {
	f := &readFlags{}

	cmd := &cobra.Command{
		Use:   "read [input...]",
		Short: "Convert one or more encoded workbooks to JSON",
		Long: `Each input is a file holding base64 text (or a data: URL), or "-" for stdin.
With --raw, inputs are binary .xlsx files. With several inputs the output is
one JSON object keyed by input, and failed inputs carry {"message": ...}.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)

			opts, err := cfg.ReaderOptions(logger)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				args = []string{"-"}
			}
			return runRead(cmd, f, xlread.NewReader(opts), cfg.Read.Concurrency, args)
		},
	}

	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&f.sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Inputs are binary workbooks rather than base64 text")
	cmd.Flags().StringVar(&f.duplicateHeaders, "duplicate-headers", "", "Duplicate header policy: suffix, last")
	cmd.Flags().BoolVar(&f.blankRows, "blank-rows", false, "Keep blank data rows as empty records")
	cmd.Flags().StringVar(&f.password, "password", "", "Password for encrypted workbooks")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "Inputs converted at once")

	return cmd
}

// apply overrides cfg with the flags the user set explicitly.
func (f *readFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("duplicate-headers") {
		cfg.Read.DuplicateHeaders = f.duplicateHeaders
	}
	if flags.Changed("blank-rows") {
		cfg.Read.BlankRows = f.blankRows
	}
	if flags.Changed("password") {
		cfg.Read.Password = f.password
	}
	if flags.Changed("concurrency") && f.concurrency > 0 {
		cfg.Read.Concurrency = f.concurrency
	}
}

func runRead(cmd *cobra.Command, f *readFlags, reader *xlread.Reader, concurrency int, inputs []string) error {
	if len(inputs) == 1 {
		result, err := convert(cmd, reader, f.raw, inputs[0])
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		jsonData, err := output.ToJSON(result, f.pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		if err := f.write(cmd, jsonData); err != nil {
			return err
		}
		if f.sheetsDir != "" {
			if err := writeSheetFiles(result, f.sheetsDir, f.pretty); err != nil {
				return fmt.Errorf("failed to write sheet files: %w", err)
			}
		}
		return nil
	}

	results, failed, err := convertAll(cmd, f, reader, concurrency, inputs)
	if err != nil {
		return err
	}

	jsonData, err := output.BatchToJSON(results, f.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if err := f.write(cmd, jsonData); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

// convertAll converts inputs with at most concurrency in flight. Per-input
// failures are collected; only cancellation aborts the batch.
func convertAll(cmd *cobra.Command, f *readFlags, reader *xlread.Reader, concurrency int, inputs []string) (map[string]output.BatchEntry, int, error) {
	var (
		mu      sync.Mutex
		failed  int
		results = make(map[string]output.BatchEntry, len(inputs))
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(concurrency)

	for _, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := convert(cmd, reader, f.raw, input)
			if err == nil && f.sheetsDir != "" {
				err = writeSheetFiles(result, filepath.Join(f.sheetsDir, inputStem(input)), f.pretty)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				results[input] = output.BatchEntry{Err: err}
				return nil
			}
			results[input] = output.BatchEntry{Result: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return results, failed, nil
}

// convert loads one input and waits for its conversion.
func convert(cmd *cobra.Command, reader *xlread.Reader, raw bool, input string) (*models.Result, error) {
	payload, err := loadPayload(cmd.InOrStdin(), input, raw)
	if err != nil {
		return nil, err
	}
	return reader.Submit(payload).WaitContext(cmd.Context())
}

func loadPayload(stdin io.Reader, input string, raw bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input %s: %w", input, err)
	}

	if raw {
		return base64.StdEncoding.EncodeToString(data), nil
	}
	return string(data), nil
}

func (f *readFlags) write(cmd *cobra.Command, jsonData []byte) error {
	if f.outputPath != "" {
		if err := os.WriteFile(f.outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if f.sheetsDir == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	}
	return nil
}

func writeSheetFiles(result *models.Result, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, sheetName := range result.SheetNames {
		jsonData, err := output.SheetToJSON(result.Sheets[sheetName], pretty)
		if err != nil {
			return err
		}

		filename, err := sheetFilename(dir, sheetName)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}

// sheetFilename places a sheet's JSON file directly under dir. Names that
// would resolve elsewhere are refused.
func sheetFilename(dir, sheetName string) (string, error) {
	name := sheetName + ".json"
	if strings.ContainsAny(sheetName, `/\`) || !filepath.IsLocal(name) {
		return "", fmt.Errorf("sheet name %q cannot be used as a file name", sheetName)
	}
	return filepath.Join(dir, name), nil
}

// inputStem names an input's sheet directory: the file name without extension.
func inputStem(input string) string {
	if input == "-" {
		return "stdin"
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
