// Package main provides the CLI entry point for xlread.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukaji3/xlread-go/internal/config"
	"github.com/ukaji3/xlread-go/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "xlread",
		Short: "Convert base64-encoded spreadsheets into JSON row records",
		Long: `xlread decodes a base64 (or data: URL) spreadsheet, reads every sheet
in document order and emits one JSON record per data row, keyed by the
sheet's header row.`,
		SilenceUsage: true,
		Version:      version,
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file (XLREAD_* env vars override it)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: text, json")

	cmd.AddCommand(newReadCmd(g), newServeCmd(g), newMCPCmd(g))
	return cmd
}

// load resolves the configuration with explicit flags applied last and builds
// a logger writing to the command's stderr.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	logger.Debug("configuration loaded", "config", cfg.String())
	return cfg, logger, nil
}
