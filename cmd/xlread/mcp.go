package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ukaji3/xlread-go/internal/mcptool"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the read_workbook tool over MCP stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.ReaderOptions(logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("mcp server starting", "transport", "stdio")
			return mcptool.ServeStdio(ctx, version, opts)
		},
	}
}
