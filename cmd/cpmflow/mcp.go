package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhsdigital/cpmflow/internal/logger"
	"github.com/nhsdigital/cpmflow/internal/mcpserver"
)

var mcpFlags struct {
	http string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the flows as MCP tools",
	Long: `Serve every flow as an MCP tool.

By default the server speaks MCP over stdio. With --http it serves the
streamable HTTP transport at /mcp on the given address until interrupted.
The configured environment and api key are used for fields a tool call omits.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlags.http, "http", "", "Serve over HTTP on this address (eg. 127.0.0.1:8765) instead of stdio")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv := mcpserver.New(catalog(cfg), newClient(cfg), prefill(cfg), renderOptions())

	if !cmd.Flags().Changed("http") {
		return srv.ServeStdio()
	}

	ctx := cmd.Context()
	if _, err := srv.Start(ctx, mcpFlags.http); err != nil {
		return fmt.Errorf("starting mcp server: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", srv.URL())

	<-ctx.Done()
	logger.Info("Stopping MCP server")
	return srv.Stop()
}
