package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursecheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/coursecheck/internal/adapters/driving/mcp"
	"github.com/custodia-labs/coursecheck/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can check
proposed courses for overlap.

By default, the server communicates over stdio using JSON-RPC. Use --port to
start an HTTP server instead.

Edits to the analysis thresholds in config.toml are picked up while the
server runs.

Examples:
  # Stdio mode (default)
  coursecheck mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  coursecheck mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "coursecheck": {
        "command": "/path/to/coursecheck",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Overlap: overlapService,
		Corpus:  corpusService,
	})
	if err != nil {
		return err
	}

	if configStore != nil {
		watcher, err := file.NewWatcher(configStore, reloadAnalysisSettings)
		if err != nil {
			logger.Warn("config changes will not be picked up: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// reloadAnalysisSettings pushes edited thresholds into the running service.
// Backend and provider changes need a restart.
func reloadAnalysisSettings() {
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("reading reloaded settings: %v", err)
		return
	}
	overlapService.ApplySettings(settings.Analysis)
	logger.Info("analysis settings reloaded (threshold %.2f)", settings.Analysis.OverlapThreshold)
}
