package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tiffheif/internal/adapters/driving/mcp"
	"github.com/custodia-labs/tiffheif/internal/core/services"
)

const mcpHost = "localhost"

var (
	mcpPort int
	mcpHTTP bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can convert images.

Tools:
  convert_files     Convert TIFF files to HEIC/HEIF
  validate_sources  Check whether paths can be converted

Resources:
  tiffheif://history          Recent runs
  tiffheif://history/{runId}  One run in detail
  tiffheif://settings         Default conversion settings

By default, the server communicates over stdio using JSON-RPC.

Use --port to serve over HTTP instead, or --http to pick the first free
port from 8765.

Examples:
  # Stdio mode (default)
  tiffheif mcp serve

  # HTTP mode
  tiffheif mcp serve --port 8080
  tiffheif mcp serve --http`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().BoolVar(&mcpHTTP, "http", false, "Serve HTTP on the first free port from 8765")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if batchOrchestrator == nil || validator == nil {
		return errors.New("batch service not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if mcpPort < 0 {
		return fmt.Errorf("invalid port %d", mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Validator: validator,
		Batch:     batchOrchestrator,
		Settings:  settingsService,
		History:   historyService,
	})
	if err != nil {
		return err
	}

	port := mcpPort
	if port == 0 && mcpHTTP {
		port, err = services.FindAvailablePort(mcpHost, services.MCPPortRangeStart, services.MCPPortRangeEnd)
		if err != nil {
			return err
		}
	}

	if port > 0 {
		addr := net.JoinHostPort(mcpHost, strconv.Itoa(port))
		cmd.Printf("MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
