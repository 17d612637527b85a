package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskref/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can look up
front-desk guidance.

By default, the server communicates over stdio using JSON-RPC. Use --port to
serve over HTTP instead.

Tools:     query, refresh, stats
Resources: deskref://stats, deskref://index

Examples:
  # Stdio mode (default)
  deskref mcp serve --docs ./training

  # HTTP mode
  deskref mcp serve --port 8080`,
	Annotations: map[string]string{annotationIndex: indexBuild},
	RunE:        runMCPServe,
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
	if services == nil {
		return mcp.ErrMissingRetriever
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Retriever: services.Retriever,
		Refresher: services.Refresher,
		Corpus:    services.Corpus,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
