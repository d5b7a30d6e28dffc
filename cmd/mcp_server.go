package cmd

import (
	"muster/internal/mcpfrontend"

	"github.com/spf13/cobra"
)

// newMCPServerCmd builds `oxide mcp-server`: serves route_task,
// analyze_parallel, and list_backends over MCP's stdio transport, for
// MCP-aware editors to call the orchestrator as a tool.
func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve route_task, analyze_parallel, and list_backends over MCP stdio",
		Args:  cobra.NoArgs,
		RunE:  runMCPServer,
	}
}

func runMCPServer(cmd *cobra.Command, args []string) error {
	application, err := bootstrap(true)
	if err != nil {
		return err
	}

	return mcpfrontend.NewServer(application.Services).Serve()
}
