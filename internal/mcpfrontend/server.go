// Package mcpfrontend exposes the orchestrator to MCP clients as three
// tools: route_task, analyze_parallel, and list_backends. Grounded on
// original_source/oxide/mcp/server.py's three @app.tool() definitions,
// using mark3labs/mcp-go server-side the way
// internal/agent/test_mcp_server.go does (NewMCPServer + AddTool +
// ServeStdio), rather than the teacher's own client-side use of the same
// library.
package mcpfrontend

import (
	"muster/internal/app"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Server wraps the Services facade and exposes it as an MCP tool server.
// Unlike the orchestrator's own streaming API, every tool here drains its
// result channel fully before replying — MCP's call/response contract has
// no notion of a partial tool result.
type Server struct {
	services  *app.Services
	mcpServer *mcpserver.MCPServer
}

// NewServer constructs a Server and registers its three tools.
func NewServer(services *app.Services) *Server {
	s := &Server{
		services: services,
		mcpServer: mcpserver.NewMCPServer(
			"oxide",
			"1.0.0",
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithResourceCapabilities(false, false),
			mcpserver.WithPromptCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

// Serve blocks serving the stdio transport until the client disconnects.
func (s *Server) Serve() error {
	return mcpserver.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	routeTaskTool := mcp.NewTool("route_task",
		mcp.WithDescription("Route a prompt to the best-suited backend and return its response"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The task prompt to execute"),
		),
		mcp.WithArray("files",
			mcp.Description("Optional file paths for the backend to consider"),
		),
	)
	s.mcpServer.AddTool(routeTaskTool, s.handleRouteTask)

	analyzeParallelTool := mcp.NewTool("analyze_parallel",
		mcp.WithDescription("Analyze a directory's files in parallel across multiple backends"),
		mcp.WithString("directory",
			mcp.Required(),
			mcp.Description("Directory path to analyze"),
		),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Analysis prompt to run against each file chunk"),
		),
		mcp.WithNumber("num_workers",
			mcp.Description("Number of parallel workers (default 3)"),
		),
	)
	s.mcpServer.AddTool(analyzeParallelTool, s.handleAnalyzeParallel)

	listBackendsTool := mcp.NewTool("list_backends",
		mcp.WithDescription("Check health and availability of all configured backends"),
	)
	s.mcpServer.AddTool(listBackendsTool, s.handleListBackends)
}
