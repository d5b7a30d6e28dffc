package mcpfrontend

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleRouteTask drains Services.Execute's channel fully before replying —
// route_task is a request/response MCP tool, not a streaming one.
func (s *Server) handleRouteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	prompt, ok := args["prompt"].(string)
	if !ok || prompt == "" {
		return mcp.NewToolResultError("prompt is required"), nil
	}
	files := stringSliceArg(args, "files")

	var text strings.Builder
	for result := range s.services.Execute(ctx, prompt, files) {
		if result.Err != nil {
			return mcp.NewToolResultError(result.Err.Error()), nil
		}
		text.WriteString(result.Text)
	}
	return mcp.NewToolResultText(text.String()), nil
}

// handleAnalyzeParallel drains Services.ExecuteParallel's aggregated
// result.
func (s *Server) handleAnalyzeParallel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	directory, ok := args["directory"].(string)
	if !ok || directory == "" {
		return mcp.NewToolResultError("directory is required"), nil
	}
	prompt, ok := args["prompt"].(string)
	if !ok || prompt == "" {
		return mcp.NewToolResultError("prompt is required"), nil
	}

	numWorkers := 0
	if n, ok := args["num_workers"].(float64); ok {
		numWorkers = int(n)
	}

	result, err := s.services.ExecuteParallel(ctx, directory, prompt, numWorkers)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result.AggregatedText), nil
}

// handleListBackends reports every configured backend's health and
// metadata.
func (s *Server) handleListBackends(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statuses := s.services.ListBackends(ctx)

	var text strings.Builder
	for _, st := range statuses {
		state := "unhealthy"
		if st.Healthy {
			state = "healthy"
		}
		enabled := "disabled"
		if st.Enabled {
			enabled = "enabled"
		}
		fmt.Fprintf(&text, "- %s (%s, %s, %s)\n", st.Name, st.Kind, enabled, state)
	}
	return mcp.NewToolResultText(text.String()), nil
}

// stringSliceArg extracts a JSON array argument as a []string, dropping
// any non-string elements rather than failing the whole call.
func stringSliceArg(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out
}
