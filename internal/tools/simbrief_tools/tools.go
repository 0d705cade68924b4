package simbrief_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/leonnwankwo/skybrief/internal/instrumentation"
	"github.com/leonnwankwo/skybrief/internal/server"
	"github.com/leonnwankwo/skybrief/internal/simbrief"
	"github.com/leonnwankwo/skybrief/internal/tools/common"
)

// RegisterSimbriefTools registers all SimBrief-related MCP tools
func RegisterSimbriefTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Tool: Fetch the latest generated flight plan
	fetchFlightplanTool := mcp.NewTool("simbrief_fetch_flightplan",
		mcp.WithDescription("Fetch the latest SimBrief flight plan (OFP) for a pilot and summarize it: routing, fuel, weights, times and weather"),
		mcp.WithString("username",
			mcp.Description("SimBrief username or pilot ID (defaults to the server's configured pilot)"),
		),
	)

	s.AddTool(fetchFlightplanTool, common.InstrumentedToolHandlerWithService(
		"simbrief_fetch_flightplan",
		instrumentation.ServiceSimbrief,
		instrumentation.OperationFetchOFP,
		sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			username, err := getUsernameFromArgs(request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			ofp, err := sc.SimbriefClient().FetchOFP(ctx, username)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch flight plan: %v", err)), nil
			}

			return mcp.NewToolResultText(simbrief.RenderOFP(ofp)), nil
		}))

	// Tool: Fetch just the filed route
	fetchRouteTool := mcp.NewTool("simbrief_fetch_route",
		mcp.WithDescription("Fetch only the filed route of the latest SimBrief flight plan, suitable for pasting into ATC clients or an FMC"),
		mcp.WithString("username",
			mcp.Description("SimBrief username or pilot ID (defaults to the server's configured pilot)"),
		),
	)

	s.AddTool(fetchRouteTool, common.InstrumentedToolHandlerWithService(
		"simbrief_fetch_route",
		instrumentation.ServiceSimbrief,
		instrumentation.OperationFetchOFP,
		sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			username, err := getUsernameFromArgs(request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			ofp, err := sc.SimbriefClient().FetchOFP(ctx, username)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch flight plan: %v", err)), nil
			}

			return mcp.NewToolResultText(simbrief.RenderRoute(ofp)), nil
		}))

	return nil
}

// getUsernameFromArgs extracts the SimBrief username from tool arguments,
// falling back to the server's configured default.
func getUsernameFromArgs(request mcp.CallToolRequest, sc *server.ServerContext) (string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	if username, ok := args["username"].(string); ok && username != "" {
		return username, nil
	}

	if def := sc.DefaultSimbriefUser(); def != "" {
		return def, nil
	}

	return "", fmt.Errorf("no SimBrief username provided and no default configured")
}
