package vatsim_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/leonnwankwo/skybrief/internal/instrumentation"
	"github.com/leonnwankwo/skybrief/internal/server"
	"github.com/leonnwankwo/skybrief/internal/tools/common"
	"github.com/leonnwankwo/skybrief/internal/vatsim"
)

// RegisterVatsimTools registers all VATSIM-related MCP tools
func RegisterVatsimTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Tool: Live activity around an airport
	airportActivityTool := mcp.NewTool("vatsim_airport_activity",
		mcp.WithDescription("Show live VATSIM network activity at an airport: online controllers, ATIS broadcasts, and inbound and outbound flights"),
		mcp.WithString("icao",
			mcp.Required(),
			mcp.Description("ICAO airport code, e.g. KSFO or EDDF"),
		),
	)

	s.AddTool(airportActivityTool, common.InstrumentedToolHandlerWithService(
		"vatsim_airport_activity",
		instrumentation.ServiceVatsim,
		instrumentation.OperationDataFeed,
		sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			icao, err := getICAOFromArgs(request)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			feed, err := sc.VatsimClient().FetchData(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch VATSIM data: %v", err)), nil
			}

			return mcp.NewToolResultText(vatsim.RenderAirportActivity(feed, icao)), nil
		}))

	// Tool: Locate a pilot by callsign
	findPilotTool := mcp.NewTool("vatsim_find_pilot",
		mcp.WithDescription("Find a pilot currently connected to the VATSIM network by callsign and show their position and filed flight plan"),
		mcp.WithString("callsign",
			mcp.Required(),
			mcp.Description("Connection callsign, e.g. DLH456"),
		),
	)

	s.AddTool(findPilotTool, common.InstrumentedToolHandlerWithService(
		"vatsim_find_pilot",
		instrumentation.ServiceVatsim,
		instrumentation.OperationDataFeed,
		sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, ok := request.Params.Arguments.(map[string]interface{})
			if !ok {
				return mcp.NewToolResultError("Invalid arguments format"), nil
			}
			callsign, ok := args["callsign"].(string)
			if !ok || strings.TrimSpace(callsign) == "" {
				return mcp.NewToolResultError("callsign parameter is required"), nil
			}

			feed, err := sc.VatsimClient().FetchData(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch VATSIM data: %v", err)), nil
			}

			pilot := feed.FindPilot(callsign)
			if pilot == nil {
				return mcp.NewToolResultText(fmt.Sprintf("No pilot with callsign %s is currently connected to VATSIM.", strings.ToUpper(strings.TrimSpace(callsign)))), nil
			}

			return mcp.NewToolResultText(vatsim.RenderPilot(pilot)), nil
		}))

	// Tool: Current METAR
	metarTool := mcp.NewTool("vatsim_metar",
		mcp.WithDescription("Fetch the current METAR weather report for an airport as published on the VATSIM network"),
		mcp.WithString("icao",
			mcp.Required(),
			mcp.Description("ICAO airport code, e.g. KSFO or EDDF"),
		),
	)

	s.AddTool(metarTool, common.InstrumentedToolHandlerWithService(
		"vatsim_metar",
		instrumentation.ServiceVatsim,
		instrumentation.OperationMETAR,
		sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			icao, err := getICAOFromArgs(request)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			metar, err := sc.VatsimClient().FetchMETAR(ctx, icao)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch METAR: %v", err)), nil
			}

			return mcp.NewToolResultText(vatsim.RenderMETAR(icao, metar)), nil
		}))

	return nil
}

// getICAOFromArgs extracts and normalizes the required icao argument.
func getICAOFromArgs(request mcp.CallToolRequest) (string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("Invalid arguments format")
	}

	icao, ok := args["icao"].(string)
	if !ok || strings.TrimSpace(icao) == "" {
		return "", fmt.Errorf("icao parameter is required")
	}

	return strings.ToUpper(strings.TrimSpace(icao)), nil
}
