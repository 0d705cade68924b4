package simbrief_tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/leonnwankwo/skybrief/internal/server"
)

func requestWithArgs(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestGetUsernameFromArgs(t *testing.T) {
	sc := server.NewServerContext(context.Background(), "defaultpilot", nil)
	defer sc.Shutdown()

	// Explicit username wins over the default
	username, err := getUsernameFromArgs(requestWithArgs(map[string]interface{}{"username": "otherpilot"}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "otherpilot" {
		t.Errorf("Expected 'otherpilot', got %s", username)
	}

	// Missing username falls back to the configured default
	username, err = getUsernameFromArgs(requestWithArgs(map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "defaultpilot" {
		t.Errorf("Expected 'defaultpilot', got %s", username)
	}

	// Empty string falls back to the configured default
	username, err = getUsernameFromArgs(requestWithArgs(map[string]interface{}{"username": ""}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "defaultpilot" {
		t.Errorf("Expected 'defaultpilot' for empty string, got %s", username)
	}

	// Non-string username falls back to the configured default
	username, err = getUsernameFromArgs(requestWithArgs(map[string]interface{}{"username": 123}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "defaultpilot" {
		t.Errorf("Expected 'defaultpilot' for non-string value, got %s", username)
	}
}

func TestGetUsernameFromArgsNoDefault(t *testing.T) {
	sc := server.NewServerContext(context.Background(), "", nil)
	defer sc.Shutdown()

	_, err := getUsernameFromArgs(requestWithArgs(map[string]interface{}{}), sc)
	if err == nil {
		t.Fatal("expected an error when no username and no default are available")
	}
}

func TestRegisterSimbriefTools(t *testing.T) {
	sc := server.NewServerContext(context.Background(), "defaultpilot", nil)
	defer sc.Shutdown()

	s := mcpserver.NewMCPServer("test", "0.0.0")
	if err := RegisterSimbriefTools(s, sc); err != nil {
		t.Fatalf("RegisterSimbriefTools returned error: %v", err)
	}
}
