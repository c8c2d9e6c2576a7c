// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package conformance verifies that smartview-mcp complies with the
// Model Context Protocol specification (version 2024-11-05).
//
// Every test boots the full server in-process (SmartViewBridge over a
// mock Equinix gateway, served on a pipe-based stdio transport) and
// drives it through the MCP client, so each assertion crosses the real
// wire format.
//
// Test coverage:
// - Initialize handshake and capability negotiation
// - Protocol version agreement
// - Tool operations (list, call) and tool schema structure
// - Error handling (unknown tool, schema-invalid arguments)
// - Concurrent request handling
package conformance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/smartview-mcp/pkg/mcp/client"
	"github.com/teradata-labs/smartview-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/smartview-mcp/pkg/mcp/server"
	"github.com/teradata-labs/smartview-mcp/pkg/mcp/transport"
	"github.com/teradata-labs/smartview-mcp/pkg/smartview"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// startUpstream serves a mock Equinix gateway: the oauth2 token endpoint
// plus the data endpoints the conformance calls touch.
func startUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/v1/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"CONF","token_timeout":3600}`)
	})
	mux.HandleFunc("/environment/v1/current", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"temperature":{"value":22.0,"unit":"C"},"humidity":{"value":40.1,"unit":"%"}}`)
	})
	mux.HandleFunc("/smartview/v2/streaming/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"subscriptions":[]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// startServer boots the full smartview-mcp stack in-process and returns
// an initialized client connected to it over pipes.
func startServer(t *testing.T, ctx context.Context, logger *zap.Logger) *client.Client {
	t.Helper()

	upstream := startUpstream(t)

	svClient, err := smartview.NewClient(smartview.Config{
		ClientID:     "conformance-id",
		ClientSecret: "conformance-secret",
		BaseURL:      upstream.URL,
		Logger:       logger,
	})
	require.NoError(t, err)

	bridge, err := server.NewSmartViewBridge(svClient, logger)
	require.NoError(t, err)

	mcpServer := server.NewMCPServer("smartview-mcp", "2.0.0", logger,
		server.WithToolProvider(bridge),
	)

	serverInR, serverInW := io.Pipe()
	clientInR, clientInW := io.Pipe()
	serverTransport := transport.NewStdioServerTransport(serverInR, clientInW)
	clientTransport := transport.NewStdioServerTransport(clientInR, serverInW)

	serverCtx, serverCancel := context.WithCancel(context.Background())
	go func() { _ = mcpServer.Serve(serverCtx, serverTransport) }()
	t.Cleanup(func() {
		serverCancel()
		_ = serverInW.Close()
		_ = clientInW.Close()
	})

	c := client.NewClient(client.Config{
		Transport:      clientTransport,
		Logger:         logger,
		RequestTimeout: 10 * time.Second,
	})
	t.Cleanup(func() { _ = c.Close() })

	err = c.Initialize(ctx, protocol.Implementation{
		Name:    "conformance-test",
		Version: "1.0.0",
	})
	require.NoError(t, err)

	return c
}

// TestConformance_Initialize verifies the initialize handshake complies
// with the MCP spec: initialize is the first request and the server
// responds with its capabilities.
func TestConformance_Initialize(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c := startServer(t, ctx, zaptest.NewLogger(t))

	require.True(t, c.IsInitialized(), "Client must be initialized")

	caps := c.ServerCapabilities()
	require.NotNil(t, caps.Tools, "Server must return capabilities")

	info := c.ServerInfo()
	assert.Equal(t, "smartview-mcp", info.Name)
	assert.NotEmpty(t, info.Version)
}

// TestConformance_ProtocolVersion verifies protocol version negotiation:
// client and server must agree on protocol version 2024-11-05.
func TestConformance_ProtocolVersion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c := startServer(t, ctx, zaptest.NewLogger(t))

	// Initialize succeeds only when the versions agree, so reaching here
	// means negotiation worked.
	require.True(t, c.IsInitialized(), "Client must be initialized after protocol negotiation")
	assert.Equal(t, "2024-11-05", protocol.ProtocolVersion)
}

// TestConformance_Ping verifies the ping request round-trips.
func TestConformance_Ping(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c := startServer(t, ctx, zaptest.NewLogger(t))

	require.NoError(t, c.Ping(ctx), "ping must succeed")
}

// TestConformance_ToolsLifecycle verifies the complete tools lifecycle:
// tools/list returns well-formed tools and tools/call executes them.
func TestConformance_ToolsLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c := startServer(t, ctx, zaptest.NewLogger(t))

	// 1. List tools
	tools, err := c.ListTools(ctx)
	require.NoError(t, err, "tools/list must succeed")
	require.NotEmpty(t, tools, "Server must provide at least one tool")

	// Verify tool structure
	for _, tool := range tools {
		assert.NotEmpty(t, tool.Name, "Tool must have a name")
		assert.NotEmpty(t, tool.Description, "Tool must have a description")
		require.NotNil(t, tool.InputSchema, "Tool must have input schema")
		assert.Equal(t, "object", tool.InputSchema["type"], "Input schema must be an object schema")
	}

	// 2. Call a tool
	result, err := c.CallTool(ctx, "get_current_environment", map[string]interface{}{
		"accountNo": "12345",
		"ibx":       "SV5",
		"levelType": "ibx",
	})
	require.NoError(t, err, "tools/call must succeed")
	require.NotNil(t, result, "Tool must return result")
	assert.False(t, result.IsError)

	require.NotEmpty(t, result.Content, "Tool result must contain content")
	firstBlock := result.Content[0]
	assert.Equal(t, "text", firstBlock.Type, "First content block should be text")
	assert.Contains(t, firstBlock.Text, "temperature", "Result should contain upstream data")
}

// TestConformance_ToolAnnotations verifies every tool carries behavior
// hints so hosts can gate destructive calls behind user confirmation.
func TestConformance_ToolAnnotations(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c := startServer(t, ctx, zaptest.NewLogger(t))

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)

	byName := make(map[string]protocol.Tool, len(tools))
	for _, tool := range tools {
		require.NotNil(t, tool.Annotations, "tool %s must carry annotations", tool.Name)
		byName[tool.Name] = tool
	}

	del, ok := byName["delete_subscription"]
	require.True(t, ok)
	require.NotNil(t, del.Annotations.DestructiveHint)
	assert.True(t, *del.Annotations.DestructiveHint, "delete_subscription must be marked destructive")

	env, ok := byName["get_current_environment"]
	require.True(t, ok)
	require.NotNil(t, env.Annotations.ReadOnlyHint)
	assert.True(t, *env.Annotations.ReadOnlyHint, "get_current_environment must be marked read-only")
}

// TestConformance_ErrorHandling verifies error handling compliance:
// protocol-level failures must be JSON-RPC errors, not tool results.
func TestConformance_ErrorHandling(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c := startServer(t, ctx, zaptest.NewLogger(t))

	// Test 1: Call non-existent tool
	_, err := c.CallTool(ctx, "non_existent_tool", map[string]interface{}{})
	require.Error(t, err, "Calling non-existent tool must return error")
	var rpcErr *protocol.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, protocol.InvalidParams, rpcErr.Code)

	// Test 2: Call tool with schema-invalid parameters
	_, err = c.CallTool(ctx, "get_current_environment", map[string]interface{}{
		"accountNo": 12345, // schema requires a string
	})
	require.Error(t, err, "Calling tool with invalid params must return error")
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, protocol.InvalidParams, rpcErr.Code)
}

// TestConformance_JSONRPCFormat verifies JSON-RPC 2.0 compliance. The
// client validates every envelope it receives; a full round-trip through
// it means the server's frames are well-formed.
func TestConformance_JSONRPCFormat(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c := startServer(t, ctx, zaptest.NewLogger(t))

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tools, "Valid JSON-RPC request must succeed")
}

// TestConformance_ConcurrentRequests verifies the server handles
// multiple concurrent requests over one connection.
func TestConformance_ConcurrentRequests(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := startServer(t, ctx, zaptest.NewLogger(t))

	done := make(chan error, 5)
	for i := 0; i < 5; i++ {
		go func() {
			_, err := c.CallTool(ctx, "get_all_subscriptions", nil)
			done <- err
		}()
	}

	for i := 0; i < 5; i++ {
		err := <-done
		assert.NoError(t, err, "Concurrent requests must succeed")
	}
}
