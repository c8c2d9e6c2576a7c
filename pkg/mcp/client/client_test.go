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
package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/teradata-labs/smartview-mcp/pkg/mcp/protocol"
	"go.uber.org/zap"
)

// mockTransport implements transport.Transport for testing
type mockTransport struct {
	receiveFunc func(ctx context.Context) ([]byte, error)
	sendFunc    func(ctx context.Context, data []byte) error
	closeFunc   func() error
}

func (m *mockTransport) Receive(ctx context.Context) ([]byte, error) {
	if m.receiveFunc != nil {
		return m.receiveFunc(ctx)
	}
	return nil, io.EOF
}

func (m *mockTransport) Send(ctx context.Context, data []byte) error {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, data)
	}
	return nil
}

func (m *mockTransport) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

// scriptedServer is a mock transport that answers every request with the
// response produced by respond. It stands in for a whole MCP server.
type scriptedServer struct {
	respond func(req *protocol.Request) *protocol.Response
	out     chan []byte
}

func newScriptedServer(respond func(req *protocol.Request) *protocol.Response) *scriptedServer {
	return &scriptedServer{respond: respond, out: make(chan []byte, 16)}
}

func (s *scriptedServer) Send(_ context.Context, data []byte) error {
	var req protocol.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}
	if req.ID == nil {
		return nil // notification, no response
	}
	resp := s.respond(&req)
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	s.out <- respJSON
	return nil
}

func (s *scriptedServer) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data, ok := <-s.out:
		if !ok {
			return nil, io.EOF
		}
		return data, nil
	}
}

func (s *scriptedServer) Close() error { return nil }

func TestReceiveLoopEOFHandling(t *testing.T) {
	// EOF is normal shutdown; the loop exits cleanly.
	logger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := &mockTransport{
		receiveFunc: func(ctx context.Context) ([]byte, error) {
			return nil, io.EOF
		},
	}

	client := &Client{
		transport: transport,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[string]chan *protocol.Response),
	}

	done := make(chan bool)
	client.wg.Add(1)
	go func() {
		client.receiveLoop()
		done <- true
	}()

	<-done
}

func TestReceiveLoopContextCancellation(t *testing.T) {
	logger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())

	transport := &mockTransport{
		receiveFunc: func(ctx context.Context) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	client := &Client{
		transport: transport,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[string]chan *protocol.Response),
	}

	done := make(chan bool)
	client.wg.Add(1)
	go func() {
		client.receiveLoop()
		done <- true
	}()

	cancel()

	<-done
}

func TestReceiveLoopOtherErrors(t *testing.T) {
	// Non-EOF, non-context errors keep the loop running.
	logger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errorCount := 0
	transport := &mockTransport{
		receiveFunc: func(ctx context.Context) ([]byte, error) {
			errorCount++
			if errorCount < 3 {
				return nil, errors.New("network error")
			}
			return nil, io.EOF
		},
	}

	client := &Client{
		transport: transport,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[string]chan *protocol.Response),
	}

	done := make(chan bool)
	client.wg.Add(1)
	go func() {
		client.receiveLoop()
		done <- true
	}()

	<-done

	if errorCount < 3 {
		t.Errorf("Expected at least 3 receive attempts, got %d", errorCount)
	}
}

func TestClientClose(t *testing.T) {
	logger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())

	closeCalled := false
	transport := &mockTransport{
		receiveFunc: func(ctx context.Context) ([]byte, error) {
			<-ctx.Done()
			return nil, io.EOF
		},
		closeFunc: func() error {
			closeCalled = true
			return nil
		},
	}

	client := &Client{
		transport: transport,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[string]chan *protocol.Response),
	}

	client.wg.Add(1)
	go func() {
		client.receiveLoop()
	}()

	if err := client.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}

	if !closeCalled {
		t.Error("Expected transport.Close() to be called")
	}

	// Calling Close() again should be safe
	if err := client.Close(); err != nil {
		t.Errorf("Second Close() returned error: %v", err)
	}
}

func TestInitializeHandshake(t *testing.T) {
	server := newScriptedServer(func(req *protocol.Request) *protocol.Response {
		if req.Method != "initialize" {
			t.Errorf("unexpected method %q", req.Method)
		}
		result, _ := json.Marshal(protocol.InitializeResult{
			ProtocolVersion: protocol.ProtocolVersion,
			Capabilities:    protocol.ServerCapabilities{Tools: &protocol.ToolsCapability{}},
			ServerInfo:      protocol.Implementation{Name: "smartview-mcp", Version: "2.0.0"},
		})
		return &protocol.Response{JSONRPC: protocol.JSONRPCVersion, ID: req.ID, Result: result}
	})

	client := NewClient(Config{Transport: server, Logger: zap.NewNop()})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Initialize(ctx, protocol.Implementation{Name: "test", Version: "0.0.1"})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !client.IsInitialized() {
		t.Error("client should report initialized")
	}
	if got := client.ServerInfo().Name; got != "smartview-mcp" {
		t.Errorf("ServerInfo().Name = %q, want smartview-mcp", got)
	}
	if client.ServerCapabilities().Tools == nil {
		t.Error("server capabilities should include tools")
	}

	if err := client.Initialize(ctx, protocol.Implementation{Name: "test", Version: "0.0.1"}); err == nil {
		t.Error("second Initialize should fail")
	}
}

func TestInitializeVersionMismatch(t *testing.T) {
	server := newScriptedServer(func(req *protocol.Request) *protocol.Response {
		result, _ := json.Marshal(protocol.InitializeResult{
			ProtocolVersion: "1999-01-01",
			ServerInfo:      protocol.Implementation{Name: "old", Version: "0.1"},
		})
		return &protocol.Response{JSONRPC: protocol.JSONRPCVersion, ID: req.ID, Result: result}
	})

	client := NewClient(Config{Transport: server, Logger: zap.NewNop()})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Initialize(ctx, protocol.Implementation{Name: "test", Version: "0.0.1"})
	if err == nil {
		t.Fatal("expected protocol version mismatch error")
	}
	if client.IsInitialized() {
		t.Error("client must not report initialized after a failed handshake")
	}
}

func TestCallToolRoundTrip(t *testing.T) {
	server := newScriptedServer(func(req *protocol.Request) *protocol.Response {
		if req.Method != "tools/call" {
			t.Errorf("unexpected method %q", req.Method)
		}
		var params protocol.CallToolParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			t.Fatalf("bad params: %v", err)
		}
		if params.Name != "get_current_power" {
			t.Errorf("tool name = %q", params.Name)
		}
		result, _ := json.Marshal(protocol.NewTextResult(`{"power": 42}`))
		return &protocol.Response{JSONRPC: protocol.JSONRPCVersion, ID: req.ID, Result: result}
	})

	client := NewClient(Config{Transport: server, Logger: zap.NewNop()})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := client.CallTool(ctx, "get_current_power", map[string]interface{}{
		"accountNo": "12345", "ibx": "SV5", "levelType": "ibx",
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if result.IsError {
		t.Error("result should not be an error")
	}
	if len(result.Content) != 1 || result.Content[0].Text != `{"power": 42}` {
		t.Errorf("unexpected content: %+v", result.Content)
	}
}

func TestCallToolServerError(t *testing.T) {
	server := newScriptedServer(func(req *protocol.Request) *protocol.Response {
		return &protocol.Response{
			JSONRPC: protocol.JSONRPCVersion,
			ID:      req.ID,
			Error:   protocol.NewError(protocol.InvalidParams, "unknown tool: bogus", nil),
		}
	})

	client := NewClient(Config{Transport: server, Logger: zap.NewNop()})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.CallTool(ctx, "bogus", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var rpcErr *protocol.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("error should be *protocol.Error, got %T", err)
	}
	if rpcErr.Code != protocol.InvalidParams {
		t.Errorf("code = %d, want %d", rpcErr.Code, protocol.InvalidParams)
	}
}

func TestRequestTimeout(t *testing.T) {
	// A server that never answers: the request must time out rather than
	// hang the caller.
	silent := &mockTransport{
		receiveFunc: func(ctx context.Context) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	client := NewClient(Config{
		Transport:      silent,
		Logger:         zap.NewNop(),
		RequestTimeout: 50 * time.Millisecond,
	})
	defer client.Close()

	err := client.Ping(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestEOFIsNormalShutdown(t *testing.T) {
	// Verify that io.EOF is recognized as a normal shutdown condition
	err := io.EOF

	if !errors.Is(err, io.EOF) {
		t.Error("errors.Is should recognize io.EOF")
	}
}
