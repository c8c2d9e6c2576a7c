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

// Package client implements a minimal MCP client covering the surface
// smartview-mcp serves: initialize, ping, tools/list, and tools/call.
// The integration and conformance tests use it to drive the server over
// a transport exactly the way an assistant host would.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teradata-labs/smartview-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/smartview-mcp/pkg/mcp/transport"
	"go.uber.org/zap"
)

// Client is an MCP client connection to a server. It correlates
// responses to in-flight requests by ID, so concurrent callers can share
// one connection.
type Client struct {
	transport transport.Transport
	logger    *zap.Logger

	requestTimeout time.Duration

	initialized        bool
	serverInfo         protocol.Implementation
	serverCapabilities protocol.ServerCapabilities

	nextID    int64
	pending   map[string]chan *protocol.Response
	pendingMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// Config configures the MCP client.
type Config struct {
	Transport transport.Transport
	Logger    *zap.Logger

	// RequestTimeout bounds each request round-trip. Default: 30s.
	RequestTimeout time.Duration
}

// NewClient creates a client and starts its receive loop.
func NewClient(config Config) *Client {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		transport:      config.Transport,
		logger:         config.Logger,
		requestTimeout: config.RequestTimeout,
		pending:        make(map[string]chan *protocol.Response),
		ctx:            ctx,
		cancel:         cancel,
	}

	c.wg.Add(1)
	go c.receiveLoop()

	return c
}

// Initialize performs the MCP handshake: the initialize request followed
// by the initialized notification. It must complete before any other call.
func (c *Client) Initialize(ctx context.Context, clientInfo protocol.Implementation) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return fmt.Errorf("already initialized")
	}
	c.mu.Unlock()

	params := protocol.InitializeParams{
		ProtocolVersion: protocol.ProtocolVersion,
		Capabilities:    protocol.ClientCapabilities{},
		ClientInfo:      clientInfo,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return err
	}

	resp, err := c.sendRequest(ctx, "initialize", paramsJSON)
	if err != nil {
		return fmt.Errorf("initialize failed: %w", err)
	}

	var result protocol.InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return fmt.Errorf("failed to parse initialize result: %w", err)
	}
	if result.ProtocolVersion != protocol.ProtocolVersion {
		return fmt.Errorf("protocol version mismatch: client=%s server=%s",
			protocol.ProtocolVersion, result.ProtocolVersion)
	}

	c.mu.Lock()
	c.initialized = true
	c.serverInfo = result.ServerInfo
	c.serverCapabilities = result.Capabilities
	c.mu.Unlock()

	c.logger.Debug("MCP client initialized",
		zap.String("server", result.ServerInfo.Name),
		zap.String("version", result.ServerInfo.Version),
	)

	// The initialized notification completes the handshake. Notifications
	// carry no ID and get no response.
	notification := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		Method:  "notifications/initialized",
	}
	notificationJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal initialized notification: %w", err)
	}
	if err := c.transport.Send(ctx, notificationJSON); err != nil {
		return fmt.Errorf("failed to send initialized notification: %w", err)
	}

	return nil
}

// Ping checks connection health.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.sendRequest(ctx, "ping", json.RawMessage(`{}`))
	return err
}

// ServerInfo returns the server implementation info from the handshake.
func (c *Client) ServerInfo() protocol.Implementation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// ServerCapabilities returns the server capabilities from the handshake.
func (c *Client) ServerCapabilities() protocol.ServerCapabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverCapabilities
}

// IsInitialized reports whether the handshake has completed.
func (c *Client) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Close shuts down the client and its transport. Safe to call twice.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	if err := c.transport.Close(); err != nil {
		c.logger.Error("failed to close transport", zap.Error(err))
	}
	c.wg.Wait()
	return nil
}

// sendRequest sends one request and blocks until its response arrives,
// the context is cancelled, or the request timeout fires.
func (c *Client) sendRequest(ctx context.Context, method string, params json.RawMessage) (*protocol.Response, error) {
	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      c.nextRequestID(),
		Method:  method,
		Params:  params,
	}
	if err := protocol.ValidateRequest(req); err != nil {
		return nil, err
	}

	respChan := make(chan *protocol.Response, 1)
	idStr := req.ID.String()

	c.pendingMu.Lock()
	c.pending[idStr] = respChan
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, idStr)
		c.pendingMu.Unlock()
	}()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := c.transport.Send(ctx, reqJSON); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	timer := time.NewTimer(c.requestTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("request %s timed out after %s", method, c.requestTimeout)
	case resp := <-respChan:
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp, nil
	}
}

// receiveLoop reads messages from the transport and routes responses to
// their waiting callers. smartview-mcp never initiates requests of its
// own, so anything that is not a response to a pending request is logged
// and dropped.
func (c *Client) receiveLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		data, err := c.transport.Receive(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.logger.Debug("receive loop shutting down", zap.Error(err))
				return
			}
			c.logger.Error("failed to receive message", zap.Error(err))
			continue
		}
		if len(data) == 0 {
			continue
		}

		var resp protocol.Response
		if err := json.Unmarshal(data, &resp); err == nil && resp.ID != nil {
			c.routeResponse(&resp)
			continue
		}

		c.logger.Warn("received unrecognized message", zap.ByteString("data", data))
	}
}

// routeResponse delivers a response to the caller waiting on its ID.
func (c *Client) routeResponse(resp *protocol.Response) {
	idStr := resp.ID.String()

	c.pendingMu.Lock()
	respChan, exists := c.pending[idStr]
	c.pendingMu.Unlock()

	if !exists {
		c.logger.Warn("received response for unknown request", zap.String("id", idStr))
		return
	}

	select {
	case respChan <- resp:
	default:
	}
}

// nextRequestID generates the next request ID.
func (c *Client) nextRequestID() *protocol.RequestID {
	id := atomic.AddInt64(&c.nextID, 1)
	return protocol.NewNumericRequestID(id)
}
