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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teradata-labs/smartview-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/smartview-mcp/pkg/smartview"
	"go.uber.org/zap"
)

// DefaultRequestTimeout bounds every SmartView API call made through the
// bridge. Callers can override it with WithRequestTimeout.
const DefaultRequestTimeout = 30 * time.Second

// APIClient is the slice of the SmartView client the bridge needs. The
// concrete *smartview.Client satisfies it; tests substitute a mock.
type APIClient interface {
	Request(ctx context.Context, method, path string, query smartview.Params, body interface{}) ([]byte, error)
}

// SmartViewBridge maps the Equinix SmartView DCIM endpoints to MCP tools.
// Each tool wraps one REST endpoint: environment and power readings,
// streaming subscriptions, asset hierarchy and inventory, and system
// alerts. The bridge validates arguments against each tool's schema
// before any network call and shapes upstream failures into tool error
// results the model can read.
type SmartViewBridge struct {
	client         APIClient
	logger         *zap.Logger
	requestTimeout time.Duration
	tools          []protocol.Tool          // cached definitions, stable order
	toolIndex      map[string]protocol.Tool // name -> definition
	handlers       map[string]toolHandler   // name -> handler
}

var _ ToolProvider = (*SmartViewBridge)(nil)

// BridgeOption configures a SmartViewBridge.
type BridgeOption func(*SmartViewBridge)

// WithRequestTimeout sets the per-call timeout for SmartView API requests.
// Non-positive values keep the default.
func WithRequestTimeout(d time.Duration) BridgeOption {
	return func(b *SmartViewBridge) {
		if d > 0 {
			b.requestTimeout = d
		}
	}
}

// NewSmartViewBridge creates a bridge over an authenticated SmartView
// client. It builds the tool catalog once and cross-checks it at
// construction: every definition must have a handler, every handler a
// definition, and every input schema must compile. A mismatch is a
// programming error and fails startup rather than the first tool call.
func NewSmartViewBridge(client APIClient, logger *zap.Logger, opts ...BridgeOption) (*SmartViewBridge, error) {
	if client == nil {
		return nil, fmt.Errorf("smartview client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &SmartViewBridge{
		client:         client,
		logger:         logger,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.tools = buildToolDefinitions()
	b.handlers = b.buildToolHandlers()
	b.toolIndex = make(map[string]protocol.Tool, len(b.tools))

	for _, tool := range b.tools {
		if _, ok := b.handlers[tool.Name]; !ok {
			return nil, fmt.Errorf("tool %q has no handler", tool.Name)
		}
		if err := protocol.CompileToolSchema(tool); err != nil {
			return nil, err
		}
		b.toolIndex[tool.Name] = tool
	}
	for name := range b.handlers {
		if _, ok := b.toolIndex[name]; !ok {
			return nil, fmt.Errorf("handler %q has no tool definition", name)
		}
	}

	return b, nil
}

// ListTools implements ToolProvider.
func (b *SmartViewBridge) ListTools(_ context.Context) ([]protocol.Tool, error) {
	return b.tools, nil
}

// CallTool implements ToolProvider. Unknown tools and schema-invalid
// arguments return *protocol.Error so the dispatcher answers with a
// JSON-RPC error; upstream API failures come back as IsError results.
func (b *SmartViewBridge) CallTool(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error) {
	tool, ok := b.toolIndex[name]
	if !ok {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("unknown tool: %s", name), nil)
	}

	if args == nil {
		args = map[string]interface{}{}
	}
	if err := protocol.ValidateToolArguments(tool, args); err != nil {
		return nil, protocol.NewError(protocol.InvalidParams, err.Error(), nil)
	}

	id := uuid.NewString()
	b.logger.Debug("calling tool", zap.String("tool", name), zap.String("invocation_id", id))
	return b.handlers[name](withInvocationID(ctx, id), args)
}

// toolHandler handles a single tool call with already-validated arguments.
type toolHandler func(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error)

// invocationIDKey carries the per-call correlation ID through handler
// contexts. Invocations have no identity beyond the request; the ID exists
// so a failure log line can be tied back to the call that caused it.
type invocationIDKey struct{}

func withInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey{}, id)
}

func invocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationIDKey{}).(string)
	return id
}

// callEndpoint issues one SmartView API request under the bridge's
// timeout and converts the outcome into a tool result. Authentication
// and API failures are tool errors, not protocol errors: the model sees
// the upstream failure text and can correct its inputs or report it.
func (b *SmartViewBridge) callEndpoint(ctx context.Context, method, path string, query smartview.Params, body interface{}) (*protocol.CallToolResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, b.requestTimeout)
	defer cancel()

	payload, err := b.client.Request(reqCtx, method, path, query, body)
	if err != nil {
		var authErr *smartview.AuthError
		var httpErr *smartview.HTTPError
		if errors.As(err, &authErr) || errors.As(err, &httpErr) {
			b.logger.Warn("SmartView request failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.String("invocation_id", invocationID(ctx)),
				zap.Error(err),
			)
			return protocol.NewErrorResult(err.Error()), nil
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("call %s %s: %w", method, path, err)
	}

	return protocol.NewTextResult(prettyJSON(payload)), nil
}

// prettyJSON re-indents a JSON payload for readability in tool results.
// Invalid or non-JSON payloads pass through untouched.
func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
