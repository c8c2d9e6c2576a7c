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
	"fmt"

	"github.com/teradata-labs/smartview-mcp/pkg/mcp/protocol"
)

// ListTools returns the server's tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]protocol.Tool, error) {
	resp, err := c.sendRequest(ctx, "tools/list", json.RawMessage(`{}`))
	if err != nil {
		return nil, err
	}

	var result protocol.ToolListResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to parse tools/list result: %w", err)
	}
	return result.Tools, nil
}

// CallTool invokes a tool by name. Arguments go to the server unchecked:
// the server owns schema validation and answers bad arguments with a
// JSON-RPC error, which surfaces here as a *protocol.Error. A result
// with IsError set is a tool-level failure (for example an upstream API
// rejection) and is returned to the caller to inspect, not converted
// into a Go error.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*protocol.CallToolResult, error) {
	params := protocol.CallToolParams{
		Name:      name,
		Arguments: arguments,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	resp, err := c.sendRequest(ctx, "tools/call", paramsJSON)
	if err != nil {
		return nil, err
	}

	var result protocol.CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to parse tools/call result: %w", err)
	}
	return &result, nil
}
