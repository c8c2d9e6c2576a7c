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

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMarshaling(t *testing.T) {
	tests := []struct {
		name     string
		request  Request
		expected string
	}{
		{
			name: "request with string ID",
			request: Request{
				JSONRPC: JSONRPCVersion,
				ID:      NewStringRequestID("req-1"),
				Method:  "tools/list",
			},
			expected: `{"jsonrpc":"2.0","id":"req-1","method":"tools/list"}`,
		},
		{
			name: "request with numeric ID",
			request: Request{
				JSONRPC: JSONRPCVersion,
				ID:      NewNumericRequestID(42),
				Method:  "ping",
			},
			expected: `{"jsonrpc":"2.0","id":42,"method":"ping"}`,
		},
		{
			name: "notification without ID",
			request: Request{
				JSONRPC: JSONRPCVersion,
				Method:  "notifications/initialized",
			},
			expected: `{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		},
		{
			name: "request with params",
			request: Request{
				JSONRPC: JSONRPCVersion,
				ID:      NewNumericRequestID(7),
				Method:  "tools/call",
				Params:  json.RawMessage(`{"name":"get_current_environment"}`),
			},
			expected: `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"get_current_environment"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.request)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestRequestUnmarshaling(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","id":"abc","method":"tools/call","params":{"name":"list_assets","arguments":{"ibx":"SV5"}}}`)

	var req Request
	require.NoError(t, json.Unmarshal(data, &req))

	assert.Equal(t, JSONRPCVersion, req.JSONRPC)
	require.NotNil(t, req.ID)
	assert.Equal(t, "abc", req.ID.String())
	assert.Equal(t, "tools/call", req.Method)
	assert.JSONEq(t, `{"name":"list_assets","arguments":{"ibx":"SV5"}}`, string(req.Params))
}

func TestRequestIDUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantStr *string
		wantNum *int64
		wantErr bool
	}{
		{
			name:    "string ID",
			input:   `"session-9"`,
			wantStr: stringPtr("session-9"),
		},
		{
			name:    "numeric ID",
			input:   `123`,
			wantNum: int64Ptr(123),
		},
		{
			// Unmarshaling null into a string is a no-op that succeeds,
			// so a null ID lands in the string branch as "".
			name:    "null ID",
			input:   `null`,
			wantStr: stringPtr(""),
		},
		{
			name:    "object ID is invalid",
			input:   `{"bad":true}`,
			wantErr: true,
		},
		{
			name:    "array ID is invalid",
			input:   `[1,2]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id RequestID
			err := id.UnmarshalJSON([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid request ID")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStr, id.Str)
			assert.Equal(t, tt.wantNum, id.Num)
		})
	}
}

func TestRequestIDMarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		id       *RequestID
		expected string
	}{
		{"string ID", NewStringRequestID("x"), `"x"`},
		{"numeric ID", NewNumericRequestID(5), `5`},
		{"empty ID", &RequestID{}, `null`},
		{"nil ID", nil, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.id.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestRequestIDString(t *testing.T) {
	assert.Equal(t, "abc", NewStringRequestID("abc").String())
	assert.Equal(t, "42", NewNumericRequestID(42).String())
	assert.Equal(t, "null", (&RequestID{}).String())

	var nilID *RequestID
	assert.Equal(t, "null", nilID.String())
}

func TestResponseMarshaling(t *testing.T) {
	tests := []struct {
		name     string
		response Response
		expected string
	}{
		{
			name: "result response",
			response: Response{
				JSONRPC: JSONRPCVersion,
				ID:      NewNumericRequestID(1),
				Result:  json.RawMessage(`{"tools":[]}`),
			},
			expected: `{"jsonrpc":"2.0","id":1,"result":{"tools":[]}}`,
		},
		{
			name: "error response",
			response: Response{
				JSONRPC: JSONRPCVersion,
				ID:      NewStringRequestID("r"),
				Error:   NewError(MethodNotFound, "method not found: resources/list", nil),
			},
			expected: `{"jsonrpc":"2.0","id":"r","error":{"code":-32601,"message":"method not found: resources/list"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.response)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, -32700, ParseError)
	assert.Equal(t, -32600, InvalidRequest)
	assert.Equal(t, -32601, MethodNotFound)
	assert.Equal(t, -32602, InvalidParams)
	assert.Equal(t, -32603, InternalError)
	assert.Equal(t, -32000, ServerError)
}

func TestNewError(t *testing.T) {
	t.Run("without data", func(t *testing.T) {
		e := NewError(InvalidParams, "missing ibx", nil)
		assert.Equal(t, InvalidParams, e.Code)
		assert.Equal(t, "missing ibx", e.Message)
		assert.Nil(t, e.Data)
	})

	t.Run("with data", func(t *testing.T) {
		e := NewError(InvalidParams, "bad arguments", map[string]string{"field": "accountNo"})
		require.NotNil(t, e.Data)
		assert.JSONEq(t, `{"field":"accountNo"}`, string(e.Data))
	})

	t.Run("unmarshalable data is dropped", func(t *testing.T) {
		e := NewError(InternalError, "oops", make(chan int))
		assert.Nil(t, e.Data)
	})
}

func TestErrorError(t *testing.T) {
	e := NewError(MethodNotFound, "method not found: foo", nil)
	assert.Equal(t, "JSON-RPC error -32601: method not found: foo", e.Error())

	withData := NewError(InvalidParams, "bad", "detail")
	assert.Contains(t, withData.Error(), "(data: ")
	assert.Contains(t, withData.Error(), "detail")
}

func stringPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64    { return &n }
