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

// Package protocol implements the JSON-RPC 2.0 layer of the Model Context
// Protocol (MCP) together with the MCP message types used by this server.
package protocol

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the version string every JSON-RPC 2.0 message must carry.
const JSONRPCVersion = "2.0"

// Request is a JSON-RPC 2.0 request or notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`          // always "2.0"
	ID      *RequestID      `json:"id,omitempty"`     // nil for notifications
	Method  string          `json:"method"`           // method name
	Params  json.RawMessage `json:"params,omitempty"` // method-specific params
}

// RequestID is a JSON-RPC request identifier. JSON-RPC 2.0 allows
// strings, numbers, or null, so the two concrete forms are kept side by
// side.
type RequestID struct {
	Str *string
	Num *int64
}

// MarshalJSON emits the ID in whichever form it holds, or null.
func (r *RequestID) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	if r.Str != nil {
		return json.Marshal(r.Str)
	}
	if r.Num != nil {
		return json.Marshal(r.Num)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts string, integer, or null IDs.
func (r *RequestID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Str = &s
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		r.Num = &n
		return nil
	}

	if string(data) == "null" {
		return nil
	}

	return fmt.Errorf("invalid request ID: %s", data)
}

// String renders the ID for logs; a null ID renders as "null".
func (r *RequestID) String() string {
	if r == nil {
		return "null"
	}
	if r.Str != nil {
		return *r.Str
	}
	if r.Num != nil {
		return fmt.Sprintf("%d", *r.Num)
	}
	return "null"
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result or Error
// is set; ValidateResponse enforces this.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id"` // echoes the request ID
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Standard JSON-RPC 2.0 error codes.
const (
	ParseError     = -32700 // malformed JSON
	InvalidRequest = -32600 // not a valid request object
	MethodNotFound = -32601 // no handler for the method
	InvalidParams  = -32602 // params failed validation
	InternalError  = -32603 // handler failure
	ServerError    = -32000 // implementation-defined (to -32099)
)

// NewError builds an Error, marshaling data into the optional data field.
// Unmarshalable data is silently omitted rather than failing the response.
func NewError(code int, message string, data interface{}) *Error {
	e := &Error{
		Code:    code,
		Message: message,
	}
	if data != nil {
		if dataJSON, err := json.Marshal(data); err == nil {
			e.Data = dataJSON
		}
	}
	return e
}

// Error implements the error interface so handlers can return *Error
// directly and have the dispatcher preserve the code.
func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("JSON-RPC error %d: %s (data: %s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}

// NewStringRequestID wraps a string as a RequestID.
func NewStringRequestID(s string) *RequestID {
	return &RequestID{Str: &s}
}

// NewNumericRequestID wraps an integer as a RequestID.
func NewNumericRequestID(n int64) *RequestID {
	return &RequestID{Num: &n}
}
