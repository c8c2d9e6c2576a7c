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

// smartview-mcp is an MCP (Model Context Protocol) server that exposes the
// Equinix SmartView data center infrastructure APIs as MCP tools.
//
// It communicates with MCP clients (like Claude Desktop, VS Code) over stdio
// (JSON-RPC) and calls the Equinix API gateway over HTTPS, handling the
// OAuth2 client-credentials token lifecycle transparently. Environmental
// sensor readings, power draw, alarms, assets, and maintenance notifications
// for IBX data centers are all exposed as MCP tools.
//
// Usage:
//
//	smartview-mcp --log-file /tmp/smartview-mcp.log
//
// Claude Desktop configuration (claude_desktop_config.json):
//
//	{
//	  "mcpServers": {
//	    "smartview": {
//	      "command": "/path/to/smartview-mcp",
//	      "env": {
//	        "EQUINIX_CLIENT_ID": "your-client-id",
//	        "EQUINIX_CLIENT_SECRET": "your-client-secret"
//	      }
//	    }
//	  }
//	}
//
// Credentials can also come from a .env file or the OS keyring
// ('smartview-mcp auth set').
package main

func main() {
	Execute()
}
