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
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teradata-labs/smartview-mcp/internal/config"
	"github.com/teradata-labs/smartview-mcp/internal/version"
)

var cfg *config.Config

// rootCmd represents the base command; running it serves MCP over stdio.
var rootCmd = &cobra.Command{
	Use:     "smartview-mcp",
	Short:   "MCP server for the Equinix SmartView data center APIs",
	Long: `smartview-mcp exposes Equinix SmartView DCIM data (environmental sensor
readings, power draw, alarms, assets, and maintenance notifications) as MCP
tools. Running it with no subcommand serves MCP over stdio; --http switches
to the streamable HTTP transport for local development.`,
	Version: version.Get(),
	Run:     runServe,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("api-url", config.DefaultAPIURL, "Equinix API gateway base URL")
	rootCmd.PersistentFlags().Int("timeout", config.DefaultTimeoutSeconds, "HTTP timeout in seconds for upstream calls")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path (defaults to stderr; stdout is the MCP transport)")
	rootCmd.PersistentFlags().String("http", "", "Listen address for the streamable HTTP transport (empty = stdio)")

	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("timeout_seconds", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("http_addr", rootCmd.PersistentFlags().Lookup("http"))
}

// initConfig resolves configuration from flags, env vars, an optional
// .env file, and the OS keyring.
func initConfig() {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}
