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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/smartview-mcp/internal/config"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Equinix API credentials",
	Long:  `Manage the Equinix API credentials used for OAuth2 client-credentials authentication.`,
}

var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save API credentials to system keyring",
	Long: `Prompt for the Equinix client ID and client secret and store them in
your system's secure credential storage (Keychain on macOS, Credential
Manager on Windows, Secret Service on Linux).

Obtain credentials from the Equinix Customer Portal: Developer Settings > Apps.`,
	Run: runAuthSet,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials are configured and where they come from",
	Run:   runAuthStatus,
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored credentials from the system keyring",
	Run:   runAuthClear,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authClearCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) {
	for _, key := range config.ListAvailableSecretKeys() {
		// Read secret from stdin (without echo)
		fmt.Printf("Enter %s (input hidden): ", key)
		secretBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println() // New line after hidden input
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			os.Exit(1)
		}

		secret := string(secretBytes)
		if secret == "" {
			fmt.Fprintf(os.Stderr, "%s cannot be empty\n", key)
			os.Exit(1)
		}

		if err := config.SaveSecretToKeyring(key, secret); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving to keyring: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("✓ Saved %s to system keyring\n", key)
	}
}

func runAuthStatus(cmd *cobra.Command, args []string) {
	fmt.Println("Credential status:")
	fmt.Println("==================")

	for _, key := range config.ListAvailableSecretKeys() {
		// A .env file has already been folded into the environment by
		// config loading, so env covers both sources.
		envVar := config.EnvPrefix + "_" + strings.ToUpper(key)
		if value := os.Getenv(envVar); value != "" {
			fmt.Printf("  %s: %s (from %s)\n", key, maskSecret(value), envVar)
			continue
		}

		if value, err := config.GetSecretFromKeyring(key); err == nil && value != "" {
			fmt.Printf("  %s: %s (from keyring)\n", key, maskSecret(value))
			continue
		}

		fmt.Printf("  %s: (not set)\n", key)
	}

	fmt.Println()
	fmt.Printf("API URL: %s\n", cfg.APIURL)
}

func runAuthClear(cmd *cobra.Command, args []string) {
	for _, key := range config.ListAvailableSecretKeys() {
		err := config.DeleteSecretFromKeyring(key)
		switch {
		case err == nil:
			fmt.Printf("✓ Deleted %s from system keyring\n", key)
		case errors.Is(err, keyring.ErrNotFound):
			fmt.Printf("  %s not in keyring\n", key)
		default:
			fmt.Fprintf(os.Stderr, "Error deleting %s: %v\n", key, err)
			os.Exit(1)
		}
	}
}

// maskSecret masks a secret for display.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
