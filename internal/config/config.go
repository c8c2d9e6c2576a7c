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

// Package config resolves smartview-mcp configuration from defaults, an
// optional .env file in the working directory, EQUINIX_* environment
// variables, the OS keyring, and CLI flags bound by the caller.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const (
	// ServiceName identifies this application's entries in the OS keyring
	// (Keychain on macOS, Credential Manager on Windows, Secret Service on Linux).
	ServiceName = "com.equinix.smartview-mcp"

	// EnvPrefix is the environment variable prefix: EQUINIX_CLIENT_ID,
	// EQUINIX_CLIENT_SECRET, EQUINIX_API_URL and so on.
	EnvPrefix = "EQUINIX"

	// DefaultAPIURL is the Equinix API gateway.
	DefaultAPIURL = "https://api.equinix.com"

	// DefaultTimeoutSeconds bounds each upstream HTTP call.
	DefaultTimeoutSeconds = 30
)

// Config holds all configuration for the smartview-mcp server.
// Priority: CLI flags > environment variables > .env file > OS keyring > defaults
type Config struct {
	// ClientID is the Equinix API client ID.
	ClientID string `mapstructure:"client_id"`

	// ClientSecret is the Equinix API client secret.
	ClientSecret string `mapstructure:"client_secret"`

	// APIURL is the base URL of the Equinix API gateway.
	APIURL string `mapstructure:"api_url"`

	// TimeoutSeconds is the HTTP client timeout for upstream calls.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFile is the log destination; empty logs to stderr. stdout is
	// never an option because it carries the MCP stdio transport.
	LogFile string `mapstructure:"log_file"`

	// HTTPAddr is the listen address for the streamable HTTP transport.
	// Empty serves MCP over stdio.
	HTTPAddr string `mapstructure:"http_addr"`
}

// LoadConfig resolves configuration from all sources with proper priority:
// 1. Command line flags (bound to viper by the caller, highest priority)
// 2. Environment variables (EQUINIX_*)
// 3. .env file in the working directory
// 4. OS keyring (credentials only)
// 5. Defaults (lowest priority)
func LoadConfig() (*Config, error) {
	setDefaults()

	// A .env file seeds process env vars without overriding ones already
	// set, which gives .env exactly its slot below real env vars.
	_ = godotenv.Load()

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load credentials from keyring if not provided via CLI/env/.env.
	// Non-fatal: keyring might not be available - user can provide
	// credentials via env vars or flags.
	_ = loadSecretsFromKeyring(&config)

	return &config, nil
}

// setDefaults sets default configuration values. Every key is registered
// here so AutomaticEnv lookups reach it during Unmarshal.
func setDefaults() {
	viper.SetDefault("client_id", "")
	viper.SetDefault("client_secret", "")
	viper.SetDefault("api_url", DefaultAPIURL)
	viper.SetDefault("timeout_seconds", DefaultTimeoutSeconds)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file", "")
	viper.SetDefault("http_addr", "")
}

// SecretMapping defines how to load a secret from keyring into the config.
// The key is the keyring key name, and the setter is a function that applies the value to the config.
type SecretMapping struct {
	KeyringKey string
	Setter     func(*Config, string)
	IsSet      func(*Config) bool // Returns true if the value is already set (skip keyring lookup)
}

// GetSecretMappings returns all secret mappings for the application.
func GetSecretMappings() []SecretMapping {
	return []SecretMapping{
		{
			KeyringKey: "client_id",
			Setter:     func(c *Config, val string) { c.ClientID = val },
			IsSet:      func(c *Config) bool { return c.ClientID != "" },
		},
		{
			KeyringKey: "client_secret",
			Setter:     func(c *Config, val string) { c.ClientSecret = val },
			IsSet:      func(c *Config) bool { return c.ClientSecret != "" },
		},
	}
}

// loadSecretsFromKeyring loads credentials from the system keyring using
// the secret mappings. Values already set from a higher-priority source
// are left alone.
func loadSecretsFromKeyring(config *Config) error {
	for _, mapping := range GetSecretMappings() {
		// Skip if value is already set (from CLI/env/.env)
		if mapping.IsSet(config) {
			continue
		}

		// Try to load from keyring
		value, err := GetSecretFromKeyring(mapping.KeyringKey)
		if err == nil && value != "" {
			mapping.Setter(config, value)
		}
		// Non-fatal: if keyring doesn't have the key, just continue
	}

	return nil
}

// GetSecretFromKeyring retrieves a secret from the system keyring.
func GetSecretFromKeyring(key string) (string, error) {
	return keyring.Get(ServiceName, key)
}

// SaveSecretToKeyring saves a secret to the system keyring.
func SaveSecretToKeyring(key, value string) error {
	return keyring.Set(ServiceName, key, value)
}

// DeleteSecretFromKeyring removes a secret from the system keyring.
func DeleteSecretFromKeyring(key string) error {
	return keyring.Delete(ServiceName, key)
}

// ListAvailableSecretKeys returns all known secret keys that can be stored in the keyring.
// Useful for CLI commands that need to show available options.
func ListAvailableSecretKeys() []string {
	mappings := GetSecretMappings()
	keys := make([]string, len(mappings))
	for i, mapping := range mappings {
		keys[i] = mapping.KeyringKey
	}
	return keys
}
