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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/smartview-mcp/internal/version"
	"github.com/teradata-labs/smartview-mcp/pkg/mcp/server"
	"github.com/teradata-labs/smartview-mcp/pkg/mcp/transport"
	"github.com/teradata-labs/smartview-mcp/pkg/smartview"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serverName = "smartview-mcp"

// runServe builds the SmartView client and the tool bridge, then serves
// MCP until the client disconnects or a signal arrives.
func runServe(cmd *cobra.Command, args []string) {
	// Configure logging -- CRITICAL: never write to stdout (that's the MCP transport)
	logger := setupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting smartview-mcp server",
		zap.String("api_url", cfg.APIURL),
		zap.String("version", version.Get()),
	)

	client, err := smartview.NewClient(smartview.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		BaseURL:      cfg.APIURL,
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		Logger:       logger,
	})
	if err != nil {
		var cfgErr *smartview.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "Set EQUINIX_CLIENT_ID and EQUINIX_CLIENT_SECRET in the environment or a")
			fmt.Fprintln(os.Stderr, ".env file, or store them with 'smartview-mcp auth set'.")
			fmt.Fprintln(os.Stderr, "Obtain credentials from the Equinix Customer Portal: Developer Settings > Apps.")
			os.Exit(1)
		}
		logger.Fatal("failed to create SmartView client", zap.Error(err))
	}

	bridge, err := server.NewSmartViewBridge(client, logger,
		server.WithRequestTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		logger.Fatal("failed to build tool bridge", zap.Error(err))
	}

	mcpServer := server.NewMCPServer(serverName, version.Get(), logger,
		server.WithToolProvider(bridge),
	)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if cfg.HTTPAddr != "" {
		serveHTTP(ctx, mcpServer, logger)
		return
	}

	// Create stdio transport (reads from stdin, writes to stdout)
	stdioTransport := transport.NewStdioServerTransport(os.Stdin, os.Stdout)

	logger.Info("MCP server ready, awaiting client connections on stdio")
	if err := mcpServer.Serve(ctx, stdioTransport); err != nil {
		if ctx.Err() != nil {
			logger.Info("server stopped gracefully")
		} else {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}
}

// serveHTTP runs the streamable HTTP binding until the context is cancelled.
// The transport is unauthenticated, so anything beyond localhost is warned
// about before the listener starts.
func serveHTTP(ctx context.Context, mcpServer *server.MCPServer, logger *zap.Logger) {
	transport.WarnIfNotLocalhost(logger, cfg.HTTPAddr)

	httpTransport, err := transport.NewStreamableHTTPServer(transport.StreamableHTTPServerConfig{
		Handler: func(msg []byte) ([]byte, error) {
			return mcpServer.HandleMessage(ctx, msg)
		},
		Logger:     logger,
		SessionTTL: transport.DefaultSessionTTL,
	})
	if err != nil {
		logger.Fatal("failed to build HTTP transport", zap.Error(err))
	}
	defer httpTransport.Close()

	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     httpTransport,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("MCP server ready, awaiting client connections over HTTP", zap.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}

// setupLogger creates a zap logger that writes to a file (or stderr if no file specified).
// IMPORTANT: The logger must NEVER write to stdout because stdout is the MCP stdio transport.
func setupLogger(logFile, logLevel string) *zap.Logger {
	logger, err := buildLogger(logFile, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// buildLogger is the testable core of setupLogger. It returns an error instead
// of calling os.Exit so tests can exercise all code paths.
func buildLogger(logFile, logLevel string) (*zap.Logger, error) {
	level := parseLogLevel(logLevel)

	var output zapcore.WriteSyncer
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- log file path from CLI flag
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", logFile, err)
		}
		output = zapcore.AddSync(f)
	} else {
		// Write to stderr (not stdout!) as a fallback
		output = zapcore.AddSync(os.Stderr)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		output,
		level,
	)

	return zap.New(core), nil
}

// parseLogLevel converts a string log level to a zapcore.Level.
func parseLogLevel(logLevel string) zapcore.Level {
	switch logLevel {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
