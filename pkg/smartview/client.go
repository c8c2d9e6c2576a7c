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

// Package smartview provides an authenticated client for the Equinix
// SmartView DCIM APIs. The client owns the OAuth2 client-credentials
// lifecycle: it acquires an access token lazily, caches it, refreshes
// it before expiry, and re-authenticates once when the upstream answers
// 401. Callers issue plain REST calls through Request and never touch
// tokens directly.
package smartview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultBaseURL is the Equinix API gateway.
	DefaultBaseURL = "https://api.equinix.com"

	// DefaultTimeout bounds every upstream call, token grants included.
	DefaultTimeout = 30 * time.Second

	tokenPath   = "/oauth2/v1/token"
	refreshPath = "/oauth2/v1/refreshaccesstoken"
)

// Config holds construction parameters for Client.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string        // Default: https://api.equinix.com
	Timeout      time.Duration // Default: 30s
	HTTPClient   *http.Client  // Optional; overrides Timeout when set
	Logger       *zap.Logger
}

// Client calls the SmartView REST APIs with a cached OAuth2 token
// attached. It is safe for concurrent use: the token is the only shared
// mutable state and every check-then-refresh runs as a single critical
// section, so concurrent callers never race to refresh. Outbound data
// calls proceed in parallel outside the lock.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger

	mu    sync.Mutex // guards token and serializes grant exchanges
	token *Token

	now func() time.Time // test hook
}

// NewClient validates the credentials and constructs a client. No
// network traffic happens here; the first token grant is lazy.
func NewClient(config Config) (*Client, error) {
	if config.ClientID == "" {
		return nil, &ConfigError{Field: "client_id", Reason: "is required"}
	}
	if config.ClientSecret == "" {
		return nil, &ConfigError{Field: "client_secret", Reason: "is required"}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		httpClient:   httpClient,
		logger:       config.Logger,
		now:          time.Now,
	}, nil
}

// BaseURL returns the configured API gateway address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticate forces a full client-credentials exchange, replacing any
// cached token.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticateLocked(ctx)
}

// RefreshAccessToken exchanges the stored refresh token for a new
// access token. It fails with AuthError when no refresh token is
// stored, the refresh token has outlived its validity window, or the
// endpoint rejects it. Callers normally rely on EnsureValidToken,
// which owns the fallback-to-authenticate policy.
func (c *Client) RefreshAccessToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// EnsureValidToken guarantees that, on successful return, the cached
// token has at least five minutes of remaining validity. With no token
// it authenticates; with a token inside the expiry margin it refreshes,
// falling back to a full authenticate when the refresh fails. The whole
// check-then-refresh is one critical section: under concurrency the
// first caller performs the grant and later callers see the fresh token.
func (c *Client) EnsureValidToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil || c.token.AccessToken == "" {
		return c.authenticateLocked(ctx)
	}
	if !c.token.ExpiresWithin(c.now(), ExpiryMargin) {
		return nil
	}

	if err := c.refreshLocked(ctx); err != nil {
		c.logger.Warn("token refresh failed, falling back to full authentication", zap.Error(err))
		return c.authenticateLocked(ctx)
	}
	return nil
}

// authenticateLocked performs the client-credentials grant. Callers
// must hold c.mu.
func (c *Client) authenticateLocked(ctx context.Context) error {
	grant := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
	}
	resp, err := c.exchange(ctx, "authenticate", tokenPath, grant)
	if err != nil {
		return err
	}
	c.storeGrantLocked(resp)
	c.logger.Debug("authenticated",
		zap.Time("expires_at", c.token.ExpiresAt),
		zap.Bool("has_refresh_token", c.token.RefreshToken != ""))
	return nil
}

// refreshLocked performs the refresh-token grant. Callers must hold c.mu.
func (c *Client) refreshLocked(ctx context.Context) error {
	if c.token == nil || c.token.RefreshToken == "" {
		return &AuthError{Op: "refresh", Message: "no refresh token stored"}
	}
	if !c.token.RefreshExpiresAt.IsZero() && !c.now().Before(c.token.RefreshExpiresAt) {
		return &AuthError{Op: "refresh", Message: "refresh token expired"}
	}

	grant := map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"refresh_token": c.token.RefreshToken,
	}
	resp, err := c.exchange(ctx, "refresh", refreshPath, grant)
	if err != nil {
		return err
	}
	c.storeGrantLocked(resp)
	c.logger.Debug("access token refreshed", zap.Time("expires_at", c.token.ExpiresAt))
	return nil
}

// storeGrantLocked installs a grant response as the live token. A
// refresh response may omit the refresh token, in which case the
// previous one stays valid and is kept. Callers must hold c.mu.
func (c *Client) storeGrantLocked(resp tokenResponse) {
	now := c.now()
	tok := &Token{
		AccessToken:  resp.AccessToken,
		ExpiresAt:    now.Add(resp.lifetime()),
		RefreshToken: resp.RefreshToken,
	}
	if tok.RefreshToken != "" {
		tok.RefreshExpiresAt = now.Add(resp.refreshLifetime())
	} else if c.token != nil {
		tok.RefreshToken = c.token.RefreshToken
		tok.RefreshExpiresAt = c.token.RefreshExpiresAt
	}
	c.token = tok
}

// exchange POSTs a JSON grant request to an oauth2 endpoint and decodes
// the response. All failures, including transport errors, surface as
// AuthError: an unreachable token endpoint and rejected credentials are
// the same condition to callers.
func (c *Client) exchange(ctx context.Context, op, path string, grant map[string]string) (tokenResponse, error) {
	body, err := json.Marshal(grant)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("failed to marshal grant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return tokenResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, &AuthError{Op: op, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return tokenResponse{}, &AuthError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var resp tokenResponse
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &resp) == nil {
			// Prefer the structured OAuth error fields over the raw body.
			if resp.ErrorDescription != "" {
				msg = resp.ErrorDescription
			} else if resp.ErrorCode != "" {
				msg = resp.ErrorCode
			}
		}
		return tokenResponse{}, &AuthError{Op: op, StatusCode: httpResp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(respBody, &resp); err != nil {
		return tokenResponse{}, &AuthError{Op: op, Err: fmt.Errorf("failed to unmarshal token response: %w", err)}
	}
	if resp.AccessToken == "" {
		return tokenResponse{}, &AuthError{Op: op, StatusCode: httpResp.StatusCode, Message: "response missing access_token"}
	}
	return resp, nil
}

// Request issues an authenticated call against the data API. It ensures
// token validity, attaches the bearer header, and sends the call. A 401
// triggers exactly one full re-authentication and one retry; a second
// 401 surfaces as AuthError rather than another attempt. Any other
// non-2xx answer surfaces as HTTPError with status and body context.
// Responses with a JSON content type return as raw JSON; other bodies
// are wrapped as a JSON string so callers always receive valid JSON.
func (c *Client) Request(ctx context.Context, method, path string, query Params, body any) ([]byte, error) {
	if err := c.EnsureValidToken(ctx); err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = b
	}

	fullURL := c.baseURL + path
	if qs := query.Encode(); qs != "" {
		fullURL += "?" + qs
	}

	httpResp, respBody, err := c.send(ctx, method, fullURL, payload)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode == http.StatusUnauthorized {
		// Exactly one re-authentication and one retry. The bound is per
		// logical request: systemically invalid credentials must not loop.
		c.logger.Warn("received 401 from data API, re-authenticating once",
			zap.String("method", method), zap.String("path", path))
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
		httpResp, respBody, err = c.send(ctx, method, fullURL, payload)
		if err != nil {
			return nil, err
		}
		if httpResp.StatusCode == http.StatusUnauthorized {
			return nil, &AuthError{
				Op:         "request",
				StatusCode: httpResp.StatusCode,
				Message:    fmt.Sprintf("still unauthorized after re-authentication: %s", strings.TrimSpace(string(respBody))),
			}
		}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &HTTPError{
			Method:     method,
			URL:        fullURL,
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       string(respBody),
		}
	}

	if len(respBody) == 0 {
		return []byte("null"), nil
	}
	mediaType, _, _ := mime.ParseMediaType(httpResp.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return respBody, nil
	}
	wrapped, err := json.Marshal(string(respBody))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap response body: %w", err)
	}
	return wrapped, nil
}

// send performs a single attempt. The request is built fresh on each
// call so the body and the bearer header are current after a mid-flight
// re-authentication.
func (c *Client) send(ctx context.Context, method, fullURL string, payload []byte) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &HTTPError{Method: method, URL: fullURL, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, nil, &HTTPError{Method: method, URL: fullURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return httpResp, respBody, nil
}

// bearerToken snapshots the current access token under the lock.
func (c *Client) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return ""
	}
	return c.token.AccessToken
}

// Get issues an authenticated GET against the data API.
func (c *Client) Get(ctx context.Context, path string, query Params) ([]byte, error) {
	return c.Request(ctx, http.MethodGet, path, query, nil)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.Request(ctx, http.MethodPost, path, nil, body)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, error) {
	return c.Request(ctx, http.MethodPut, path, nil, body)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}
