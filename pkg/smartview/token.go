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
package smartview

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// ExpiryMargin is the safety window applied when checking token
	// validity: a token expiring within this margin is treated as
	// expired, absorbing request latency and clock skew.
	ExpiryMargin = 5 * time.Minute

	// defaultTokenLifetime applies when a grant response carries no
	// lifetime field.
	defaultTokenLifetime = 3600 * time.Second

	// defaultRefreshLifetime mirrors the upstream refresh token
	// validity window.
	defaultRefreshLifetime = 60 * 24 * time.Hour
)

// Token is the cached OAuth2 grant. It is owned exclusively by the
// Client, mutated only by the authenticate/refresh operations, and
// never persisted.
type Token struct {
	AccessToken      string
	ExpiresAt        time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time // zero when no refresh token is held
}

// ExpiresWithin reports whether the access token expires within d of now.
func (t *Token) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !t.ExpiresAt.After(now.Add(d))
}

// tokenResponse is the wire form of both grant endpoints. token_timeout
// and refresh_token_timeout are second counts that arrive as JSON
// strings or numbers depending on the gateway version; expires_in is an
// alternate name for token_timeout used by older gateways. The error
// fields are populated on rejected grants.
type tokenResponse struct {
	AccessToken         string  `json:"access_token"`
	TokenType           string  `json:"token_type"`
	TokenTimeout        seconds `json:"token_timeout"`
	ExpiresIn           seconds `json:"expires_in"`
	RefreshToken        string  `json:"refresh_token"`
	RefreshTokenTimeout seconds `json:"refresh_token_timeout"`
	ErrorCode           string  `json:"error"`
	ErrorDescription    string  `json:"error_description"`
}

// lifetime returns the access-token validity, defaulting to one hour
// when the response carries neither lifetime field.
func (r tokenResponse) lifetime() time.Duration {
	if r.TokenTimeout > 0 {
		return time.Duration(r.TokenTimeout) * time.Second
	}
	if r.ExpiresIn > 0 {
		return time.Duration(r.ExpiresIn) * time.Second
	}
	return defaultTokenLifetime
}

// refreshLifetime returns the refresh-token validity, defaulting to the
// documented 60 days.
func (r tokenResponse) refreshLifetime() time.Duration {
	if r.RefreshTokenTimeout > 0 {
		return time.Duration(r.RefreshTokenTimeout) * time.Second
	}
	return defaultRefreshLifetime
}

// seconds decodes a JSON number or numeric string into a second count.
type seconds int64

func (s *seconds) UnmarshalJSON(data []byte) error {
	str := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if str == "" || str == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid second count %q", str)
	}
	*s = seconds(n)
	return nil
}
