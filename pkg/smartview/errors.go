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

import "fmt"

// AuthError reports an authentication failure: invalid client
// credentials, a refresh token that is absent, expired, or rejected, or
// two consecutive 401s on the same logical request. It is never retried
// beyond the single documented re-authentication attempt.
type AuthError struct {
	Op         string // "authenticate", "refresh", or "request"
	StatusCode int    // upstream status, 0 for transport-level failures
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// HTTPError reports a non-auth upstream failure: a 4xx/5xx outside the
// single-retry 401 path, or a transport error (network failure,
// timeout). StatusCode is 0 when the request never completed.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("API error %d on %s %s: %s", e.StatusCode, e.Method, e.URL, e.Body)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// ConfigError reports missing or invalid client configuration. It is
// fatal: the client cannot be constructed without valid credentials.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}
