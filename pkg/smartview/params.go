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
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Params holds query parameters for a data request. Values may be
// strings, numbers, booleans, or lists; Values applies the cleaning the
// upstream expects.
type Params map[string]any

// Values converts p into url.Values: nil values, empty strings, and
// empty lists are dropped, and list values are joined with commas.
func (p Params) Values() url.Values {
	vals := url.Values{}
	for key, value := range p {
		if s, ok := formatParam(value); ok {
			vals.Set(key, s)
		}
	}
	return vals
}

// Encode returns the cleaned query string.
func (p Params) Encode() string {
	return p.Values().Encode()
}

func formatParam(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case []string:
		return joinList(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := formatParam(item); ok {
				parts = append(parts, s)
			}
		}
		return joinList(parts)
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		// JSON numbers decode as float64; integral values must not
		// render with a fraction or exponent.
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

func joinList(items []string) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	return strings.Join(items, ","), true
}
