// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package properties

import (
	"strconv"
	"strings"

	"github.com/billyperformance/druid/pkg/config"
)

// String renders a scalar string unquoted.
func String(s string) string {
	return s
}

// Bool renders true or false.
func Bool(v bool) string {
	return strconv.FormatBool(v)
}

// Int renders a decimal integer.
func Int(n int64) string {
	return strconv.FormatInt(n, 10)
}

// List renders strings as a compact JSON array: ["a","b"].
func List(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	return mustJSON(items)
}

// SpacedList renders strings as a JSON array with a space after each comma:
// ["a", "b"]. The extension settings of the shared file use this form.
func SpacedList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = mustJSON(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// IntList renders integers as a compact JSON array: [1,10].
func IntList(items []int64) string {
	parts := make([]string, len(items))
	for i, n := range items {
		parts[i] = Int(n)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// HostList renders host:port pairs as a bare comma separated string.
func HostList(hosts []string) string {
	return strings.Join(hosts, ",")
}

// JSON renders a nested value as compact inline JSON in insertion order.
func JSON(v any) string {
	return mustJSON(v)
}

// mustJSON panics on values that cannot be encoded. Rendering only sees
// validated values, so a failure here is a programming error.
func mustJSON(v any) string {
	b, err := config.MarshalCompact(v)
	if err != nil {
		panic("properties: cannot encode value: " + err.Error())
	}
	return string(b)
}
