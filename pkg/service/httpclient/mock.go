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

package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// MockHTTPClient serves canned bodies keyed by URL.
type MockHTTPClient struct {
	mu sync.Mutex

	Bodies map[string][]byte
	Errors map[string]error

	// Requested records every requested URL in order
	Requested []string
}

// NewMockHTTPClient creates an empty mock. Unknown URLs return 404.
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		Bodies: make(map[string][]byte),
		Errors: make(map[string]error),
	}
}

// WithBody serves body for url.
func (m *MockHTTPClient) WithBody(url string, body []byte) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Bodies[url] = body
	return m
}

func (m *MockHTTPClient) GetWithBody(_ context.Context, url string) (*http.Response, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requested = append(m.Requested, url)

	if err, ok := m.Errors[url]; ok {
		return nil, nil, err
	}
	body, ok := m.Bodies[url]
	if !ok {
		resp := &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found", Body: io.NopCloser(bytes.NewReader(nil))}
		return resp, nil, fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}
	resp := &http.Response{StatusCode: http.StatusOK, Status: "200 OK", Body: io.NopCloser(bytes.NewReader(body))}
	return resp, body, nil
}
