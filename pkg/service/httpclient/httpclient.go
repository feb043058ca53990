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
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/billyperformance/druid/pkg/logger"
	"github.com/billyperformance/druid/pkg/sentry"
)

// DefaultDownloadTimeout bounds a whole download, including reading the body.
const DefaultDownloadTimeout = 15 * time.Minute

var defaultTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:          10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ResponseHeaderTimeout: 60 * time.Second,
	// archives are already compressed
	DisableCompression: true,
}

// HTTPClient fetches release artifacts.
type HTTPClient interface {
	// GetWithBody performs a GET request and returns the response and body.
	// Non-2xx responses are returned as errors.
	GetWithBody(ctx context.Context, url string) (*http.Response, []byte, error)
}

// DefaultHTTPClient is the default implementation of HTTPClient.
type DefaultHTTPClient struct {
	client *http.Client
	logger *zap.SugaredLogger
}

// NewDefaultHTTPClient creates a client with DefaultDownloadTimeout.
func NewDefaultHTTPClient() *DefaultHTTPClient {
	return &DefaultHTTPClient{
		client: &http.Client{
			Transport: defaultTransport,
			Timeout:   DefaultDownloadTimeout,
		},
		logger: logger.For(logger.ComponentDistribution),
	}
}

// WithTimeout overrides the overall request timeout.
func (c *DefaultHTTPClient) WithTimeout(timeout time.Duration) *DefaultHTTPClient {
	c.client.Timeout = timeout
	return c
}

// GetWithBody performs a GET request and returns both the response and body.
func (c *DefaultHTTPClient) GetWithBody(ctx context.Context, url string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	c.logger.Debugf("Downloading %s", url)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute request for %s: %w", url, err)
	}
	if resp == nil {
		return nil, nil, fmt.Errorf("received nil response for %s", url)
	}
	defer func() {
		err := resp.Body.Close()
		if err != nil {
			sentry.ReportIssuef(sentry.IssueTypeError, c.logger, "failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil, fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("failed to read response body for %s: %w", url, err)
	}

	return resp, body, nil
}
