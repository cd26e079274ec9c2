// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	faerr "github.com/facetatlas/facetatlas/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by remote commands.
// Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}

// apiClient provides HTTP access to a running facetatlas server.
type apiClient struct {
	baseURL string
	http    *http.Client
}

// newAPIClient creates a client targeting the given host:port address.
func newAPIClient(addr string) *apiClient {
	return &apiClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *apiClient) getJSON(path string, dest any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return requestError(err)
	}
	return decodeResponse(resp, dest)
}

// postJSON sends body as JSON and decodes the response into dest.
func (c *apiClient) postJSON(path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return faerr.Errorf(faerr.CodeCLIRequestFailure, "encoding request: %w", err)
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return requestError(err)
	}
	return decodeResponse(resp, dest)
}

func requestError(err error) error {
	if isDialError(err) {
		return faerr.New(faerr.CodeCLIServerNotRunning, "server is not running (connection refused)")
	}
	return faerr.Errorf(faerr.CodeCLIRequestFailure, "request failed: %w", err)
}

func decodeResponse(resp *http.Response, dest any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return faerr.Errorf(faerr.CodeCLIRequestFailure, "server returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return faerr.Errorf(faerr.CodeCLIResponseInvalid, "invalid response: %w", err)
	}
	return nil
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
