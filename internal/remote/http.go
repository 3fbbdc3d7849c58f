// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dacolabs/records/internal/jschema"
)

const (
	// DefaultBaseURL is the public API endpoint of the platform.
	DefaultBaseURL = "https://api.notion.com/v1"
	// DefaultAPIVersion is sent in the version header of every request.
	DefaultAPIVersion = "2022-06-28"
)

// HTTPClient talks to the platform's REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	apiVersion string
	userAgent  string
	http       *http.Client
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.http = hc }
}

// WithAPIVersion overrides the API version header.
func WithAPIVersion(v string) HTTPOption {
	return func(c *HTTPClient) {
		if v != "" {
			c.apiVersion = v
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(c *HTTPClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewHTTPClient creates a client for baseURL authenticated with token.
func NewHTTPClient(baseURL, token string, opts ...HTTPOption) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		apiVersion: DefaultAPIVersion,
		userAgent:  "records",
		http:       http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RetrieveCollection fetches a collection's title and property schema.
func (c *HTTPClient) RetrieveCollection(ctx context.Context, collectionID string) (*Collection, error) {
	var raw struct {
		ID    string `json:"id"`
		Title []struct {
			PlainText string `json:"plain_text"`
		} `json:"title"`
		Properties map[string]PropertySchema `json:"properties"`
	}
	body, err := c.do(ctx, http.MethodGet, "/databases/"+url.PathEscape(collectionID), nil, &raw)
	if err != nil {
		return nil, err
	}

	col := &Collection{
		ID:         raw.ID,
		Properties: raw.Properties,
	}
	if len(raw.Title) > 0 {
		col.Title = raw.Title[0].PlainText
	}
	for name, p := range col.Properties {
		if p.Name == "" {
			p.Name = name
			col.Properties[name] = p
		}
	}
	// Order is informative only; a response we cannot walk still yields a usable schema.
	if order, err := jschema.KeyOrder(body, "properties"); err == nil {
		col.Order = order
	}
	return col, nil
}

// QueryCollection runs a filtered, sorted query against a collection.
func (c *HTTPClient) QueryCollection(ctx context.Context, collectionID string, params QueryParams) (*QueryResult, error) {
	var out QueryResult
	if _, err := c.do(ctx, http.MethodPost, "/databases/"+url.PathEscape(collectionID)+"/query", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRecord creates a record in a collection.
func (c *HTTPClient) CreateRecord(ctx context.Context, collectionID string, properties map[string]any) (*Record, error) {
	req := map[string]any{
		"parent":     map[string]any{"database_id": collectionID},
		"properties": properties,
	}
	var out Record
	if _, err := c.do(ctx, http.MethodPost, "/pages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRecord applies a partial update to a record.
func (c *HTTPClient) UpdateRecord(ctx context.Context, recordID string, params UpdateParams) (*Record, error) {
	var out Record
	if _, err := c.do(ctx, http.MethodPatch, "/pages/"+url.PathEscape(recordID), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetrieveRecord fetches a record by id, archived or not.
func (c *HTTPClient) RetrieveRecord(ctx context.Context, recordID string) (*Record, error) {
	var out Record
	if _, err := c.do(ctx, http.MethodGet, "/pages/"+url.PathEscape(recordID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		re := &Error{}
		if jsonErr := json.Unmarshal(body, re); jsonErr != nil || re.Message == "" {
			re.Message = strings.TrimSpace(string(body))
			if re.Message == "" {
				re.Message = http.StatusText(resp.StatusCode)
			}
		}
		re.Status = resp.StatusCode
		return nil, re
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("%s %s: decoding response: %w", method, path, err)
		}
	}
	return body, nil
}
