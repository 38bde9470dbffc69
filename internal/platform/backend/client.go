// Package backend wraps HTTP calls to the REST accounting backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxErrorBody = 64 << 10

// Client performs JSON requests against the backend with bearer-token auth.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithHTTPClient swaps the underlying transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Token  string
	Query  url.Values
	Body   any
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Do executes the request and decodes a JSON response into out when non-nil.
func (c *Client) Do(ctx context.Context, in Request, out any) error {
	target := c.baseURL + in.Path
	if len(in.Query) > 0 {
		target += "?" + in.Query.Encode()
	}

	var body io.Reader
	if in.Body != nil {
		raw, err := json.Marshal(in.Body)
		if err != nil {
			return fmt.Errorf("backend: encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, in.Method, target, body)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.Token != "" {
		req.Header.Set("Authorization", "Bearer "+in.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("backend: decode %s %s: %w", in.Method, in.Path, err)
	}
	return nil
}

// Get is a shorthand for a GET request.
func (c *Client) Get(ctx context.Context, path, token string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token, Query: query}, out)
}

// Post is a shorthand for a POST request.
func (c *Client) Post(ctx context.Context, path, token string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Token: token, Body: body}, out)
}

// Patch is a shorthand for a PATCH request.
func (c *Client) Patch(ctx context.Context, path, token string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Token: token, Body: body}, out)
}

// Delete is a shorthand for a DELETE request.
func (c *Client) Delete(ctx context.Context, path, token string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Token: token}, nil)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := http.StatusText(resp.StatusCode)
	var payload errorBody
	if len(raw) > 0 && json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Message != "":
			message = payload.Message
		case payload.Error != "":
			message = payload.Error
		}
	}
	return &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: message}
}
