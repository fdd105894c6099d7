// Package api wraps every backend operation in a typed call. Reads degrade
// to empty/nil sentinels (404 means "nothing yet", other failures are logged
// and absorbed); writes fail with a RequestError carrying the best message
// the response offered.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// The tunneling proxy in front of the backend interposes a warning page
// unless this header is present.
const proxyBypassHeader = "ngrok-skip-browser-warning"

// RequestError is a rejected mutation: non-2xx status with a best-effort
// message extracted from the JSON error body, falling back to the HTTP
// status text.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string { return e.Message }

// Client talks to the PR Manager REST backend. The token source is read on
// every request so a login or logout mid-session takes effect immediately.
type Client struct {
	baseURL     string
	http        *http.Client
	tokenSource func() string
	log         *zap.Logger
}

func NewClient(baseURL string, tokenSource func() string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:     baseURL,
		http:        &http.Client{Timeout: 30 * time.Second},
		tokenSource: tokenSource,
		log:         log,
	}
}

// AllowSelfSigned disables certificate verification. Local backends serve
// https with a dev certificate.
func (c *Client) AllowSelfSigned() {
	c.http.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
}

func (c *Client) headers(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(proxyBypassHeader, "true")
	if token := c.tokenSource(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	c.headers(req)
	return c.http.Do(req)
}

// writeJSON performs a mutating call and decodes the success body into out
// (skipped when out is nil). Non-2xx yields a RequestError.
func (c *Client) writeJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.writeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) writeError(resp *http.Response) error {
	message := resp.Status
	var body struct {
		Message string `json:"message"`
	}
	if raw, err := io.ReadAll(resp.Body); err == nil {
		if json.Unmarshal(raw, &body) == nil && body.Message != "" {
			message = body.Message
		}
	}
	return &RequestError{StatusCode: resp.StatusCode, Message: message}
}

// readJSON performs a read. On 404 it reports notFound without touching out;
// other non-2xx statuses become errors for the caller to absorb.
func (c *Client) readJSON(ctx context.Context, path string, out any) (notFound bool, err error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return false, json.NewDecoder(resp.Body).Decode(out)
}
