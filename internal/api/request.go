package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// ErrNoListing reports a well-formed response that has nothing for sale.
var ErrNoListing = errors.New("no listing available")

// APIError represents a non-2xx response from a source.
type APIError struct {
	Source     string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error %d: %s", e.Source, e.StatusCode, http.StatusText(e.StatusCode))
}

// TransportError wraps connection, timeout and read failures.
type TransportError struct {
	Source string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a malformed body or a missing or invalid field.
type ParseError struct {
	Source string
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s parse: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s parse %s: %v", e.Source, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// request describes one outbound call.
type request struct {
	source string
	method string
	url    string
	query  url.Values
	body   []byte // nil sends no body
	accept string
	html   bool // send browser headers
}

// do performs an HTTP request and returns the response body.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	fullURL := r.url
	if len(r.query) > 0 {
		fullURL += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	if len(r.body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case r.html:
		req.Header.Set("User-Agent", c.userAgent)
	case c.apiAgent != "":
		req.Header.Set("User-Agent", c.apiAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Source: r.source, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Source: r.source, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("source responded",
		"source", r.source,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Source:     r.source,
			StatusCode: resp.StatusCode,
			Body:       data,
		}
	}

	return data, nil
}

// doJSON performs a request and decodes a JSON response into result.
func (c *Client) doJSON(ctx context.Context, r request, result any) error {
	if r.accept == "" {
		r.accept = "application/json"
	}
	data, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, result); err != nil {
		return &ParseError{Source: r.source, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	return nil
}

// report reduces a fetch outcome to an optional value, logging any failure.
func report[T any](c *Client, source string, v *T, err error) *T {
	switch {
	case errors.Is(err, ErrNoListing):
		c.logger.Info("source has no listing", "source", source)
		return nil
	case err != nil:
		c.logger.Warn("source fetch failed", "source", source, "err", err)
		return nil
	}
	return v
}
