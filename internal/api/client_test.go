package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

const (
	testCollection = "EQcollection"
	testTON        = "EQton"
	testJetton     = "EQjetton"
)

// newTestClient points every source at server and captures logs.
func newTestClient(t *testing.T, server *httptest.Server) (*Client, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := NewClient(
		Endpoints{
			Getgems:   server.URL + "/graphql",
			Price:     server.URL + "/token_price",
			Stonfi:    server.URL + "/v1",
			Fragment:  server.URL + "/numbers?sort=price_asc&filter=sale",
			XRare:     server.URL + "/api/v1/nfts",
			MarketApp: server.URL + "/collection",
		},
		Collection{Address: testCollection, TONAddress: testTON, JettonAddress: testJetton},
		WithLogger(logger),
		WithTimeout(2*time.Second),
	)
	return c, &logs
}

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient(Endpoints{Getgems: "https://api.example.com"}, Collection{Address: "C"})

		if c.endpoints.Getgems != "https://api.example.com" {
			t.Errorf("Getgems = %q, want %q", c.endpoints.Getgems, "https://api.example.com")
		}
		if c.collection.Address != "C" {
			t.Errorf("collection = %q, want %q", c.collection.Address, "C")
		}
		if c.httpClient.Timeout != 10*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 10*time.Second)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
		if c.userAgent == "" {
			t.Error("userAgent should not be empty")
		}
	})

	t.Run("with timeout option", func(t *testing.T) {
		c := NewClient(Endpoints{}, Collection{}, WithTimeout(5*time.Second))
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
	})

	t.Run("with logger option", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient(Endpoints{}, Collection{}, WithLogger(logger))
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
	})

	t.Run("nil logger keeps default", func(t *testing.T) {
		c := NewClient(Endpoints{}, Collection{}, WithLogger(nil))
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with custom HTTP client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 3 * time.Second}
		c := NewClient(Endpoints{}, Collection{}, WithHTTPClient(customClient))
		if c.httpClient != customClient {
			t.Error("custom HTTP client not set")
		}
	})

	t.Run("with user agent", func(t *testing.T) {
		c := NewClient(Endpoints{}, Collection{}, WithUserAgent("TestBrowser/1.0"))
		if c.userAgent != "TestBrowser/1.0" {
			t.Errorf("userAgent = %q, want %q", c.userAgent, "TestBrowser/1.0")
		}
	})

	t.Run("with api user agent", func(t *testing.T) {
		c := NewClient(Endpoints{}, Collection{}, WithAPIUserAgent("nft-pricewatch/1.0"))
		if c.apiAgent != "nft-pricewatch/1.0" {
			t.Errorf("apiAgent = %q, want %q", c.apiAgent, "nft-pricewatch/1.0")
		}
	})
}

// TestErrors tests the error types.
func TestErrors(t *testing.T) {
	t.Run("APIError message", func(t *testing.T) {
		err := &APIError{Source: "getgems", StatusCode: 404}
		expected := "getgems api error 404: Not Found"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("TransportError unwraps", func(t *testing.T) {
		err := &TransportError{Source: "price", Err: context.DeadlineExceeded}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Error("TransportError should unwrap to its cause")
		}
	})

	t.Run("ParseError message", func(t *testing.T) {
		err := &ParseError{Source: "xrare", Field: "ton_price", Err: errors.New("missing")}
		expected := "xrare parse ton_price: missing"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})
}

// TestDoRequest tests the shared request path.
func TestDoRequest(t *testing.T) {
	t.Run("successful request with query and headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("Method = %q, want POST", r.Method)
			}
			if r.URL.Query().Get("units") != "10" {
				t.Errorf("units = %q, want %q", r.URL.Query().Get("units"), "10")
			}
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept = %q, want application/json", r.Header.Get("Accept"))
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", r.Header.Get("Content-Type"))
			}
			if r.Header.Get("User-Agent") != "pricewatch-test" {
				t.Errorf("User-Agent = %q, want pricewatch-test", r.Header.Get("User-Agent"))
			}
			b, _ := io.ReadAll(r.Body)
			if string(b) != `{"a":1}` {
				t.Errorf("body = %q", b)
			}
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		c, _ := newTestClient(t, server)
		WithAPIUserAgent("pricewatch-test")(c)
		body, err := c.do(context.Background(), request{
			source: "test",
			method: http.MethodPost,
			url:    server.URL,
			query:  map[string][]string{"units": {"10"}},
			body:   []byte(`{"a":1}`),
			accept: "application/json",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `{"ok": true}` {
			t.Errorf("body = %q, want %q", body, `{"ok": true}`)
		}
	})

	t.Run("non-2xx returns APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`maintenance`))
		}))
		defer server.Close()

		c, _ := newTestClient(t, server)
		_, err := c.do(context.Background(), request{source: "test", method: http.MethodGet, url: server.URL})
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T", err)
		}
		if apiErr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusServiceUnavailable)
		}
		if !strings.Contains(string(apiErr.Body), "maintenance") {
			t.Errorf("Body = %q, should contain 'maintenance'", apiErr.Body)
		}
	})

	t.Run("connection refused returns TransportError", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		c, _ := newTestClient(t, server)
		_, err := c.do(context.Background(), request{source: "test", method: http.MethodGet, url: url})
		var tErr *TransportError
		if !errors.As(err, &tErr) {
			t.Fatalf("expected *TransportError, got %T (%v)", err, err)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		c, _ := newTestClient(t, server)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.do(ctx, request{source: "test", method: http.MethodGet, url: server.URL})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error should wrap context.Canceled, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		c, _ := newTestClient(t, server)
		c.httpClient.Timeout = 20 * time.Millisecond
		_, err := c.do(context.Background(), request{source: "test", method: http.MethodGet, url: server.URL})
		var tErr *TransportError
		if !errors.As(err, &tErr) {
			t.Fatalf("expected *TransportError, got %T (%v)", err, err)
		}
	})

	t.Run("invalid json returns ParseError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		c, _ := newTestClient(t, server)
		var out map[string]any
		err := c.doJSON(context.Background(), request{source: "test", method: http.MethodGet, url: server.URL}, &out)
		var pErr *ParseError
		if !errors.As(err, &pErr) {
			t.Fatalf("expected *ParseError, got %T (%v)", err, err)
		}
	})
}

func TestReport(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	c, logs := newTestClient(t, server)

	v := 1
	if got := report(c, "test", &v, nil); got != &v {
		t.Error("report should pass through a value without error")
	}
	if got := report(c, "test", &v, errors.New("boom")); got != nil {
		t.Error("report should drop the value on error")
	}
	if !strings.Contains(logs.String(), "source fetch failed") || !strings.Contains(logs.String(), "boom") {
		t.Errorf("failure not logged: %s", logs.String())
	}
	if got := report(c, "test", &v, ErrNoListing); got != nil {
		t.Error("report should drop the value when nothing is listed")
	}
	if !strings.Contains(logs.String(), "source has no listing") {
		t.Errorf("empty listing not logged: %s", logs.String())
	}
}
