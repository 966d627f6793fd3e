package api

import (
	"log/slog"
	"net/http"
	"time"
)

// Source names used in logs and metrics.
const (
	SourceGetgems    = "getgems"
	SourcePrice      = "price"
	SourceStonfiBuy  = "stonfi_buy"
	SourceStonfiSell = "stonfi_sell"
	SourceFragment   = "fragment"
	SourceXRare      = "xrare"
	SourceMarketApp  = "marketapp"
)

// AllSources lists every source in fetch order.
var AllSources = []string{
	SourceGetgems,
	SourcePrice,
	SourceStonfiBuy,
	SourceStonfiSell,
	SourceFragment,
	SourceXRare,
	SourceMarketApp,
}

// Endpoints holds the base URL of every source.
type Endpoints struct {
	Getgems   string // GraphQL endpoint
	Price     string // token price base, token address is appended
	Stonfi    string // API root, /reverse_swap/simulate and /swap/simulate are appended
	Fragment  string // listing page
	XRare     string // search endpoint
	MarketApp string // collection base, collection address is appended
}

// Collection identifies what is being priced.
type Collection struct {
	Address       string // NFT collection
	TONAddress    string // native TON token id
	JettonAddress string // fractionalized collection jetton
}

// Client fetches every source over one shared, pooled http.Client.
type Client struct {
	endpoints  Endpoints
	collection Collection
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string // browser UA for scraped pages
	apiAgent   string // UA for JSON APIs, empty keeps the Go default
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new source client.
func NewClient(endpoints Endpoints, collection Collection, opts ...ClientOption) *Client {
	c := &Client{
		endpoints:  endpoints,
		collection: collection,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    slog.Default(),
		userAgent: "Mozilla/5.0",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the browser User-Agent sent to scraped pages.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithAPIUserAgent sets the User-Agent sent to JSON APIs.
func WithAPIUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.apiAgent = ua
	}
}
