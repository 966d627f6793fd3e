package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultCollectionAddress = "EQAOQdwdw8kGftJCSFgOErM1mBjYPe4DBPq8-AhF6vr9si5N"
	DefaultTONAddress        = "EQAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAM9c"
	DefaultJettonAddress     = "EQC1bH4tFR2tEVQuW4i2RwwpccoaSy-GRQEqYrCKgZNfNw0r"

	DefaultGetgemsURL   = "https://api.getgems.io/graphql"
	DefaultPriceURL     = "https://api.geckoterminal.com/api/v2/simple/networks/ton/token_price"
	DefaultStonfiURL    = "https://api.ston.fi/v1"
	DefaultFragmentURL  = "https://fragment.com/numbers?sort=price_asc&filter=sale"
	DefaultXRareURL     = "https://api.xrare.io/api/v1/nfts"
	DefaultMarketAppURL = "https://marketapp.ws/collection"
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	DefaultGetgemsCommission   = 0.05
	DefaultFragmentCommission  = 0.05
	DefaultMarketAppCommission = 0.01

	DefaultPollInterval = 8 * time.Second
	MinRequestTimeout   = 5 * time.Second

	DefaultOutputPath = "nft_data.json"

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 4
	DefaultMinConns  = 1

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisKey  = "pricewatch:snapshot"

	DefaultMetricsPort = 9090
	DefaultMetricsPath = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

func (c *Config) applyDefaults() {
	// Collection defaults
	if c.Collection.Address == "" {
		c.Collection.Address = DefaultCollectionAddress
	}
	if c.Collection.TONAddress == "" {
		c.Collection.TONAddress = DefaultTONAddress
	}
	if c.Collection.JettonAddress == "" {
		c.Collection.JettonAddress = DefaultJettonAddress
	}

	// Source defaults
	if c.Sources.GetgemsURL == "" {
		c.Sources.GetgemsURL = DefaultGetgemsURL
	}
	if c.Sources.PriceURL == "" {
		c.Sources.PriceURL = DefaultPriceURL
	}
	if c.Sources.StonfiURL == "" {
		c.Sources.StonfiURL = DefaultStonfiURL
	}
	if c.Sources.FragmentURL == "" {
		c.Sources.FragmentURL = DefaultFragmentURL
	}
	if c.Sources.XRareURL == "" {
		c.Sources.XRareURL = DefaultXRareURL
	}
	if c.Sources.MarketAppURL == "" {
		c.Sources.MarketAppURL = DefaultMarketAppURL
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = DefaultUserAgent
	}

	// Commission defaults (nil means unset, 0 is kept)
	if c.Commissions.Getgems == nil {
		c.Commissions.Getgems = Rate(DefaultGetgemsCommission)
	}
	if c.Commissions.Fragment == nil {
		c.Commissions.Fragment = Rate(DefaultFragmentCommission)
	}
	if c.Commissions.MarketApp == nil {
		c.Commissions.MarketApp = Rate(DefaultMarketAppCommission)
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = max(c.Poller.Interval, MinRequestTimeout)
	}

	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}
	if c.Redis.Key == "" {
		c.Redis.Key = DefaultRedisKey
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 10 * c.Poller.Interval
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
