package config

import "time"

// Config is the root configuration for a pricewatch instance.
type Config struct {
	Collection  CollectionConfig  `yaml:"collection"`
	Sources     SourcesConfig     `yaml:"sources"`
	Commissions CommissionsConfig `yaml:"commissions"`
	Poller      PollerConfig      `yaml:"poller"`
	Output      OutputConfig      `yaml:"output"`
	Database    DBConfig          `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CollectionConfig identifies the tracked collection and the swap pair.
type CollectionConfig struct {
	Address       string `yaml:"address"`        // NFT collection contract
	TONAddress    string `yaml:"ton_address"`    // native TON token id used by DEX and price oracle
	JettonAddress string `yaml:"jetton_address"` // fractionalized collection jetton
}

// SourcesConfig holds per-source endpoints.
type SourcesConfig struct {
	GetgemsURL   string `yaml:"getgems_url"`
	PriceURL     string `yaml:"price_url"` // base, token address is appended
	StonfiURL    string `yaml:"stonfi_url"`
	FragmentURL  string `yaml:"fragment_url"`
	XRareURL     string `yaml:"xrare_url"`
	MarketAppURL string `yaml:"marketapp_url"` // base, collection address is appended
	UserAgent    string `yaml:"user_agent"`    // browser UA for scraped pages
}

// CommissionsConfig holds marketplace sale commissions as fractions (0.05 = 5%).
// A nil rate is unset and takes its default; 0 is a valid rate.
type CommissionsConfig struct {
	Getgems   *float64 `yaml:"getgems"`
	Fragment  *float64 `yaml:"fragment"`
	MarketApp *float64 `yaml:"marketapp"`
}

// Rate returns a pointer to v, for setting commissions in code.
func Rate(v float64) *float64 {
	return &v
}

// RateValue dereferences a rate, reading nil as 0.
func RateValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// PollerConfig holds scheduler settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"` // sleep between cycles
	Timeout  time.Duration `yaml:"timeout"`  // per-request HTTP timeout
}

// OutputConfig holds the snapshot file location.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// DBConfig holds the optional PostgreSQL mirror of the latest snapshot.
type DBConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RedisConfig holds the optional Redis mirror of the latest snapshot.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Key      string        `yaml:"key"`
	TTL      time.Duration `yaml:"ttl"`
}

// MetricsConfig holds Prometheus metrics and health endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
