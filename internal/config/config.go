// Package config loads application configuration from file, environment,
// and defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"solana-whale-scan/internal/logging"
	"solana-whale-scan/internal/solana"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	RPC        RPCConfig        `mapstructure:"rpc"`
	Scan       ScanConfig       `mapstructure:"scan"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// RPCConfig covers node access. Endpoint is mandatory.
type RPCConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	WSEndpoint string        `mapstructure:"ws_endpoint"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ScanConfig governs the ingestion and aggregation stages.
type ScanConfig struct {
	Mint         string        `mapstructure:"mint"`
	PageSize     int           `mapstructure:"page_size"`
	PageDelay    time.Duration `mapstructure:"page_delay"`
	WindowSecs   int64         `mapstructure:"window_secs"`
	BatchSize    int           `mapstructure:"batch_size"`
	DetailTries  int           `mapstructure:"detail_tries"`
	DetailDelay  time.Duration `mapstructure:"detail_delay"`
	BatchDelay   time.Duration `mapstructure:"batch_delay"`
	Threshold    float64       `mapstructure:"threshold"`
	ArtifactsDir string        `mapstructure:"artifacts_dir"`
}

// PricingConfig captures quote-service connectivity.
type PricingConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchDelay   time.Duration `mapstructure:"batch_delay"`
	CacheEntries int           `mapstructure:"cache_entries"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// EnrichmentConfig governs the portfolio enrichment stage.
type EnrichmentConfig struct {
	MinBalance   float64 `mapstructure:"min_balance"`
	TopHoldings  int     `mapstructure:"top_holdings"`
	OwnersPerSec int     `mapstructure:"owners_per_sec"`
}

// StorageConfig selects the portfolio ledger backend and the optional
// trade archive.
type StorageConfig struct {
	Backend    string           `mapstructure:"backend"` // file, memory, postgres
	File       FileConfig       `mapstructure:"file"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
}

// FileConfig locates the JSON ledger document.
type FileConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig encapsulates PostgreSQL connectivity.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ClickHouseConfig enables the analytics trade archive.
type ClickHouseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WHALESCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "whalescan")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("rpc.max_retries", 5)
	v.SetDefault("rpc.retry_delay", "1s")
	v.SetDefault("rpc.timeout", "30s")

	v.SetDefault("scan.page_size", 1000)
	v.SetDefault("scan.page_delay", "1s")
	v.SetDefault("scan.window_secs", int64(1800))
	v.SetDefault("scan.batch_size", 45)
	v.SetDefault("scan.detail_tries", 3)
	v.SetDefault("scan.detail_delay", "1s")
	v.SetDefault("scan.batch_delay", "1s")
	v.SetDefault("scan.threshold", 2000000.0)
	v.SetDefault("scan.artifacts_dir", "artifacts")

	v.SetDefault("pricing.base_url", "https://api.jup.ag/price/v2")
	v.SetDefault("pricing.batch_size", 100)
	v.SetDefault("pricing.batch_delay", "1s")
	v.SetDefault("pricing.cache_entries", 2048)
	v.SetDefault("pricing.cache_ttl", "5m")

	v.SetDefault("enrichment.min_balance", 20000.0)
	v.SetDefault("enrichment.top_holdings", 20)
	v.SetDefault("enrichment.owners_per_sec", 30)

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.file.path", "portfolios.json")
	v.SetDefault("storage.clickhouse.enabled", false)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
// A missing RPC endpoint or tracked mint aborts before any work starts.
func (c *Config) Validate() error {
	if c.RPC.Endpoint == "" {
		return fmt.Errorf("rpc.endpoint must be configured")
	}
	if c.Scan.Mint == "" {
		return fmt.Errorf("scan.mint must be configured")
	}
	if err := solana.ValidateAddress(c.Scan.Mint); err != nil {
		return fmt.Errorf("scan.mint is not a valid address: %w", err)
	}
	if c.Scan.PageSize <= 0 {
		return fmt.Errorf("scan.page_size must be greater than zero")
	}
	if c.Scan.BatchSize <= 0 {
		return fmt.Errorf("scan.batch_size must be greater than zero")
	}
	if c.Scan.Threshold < 0 {
		return fmt.Errorf("scan.threshold cannot be negative")
	}
	if c.Pricing.BaseURL == "" {
		return fmt.Errorf("pricing.base_url must be configured")
	}
	if c.Enrichment.TopHoldings <= 0 {
		return fmt.Errorf("enrichment.top_holdings must be greater than zero")
	}
	switch c.Storage.Backend {
	case "file", "memory":
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn must be configured for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.ClickHouse.Enabled && c.Storage.ClickHouse.DSN == "" {
		return fmt.Errorf("storage.clickhouse.dsn must be configured when the archive is enabled")
	}
	return nil
}
