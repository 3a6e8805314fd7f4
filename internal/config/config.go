// Package config loads and validates reposcan configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

// EnvPrefix prefixes every environment override, e.g. REPOSCAN_CRAWL_LANGUAGE.
const EnvPrefix = "REPOSCAN"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Forge   ForgeConfig   `mapstructure:"forge" toml:"forge"`
	Crawl   CrawlConfig   `mapstructure:"crawl" toml:"crawl"`
	Storage StorageConfig `mapstructure:"storage" toml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" toml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" toml:"metrics"`
}

// ForgeConfig controls the GitHub client.
type ForgeConfig struct {
	Token             string  `mapstructure:"token" toml:"token"`
	BaseURL           string  `mapstructure:"base_url" toml:"base_url"`
	GraphQLURL        string  `mapstructure:"graphql_url" toml:"graphql_url"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" toml:"requests_per_second"`
}

// CrawlConfig governs the crawl loop.
type CrawlConfig struct {
	SourceKey       string `mapstructure:"source_key" toml:"source_key"`
	Language        string `mapstructure:"language" toml:"language"`
	ManifestPath    string `mapstructure:"manifest_path" toml:"manifest_path"`
	LockPath        string `mapstructure:"lock_path" toml:"lock_path"`
	PageSize        int    `mapstructure:"page_size" toml:"page_size"`
	BatchSize       int    `mapstructure:"batch_size" toml:"batch_size"`
	FlushOrder      string `mapstructure:"flush_order" toml:"flush_order"`
	PersistPolicy   string `mapstructure:"persist_policy" toml:"persist_policy"`
	DedupeCacheSize int    `mapstructure:"dedupe_cache_size" toml:"dedupe_cache_size"`
}

// StorageConfig selects and configures the store.
type StorageConfig struct {
	Driver   string         `mapstructure:"driver" toml:"driver"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" toml:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" toml:"postgres"`
}

// SQLiteConfig locates the SQLite database.
type SQLiteConfig struct {
	DataDir string `mapstructure:"data_dir" toml:"data_dir"`
}

// PostgresConfig controls the Postgres connection pool.
type PostgresConfig struct {
	DSN         string `mapstructure:"dsn" toml:"dsn"`
	TablePrefix string `mapstructure:"table_prefix" toml:"table_prefix"`
	MaxConns    int32  `mapstructure:"max_conns" toml:"max_conns"`
	MinConns    int32  `mapstructure:"min_conns" toml:"min_conns"`
}

// LoggingConfig selects the zap preset.
type LoggingConfig struct {
	Development bool `mapstructure:"development" toml:"development"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" toml:"addr"`
}

// DefaultDir returns ~/.reposcan.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".reposcan"), nil
}

// DefaultPath returns ~/.reposcan/config.toml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load builds a Config from defaults, the optional file at path and the
// environment, in increasing precedence. The file format follows its extension.
func Load(path string) (Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the configuration used when no file or environment is set.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The conventional GitHub variable works as a fallback.
	_ = v.BindEnv("forge.token", EnvPrefix+"_FORGE_TOKEN", "GITHUB_TOKEN")

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("forge.token", "")
	v.SetDefault("forge.base_url", "https://api.github.com/")
	v.SetDefault("forge.graphql_url", "https://api.github.com/graphql")
	v.SetDefault("forge.timeout_seconds", 30)
	v.SetDefault("forge.requests_per_second", 1.2)
	v.SetDefault("crawl.source_key", "github")
	v.SetDefault("crawl.language", "Rust")
	v.SetDefault("crawl.manifest_path", "Cargo.toml")
	v.SetDefault("crawl.lock_path", "Cargo.lock")
	v.SetDefault("crawl.page_size", domain.MaxPageSize)
	v.SetDefault("crawl.batch_size", domain.MaxHydrationBatch)
	v.SetDefault("crawl.flush_order", string(domain.FlushNewestFirst))
	v.SetDefault("crawl.persist_policy", string(domain.PersistPerMatch))
	v.SetDefault("crawl.dedupe_cache_size", 100_000)
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite.data_dir", "")
	v.SetDefault("storage.postgres.dsn", "")
	v.SetDefault("storage.postgres.table_prefix", "reposcan_")
	v.SetDefault("storage.postgres.max_conns", 4)
	v.SetDefault("storage.postgres.min_conns", 0)
	v.SetDefault("logging.development", false)
	v.SetDefault("metrics.addr", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	var errs []error
	if c.Forge.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("forge.timeout_seconds must be > 0"))
	}
	if c.Forge.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("forge.requests_per_second must be > 0"))
	}
	if c.Crawl.SourceKey == "" {
		errs = append(errs, fmt.Errorf("crawl.source_key is required"))
	}
	if c.Crawl.Language == "" {
		errs = append(errs, fmt.Errorf("crawl.language is required"))
	}
	if c.Crawl.ManifestPath == "" || c.Crawl.LockPath == "" {
		errs = append(errs, fmt.Errorf("crawl.manifest_path and crawl.lock_path are required"))
	}
	if c.Crawl.PageSize < 1 || c.Crawl.PageSize > domain.MaxPageSize {
		errs = append(errs, fmt.Errorf("crawl.page_size must be between 1 and %d", domain.MaxPageSize))
	}
	if c.Crawl.BatchSize < 1 || c.Crawl.BatchSize > domain.MaxHydrationBatch {
		errs = append(errs, fmt.Errorf("crawl.batch_size must be between 1 and %d", domain.MaxHydrationBatch))
	}
	if !domain.FlushOrder(c.Crawl.FlushOrder).Valid() {
		errs = append(errs, fmt.Errorf("crawl.flush_order must be %q or %q",
			domain.FlushNewestFirst, domain.FlushFIFO))
	}
	if !domain.PersistPolicy(c.Crawl.PersistPolicy).Valid() {
		errs = append(errs, fmt.Errorf("crawl.persist_policy must be %q or %q",
			domain.PersistPerMatch, domain.PersistOnce))
	}
	if c.Crawl.DedupeCacheSize < 1 {
		errs = append(errs, fmt.Errorf("crawl.dedupe_cache_size must be > 0"))
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.Storage.Postgres.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be one of %s, %s, %s",
			DriverSQLite, DriverPostgres, DriverMemory))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// Timeout converts forge.timeout_seconds to a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Forge.TimeoutSeconds) * time.Second
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Forge.Token != "" {
		c.Forge.Token = "********"
	}
	if c.Storage.Postgres.DSN != "" {
		c.Storage.Postgres.DSN = "********"
	}
	return c
}
