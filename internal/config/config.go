// Package config loads and validates subjectwatch configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Driver names the page driver implementations.
const (
	DriverHeadless = "headless"
	DriverStatic   = "static"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Source    SourceConfig    `mapstructure:"source"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Snapshots SnapshotsConfig `mapstructure:"snapshots"`
	Books     BooksConfig     `mapstructure:"books"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// SourceConfig describes the taxonomy site being scraped.
type SourceConfig struct {
	// Driver selects "headless" (chromedp) or "static" (colly).
	Driver    string `mapstructure:"driver"`
	UserAgent string `mapstructure:"user_agent"`
	// CategoryURLs is the ordered list of category pages to scrape.
	CategoryURLs []string `mapstructure:"category_urls"`
	// HeadingSelector locates the page's designated title element.
	HeadingSelector string `mapstructure:"heading_selector"`
	// BlockSelector locates the flat sequence of text blocks.
	BlockSelector string `mapstructure:"block_selector"`
}

// FetchConfig bounds a single page fetch.
type FetchConfig struct {
	MaxAttempts       int `mapstructure:"max_attempts"`
	TimeoutSeconds    int `mapstructure:"timeout_seconds"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds"`
}

// BatchConfig paces the sequential batch run.
type BatchConfig struct {
	MinDelayMs int `mapstructure:"min_delay_ms"`
	MaxDelayMs int `mapstructure:"max_delay_ms"`
}

// SnapshotsConfig sets where snapshots are stored.
type SnapshotsConfig struct {
	Dir  string `mapstructure:"dir"`
	Name string `mapstructure:"name"`
}

// BooksConfig points at the book-metadata source.
type BooksConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig toggles the Prometheus progress sink.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SUBJECTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.driver", DriverHeadless)
	v.SetDefault("source.user_agent", "subjectwatch/1.0")
	v.SetDefault("source.heading_selector", "h1")
	v.SetDefault("source.block_selector", "p")
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.retry_delay_seconds", 5)
	v.SetDefault("batch.min_delay_ms", 2000)
	v.SetDefault("batch.max_delay_ms", 6000)
	v.SetDefault("snapshots.dir", "data/snapshots")
	v.SetDefault("snapshots.name", "taxonomy")
	v.SetDefault("books.base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("books.timeout_seconds", 15)
	v.SetDefault("logging.development", true)
	v.SetDefault("metrics.enabled", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	switch c.Source.Driver {
	case DriverHeadless, DriverStatic:
	default:
		return fmt.Errorf("source.driver must be %q or %q", DriverHeadless, DriverStatic)
	}
	if c.Fetch.MaxAttempts < 1 {
		return fmt.Errorf("fetch.max_attempts must be >= 1")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Batch.MinDelayMs < 0 {
		return fmt.Errorf("batch.min_delay_ms must be >= 0")
	}
	if c.Batch.MaxDelayMs < c.Batch.MinDelayMs {
		return fmt.Errorf("batch.max_delay_ms must be >= batch.min_delay_ms")
	}
	if strings.TrimSpace(c.Snapshots.Dir) == "" {
		return fmt.Errorf("snapshots.dir must be set")
	}
	return nil
}

// FetchTimeout returns the per-attempt navigation timeout.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RetryDelay returns the flat delay between fetch attempts.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Fetch.RetryDelaySeconds) * time.Second
}

// DelayWindow returns the jittered inter-request pause bounds.
func (c Config) DelayWindow() (time.Duration, time.Duration) {
	return time.Duration(c.Batch.MinDelayMs) * time.Millisecond,
		time.Duration(c.Batch.MaxDelayMs) * time.Millisecond
}

// BooksTimeout returns the metadata client timeout.
func (c Config) BooksTimeout() time.Duration {
	return time.Duration(c.Books.TimeoutSeconds) * time.Second
}
