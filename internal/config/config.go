// Package config defines the top-level configuration for the want-list bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by WANTBOT_* environment variables.
type Config struct {
	Discogs  DiscogsConfig  `toml:"discogs"`
	Match    MatchConfig    `toml:"match"`
	Scrape   ScrapeConfig   `toml:"scrape"`
	Watch    WatchConfig    `toml:"watch"`
	Redis    RedisConfig    `toml:"redis"`
	Postgres PostgresConfig `toml:"postgres"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// DiscogsConfig holds Discogs API and website parameters.
type DiscogsConfig struct {
	Token              string `toml:"token"`
	TokenEncryptedPath string `toml:"token_encrypted_path"`
	TokenPassword      string `toml:"token_password"`
	// Username is resolved through the identity endpoint when empty.
	Username    string   `toml:"username"`
	APIURL      string   `toml:"api_url"`
	WebURL      string   `toml:"web_url"`
	UserAgent   string   `toml:"user_agent"`
	PageSize    int      `toml:"page_size"`
	HTTPTimeout duration `toml:"http_timeout"`
}

// MatchConfig holds the offer acceptance rules.
type MatchConfig struct {
	MinMediaCondition  string `toml:"min_media_condition"`
	MinSleeveCondition string `toml:"min_sleeve_condition"`
	// ReferenceCurrency is the currency prompted ceilings are written in and
	// the one every price is converted to before comparison.
	ReferenceCurrency string `toml:"reference_currency"`
	// ExchangeRates maps a currency prefix to the factor converting one unit
	// of it into ReferenceCurrency, e.g. {"$" = "0.92"}.
	ExchangeRates map[string]string `toml:"exchange_rates"`
	Interactive   bool              `toml:"interactive"`
}

// ScrapeConfig holds marketplace scraping parameters.
type ScrapeConfig struct {
	Concurrency    int    `toml:"concurrency"`
	StatsEnabled   bool   `toml:"stats_enabled"`
	BrowserEnabled bool   `toml:"browser_enabled"`
	ChromeBin      string `toml:"chrome_bin"`
}

// WatchConfig holds the periodic check parameters of watch mode.
type WatchConfig struct {
	Interval duration `toml:"interval"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	Password    string   `toml:"password"`
	DB          int      `toml:"db"`
	PoolSize    int      `toml:"pool_size"`
	MaxRetries  int      `toml:"max_retries"`
	TLSEnabled  bool     `toml:"tls_enabled"`
	StatsTTL    duration `toml:"stats_ttl"`
	NotifiedTTL duration `toml:"notified_ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Port    int    `toml:"port"`
	APIKey  string `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken       string   `toml:"telegram_token"`
	TelegramChatID      string   `toml:"telegram_chat_id"`
	DiscordWebhookURL   string   `toml:"discord_webhook_url"`
	HomeAssistantURL    string   `toml:"homeassistant_url"`
	HomeAssistantToken  string   `toml:"homeassistant_token"`
	HomeAssistantDevice string   `toml:"homeassistant_device"`
	Events              []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Discogs: DiscogsConfig{
			APIURL:      "https://api.discogs.com",
			WebURL:      "https://www.discogs.com",
			UserAgent:   "wantlistbot/1.0 +https://github.com/alanyoungcy/wantlistbot",
			PageSize:    250,
			HTTPTimeout: duration{30 * time.Second},
		},
		Match: MatchConfig{
			MinMediaCondition:  "VG",
			MinSleeveCondition: "No Cover",
			ReferenceCurrency:  "€",
			ExchangeRates:      map[string]string{},
		},
		Scrape: ScrapeConfig{
			Concurrency:  4,
			StatsEnabled: true,
		},
		Watch: WatchConfig{
			Interval: duration{6 * time.Hour},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  5,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			PoolSize:    10,
			MaxRetries:  3,
			StatsTTL:    duration{24 * time.Hour},
			NotifiedTTL: duration{30 * 24 * time.Hour},
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "wantlistbot",
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Port: 8000,
		},
		Notify: NotifyConfig{
			Events: []string{"offer.found", "ceiling.missing"},
		},
		Mode:     "once",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"once":  true,
	"watch": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// MinMedia returns the parsed minimum media grade.
func (m MatchConfig) MinMedia() (domain.Condition, error) {
	return domain.ParseCondition(m.MinMediaCondition)
}

// MinSleeve returns the parsed minimum sleeve grade.
func (m MatchConfig) MinSleeve() (domain.Condition, error) {
	return domain.ParseCondition(m.MinSleeveCondition)
}

// Rates parses ExchangeRates into a RateTable.
func (m MatchConfig) Rates() (domain.RateTable, error) {
	rates := make(domain.RateTable, len(m.ExchangeRates))
	for cur, raw := range m.ExchangeRates {
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("exchange rate for %q: %w", cur, err)
		}
		if !v.IsPositive() {
			return nil, fmt.Errorf("exchange rate for %q must be positive", cur)
		}
		rates[cur] = v
	}
	return rates, nil
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: once, watch)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Discogs
	if c.Discogs.Token == "" && c.Discogs.TokenEncryptedPath == "" {
		errs = append(errs, "discogs: either token or token_encrypted_path must be set")
	}
	if c.Discogs.TokenEncryptedPath != "" && c.Discogs.Token == "" && c.Discogs.TokenPassword == "" {
		errs = append(errs, "discogs: token_password is required when token_encrypted_path is set")
	}
	if c.Discogs.APIURL == "" {
		errs = append(errs, "discogs: api_url must not be empty")
	}
	if c.Discogs.WebURL == "" {
		errs = append(errs, "discogs: web_url must not be empty")
	}
	if c.Discogs.PageSize < 1 {
		errs = append(errs, "discogs: page_size must be >= 1")
	}
	if c.Discogs.HTTPTimeout.Duration <= 0 {
		errs = append(errs, "discogs: http_timeout must be > 0")
	}

	// Match
	if _, err := c.Match.MinMedia(); err != nil {
		errs = append(errs, fmt.Sprintf("match: min_media_condition: %v", err))
	}
	if _, err := c.Match.MinSleeve(); err != nil {
		errs = append(errs, fmt.Sprintf("match: min_sleeve_condition: %v", err))
	}
	if _, err := c.Match.Rates(); err != nil {
		errs = append(errs, fmt.Sprintf("match: %v", err))
	}
	if len(c.Match.ExchangeRates) > 0 && c.Match.ReferenceCurrency == "" {
		errs = append(errs, "match: reference_currency is required when exchange_rates are set")
	}

	// Scrape
	if c.Scrape.Concurrency < 1 {
		errs = append(errs, "scrape: concurrency must be >= 1")
	}

	// Watch
	if strings.EqualFold(c.Mode, "watch") && c.Watch.Interval.Duration < time.Minute {
		errs = append(errs, fmt.Sprintf("watch: interval must be at least 1m, got %s", c.Watch.Interval.Duration))
	}
	if strings.EqualFold(c.Mode, "watch") && c.Match.Interactive {
		errs = append(errs, "match: interactive is not available in watch mode")
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Notify
	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}
	ha := []bool{c.Notify.HomeAssistantURL != "", c.Notify.HomeAssistantToken != "", c.Notify.HomeAssistantDevice != ""}
	if (ha[0] || ha[1] || ha[2]) && !(ha[0] && ha[1] && ha[2]) {
		errs = append(errs, "notify: homeassistant_url, homeassistant_token and homeassistant_device must all be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
