package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies WANTBOT_* environment variable overrides, and
// returns the final Config. An empty path skips the file. The returned Config
// has NOT been validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known WANTBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Discogs ──
	setStr(&cfg.Discogs.Token, "WANTBOT_DISCOGS_TOKEN")
	setStr(&cfg.Discogs.TokenEncryptedPath, "WANTBOT_DISCOGS_TOKEN_ENCRYPTED_PATH")
	setStr(&cfg.Discogs.TokenPassword, "WANTBOT_DISCOGS_TOKEN_PASSWORD")
	setStr(&cfg.Discogs.Username, "WANTBOT_DISCOGS_USERNAME")
	setStr(&cfg.Discogs.APIURL, "WANTBOT_DISCOGS_API_URL")
	setStr(&cfg.Discogs.WebURL, "WANTBOT_DISCOGS_WEB_URL")
	setStr(&cfg.Discogs.UserAgent, "WANTBOT_DISCOGS_USER_AGENT")
	setInt(&cfg.Discogs.PageSize, "WANTBOT_DISCOGS_PAGE_SIZE")
	setDuration(&cfg.Discogs.HTTPTimeout, "WANTBOT_DISCOGS_HTTP_TIMEOUT")

	// ── Match ──
	setStr(&cfg.Match.MinMediaCondition, "WANTBOT_MATCH_MIN_MEDIA_CONDITION")
	setStr(&cfg.Match.MinSleeveCondition, "WANTBOT_MATCH_MIN_SLEEVE_CONDITION")
	setStr(&cfg.Match.ReferenceCurrency, "WANTBOT_MATCH_REFERENCE_CURRENCY")
	setBool(&cfg.Match.Interactive, "WANTBOT_MATCH_INTERACTIVE")

	// ── Scrape ──
	setInt(&cfg.Scrape.Concurrency, "WANTBOT_SCRAPE_CONCURRENCY")
	setBool(&cfg.Scrape.StatsEnabled, "WANTBOT_SCRAPE_STATS_ENABLED")
	setBool(&cfg.Scrape.BrowserEnabled, "WANTBOT_SCRAPE_BROWSER_ENABLED")
	setStr(&cfg.Scrape.ChromeBin, "WANTBOT_SCRAPE_CHROME_BIN")

	// ── Watch ──
	setDuration(&cfg.Watch.Interval, "WANTBOT_WATCH_INTERVAL")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "WANTBOT_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "WANTBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "WANTBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "WANTBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "WANTBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "WANTBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "WANTBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "WANTBOT_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "WANTBOT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "WANTBOT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "WANTBOT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "WANTBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "WANTBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "WANTBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "WANTBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "WANTBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "WANTBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "WANTBOT_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.StatsTTL, "WANTBOT_REDIS_STATS_TTL")
	setDuration(&cfg.Redis.NotifiedTTL, "WANTBOT_REDIS_NOTIFIED_TTL")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "WANTBOT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "WANTBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "WANTBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "WANTBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "WANTBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "WANTBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "WANTBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "WANTBOT_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "WANTBOT_S3_PREFIX")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "WANTBOT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "WANTBOT_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "WANTBOT_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "WANTBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "WANTBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "WANTBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStr(&cfg.Notify.HomeAssistantURL, "WANTBOT_NOTIFY_HOMEASSISTANT_URL")
	setStr(&cfg.Notify.HomeAssistantToken, "WANTBOT_NOTIFY_HOMEASSISTANT_TOKEN")
	setStr(&cfg.Notify.HomeAssistantDevice, "WANTBOT_NOTIFY_HOMEASSISTANT_DEVICE")
	setStringSlice(&cfg.Notify.Events, "WANTBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "WANTBOT_MODE")
	setStr(&cfg.LogLevel, "WANTBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
