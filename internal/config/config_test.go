package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Discogs.Token = "tok"
	return cfg
}

func TestDefaultsValidateWithToken(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v; want nil", err)
	}

	media, _ := cfg.Match.MinMedia()
	sleeve, _ := cfg.Match.MinSleeve()
	if media != domain.ConditionVeryGood || sleeve != domain.ConditionNotProvided {
		t.Errorf("default minimums = %v/%v; want VG/not provided", media, sleeve)
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "trade"
	cfg.LogLevel = "loud"
	cfg.Match.MinMediaCondition = "Shiny"
	cfg.Scrape.Concurrency = 0
	cfg.Notify.TelegramToken = "t"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil; want error")
	}
	for _, want := range []string{
		`unknown mode "trade"`,
		`unknown log_level "loud"`,
		"either token or token_encrypted_path",
		"min_media_condition",
		"concurrency must be >= 1",
		"telegram_chat_id",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestValidateCases(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"encrypted token needs password", func(c *Config) {
			c.Discogs.Token = ""
			c.Discogs.TokenEncryptedPath = "token.json"
		}, "token_password"},
		{"watch interval too short", func(c *Config) {
			c.Mode = "watch"
			c.Watch.Interval.Duration = time.Second
		}, "interval must be at least 1m"},
		{"interactive watch", func(c *Config) {
			c.Mode = "watch"
			c.Match.Interactive = true
		}, "interactive is not available"},
		{"bad rate", func(c *Config) {
			c.Match.ExchangeRates = map[string]string{"$": "abc"}
		}, "exchange rate"},
		{"negative rate", func(c *Config) {
			c.Match.ExchangeRates = map[string]string{"$": "-1"}
		}, "must be positive"},
		{"postgres pool", func(c *Config) {
			c.Postgres.Enabled = true
			c.Postgres.PoolMinConns = 10
		}, "pool_min_conns must not exceed"},
		{"partial home assistant", func(c *Config) {
			c.Notify.HomeAssistantURL = "http://ha.local:8123"
		}, "homeassistant_url"},
		{"server port", func(c *Config) {
			c.Server.Enabled = true
			c.Server.Port = 70000
		}, "server: port"},
		{"disabled postgres is not checked", func(c *Config) {
			c.Postgres.Host = ""
		}, ""},
	}
	for _, tt := range tests {
		cfg := validConfig()
		tt.mutate(&cfg)
		err := cfg.Validate()
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: Validate() = %v; want nil", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: Validate() = %v; want error containing %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestRates(t *testing.T) {
	m := MatchConfig{ExchangeRates: map[string]string{"$": "0.92", "£": " 1.17 "}}
	rates, err := m.Rates()
	if err != nil {
		t.Fatalf("Rates() error = %v", err)
	}
	if !rates["$"].Equal(decimal.RequireFromString("0.92")) {
		t.Errorf("rate $ = %s; want 0.92", rates["$"])
	}
	if !rates["£"].Equal(decimal.RequireFromString("1.17")) {
		t.Errorf("rate £ = %s; want 1.17", rates["£"])
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
mode = "watch"

[discogs]
token = "file-token"
page_size = 100

[match]
min_media_condition = "VG+"
exchange_rates = { "$" = "0.9" }

[watch]
interval = "2h"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WANTBOT_DISCOGS_TOKEN", "env-token")
	t.Setenv("WANTBOT_SCRAPE_CONCURRENCY", "8")
	t.Setenv("WANTBOT_NOTIFY_EVENTS", "offer.found, ,ceiling.missing")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != "watch" {
		t.Errorf("Mode = %q; want watch", cfg.Mode)
	}
	if cfg.Discogs.Token != "env-token" {
		t.Errorf("Token = %q; want env-token", cfg.Discogs.Token)
	}
	if cfg.Discogs.PageSize != 100 {
		t.Errorf("PageSize = %d; want 100", cfg.Discogs.PageSize)
	}
	if cfg.Discogs.APIURL != "https://api.discogs.com" {
		t.Errorf("APIURL = %q; want default", cfg.Discogs.APIURL)
	}
	if cfg.Match.MinMediaCondition != "VG+" {
		t.Errorf("MinMediaCondition = %q; want VG+", cfg.Match.MinMediaCondition)
	}
	if cfg.Watch.Interval.Duration != 2*time.Hour {
		t.Errorf("Interval = %s; want 2h", cfg.Watch.Interval.Duration)
	}
	if cfg.Scrape.Concurrency != 8 {
		t.Errorf("Concurrency = %d; want 8", cfg.Scrape.Concurrency)
	}
	if len(cfg.Notify.Events) != 2 || cfg.Notify.Events[1] != "ceiling.missing" {
		t.Errorf("Events = %v; want [offer.found ceiling.missing]", cfg.Notify.Events)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Password = "secret"
	cfg.Notify.HomeAssistantToken = "ha"
	cfg.Match.ExchangeRates = map[string]string{"$": "0.9"}

	out := RedactedConfig(&cfg)
	if out.Discogs.Token != redacted || out.Redis.Password != redacted || out.Notify.HomeAssistantToken != redacted {
		t.Errorf("secrets not redacted: %+v", out)
	}
	if out.S3.AccessKey != "" {
		t.Errorf("empty secret became %q", out.S3.AccessKey)
	}
	if cfg.Discogs.Token != "tok" {
		t.Error("original config was modified")
	}

	out.Match.ExchangeRates["$"] = "1"
	out.Notify.Events[0] = "x"
	if cfg.Match.ExchangeRates["$"] != "0.9" || cfg.Notify.Events[0] != "offer.found" {
		t.Error("redacted copy shares maps or slices with the original")
	}
}
