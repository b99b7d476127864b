// Load envs from .env
// Load YAML config
// Apply env overrides and defaults
// Validate config

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go-careers-scraper/internal/models"
)

// DefaultPath is where Load looks for the YAML file when no path is given.
const DefaultPath = "configs/config.yaml"

const (
	defaultTimeout       = 30 * time.Second
	defaultRetries       = 3
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultScreenshotDir = "temp"
	defaultPort          = "8080"
)

type Config struct {
	Target   models.ScrapeInput `yaml:"target"`
	Browser  BrowserConfig      `yaml:"browser"`
	Retry    RetryConfig        `yaml:"retry"`
	Strategy StrategyConfig     `yaml:"strategy"`
	Log      LogConfig          `yaml:"log"`
	Webhook  WebhookConfig      `yaml:"webhook"`
	Telegram TelegramConfig     `yaml:"telegram"`
	Server   ServerConfig       `yaml:"server"`
}

type BrowserConfig struct {
	Headless      bool     `yaml:"headless"`
	Args          []string `yaml:"args"`
	UserAgent     string   `yaml:"user_agent"`
	WaitSelector  string   `yaml:"wait_selector"`
	WaitUntil     string   `yaml:"wait_until"`
	SettleScroll  bool     `yaml:"settle_scroll"`
	Debug         bool     `yaml:"debug"`
	ScreenshotDir string   `yaml:"screenshot_dir"`
	// ReuseBrowser keeps the browser process alive between invocations of one manager.
	ReuseBrowser bool `yaml:"reuse_browser"`
}

type RetryConfig struct {
	// Backoff is "none" (default) or "exponential".
	Backoff      string        `yaml:"backoff"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

type StrategyConfig struct {
	// Order lists strategy names; unknown names are rejected by Validate.
	Order []string `yaml:"order"`
	// RequestsPerSecond bounds the static/api transport per host.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type WebhookConfig struct {
	URL    string `yaml:"url"`
	Secret string `yaml:"secret"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// Schedule is a cron expression; empty disables scheduled runs.
	Schedule string `yaml:"schedule"`
}

// KnownStrategies are the names the orchestrator can build.
var KnownStrategies = []string{"browser", "static", "api"}

// Load reads .env, the YAML file at path (optional) and environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{
		Browser: BrowserConfig{Headless: true},
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only configuration
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("CAREERS_URL", &cfg.Target.CareersURL)
	setString("COMPANY_ID", &cfg.Target.CompanyID)
	setString("API_BASE_URL", &cfg.Target.APIBaseURL)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("WEBHOOK_URL", &cfg.Webhook.URL)
	setString("WEBHOOK_SECRET", &cfg.Webhook.Secret)
	setString("TELEGRAM_BOT_TOKEN", &cfg.Telegram.Token)
	setString("PORT", &cfg.Server.Port)
	setString("SCRAPE_SCHEDULE", &cfg.Server.Schedule)
	setString("WAIT_SELECTOR", &cfg.Browser.WaitSelector)

	if v := os.Getenv("SCRAPE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPE_TIMEOUT: %w", err)
		}
		cfg.Target.Timeout = d
	}
	if v := os.Getenv("SCRAPE_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPE_RETRIES: %w", err)
		}
		cfg.Target.Retries = n
	}
	if v := os.Getenv("SCRAPE_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPE_DEBUG: %w", err)
		}
		cfg.Browser.Debug = b
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS: %w", err)
		}
		cfg.Browser.Headless = b
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Telegram.ChatID = id
	}
	return nil
}

// SetDefaults fills every unset value.
func (c *Config) SetDefaults() {
	if c.Target.Timeout <= 0 {
		c.Target.Timeout = defaultTimeout
	}
	if c.Target.Retries <= 0 {
		c.Target.Retries = defaultRetries
	}
	if c.Browser.UserAgent == "" {
		c.Browser.UserAgent = defaultUserAgent
	}
	if c.Browser.WaitUntil == "" {
		c.Browser.WaitUntil = "networkidle"
	}
	if c.Browser.ScreenshotDir == "" {
		c.Browser.ScreenshotDir = defaultScreenshotDir
	}
	if c.Retry.Backoff == "" {
		c.Retry.Backoff = "none"
	}
	if len(c.Strategy.Order) == 0 {
		c.Strategy.Order = append([]string(nil), KnownStrategies...)
	}
	if c.Strategy.RequestsPerSecond <= 0 {
		c.Strategy.RequestsPerSecond = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Target.CareersURL == "" && c.Target.APIBaseURL == "" {
		return errors.New("one of careers_url or api_base_url is required")
	}
	for _, raw := range []string{c.Target.CareersURL, c.Target.APIBaseURL, c.Webhook.URL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid url %q", raw)
		}
	}
	for _, name := range c.Strategy.Order {
		if !isKnownStrategy(name) {
			return fmt.Errorf("unknown strategy %q (known: %s)", name, strings.Join(KnownStrategies, ", "))
		}
	}
	switch c.Retry.Backoff {
	case "none", "exponential":
	default:
		return fmt.Errorf("unknown retry backoff %q", c.Retry.Backoff)
	}
	if c.Webhook.URL != "" && c.Webhook.Secret == "" {
		return errors.New("webhook secret is required when webhook url is set")
	}
	return nil
}

func isKnownStrategy(name string) bool {
	for _, known := range KnownStrategies {
		if name == known {
			return true
		}
	}
	return false
}
