// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Ebay      EbayConfig      `yaml:"ebay"`
	Search    SearchConfig    `yaml:"search"`
	Slack     SlackConfig     `yaml:"slack"`
	Worker    WorkerConfig    `yaml:"worker"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings. URL wins when set;
// otherwise the DSN is assembled from the individual fields.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// EbayConfig defines marketplace API settings. Credentials themselves live in
// the datastore settings table; this covers endpoints and outbound pacing.
type EbayConfig struct {
	TokenURL    string          `yaml:"token_url"`
	BrowseURL   string          `yaml:"browse_url"`
	Scope       string          `yaml:"scope"`
	Marketplace string          `yaml:"marketplace"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines marketplace API pacing settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// SearchConfig defines the search adapter RPC settings.
type SearchConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig defines circuit breaker thresholds for the search adapter.
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// SlackConfig defines chat notification settings.
type SlackConfig struct {
	BotToken       string        `yaml:"bot_token"`
	WebhookURL     string        `yaml:"webhook_url"`
	DefaultChannel string        `yaml:"default_channel"`
	InviteUsers    string        `yaml:"invite_users"` // comma-separated user ids
	MessageSpacing time.Duration `yaml:"message_spacing"`
	APIURL         string        `yaml:"api_url"` // override for local mocks
}

// InviteUserIDs returns the configured default viewer ids.
func (s *SlackConfig) InviteUserIDs() []string {
	if s.InviteUsers == "" {
		return nil
	}
	parts := strings.Split(s.InviteUsers, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := strings.TrimSpace(p); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// WorkerConfig defines the polling loop settings.
type WorkerConfig struct {
	PollIntervalMS     int           `yaml:"poll_interval_ms"`
	InterTaskDelay     time.Duration `yaml:"inter_task_delay"`
	InterMetalDelay    time.Duration `yaml:"inter_metal_delay"`
	TaskDeadline       time.Duration `yaml:"task_deadline"`
	CallTimeout        time.Duration `yaml:"call_timeout"`
	RetryLimit         int           `yaml:"retry_limit"`
	RejectTTL          time.Duration `yaml:"reject_ttl"`
	DetailTTL          time.Duration `yaml:"detail_ttl"`
	MetalPriceTTL      time.Duration `yaml:"metal_price_ttl"`
	CleanupProbability float64       `yaml:"cleanup_probability"`
	TestSeller         string        `yaml:"test_seller"`
}

// PollInterval returns the poll cadence as a duration.
func (w *WorkerConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMS) * time.Millisecond
}

// TelemetryConfig defines OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyEbayDefaults(&cfg.Ebay)
	applySearchDefaults(&cfg.Search)
	applySlackDefaults(&cfg.Slack)
	applyWorkerDefaults(&cfg.Worker)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyEbayDefaults(e *EbayConfig) {
	if e.TokenURL == "" {
		e.TokenURL = "https://api.ebay.com/identity/v1/oauth2/token"
	}
	if e.BrowseURL == "" {
		e.BrowseURL = "https://api.ebay.com/buy/browse/v1"
	}
	if e.Scope == "" {
		e.Scope = "https://api.ebay.com/oauth/api_scope"
	}
	if e.Marketplace == "" {
		e.Marketplace = "EBAY_US"
	}
	applyRateLimitDefaults(&e.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applySearchDefaults(s *SearchConfig) {
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.Breaker.MaxFailures == 0 {
		s.Breaker.MaxFailures = 5
	}
	if s.Breaker.OpenTimeout == 0 {
		s.Breaker.OpenTimeout = time.Minute
	}
}

func applySlackDefaults(s *SlackConfig) {
	if s.MessageSpacing == 0 {
		s.MessageSpacing = 1100 * time.Millisecond
	}
}

func applyWorkerDefaults(w *WorkerConfig) {
	if w.PollIntervalMS == 0 {
		w.PollIntervalMS = 60000
	}
	if w.InterTaskDelay == 0 {
		w.InterTaskDelay = 3 * time.Second
	}
	if w.InterMetalDelay == 0 {
		w.InterMetalDelay = 5 * time.Second
	}
	if w.TaskDeadline == 0 {
		w.TaskDeadline = 5 * time.Minute
	}
	if w.CallTimeout == 0 {
		w.CallTimeout = 30 * time.Second
	}
	if w.RetryLimit == 0 {
		w.RetryLimit = 10
	}
	if w.RejectTTL == 0 {
		w.RejectTTL = 48 * time.Hour
	}
	if w.DetailTTL == 0 {
		w.DetailTTL = 24 * time.Hour
	}
	if w.MetalPriceTTL == 0 {
		w.MetalPriceTTL = 10 * time.Minute
	}
	if w.CleanupProbability == 0 {
		w.CleanupProbability = 0.1
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.URL == "" {
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.url or database.host is required"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
	}

	if cfg.Search.URL == "" {
		errs = append(errs, fmt.Errorf("search.url is required"))
	}

	if cfg.Worker.PollIntervalMS < 0 {
		errs = append(errs, fmt.Errorf("worker.poll_interval_ms must be positive (got %d)", cfg.Worker.PollIntervalMS))
	}
	if cfg.Worker.CleanupProbability < 0 || cfg.Worker.CleanupProbability > 1 {
		errs = append(errs, fmt.Errorf(
			"worker.cleanup_probability must be within [0,1] (got %v)",
			cfg.Worker.CleanupProbability,
		))
	}

	if cfg.Slack.BotToken != "" && cfg.Slack.DefaultChannel == "" && cfg.Slack.WebhookURL == "" {
		errs = append(errs, fmt.Errorf(
			"slack.default_channel or slack.webhook_url is required when slack.bot_token is set",
		))
	}

	return errors.Join(errs...)
}
