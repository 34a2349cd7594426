package main

import "errors"

// KnownMetrics is the set of metric names exported by loupe plus recording
// rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"loupe_http_request_duration_seconds": true,
	"loupe_http_requests_total":           true,

	// Probe gauges.
	"loupe_healthz_up": true,
	"loupe_readyz_up":  true,

	// Worker cycle metrics.
	"loupe_cycle_duration_seconds": true,
	"loupe_cycles_skipped_total":   true,
	"loupe_tasks_processed_total":  true,
	"loupe_task_errors_total":      true,
	"loupe_items_scanned_total":    true,
	"loupe_matches_found_total":    true,
	"loupe_rejections_total":       true,

	// Scoring metrics.
	"loupe_deal_score_distribution": true,
	"loupe_risk_score_distribution": true,

	// eBay API metrics.
	"loupe_ebay_api_calls_total":        true,
	"loupe_ebay_daily_usage":            true,
	"loupe_ebay_daily_limit_hits_total": true,
	"loupe_credentials_available":       true,
	"loupe_credential_rotations_total":  true,
	"loupe_detail_cache_hits_total":     true,

	// Search adapter metrics.
	"loupe_search_requests_total": true,
	"loupe_search_breaker_open":   true,

	// Notification metrics.
	"loupe_notifications_sent_total":    true,
	"loupe_notification_failures_total": true,

	// Recording rules.
	"loupe:http_requests:rate5m":  true,
	"loupe:http_errors:rate5m":    true,
	"loupe:items_scanned:rate5m":  true,
	"loupe:matches_found:rate5m":  true,
	"loupe:task_errors:rate5m":    true,
	"loupe:ebay_api_calls:rate5m": true,
	"loupe:search_errors:rate5m":  true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
