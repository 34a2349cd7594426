package rules

// AlertRules returns a PrometheusRule CR containing alert rules for loupe
// operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "loupe-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "loupe-alerts",
					Rules: []Rule{
						{
							Alert: "LoupeDown",
							Expr:  `absent(up{job="loupe"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Loupe is down",
								"description": "The loupe job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "LoupeReadinessDown",
							Expr:  `loupe_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Loupe readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes.",
							},
						},
						{
							Alert: "LoupeHighErrorRate",
							Expr:  `loupe:http_errors:rate5m / loupe:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on loupe",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "LoupeTaskErrors",
							Expr:  `loupe:task_errors:rate5m > 0`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Task processing errors detected",
								"description": "The poll worker has been failing tasks for more than 10 minutes.",
							},
						},
						{
							Alert: "LoupeSearchBreakerOpen",
							Expr:  `loupe_search_breaker_open == 1`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Search adapter circuit breaker is open",
								"description": "The search adapter breaker has been open for more than 5 minutes. Poll cycles are running without search results.",
							},
						},
						{
							Alert: "LoupeEbayQuotaHigh",
							Expr:  `loupe_ebay_daily_usage > 4000`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "eBay API daily usage is above 80% of the quota",
								"description": "Daily eBay API usage has exceeded 4000 calls (limit is 5000).",
							},
						},
						{
							Alert: "LoupeEbayLimitReached",
							Expr:  `increase(loupe_ebay_daily_limit_hits_total[5m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "eBay API daily limit has been reached",
								"description": "The eBay Browse API daily quota has been exhausted. Detail fetches are paused until reset.",
							},
						},
						{
							Alert: "LoupeNotificationFailures",
							Expr:  `increase(loupe_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more Slack deal notifications have failed to send.",
							},
						},
					},
				},
			},
		},
	}
}
