package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "loupe-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "loupe-recording",
					Rules: []Rule{
						{
							Record: "loupe:http_requests:rate5m",
							Expr:   `sum(rate(loupe_http_requests_total[5m]))`,
						},
						{
							Record: "loupe:http_errors:rate5m",
							Expr:   `sum(rate(loupe_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "loupe:items_scanned:rate5m",
							Expr:   `sum(rate(loupe_items_scanned_total[5m]))`,
						},
						{
							Record: "loupe:matches_found:rate5m",
							Expr:   `sum(rate(loupe_matches_found_total[5m]))`,
						},
						{
							Record: "loupe:task_errors:rate5m",
							Expr:   `sum(rate(loupe_task_errors_total[5m]))`,
						},
						{
							Record: "loupe:ebay_api_calls:rate5m",
							Expr:   `rate(loupe_ebay_api_calls_total[5m])`,
						},
						{
							Record: "loupe:search_errors:rate5m",
							Expr:   `sum(rate(loupe_search_requests_total{status="error"}[5m]))`,
						},
					},
				},
			},
		},
	}
}
