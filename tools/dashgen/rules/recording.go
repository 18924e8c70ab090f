package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "msh-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "msh-recording",
					Rules: []Rule{
						{
							Record: "msh:http_requests:rate5m",
							Expr:   `sum(rate(msh_http_requests_total[5m]))`,
						},
						{
							Record: "msh:http_errors:rate5m",
							Expr:   `sum(rate(msh_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "msh:sync_runs:rate5m",
							Expr:   `sum(rate(msh_sync_runs_total[5m]))`,
						},
						{
							Record: "msh:sync_failures:rate5m",
							Expr:   `sum(rate(msh_sync_runs_total{status="failed"}[5m]))`,
						},
						{
							Record: "msh:meli_api_calls:rate5m",
							Expr:   `rate(msh_meli_api_calls_total[5m])`,
						},
					},
				},
			},
		},
	}
}
