package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// meli-seller-hub operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "msh-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "msh-alerts",
					Rules: []Rule{
						{
							Alert: "MshDown",
							Expr:  `absent(up{job="meli-seller-hub"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Meli Seller Hub is down",
								"description": "The meli-seller-hub job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "MshReadinessDown",
							Expr:  `msh_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Meli Seller Hub readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes, usually a lost database connection.",
							},
						},
						{
							Alert: "MshHighErrorRate",
							Expr:  `msh:http_errors:rate5m / msh:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on Meli Seller Hub",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "MshSyncFailures",
							Expr:  `msh:sync_failures:rate5m > 0`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Account syncs are failing",
								"description": "Sync runs have been failing for more than 10 minutes. Check account token validity and Mercado Livre API status.",
							},
						},
						{
							Alert: "MshMeliQuotaHigh",
							Expr:  `increase(msh_meli_api_calls_total[24h]) > 4000`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Mercado Livre API daily usage is above 80% of the quota",
								"description": "Rolling 24h Mercado Livre API usage has exceeded 4000 calls (quota is 5000).",
							},
						},
						{
							Alert: "MshTokenExchangeFailures",
							Expr:  `increase(msh_token_exchanges_total{result="failed"}[1h]) > 5`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "OAuth code exchanges are failing repeatedly",
								"description": "More than 5 authorization code exchanges failed in the last hour. Check the application credentials and redirect URI.",
							},
						},
						{
							Alert: "MshNotificationFailures",
							Expr:  `increase(msh_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more sync alert notifications (Discord webhooks) have failed to send.",
							},
						},
					},
				},
			},
		},
	}
}
