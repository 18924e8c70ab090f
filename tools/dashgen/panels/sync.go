package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// SyncRunsRate returns a timeseries panel showing sync runs per hour by
// terminal status.
func SyncRunsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Sync Runs / h").
		Description("Account sync runs per hour by terminal status").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum(rate(msh_sync_runs_total{job="meli-seller-hub"}[5m])) by (status) * 3600`,
			"{{status}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SyncDuration returns a timeseries panel showing the p95 sync run duration.
func SyncDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Sync Duration (p95)").
		Description("95th percentile account sync duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(msh_sync_duration_seconds_bucket{job="meli-seller-hub"}[5m])) by (le))`,
			"p95",
			"A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SupersededRuns returns a stat panel showing how many sync runs were
// canceled by a newer run in the past 24 hours.
func SupersededRuns() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Superseded Runs (24h)").
		Description("Sync runs canceled by a newer run for the same account in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`increase(msh_sync_superseded_total{job="meli-seller-hub"}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(5, 20)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
