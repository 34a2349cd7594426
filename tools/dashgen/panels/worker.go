package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// TasksRate returns a timeseries panel showing processed tasks per minute
// broken down by item type.
func TasksRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Tasks / min").
		Description("Rate of tasks processed per minute, by item type").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum(rate(loupe_tasks_processed_total{job="loupe"}[5m])) by (item_type) * 60`,
			"{{item_type}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CycleDuration returns a timeseries panel showing the p95 poll cycle
// duration.
func CycleDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cycle Duration (p95)").
		Description("95th percentile poll cycle duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(loupe_cycle_duration_seconds_bucket{job="loupe"}[5m])) by (le))`,
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

// CyclesSkipped returns a timeseries panel showing skipped poll cycles
// per hour. Cycles are skipped when the previous one is still running.
func CyclesSkipped() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cycles Skipped").
		Description("Poll cycles skipped per hour because the previous cycle overran").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`increase(loupe_cycles_skipped_total{job="loupe"}[1h])`,
			"skipped/h", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}
