package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/bargauge"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ItemsVsMatches returns a timeseries panel comparing scanned items against
// matches that survived the pipeline.
func ItemsVsMatches() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Items vs Matches").
		Description("Listings scanned and matches found per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`loupe:items_scanned:rate5m * 60`, "scanned/min", "A")).
		WithTarget(PromQuery(`loupe:matches_found:rate5m * 60`, "matches/min", "B")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// RejectionsByStage returns a timeseries panel showing rejection rates broken
// down by pipeline stage.
func RejectionsByStage() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Rejections by Stage").
		Description("Listings rejected per minute, by pipeline stage").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(loupe_rejections_total{job="loupe"}[5m])) by (stage) * 60`,
			"{{stage}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// DealScoreDistribution returns a bar gauge panel showing the distribution of
// computed deal scores across histogram buckets.
func DealScoreDistribution() *bargauge.PanelBuilder {
	return bargauge.NewPanelBuilder().
		Title("Deal Score Distribution").
		Description("Distribution of deal scores (0-100) over the last hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(FullWidth).
		WithTarget(PromQuery(
			`sum(increase(loupe_deal_score_distribution_bucket{job="loupe"}[1h])) by (le)`,
			"{{le}}", "A",
		)).
		Orientation(common.VizOrientationHorizontal).
		Min(0).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic())
}
