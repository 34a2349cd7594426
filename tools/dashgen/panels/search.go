package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// SearchRequestRate returns a timeseries panel showing search adapter request
// rates broken down by outcome.
func SearchRequestRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Search Requests").
		Description("Search adapter requests per second, by status").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(loupe_search_requests_total{job="loupe"}[5m])) by (status)`,
			"{{status}}", "A",
		)).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// BreakerOpenStat returns a stat panel showing whether the search adapter
// circuit breaker is open.
func BreakerOpenStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Circuit Breaker").
		Description("Search adapter breaker state (0 = closed, 1 = open)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`loupe_search_breaker_open{job="loupe"}`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(0.5, 1)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
