// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/loupelabs/loupe/tools/dashgen/panels"
)

// BuildOverview constructs the Loupe Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Loupe Overview").
		Uid("loupe-overview").
		Tags([]string{"loupe"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Worker.
	b.WithRow(dashboard.NewRowBuilder("Worker").
		WithPanel(panels.TasksRate()).
		WithPanel(panels.CycleDuration()).
		WithPanel(panels.CyclesSkipped()))

	// Row 4: Pipeline.
	b.WithRow(dashboard.NewRowBuilder("Pipeline").
		WithPanel(panels.ItemsVsMatches()).
		WithPanel(panels.RejectionsByStage()).
		WithPanel(panels.DealScoreDistribution()))

	// Row 5: eBay API.
	b.WithRow(dashboard.NewRowBuilder("eBay API").
		WithPanel(panels.APICallsRate()).
		WithPanel(panels.DailyUsage()).
		WithPanel(panels.LimitHits()).
		WithPanel(panels.CredentialsAvailable()))

	// Row 6: Search Adapter.
	b.WithRow(dashboard.NewRowBuilder("Search Adapter").
		WithPanel(panels.SearchRequestRate()).
		WithPanel(panels.BreakerOpenStat()))

	// Row 7: Notifications.
	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.NotificationsRate()).
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
