package projection

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"RevenueCast/internal/domain/models"
	xutil "RevenueCast/pkg/util"
)

// RevenueChart plots recorded daily revenue against the daily target.
func RevenueChart(title, currency string, points []models.HistoryPoint, target float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Target harian " + xutil.FormatAmount(target, currency),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: currency}),
	)

	dates := make([]string, len(points))
	revenue := make([]opts.LineData, len(points))
	targets := make([]opts.LineData, len(points))
	for i, p := range points {
		dates[i] = p.Date
		revenue[i] = opts.LineData{Value: p.Revenue}
		targets[i] = opts.LineData{Value: target}
	}

	line.SetXAxis(dates).
		AddSeries("Total Pendapatan", revenue).
		AddSeries("Target", targets)
	return line
}
