package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jortega/bolsillo/internal/models"
)

// renderWeeklyChart draws the month's four weekly buckets as paired bars,
// income (green) next to expense (red) per bucket. Returns raw PNG bytes.
func renderWeeklyChart(report *models.MonthlyReport, width, height int) ([]byte, error) {
	if len(report.Weeks) == 0 {
		return nil, fmt.Errorf("report for %s %d-%02d has no weekly buckets",
			report.PortfolioName, report.Year, int(report.Month))
	}
	if width <= 0 {
		width = 900
	}
	if height <= 0 {
		height = 400
	}

	incomeColor := drawing.ColorFromHex("16a34a")  // green-600
	expenseColor := drawing.ColorFromHex("dc2626") // red-600

	bars := make([]chart.Value, 0, len(report.Weeks)*2)
	for i, week := range report.Weeks {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("S%d ingresos", i+1),
			Value: week.TotalIncome.InexactFloat64(),
			Style: chart.Style{FillColor: incomeColor, StrokeColor: incomeColor},
		})
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("S%d gastos", i+1),
			Value: week.TotalExpense.InexactFloat64(),
			Style: chart.Style{FillColor: expenseColor, StrokeColor: expenseColor},
		})
	}

	graph := chart.BarChart{
		Title:  fmt.Sprintf("%s %04d-%02d", report.PortfolioName, report.Year, int(report.Month)),
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth: 40,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
