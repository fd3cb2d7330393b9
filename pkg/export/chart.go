package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTMLChart renders one bar series per resource with its planned hours
// in each sprint, as a standalone HTML page.
func WriteHTMLChart(w io.Writer, doc Document) error {
	sprints := len(doc.Sprints)
	owners := make([]string, 0)
	hours := make(map[string][]float64)
	for _, u := range doc.Utilization {
		if u.Sprint >= sprints {
			sprints = u.Sprint + 1
		}
	}
	for _, u := range doc.Utilization {
		series, ok := hours[u.Owner]
		if !ok {
			owners = append(owners, u.Owner)
			series = make([]float64, sprints)
			hours[u.Owner] = series
		}
		series[u.Sprint] = u.Hours
	}
	if len(owners) == 0 {
		return fmt.Errorf("no utilization rows to chart")
	}

	x := make([]string, sprints)
	for i := range x {
		x[i] = fmt.Sprintf("Sprint %d", i)
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Planned hours per resource", Subtitle: doc.PlanID}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sprint"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Hours"}),
		charts.WithLegendOpts(opts.Legend{Bottom: "0"}),
	)
	bar.SetXAxis(x)
	for _, owner := range owners {
		data := make([]opts.BarData, sprints)
		for i, h := range hours[owner] {
			data[i] = opts.BarData{Value: h}
		}
		bar.AddSeries(owner, data)
	}
	return bar.Render(w)
}
