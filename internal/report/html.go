package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/lifting.report/internal/lifting"
)

// RenderHTML writes a standalone interactive chart of LI and RWL per frame.
func RenderHTML(w io.Writer, a *lifting.Analysis, subtitle string) error {
	frames := make([]string, 0, a.LI.Len())
	liData := make([]opts.LineData, 0, a.LI.Len())
	rwlData := make([]opts.LineData, 0, a.RWL.Len())
	for frame := 1; frame <= a.LI.Len(); frame++ {
		li, _ := a.LI.Get(frame)
		rwl, _ := a.RWL.Get(frame)
		frames = append(frames, strconv.Itoa(frame))
		liData = append(liData, opts.LineData{Value: li})
		rwlData = append(rwlData, opts.LineData{Value: rwl})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Lifting Analysis", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Lifting Index and RWL per Frame", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "LI / RWL (kg)", NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(frames).
		AddSeries("LI", liData,
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "LI = 1", YAxis: 1}),
		).
		AddSeries("RWL (kg)", rwlData)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
