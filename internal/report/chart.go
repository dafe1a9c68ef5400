package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/lifting.report/internal/lifting"
)

// Chart dimensions used when embedding the PNG in the PDF.
const (
	ChartWidth  = 10 * vg.Inch
	ChartHeight = 5 * vg.Inch
)

var (
	liColor    = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	rwlColor   = color.RGBA{R: 40, G: 90, B: 200, A: 255}
	limitColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// RenderChartPNG draws LI per frame with the LI = 1 reference line and
// writes a PNG to w.
func RenderChartPNG(w io.Writer, a *lifting.Analysis) error {
	p, err := liPlot(a)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(ChartWidth, ChartHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to create chart writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

func liPlot(a *lifting.Analysis) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Lifting Index per Frame"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "LI"
	p.Add(plotter.NewGrid())

	liPts := make(plotter.XYs, 0, a.LI.Len())
	rwlPts := make(plotter.XYs, 0, a.RWL.Len())
	maxRWL := 0.0
	for _, v := range a.RWL.Values() {
		if v > maxRWL {
			maxRWL = v
		}
	}
	for frame := 1; frame <= a.LI.Len(); frame++ {
		li, _ := a.LI.Get(frame)
		liPts = append(liPts, plotter.XY{X: float64(frame), Y: li})
		if maxRWL > 0 {
			// RWL is drawn as a fraction of its peak so it shares the LI axis
			rwl, _ := a.RWL.Get(frame)
			rwlPts = append(rwlPts, plotter.XY{X: float64(frame), Y: rwl / maxRWL})
		}
	}
	if len(liPts) == 0 {
		return p, nil
	}

	liLine, err := plotter.NewLine(liPts)
	if err != nil {
		return nil, fmt.Errorf("failed to create LI line: %w", err)
	}
	liLine.Color = liColor
	liLine.Width = vg.Points(1)
	p.Add(liLine)
	p.Legend.Add("LI", liLine)

	if len(rwlPts) > 0 {
		rwlLine, err := plotter.NewLine(rwlPts)
		if err != nil {
			return nil, fmt.Errorf("failed to create RWL line: %w", err)
		}
		rwlLine.Color = rwlColor
		rwlLine.Width = vg.Points(1)
		rwlLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(rwlLine)
		p.Legend.Add(fmt.Sprintf("RWL / %.1f kg", maxRWL), rwlLine)
	}

	limit := plotter.NewFunction(func(float64) float64 { return 1 })
	limit.Color = limitColor
	limit.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(limit)
	p.Legend.Add("LI = 1", limit)
	p.Legend.Top = true

	return p, nil
}
