package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/lifting.report/internal/lifting"
)

// SecondSummary describes every second of the capture, including seconds
// with no out-of-limit frames.
type SecondSummary struct {
	Second          int
	Frames          int
	ErrorFrames     int
	ErrorPercentage float64
	PeakLI          float64
	MeanLI          float64
	MinRWL          float64
}

// Summarize computes a SecondSummary for seconds 1..ceil(frames/fps).
func Summarize(a *lifting.Analysis, fps int) []SecondSummary {
	if fps <= 0 {
		fps = DefaultFramesPerSecond
	}
	total := a.LI.Len()
	if total == 0 {
		return nil
	}

	outOfLimit := make(map[int]bool, len(a.OutOfLimit))
	for _, f := range a.OutOfLimit {
		outOfLimit[f] = true
	}

	li := a.LI.Values()
	rwl := a.RWL.Values()
	seconds := SecondOf(total, fps)
	out := make([]SecondSummary, 0, seconds)
	for s := 1; s <= seconds; s++ {
		first, last := Window(s, fps)
		if last > total {
			last = total
		}
		errs := 0
		for f := first; f <= last; f++ {
			if outOfLimit[f] {
				errs++
			}
		}
		window := li[first-1 : last]
		out = append(out, SecondSummary{
			Second:          s,
			Frames:          last - first + 1,
			ErrorFrames:     errs,
			ErrorPercentage: float64(errs) / float64(fps) * 100,
			PeakLI:          floats.Max(window),
			MeanLI:          stat.Mean(window, nil),
			MinRWL:          floats.Min(rwl[first-1 : last]),
		})
	}
	return out
}
